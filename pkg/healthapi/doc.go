// Package healthapi exposes a bgserver.Server's liveness and readiness
// over HTTP. It owns no dashboard rendering: /healthz and /readyz are a
// probe surface only, suitable for a Kubernetes liveness/readiness
// check or a load balancer health check.
package healthapi
