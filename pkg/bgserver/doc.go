// Package bgserver hosts a set of long-running background processes
// behind cooperative, three-stage shutdown: stopping, stopped, and
// shutdown. Each process runs under InfiniteLoopTask(AutomaticRetryTask
// (process)), so transient process failures are retried with
// exponential-jitter backoff while a server-wide stop escalates from
// "finish current work" through "cancel blocking calls" to "abandon
// and tear down."
package bgserver
