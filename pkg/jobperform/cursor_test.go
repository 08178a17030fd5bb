package jobperform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncOnlyFilter struct{ name string }

func (f *syncOnlyFilter) OnPerforming(*PerformingContext) {}
func (f *syncOnlyFilter) OnPerformed(*PerformedContext)   {}

type asyncOnlyFilter struct{ name string }

func (f *asyncOnlyFilter) OnPerformingAsync(context.Context, *PerformingContext) error { return nil }
func (f *asyncOnlyFilter) OnPerformedAsync(context.Context, *PerformedContext) error   { return nil }

type bothFilter struct{ name string }

func (f *bothFilter) OnPerforming(*PerformingContext) {}
func (f *bothFilter) OnPerformed(*PerformedContext)   {}
func (f *bothFilter) OnPerformingAsync(context.Context, *PerformingContext) error {
	return nil
}
func (f *bothFilter) OnPerformedAsync(context.Context, *PerformedContext) error { return nil }

type exceptionOnlyFilter struct{ name string }

func (f *exceptionOnlyFilter) OnServerException(*ServerExceptionContext) {}

func TestFilterCursorNextPerformingSkipsNonMatching(t *testing.T) {
	infos := []FilterInfo{
		{Instance: &exceptionOnlyFilter{name: "a"}},
		{Instance: &syncOnlyFilter{name: "b"}},
		{Instance: &asyncOnlyFilter{name: "c"}},
	}
	cursor := newFilterCursor(infos)

	res := cursor.nextPerforming()
	assert.True(t, res.matched)
	assert.Equal(t, 1, res.index)
	assert.False(t, res.async)

	res = cursor.nextPerforming()
	assert.True(t, res.matched)
	assert.Equal(t, 2, res.index)
	assert.True(t, res.async)

	res = cursor.nextPerforming()
	assert.False(t, res.matched)
}

func TestFilterCursorPrevPerformingWalksStrictlyLess(t *testing.T) {
	infos := []FilterInfo{
		{Instance: &syncOnlyFilter{name: "a"}},
		{Instance: &syncOnlyFilter{name: "b"}},
		{Instance: &syncOnlyFilter{name: "c"}},
	}
	cursor := newFilterCursor(infos)

	res := cursor.prevPerforming(2)
	assert.True(t, res.matched)
	assert.Equal(t, 1, res.index)

	res = cursor.prevPerforming(0)
	assert.False(t, res.matched)
}

func TestFilterCursorPrefersAsyncWhenBothImplemented(t *testing.T) {
	infos := []FilterInfo{{Instance: &bothFilter{name: "a"}}}
	cursor := newFilterCursor(infos)

	res := cursor.nextPerforming()
	assert.True(t, res.matched)
	assert.True(t, res.async)
}

func TestFilterCursorNextExceptionOnlyMatchesExceptionCapability(t *testing.T) {
	infos := []FilterInfo{
		{Instance: &syncOnlyFilter{name: "a"}},
		{Instance: &exceptionOnlyFilter{name: "b"}},
	}
	cursor := newFilterCursor(infos)

	res := cursor.nextException()
	assert.True(t, res.matched)
	assert.Equal(t, 1, res.index)
	assert.False(t, res.async)
}

func TestFilterCursorResetRewindsForReuseAcrossPhases(t *testing.T) {
	infos := []FilterInfo{
		{Instance: &syncOnlyFilter{name: "a"}},
		{Instance: &syncOnlyFilter{name: "b"}},
	}
	cursor := newFilterCursor(infos)

	first := cursor.nextPerforming()
	require.True(t, first.matched)
	second := cursor.nextPerforming()
	require.True(t, second.matched)
	require.False(t, cursor.nextPerforming().matched)

	cursor.reset()

	again := cursor.nextPerforming()
	assert.True(t, again.matched)
	assert.Equal(t, first.index, again.index)
}
