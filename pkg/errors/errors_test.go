// Copyright © 2018 One Concern

package errors

import (
	stderr "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestError(t *testing.T) {
	e1 := New("cause1")
	e2 := New("cause2").Wrap(e1)
	e := New("dummy").Wrap(e2)
	e3 := e.Unwrap()
	assert.True(t, Is(e, e1))
	assert.True(t, Is(e, e2))
	assert.True(t, e3 == e2)
}

func TestWrapKeepsSentinel(t *testing.T) {
	sentinel := New("sentinel")
	cause := stderr.New("io failure")

	w1 := sentinel.Wrap(cause)
	w2 := sentinel.Wrap(stderr.New("other"))

	assert.True(t, Is(w1, sentinel))
	assert.True(t, Is(w2, sentinel))
	assert.True(t, Is(w1, cause))
	assert.False(t, Is(w2, cause))
	assert.Nil(t, sentinel.Unwrap(), "wrapping must not mutate the sentinel")
	assert.Equal(t, "sentinel: io failure", w1.Error())
	assert.Equal(t, "sentinel", sentinel.Error())

	// wrapping a derived error still matches the original sentinel
	assert.True(t, Is(w1.Wrap(cause), sentinel))
}

func TestWrapMessage(t *testing.T) {
	sentinel := New("not found")
	err := sentinel.WrapMessage("no entry for %q", "abc")
	assert.True(t, Is(err, sentinel))
	assert.Equal(t, `not found: no entry for "abc"`, err.Error())
}

func TestWrapWithLog(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	sentinel := New("schema")
	err := sentinel.WrapWithLog(zap.New(core), stderr.New("boom"), zap.String("path", "x.db"))

	require.True(t, Is(err, sentinel))
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "schema", entries[0].Message)
	assert.Equal(t, "x.db", entries[0].ContextMap()["path"])

	// nil logger is tolerated
	assert.True(t, Is(sentinel.WrapWithLog(nil, nil), sentinel))
}

func TestAs(t *testing.T) {
	var target *Error
	err := New("outer").Wrap(stderr.New("inner"))
	require.True(t, As(err, &target))
	assert.Equal(t, "outer: inner", target.Error())
}
