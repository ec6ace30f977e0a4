package correlator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelator_RegisterResolve(t *testing.T) {
	correlator := New()
	pending, err := correlator.Register("c-1", 1)
	assert.NoError(t, err)
	assert.Equal(t, "c-1", pending.CallId)
	assert.Equal(t, 1, correlator.Size())

	assert.True(t, correlator.Resolve(pending))
	assert.Equal(t, 0, correlator.Size())

	// Resolving twice reports no response is due.
	assert.False(t, correlator.Resolve(pending))
}

func TestCorrelator_DuplicateCallId(t *testing.T) {
	correlator := New()
	pending, err := correlator.Register("c-1", 1)
	assert.NoError(t, err)
	_, err = correlator.Register("c-1", 2)
	assert.Error(t, err)

	// The original registration stays intact.
	assert.True(t, correlator.Resolve(pending))
	assert.EqualValues(t, 1, pending.RequestId)
}

func TestCorrelator_Cancel(t *testing.T) {
	correlator := New()
	pending, err := correlator.Register("c-1", 1)
	assert.NoError(t, err)
	assert.Same(t, pending, correlator.Cancel("c-1"))
	assert.Nil(t, correlator.Cancel("c-1"))
	assert.Nil(t, correlator.Cancel("unknown"))

	// The identifier may be reused once the previous call was cancelled.
	_, err = correlator.Register("c-1", 2)
	assert.NoError(t, err)
}

func TestCorrelator_StaleResolveAfterReuse(t *testing.T) {
	correlator := New()
	stale, err := correlator.Register("c-1", 1)
	assert.NoError(t, err)
	assert.Same(t, stale, correlator.Cancel("c-1"))

	// The identifier is reused while the cancelled call's outcome is still
	// in flight.
	fresh, err := correlator.Register("c-1", 2)
	assert.NoError(t, err)

	// The late outcome of the cancelled call must not touch the new
	// registration, let alone answer it.
	assert.False(t, correlator.Resolve(stale))
	assert.Equal(t, 1, correlator.Size())

	assert.True(t, correlator.Resolve(fresh))
	assert.EqualValues(t, 2, fresh.RequestId)
	assert.Equal(t, 0, correlator.Size())
}

func TestCorrelator_CancelAll(t *testing.T) {
	correlator := New()
	first, _ := correlator.Register("c-1", 1)
	second, _ := correlator.Register("c-2", 2)
	assert.Equal(t, 2, correlator.CancelAll())
	assert.Equal(t, 0, correlator.CancelAll())

	// Late outcomes for cancelled calls are discarded, not answered.
	assert.False(t, correlator.Resolve(first))
	assert.True(t, first.Cancelled())
	assert.False(t, correlator.Resolve(second))
}
