package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_BeginAndComplete(t *testing.T) {
	var h History
	h.Begin("What courses are offered?")

	require.Len(t, h, 1)
	assert.True(t, h.Pending())

	require.NoError(t, h.Complete("  ND and HND programmes.\n"))
	assert.Equal(t, "ND and HND programmes.", h[0].Bot)
	assert.False(t, h.Pending())
}

func TestHistory_CompleteOnlyTouchesLastTurn(t *testing.T) {
	h := History{
		{User: "q1", Bot: "a1"},
		{User: "q2", Bot: ""}, // failed earlier request
		{User: "q3", Bot: "a3"},
	}
	h.Begin("q4")
	before := h.Clone()

	require.NoError(t, h.Complete("a4"))

	assert.Equal(t, before[:3], h[:3], "earlier turns must be unchanged")
	assert.Equal(t, Turn{User: "q4", Bot: "a4"}, h[3])
}

func TestHistory_CompleteWithoutPending(t *testing.T) {
	var empty History
	assert.ErrorIs(t, empty.Complete("x"), ErrNoPendingTurn)

	h := History{{User: "q", Bot: "a"}}
	assert.ErrorIs(t, h.Complete("again"), ErrNoPendingTurn)
	assert.Equal(t, "a", h[0].Bot)
}

func TestHistory_Prior(t *testing.T) {
	h := History{{User: "q1", Bot: "a1"}}
	assert.Len(t, h.Prior(), 1)

	h.Begin("q2")
	prior := h.Prior()
	require.Len(t, prior, 1)
	assert.Equal(t, "q1", prior[0].User)
}

func TestHistory_Answered(t *testing.T) {
	h := History{
		{User: "q1", Bot: "a1"},
		{User: "q2"},
		{User: "q3", Bot: "a3"},
	}
	got := h.Answered()
	require.Len(t, got, 2)
	assert.Equal(t, "q1", got[0].User)
	assert.Equal(t, "q3", got[1].User)
}

func TestHistory_Last(t *testing.T) {
	h := History{{User: "1"}, {User: "2"}, {User: "3"}}

	assert.Len(t, h.Last(0), 3)
	assert.Len(t, h.Last(5), 3)
	last := h.Last(2)
	require.Len(t, last, 2)
	assert.Equal(t, "2", last[0].User)
}

func TestHistory_CloneIsIndependent(t *testing.T) {
	h := History{{User: "q", Bot: "a"}}
	c := h.Clone()
	c[0].Bot = "changed"
	assert.Equal(t, "a", h[0].Bot)

	var nilHistory History
	assert.NotNil(t, nilHistory.Clone())
}
