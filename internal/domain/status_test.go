package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_IsValid(t *testing.T) {
	valid := []Status{
		StatusPending, StatusConfirmed, StatusPreparing,
		StatusReady, StatusDelivering, StatusDelivered, StatusCancelled,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "expected %s to be valid", s)
	}

	assert.False(t, Status("shipped").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestCanTransition_AllowedEdges(t *testing.T) {
	allowed := []struct {
		from Status
		to   Status
	}{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusPreparing},
		{StatusConfirmed, StatusCancelled},
		{StatusPreparing, StatusReady},
		{StatusPreparing, StatusCancelled},
		{StatusReady, StatusDelivering},
		{StatusDelivering, StatusDelivered},
	}

	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "expected %s -> %s to be allowed", tc.from, tc.to)
	}
}

func TestCanTransition_ForbiddenEdges(t *testing.T) {
	forbidden := []struct {
		from Status
		to   Status
	}{
		{StatusPending, StatusDelivered},
		{StatusPending, StatusPreparing},
		{StatusReady, StatusPending},
		{StatusReady, StatusCancelled},
		{StatusDelivering, StatusCancelled},
		{StatusDelivered, StatusPending},
		{StatusDelivered, StatusCancelled},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusConfirmed},
		{StatusConfirmed, StatusConfirmed},
	}

	for _, tc := range forbidden {
		assert.False(t, CanTransition(tc.from, tc.to), "expected %s -> %s to be forbidden", tc.from, tc.to)
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	assert.False(t, CanTransition(Status("bogus"), StatusConfirmed))
	assert.False(t, CanTransition(StatusPending, Status("bogus")))
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())

	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusPreparing.IsTerminal())
	assert.False(t, StatusReady.IsTerminal())
	assert.False(t, StatusDelivering.IsTerminal())
	assert.False(t, Status("bogus").IsTerminal())
}

func TestStatus_IsEditable(t *testing.T) {
	assert.True(t, StatusPending.IsEditable())
	assert.True(t, StatusConfirmed.IsEditable())

	assert.False(t, StatusPreparing.IsEditable())
	assert.False(t, StatusReady.IsEditable())
	assert.False(t, StatusDelivering.IsEditable())
	assert.False(t, StatusDelivered.IsEditable())
	assert.False(t, StatusCancelled.IsEditable())
}
