package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/luisvillanueva/driveshare-backend/pkg/errors"
)

func TestBookingStatusOrderIsFixed(t *testing.T) {
	order := BookingStatusOrder()

	require.Equal(t, []BookingStatus{
		BookingStatusWaitingConfirmed,
		BookingStatusPendingDeposit,
		BookingStatusPendingPayment,
		BookingStatusConfirmed,
		BookingStatusInProgress,
		BookingStatusWaitingConfirmReturn,
		BookingStatusCompleted,
	}, order)

	// Mutating the returned slice must not touch the catalog.
	order[0] = BookingStatusCancelled
	assert.Equal(t, BookingStatusWaitingConfirmed, BookingStatusOrder()[0])
}

func TestBookingStatusTerminalFlags(t *testing.T) {
	assert.True(t, BookingStatusCompleted.IsTerminal())
	assert.True(t, BookingStatusCancelled.IsTerminal())
	assert.False(t, BookingStatusRejectedReturn.IsTerminal())
	assert.False(t, BookingStatusWaitingConfirmed.IsTerminal())
}

func TestBookingStatusLabels(t *testing.T) {
	for _, status := range validBookingStatuses {
		assert.NotEmpty(t, status.Label(), "label missing for %s", status)
	}
	assert.Empty(t, BookingStatus("bogus").Label())
}

func TestParseBookingStatusRejectsUnknownKeys(t *testing.T) {
	parsed, err := ParseBookingStatus("waiting_confirm_return")
	require.NoError(t, err)
	assert.Equal(t, BookingStatusWaitingConfirmReturn, parsed)

	// No case folding or substring inference.
	for _, raw := range []string{"Waiting_Confirmed", "confirm", "COMPLETED", ""} {
		_, err := ParseBookingStatus(raw)
		require.Error(t, err, "expected rejection for %q", raw)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnknownStatus))
	}
}

func TestProgressProjection(t *testing.T) {
	idx, branch := BookingStatusConfirmed.Progress()
	assert.Equal(t, 3, idx)
	assert.Equal(t, ProgressBranchMain, branch)

	idx, branch = BookingStatusCancelled.Progress()
	assert.Equal(t, -1, idx)
	assert.Equal(t, ProgressBranchCancelled, branch)

	idx, branch = BookingStatusRejectedReturn.Progress()
	assert.Equal(t, BookingStatusWaitingConfirmReturn.MainlineIndex(), idx)
	assert.Equal(t, ProgressBranchRejectedReturn, branch)

	idx, branch = BookingStatusCompleted.Progress()
	assert.Equal(t, 6, idx)
	assert.Equal(t, ProgressBranchMain, branch)
}
