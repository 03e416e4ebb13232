package bookings

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luisvillanueva/driveshare-backend/pkg/enums"
	pkgerrors "github.com/luisvillanueva/driveshare-backend/pkg/errors"
)

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func TestValidateTransitionMainlineAdvance(t *testing.T) {
	cases := []struct {
		from enums.BookingStatus
		to   enums.BookingStatus
		role enums.ActorRole
	}{
		{enums.BookingStatusPendingDeposit, enums.BookingStatusPendingPayment, enums.ActorRoleRenter},
		{enums.BookingStatusPendingPayment, enums.BookingStatusConfirmed, enums.ActorRoleOwner},
		{enums.BookingStatusConfirmed, enums.BookingStatusInProgress, enums.ActorRoleOwner},
		{enums.BookingStatusWaitingConfirmed, enums.BookingStatusPendingDeposit, enums.ActorRoleAdmin},
	}
	for _, tc := range cases {
		err := ValidateTransition(TransitionRequest{
			Current:     tc.from,
			Requested:   tc.to,
			ActorRole:   tc.role,
			PaymentType: enums.PaymentTypeWallet,
		})
		require.NoError(t, err, "%s -> %s as %s", tc.from, tc.to, tc.role)
	}
}

func TestValidateTransitionRejectsSkippingAhead(t *testing.T) {
	err := ValidateTransition(TransitionRequest{
		Current:     enums.BookingStatusWaitingConfirmed,
		Requested:   enums.BookingStatusConfirmed,
		ActorRole:   enums.ActorRoleAdmin,
		PaymentType: enums.PaymentTypeWallet,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeIllegalMove))
}

func TestValidateTransitionRejectsBackwardMove(t *testing.T) {
	err := ValidateTransition(TransitionRequest{
		Current:     enums.BookingStatusConfirmed,
		Requested:   enums.BookingStatusPendingDeposit,
		ActorRole:   enums.ActorRoleAdmin,
		PaymentType: enums.PaymentTypeWallet,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeIllegalMove))
}

func TestValidateTransitionTerminalStatusesRejectEverything(t *testing.T) {
	for _, from := range []enums.BookingStatus{enums.BookingStatusCompleted, enums.BookingStatusCancelled} {
		for _, to := range enums.BookingStatusOrder() {
			err := ValidateTransition(TransitionRequest{
				Current:     from,
				Requested:   to,
				ActorRole:   enums.ActorRoleAdmin,
				PaymentType: enums.PaymentTypeWallet,
			})
			require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeTerminal), "%s -> %s", from, to)
		}
	}
}

func TestValidateTransitionRenterCannotStartRental(t *testing.T) {
	err := ValidateTransition(TransitionRequest{
		Current:     enums.BookingStatusConfirmed,
		Requested:   enums.BookingStatusInProgress,
		ActorRole:   enums.ActorRoleRenter,
		PaymentType: enums.PaymentTypeWallet,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeRoleDenied))
}

func TestValidateTransitionCancelRules(t *testing.T) {
	// Renter may cancel early, owner only while waiting_confirmed.
	require.NoError(t, ValidateTransition(TransitionRequest{
		Current:   enums.BookingStatusWaitingConfirmed,
		Requested: enums.BookingStatusCancelled,
		ActorRole: enums.ActorRoleRenter,
	}))
	require.NoError(t, ValidateTransition(TransitionRequest{
		Current:   enums.BookingStatusPendingDeposit,
		Requested: enums.BookingStatusCancelled,
		ActorRole: enums.ActorRoleRenter,
	}))
	require.NoError(t, ValidateTransition(TransitionRequest{
		Current:   enums.BookingStatusWaitingConfirmed,
		Requested: enums.BookingStatusCancelled,
		ActorRole: enums.ActorRoleOwner,
	}))

	err := ValidateTransition(TransitionRequest{
		Current:   enums.BookingStatusConfirmed,
		Requested: enums.BookingStatusCancelled,
		ActorRole: enums.ActorRoleRenter,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeRoleDenied))

	err = ValidateTransition(TransitionRequest{
		Current:   enums.BookingStatusPendingDeposit,
		Requested: enums.BookingStatusCancelled,
		ActorRole: enums.ActorRoleOwner,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeRoleDenied))
}

func TestValidateTransitionSystemCancelsDepositTimeouts(t *testing.T) {
	require.NoError(t, ValidateTransition(TransitionRequest{
		Current:   enums.BookingStatusPendingDeposit,
		Requested: enums.BookingStatusCancelled,
		ActorRole: enums.ActorRoleSystem,
	}))

	err := ValidateTransition(TransitionRequest{
		Current:   enums.BookingStatusConfirmed,
		Requested: enums.BookingStatusCancelled,
		ActorRole: enums.ActorRoleSystem,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeRoleDenied))
}

func TestValidateTransitionRejectedReturnCannotCancel(t *testing.T) {
	err := ValidateTransition(TransitionRequest{
		Current:   enums.BookingStatusRejectedReturn,
		Requested: enums.BookingStatusCancelled,
		ActorRole: enums.ActorRoleAdmin,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeIllegalMove))
}

func TestValidateTransitionReturnEntryRequiresPicture(t *testing.T) {
	err := ValidateTransition(TransitionRequest{
		Current:   enums.BookingStatusInProgress,
		Requested: enums.BookingStatusWaitingConfirmReturn,
		ActorRole: enums.ActorRoleRenter,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeEvidence))

	require.NoError(t, ValidateTransition(TransitionRequest{
		Current:   enums.BookingStatusInProgress,
		Requested: enums.BookingStatusWaitingConfirmReturn,
		ActorRole: enums.ActorRoleRenter,
		Evidence:  Evidence{PictureURL: strPtr("https://img.example/return.jpg")},
	}))
}

func TestValidateTransitionRejectedReturnRequiresNoteAndPicture(t *testing.T) {
	err := ValidateTransition(TransitionRequest{
		Current:   enums.BookingStatusWaitingConfirmReturn,
		Requested: enums.BookingStatusRejectedReturn,
		ActorRole: enums.ActorRoleOwner,
		Evidence:  Evidence{PictureURL: strPtr("https://img.example/damage.jpg")},
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeEvidence))

	require.NoError(t, ValidateTransition(TransitionRequest{
		Current:   enums.BookingStatusWaitingConfirmReturn,
		Requested: enums.BookingStatusRejectedReturn,
		ActorRole: enums.ActorRoleOwner,
		Evidence: Evidence{
			PictureURL: strPtr("https://img.example/damage.jpg"),
			Note:       strPtr("damage found"),
		},
	}))
}

func TestValidateTransitionReopenIsAdminOnlyWithNote(t *testing.T) {
	err := ValidateTransition(TransitionRequest{
		Current:   enums.BookingStatusRejectedReturn,
		Requested: enums.BookingStatusWaitingConfirmReturn,
		ActorRole: enums.ActorRoleOwner,
		Evidence:  Evidence{Note: strPtr("corrected")},
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeRoleDenied))

	err = ValidateTransition(TransitionRequest{
		Current:   enums.BookingStatusRejectedReturn,
		Requested: enums.BookingStatusWaitingConfirmReturn,
		ActorRole: enums.ActorRoleAdmin,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeEvidence))

	require.NoError(t, ValidateTransition(TransitionRequest{
		Current:   enums.BookingStatusRejectedReturn,
		Requested: enums.BookingStatusWaitingConfirmReturn,
		ActorRole: enums.ActorRoleAdmin,
		Evidence:  Evidence{Note: strPtr("resubmission after correction")},
	}))
}

func TestValidateTransitionCashConfirmationRequiresNote(t *testing.T) {
	err := ValidateTransition(TransitionRequest{
		Current:     enums.BookingStatusPendingPayment,
		Requested:   enums.BookingStatusConfirmed,
		ActorRole:   enums.ActorRoleOwner,
		PaymentType: enums.PaymentTypeCash,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeEvidence))

	require.NoError(t, ValidateTransition(TransitionRequest{
		Current:     enums.BookingStatusPendingPayment,
		Requested:   enums.BookingStatusConfirmed,
		ActorRole:   enums.ActorRoleOwner,
		PaymentType: enums.PaymentTypeBankTransfer,
		Evidence:    Evidence{Note: strPtr("transfer ref 8842")},
	}))

	// Wallet bookings confirm without a note.
	require.NoError(t, ValidateTransition(TransitionRequest{
		Current:     enums.BookingStatusPendingPayment,
		Requested:   enums.BookingStatusConfirmed,
		ActorRole:   enums.ActorRoleOwner,
		PaymentType: enums.PaymentTypeWallet,
	}))
}

func TestValidateTransitionPostDisputeCompletionRequiresCharges(t *testing.T) {
	base := TransitionRequest{
		Current:           enums.BookingStatusWaitingConfirmReturn,
		Requested:         enums.BookingStatusCompleted,
		ActorRole:         enums.ActorRoleOwner,
		HadRejectedReturn: true,
		Evidence:          Evidence{PictureURL: strPtr("https://img.example/final.jpg")},
	}
	err := ValidateTransition(base)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeEvidence))

	withCharges := base
	withCharges.Evidence.ChargesCents = int64Ptr(50000)
	require.NoError(t, ValidateTransition(withCharges))

	// Without a dispute in the history, charges stay optional.
	clean := base
	clean.HadRejectedReturn = false
	require.NoError(t, ValidateTransition(clean))
}

func TestValidateTransitionNegativeChargesRejected(t *testing.T) {
	err := ValidateTransition(TransitionRequest{
		Current:   enums.BookingStatusWaitingConfirmReturn,
		Requested: enums.BookingStatusCompleted,
		ActorRole: enums.ActorRoleOwner,
		Evidence: Evidence{
			PictureURL:   strPtr("https://img.example/final.jpg"),
			ChargesCents: int64Ptr(-1),
		},
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeEvidence))
}

func TestValidateTransitionUnknownStatus(t *testing.T) {
	err := ValidateTransition(TransitionRequest{
		Current:   enums.BookingStatus("shipped"),
		Requested: enums.BookingStatusConfirmed,
		ActorRole: enums.ActorRoleAdmin,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnknownStatus))
}

func TestValidateTransitionAdminCannotBreakGraph(t *testing.T) {
	// Admin overrides roles, not reachability.
	err := ValidateTransition(TransitionRequest{
		Current:   enums.BookingStatusInProgress,
		Requested: enums.BookingStatusConfirmed,
		ActorRole: enums.ActorRoleAdmin,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeIllegalMove))
}
