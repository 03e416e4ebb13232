package enums

import (
	pkgerrors "github.com/luisvillanueva/driveshare-backend/pkg/errors"
)

// BookingStatus tracks the lifecycle of a rental booking.
type BookingStatus string

const (
	BookingStatusWaitingConfirmed     BookingStatus = "waiting_confirmed"
	BookingStatusPendingDeposit       BookingStatus = "pending_deposit"
	BookingStatusPendingPayment       BookingStatus = "pending_payment"
	BookingStatusConfirmed            BookingStatus = "confirmed"
	BookingStatusInProgress           BookingStatus = "in_progress"
	BookingStatusWaitingConfirmReturn BookingStatus = "waiting_confirm_return"
	BookingStatusRejectedReturn       BookingStatus = "rejected_return"
	BookingStatusCompleted            BookingStatus = "completed"
	BookingStatusCancelled            BookingStatus = "cancelled"
)

// bookingStatusOrder is the main-line progression. The two side branches
// (rejected_return, cancelled) are not part of the forward sequence.
var bookingStatusOrder = []BookingStatus{
	BookingStatusWaitingConfirmed,
	BookingStatusPendingDeposit,
	BookingStatusPendingPayment,
	BookingStatusConfirmed,
	BookingStatusInProgress,
	BookingStatusWaitingConfirmReturn,
	BookingStatusCompleted,
}

var validBookingStatuses = []BookingStatus{
	BookingStatusWaitingConfirmed,
	BookingStatusPendingDeposit,
	BookingStatusPendingPayment,
	BookingStatusConfirmed,
	BookingStatusInProgress,
	BookingStatusWaitingConfirmReturn,
	BookingStatusRejectedReturn,
	BookingStatusCompleted,
	BookingStatusCancelled,
}

var bookingStatusLabels = map[BookingStatus]string{
	BookingStatusWaitingConfirmed:     "Waiting for confirmation",
	BookingStatusPendingDeposit:       "Deposit due",
	BookingStatusPendingPayment:       "Payment due",
	BookingStatusConfirmed:            "Confirmed",
	BookingStatusInProgress:           "Rental in progress",
	BookingStatusWaitingConfirmReturn: "Return under review",
	BookingStatusRejectedReturn:       "Return rejected",
	BookingStatusCompleted:            "Completed",
	BookingStatusCancelled:            "Cancelled",
}

// ProgressBranch marks which arm of the lifecycle a status sits on.
type ProgressBranch string

const (
	ProgressBranchMain           ProgressBranch = "main"
	ProgressBranchCancelled      ProgressBranch = "cancelled"
	ProgressBranchRejectedReturn ProgressBranch = "rejected_return"
)

// BookingStatusOrder returns the fixed main-line sequence of statuses.
func BookingStatusOrder() []BookingStatus {
	out := make([]BookingStatus, len(bookingStatusOrder))
	copy(out, bookingStatusOrder)
	return out
}

// String implements fmt.Stringer.
func (s BookingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BookingStatus.
func (s BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status accepts no outgoing transitions.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// Label returns the display label for a known status, empty otherwise.
func (s BookingStatus) Label() string {
	return bookingStatusLabels[s]
}

// MainlineIndex returns the position of the status in the main-line order,
// or -1 for the side branches and unknown values.
func (s BookingStatus) MainlineIndex() int {
	for i, candidate := range bookingStatusOrder {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Progress resolves the display projection for a status: the main-line index
// plus the branch marker. rejected_return projects onto the return step it
// branched from so timelines keep a stable bar position.
func (s BookingStatus) Progress() (int, ProgressBranch) {
	switch s {
	case BookingStatusCancelled:
		return -1, ProgressBranchCancelled
	case BookingStatusRejectedReturn:
		return BookingStatusWaitingConfirmReturn.MainlineIndex(), ProgressBranchRejectedReturn
	default:
		return s.MainlineIndex(), ProgressBranchMain
	}
}

// ParseBookingStatus converts raw input into a BookingStatus. Unknown keys are
// rejected outright; there is no case folding or substring inference.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeUnknownStatus, "unknown booking status").
		WithDetails(map[string]any{"status": value})
}
