package bookings

import (
	"github.com/luisvillanueva/driveshare-backend/pkg/enums"
	pkgerrors "github.com/luisvillanueva/driveshare-backend/pkg/errors"
)

// TransitionRequest is everything the policy needs to judge one status change.
type TransitionRequest struct {
	Current           enums.BookingStatus
	Requested         enums.BookingStatus
	ActorRole         enums.ActorRole
	PaymentType       enums.PaymentType
	HadRejectedReturn bool
	Evidence          Evidence
}

type transitionDetails struct {
	From enums.BookingStatus `json:"from"`
	To   enums.BookingStatus `json:"to"`
	Role enums.ActorRole     `json:"role,omitempty"`
}

// ValidateTransition applies the lifecycle rules in a fixed order: terminal
// check, graph legality, role gating, evidence. The first violated rule wins;
// nothing is coerced or guessed.
func ValidateTransition(req TransitionRequest) error {
	if !req.Current.IsValid() {
		return pkgerrors.New(pkgerrors.CodeUnknownStatus, "unknown current status").
			WithDetails(map[string]string{"status": req.Current.String()})
	}
	if !req.Requested.IsValid() {
		return pkgerrors.New(pkgerrors.CodeUnknownStatus, "unknown requested status").
			WithDetails(map[string]string{"status": req.Requested.String()})
	}

	details := transitionDetails{From: req.Current, To: req.Requested}

	if req.Current.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeTerminal, "booking is in a terminal status").
			WithDetails(details)
	}
	if !isGraphLegal(req.Current, req.Requested) {
		return pkgerrors.New(pkgerrors.CodeIllegalMove, "transition not reachable from current status").
			WithDetails(details)
	}
	if !roleAllows(req.ActorRole, req.Current, req.Requested) {
		details.Role = req.ActorRole
		return pkgerrors.New(pkgerrors.CodeRoleDenied, "actor role may not perform this transition").
			WithDetails(details)
	}
	return validateEvidence(req)
}

// isGraphLegal answers reachability alone, ignoring who asks. Legal moves:
// one step forward along the main line, the two branches out of
// waiting_confirm_return, the single backward reopen out of rejected_return,
// and the early exit to cancelled from every non-terminal status except
// rejected_return.
func isGraphLegal(from, to enums.BookingStatus) bool {
	if to == enums.BookingStatusCancelled {
		return !from.IsTerminal() && from != enums.BookingStatusRejectedReturn
	}
	switch from {
	case enums.BookingStatusWaitingConfirmReturn:
		return to == enums.BookingStatusCompleted || to == enums.BookingStatusRejectedReturn
	case enums.BookingStatusRejectedReturn:
		return to == enums.BookingStatusWaitingConfirmReturn
	}
	fromIdx := from.MainlineIndex()
	toIdx := to.MainlineIndex()
	return fromIdx >= 0 && toIdx == fromIdx+1
}

func roleAllows(role enums.ActorRole, from, to enums.BookingStatus) bool {
	switch role {
	case enums.ActorRoleAdmin:
		// Admin is the override channel for every graph-legal move and the
		// only role that may reopen a rejected return.
		return true

	case enums.ActorRoleRenter:
		if to == enums.BookingStatusCancelled {
			return from == enums.BookingStatusWaitingConfirmed ||
				from == enums.BookingStatusPendingDeposit
		}
		switch {
		case from == enums.BookingStatusPendingDeposit && to == enums.BookingStatusPendingPayment:
			return true
		case from == enums.BookingStatusInProgress && to == enums.BookingStatusWaitingConfirmReturn:
			return true
		}
		return false

	case enums.ActorRoleOwner:
		if to == enums.BookingStatusCancelled {
			return from == enums.BookingStatusWaitingConfirmed
		}
		switch {
		case from == enums.BookingStatusPendingPayment && to == enums.BookingStatusConfirmed:
			return true
		case from == enums.BookingStatusConfirmed && to == enums.BookingStatusInProgress:
			return true
		case from == enums.BookingStatusWaitingConfirmReturn:
			return to == enums.BookingStatusCompleted || to == enums.BookingStatusRejectedReturn
		}
		return false

	case enums.ActorRoleSystem:
		// Scheduler-issued deposit-timeout cancels only.
		return to == enums.BookingStatusCancelled &&
			(from == enums.BookingStatusWaitingConfirmed ||
				from == enums.BookingStatusPendingDeposit)
	}
	return false
}

func validateEvidence(req TransitionRequest) error {
	details := transitionDetails{From: req.Current, To: req.Requested}
	reopen := req.Current == enums.BookingStatusRejectedReturn &&
		req.Requested == enums.BookingStatusWaitingConfirmReturn

	needsPicture := !reopen &&
		(req.Requested == enums.BookingStatusWaitingConfirmReturn ||
			(req.Current == enums.BookingStatusWaitingConfirmReturn &&
				(req.Requested == enums.BookingStatusCompleted ||
					req.Requested == enums.BookingStatusRejectedReturn)))
	if needsPicture && !hasText(req.Evidence.PictureURL) {
		return pkgerrors.New(pkgerrors.CodeEvidence, "picture evidence required for return transitions").
			WithDetails(details)
	}

	needsNote := reopen ||
		req.Requested == enums.BookingStatusRejectedReturn ||
		(req.Requested == enums.BookingStatusConfirmed && req.PaymentType.RequiresConfirmationNote())
	if needsNote && !hasText(req.Evidence.Note) {
		return pkgerrors.New(pkgerrors.CodeEvidence, "note required for this transition").
			WithDetails(details)
	}

	if req.Current == enums.BookingStatusWaitingConfirmReturn &&
		req.Requested == enums.BookingStatusCompleted &&
		req.HadRejectedReturn &&
		req.Evidence.ChargesCents == nil {
		return pkgerrors.New(pkgerrors.CodeEvidence, "charges amount required for post-dispute completion").
			WithDetails(details)
	}
	if req.Evidence.ChargesCents != nil && *req.Evidence.ChargesCents < 0 {
		return pkgerrors.New(pkgerrors.CodeEvidence, "charges amount must be non-negative").
			WithDetails(details)
	}
	return nil
}

func hasText(s *string) bool {
	return s != nil && *s != ""
}
