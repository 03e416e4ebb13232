package bookings

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/luisvillanueva/driveshare-backend/pkg/db/models"
	"github.com/luisvillanueva/driveshare-backend/pkg/enums"
	"github.com/luisvillanueva/driveshare-backend/pkg/pagination"
)

// Evidence carries the optional supporting material attached to a transition.
// ChargesCents distinguishes "not provided" (nil) from an explicit zero.
type Evidence struct {
	Note         *string
	PictureURL   *string
	ChargesCents *int64
}

// CreateInput seeds a new booking.
type CreateInput struct {
	CarID           uuid.UUID
	RenterAccountID uuid.UUID
	OwnerAccountID  uuid.UUID
	PickupDate      time.Time
	ReturnDate      time.Time
	DailyRateCents  int64
	PaymentType     enums.PaymentType
}

// TransitionInput is one requested status change against a booking.
type TransitionInput struct {
	BookingNumber   string
	RequestedStatus enums.BookingStatus
	ActorRole       enums.ActorRole
	ActorAccountID  uuid.UUID
	ExpectedVersion int
	Evidence        Evidence
}

// ListFilter narrows the booking list query.
type ListFilter struct {
	AccountID *uuid.UUID
	Role      *enums.ActorRole
	StatusIn  []enums.BookingStatus
}

// StatusChangeView is one timeline entry in a booking detail payload.
type StatusChangeView struct {
	ID           uuid.UUID            `json:"id"`
	OldStatus    *enums.BookingStatus `json:"old_status"`
	NewStatus    enums.BookingStatus  `json:"new_status"`
	NewLabel     string               `json:"new_label"`
	Note         *string              `json:"note,omitempty"`
	PictureURL   *string              `json:"picture_url,omitempty"`
	ChargesCents int64                `json:"charges_cents"`
	ActorRole    enums.ActorRole      `json:"actor_role"`
	ChangedAt    time.Time            `json:"changed_at"`
}

// BookingDetail is the full read-side projection of one booking.
type BookingDetail struct {
	BookingNumber    string               `json:"booking_number"`
	CarID            uuid.UUID            `json:"car_id"`
	RenterAccountID  uuid.UUID            `json:"renter_account_id"`
	OwnerAccountID   uuid.UUID            `json:"owner_account_id"`
	Status           enums.BookingStatus  `json:"status"`
	StatusLabel      string               `json:"status_label"`
	ProgressIndex    int                  `json:"progress_index"`
	Branch           enums.ProgressBranch `json:"branch"`
	PickupDate       time.Time            `json:"pickup_date"`
	ReturnDate       time.Time            `json:"return_date"`
	BasePriceCents   int64                `json:"base_price_cents"`
	DepositCents     int64                `json:"deposit_cents"`
	TotalAmountCents int64                `json:"total_amount_cents"`
	PaymentType      enums.PaymentType    `json:"payment_type"`
	Version          int                  `json:"version"`
	StatusHistory    []StatusChangeView   `json:"status_history"`
	CreatedAt        time.Time            `json:"created_at"`
}

// BookingSummary is the compact row used by list endpoints.
type BookingSummary struct {
	BookingNumber    string               `json:"booking_number"`
	CarID            uuid.UUID            `json:"car_id"`
	Status           enums.BookingStatus  `json:"status"`
	StatusLabel      string               `json:"status_label"`
	ProgressIndex    int                  `json:"progress_index"`
	Branch           enums.ProgressBranch `json:"branch"`
	PickupDate       time.Time            `json:"pickup_date"`
	ReturnDate       time.Time            `json:"return_date"`
	TotalAmountCents int64                `json:"total_amount_cents"`
	CreatedAt        time.Time            `json:"created_at"`
}

// BookingList pairs a summary page with its pagination block.
type BookingList struct {
	Items      []BookingSummary      `json:"items"`
	Pagination pagination.Pagination `json:"pagination"`
}

// NewBookingDetail projects a stored booking into its display shape. History
// is defensively re-sorted even though storage already orders it.
func NewBookingDetail(b *models.Booking) *BookingDetail {
	index, branch := b.Status.Progress()
	history := make([]StatusChangeView, 0, len(b.StatusHistory))
	for _, entry := range sortedHistory(b.StatusHistory) {
		history = append(history, StatusChangeView{
			ID:           entry.ID,
			OldStatus:    entry.OldStatus,
			NewStatus:    entry.NewStatus,
			NewLabel:     entry.NewStatus.Label(),
			Note:         entry.Note,
			PictureURL:   entry.PictureURL,
			ChargesCents: entry.ChargesCents,
			ActorRole:    entry.ActorRole,
			ChangedAt:    entry.ChangedAt,
		})
	}
	return &BookingDetail{
		BookingNumber:    b.BookingNumber,
		CarID:            b.CarID,
		RenterAccountID:  b.RenterAccountID,
		OwnerAccountID:   b.OwnerAccountID,
		Status:           b.Status,
		StatusLabel:      b.Status.Label(),
		ProgressIndex:    index,
		Branch:           branch,
		PickupDate:       b.PickupDate,
		ReturnDate:       b.ReturnDate,
		BasePriceCents:   b.BasePriceCents,
		DepositCents:     b.DepositCents,
		TotalAmountCents: b.TotalAmountCents,
		PaymentType:      b.PaymentType,
		Version:          b.Version,
		StatusHistory:    history,
		CreatedAt:        b.CreatedAt,
	}
}

// NewBookingSummary projects a stored booking into its list row.
func NewBookingSummary(b *models.Booking) BookingSummary {
	index, branch := b.Status.Progress()
	return BookingSummary{
		BookingNumber:    b.BookingNumber,
		CarID:            b.CarID,
		Status:           b.Status,
		StatusLabel:      b.Status.Label(),
		ProgressIndex:    index,
		Branch:           branch,
		PickupDate:       b.PickupDate,
		ReturnDate:       b.ReturnDate,
		TotalAmountCents: b.TotalAmountCents,
		CreatedAt:        b.CreatedAt,
	}
}

func sortedHistory(entries []models.StatusChange) []models.StatusChange {
	out := make([]models.StatusChange, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ChangedAt.Equal(out[j].ChangedAt) {
			return out[i].ChangedAt.Before(out[j].ChangedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
