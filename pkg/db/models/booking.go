package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/luisvillanueva/driveshare-backend/pkg/enums"
)

// Booking is one reserved rental period for a car between a renter and an
// owner. Reference and financial columns are written at creation and never
// updated; status/version move only through policy-approved transitions.
type Booking struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingNumber    string              `gorm:"column:booking_number;not null;uniqueIndex:ux_bookings_booking_number"`
	CarID            uuid.UUID           `gorm:"column:car_id;type:uuid;not null"`
	RenterAccountID  uuid.UUID           `gorm:"column:renter_account_id;type:uuid;not null;index"`
	OwnerAccountID   uuid.UUID           `gorm:"column:owner_account_id;type:uuid;not null;index"`
	Status           enums.BookingStatus `gorm:"column:status;type:text;not null;default:'waiting_confirmed'"`
	PickupDate       time.Time           `gorm:"column:pickup_date;not null"`
	ReturnDate       time.Time           `gorm:"column:return_date;not null"`
	BasePriceCents   int64               `gorm:"column:base_price_cents;not null"`
	DepositCents     int64               `gorm:"column:deposit_cents;not null"`
	TotalAmountCents int64               `gorm:"column:total_amount_cents;not null"`
	PaymentType      enums.PaymentType   `gorm:"column:payment_type;type:text;not null;default:'wallet'"`
	// Version equals the status history length and backs the optimistic
	// concurrency check on transitions.
	Version       int            `gorm:"column:version;not null;default:0"`
	StatusHistory []StatusChange `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
