package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/luisvillanueva/driveshare-backend/pkg/enums"
)

// StatusChange is one immutable entry in a booking's status history. Rows are
// append-only; there is no update or delete path anywhere in the codebase.
type StatusChange struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID    uuid.UUID            `gorm:"column:booking_id;type:uuid;not null;index"`
	OldStatus    *enums.BookingStatus `gorm:"column:old_status;type:text"`
	NewStatus    enums.BookingStatus  `gorm:"column:new_status;type:text;not null"`
	Note         *string              `gorm:"column:note"`
	PictureURL   *string              `gorm:"column:picture_url"`
	ChargesCents int64                `gorm:"column:charges_cents;not null;default:0"`
	ActorRole    enums.ActorRole      `gorm:"column:actor_role;type:text;not null"`
	ChangedAt    time.Time            `gorm:"column:changed_at;not null"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
}
