package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/luisvillanueva/driveshare-backend/pkg/enums"
)

// WalletTransaction is one wallet ledger movement. ExternalRef carries the
// payment gateway's transaction reference; its unique index is the durable
// replay guard behind the idempotent top-up callback.
type WalletTransaction struct {
	ID          uuid.UUID                     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID   uuid.UUID                     `gorm:"column:account_id;type:uuid;not null;index"`
	Type        enums.WalletTransactionType   `gorm:"column:type;type:text;not null"`
	Status      enums.WalletTransactionStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	AmountCents int64                         `gorm:"column:amount_cents;not null"`
	ExternalRef *string                       `gorm:"column:external_ref;uniqueIndex:ux_wallet_transactions_external_ref"`
	SettledAt   *time.Time                    `gorm:"column:settled_at"`
	CreatedAt   time.Time                     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                     `gorm:"column:updated_at;autoUpdateTime"`
}
