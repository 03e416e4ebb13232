package models

import (
	"time"

	"github.com/google/uuid"
)

// WalletAccount holds the current balance for one marketplace account.
type WalletAccount struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID    uuid.UUID `gorm:"column:account_id;type:uuid;not null;uniqueIndex:ux_wallet_accounts_account"`
	BalanceCents int64     `gorm:"column:balance_cents;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
