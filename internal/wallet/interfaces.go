package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luisvillanueva/driveshare-backend/pkg/db/models"
	"github.com/luisvillanueva/driveshare-backend/pkg/enums"
)

// Repository defines persistence operations for wallet accounts and their
// transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrCreateAccount(ctx context.Context, accountID uuid.UUID) (*models.WalletAccount, error)
	CreateTransaction(ctx context.Context, txn *models.WalletTransaction) (*models.WalletTransaction, error)
	FindTransactionByExternalRef(ctx context.Context, externalRef string) (*models.WalletTransaction, error)
	SettleTransaction(ctx context.Context, id uuid.UUID, status enums.WalletTransactionStatus, settledAt time.Time) (bool, error)
	CreditBalance(ctx context.Context, accountID uuid.UUID, amountCents int64) error
}
