package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luisvillanueva/driveshare-backend/pkg/db"
	"github.com/luisvillanueva/driveshare-backend/pkg/db/models"
	"github.com/luisvillanueva/driveshare-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a wallet repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindOrCreateAccount(ctx context.Context, accountID uuid.UUID) (*models.WalletAccount, error) {
	var account models.WalletAccount
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&account).Error
	if err == nil {
		return &account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	account = models.WalletAccount{AccountID: accountID}
	if err := r.db.WithContext(ctx).Create(&account).Error; err != nil {
		// Concurrent first top-ups race on ux_wallet_accounts_account; the
		// loser re-reads the winner's row.
		if db.IsUniqueViolation(err, "ux_wallet_accounts_account") {
			var existing models.WalletAccount
			if findErr := r.db.WithContext(ctx).
				Where("account_id = ?", accountID).
				First(&existing).Error; findErr == nil {
				return &existing, nil
			}
		}
		return nil, err
	}
	return &account, nil
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.WalletTransaction) (*models.WalletTransaction, error) {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *repository) FindTransactionByExternalRef(ctx context.Context, externalRef string) (*models.WalletTransaction, error) {
	var txn models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("external_ref = ?", externalRef).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// SettleTransaction finalizes a pending transaction. The status guard makes
// settlement a one-shot move so replayed callbacks cannot settle twice.
func (r *repository) SettleTransaction(ctx context.Context, id uuid.UUID, status enums.WalletTransactionStatus, settledAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("id = ? AND status = ?", id, enums.WalletTransactionStatusPending).
		Updates(map[string]any{
			"status":     status,
			"settled_at": settledAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) CreditBalance(ctx context.Context, accountID uuid.UUID, amountCents int64) error {
	return r.db.WithContext(ctx).
		Model(&models.WalletAccount{}).
		Where("account_id = ?", accountID).
		Update("balance_cents", gorm.Expr("balance_cents + ?", amountCents)).Error
}
