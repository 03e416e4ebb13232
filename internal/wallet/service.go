package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luisvillanueva/driveshare-backend/internal/payments"
	"github.com/luisvillanueva/driveshare-backend/pkg/config"
	"github.com/luisvillanueva/driveshare-backend/pkg/db/models"
	"github.com/luisvillanueva/driveshare-backend/pkg/enums"
	pkgerrors "github.com/luisvillanueva/driveshare-backend/pkg/errors"
	"github.com/luisvillanueva/driveshare-backend/pkg/logger"
	"github.com/luisvillanueva/driveshare-backend/pkg/outbox"
)

const topupIdempotencyScope = "wallet_topup"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type replayGuard interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// TopupResult is returned to the caller starting a top-up.
type TopupResult struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	ExternalRef   string    `json:"external_ref"`
	RedirectURL   string    `json:"redirect_url"`
	AmountCents   int64     `json:"amount_cents"`
}

// CallbackInput is the gateway's settlement notification.
type CallbackInput struct {
	ExternalRef string
	Succeeded   bool
	AmountCents int64
}

// CallbackResult reports the settled state; Replayed marks duplicate
// deliveries that were answered without re-crediting.
type CallbackResult struct {
	AccountID   uuid.UUID                     `json:"account_id"`
	Status      enums.WalletTransactionStatus `json:"status"`
	AmountCents int64                         `json:"amount_cents"`
	Replayed    bool                          `json:"replayed"`
}

// TopupConfirmedEvent is emitted when a top-up settles successfully.
type TopupConfirmedEvent struct {
	AccountID   uuid.UUID `json:"account_id"`
	ExternalRef string    `json:"external_ref"`
	AmountCents int64     `json:"amount_cents"`
}

// Service exposes wallet top-up operations.
type Service interface {
	Topup(ctx context.Context, accountID uuid.UUID, amountCents int64) (*TopupResult, error)
	ConfirmCallback(ctx context.Context, input CallbackInput) (*CallbackResult, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	capturer payments.Capturer
	guard    replayGuard
	cfg      config.BookingConfig
	logg     *logger.Logger
}

// NewService builds the wallet service with its required collaborators.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, capturer payments.Capturer, guard replayGuard, cfg config.BookingConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if capturer == nil {
		return nil, fmt.Errorf("payment capturer required")
	}
	if guard == nil {
		return nil, fmt.Errorf("replay guard required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		outbox:   ob,
		capturer: capturer,
		guard:    guard,
		cfg:      cfg,
		logg:     logg,
	}, nil
}

func (s *service) Topup(ctx context.Context, accountID uuid.UUID, amountCents int64) (*TopupResult, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "top-up amount must be positive")
	}

	if _, err := s.repo.FindOrCreateAccount(ctx, accountID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure wallet account")
	}

	// Charge first: a gateway failure leaves no pending row behind.
	charge, err := s.capturer.Charge(ctx, payments.ChargeRequest{
		AccountRef:  accountID.String(),
		AmountCents: amountCents,
		Reference:   uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}

	externalRef := charge.ExternalRef
	txn := &models.WalletTransaction{
		AccountID:   accountID,
		Type:        enums.WalletTransactionTypeTopup,
		Status:      enums.WalletTransactionStatusPending,
		AmountCents: amountCents,
		ExternalRef: &externalRef,
	}
	if _, err := s.repo.CreateTransaction(ctx, txn); err != nil {
		// The gateway charge now exists with no local row; its callback will
		// not match anything, so surface the reference for reconciliation.
		if s.logg != nil {
			fields := map[string]any{"account_id": accountID.String(), "external_ref": externalRef}
			s.logg.Error(s.logg.WithFields(ctx, fields), "gateway charge orphaned, pending top-up row not recorded", err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record pending top-up")
	}

	if s.logg != nil {
		fields := map[string]any{"account_id": accountID.String(), "external_ref": externalRef}
		s.logg.Info(s.logg.WithFields(ctx, fields), "wallet top-up started")
	}
	return &TopupResult{
		TransactionID: txn.ID,
		ExternalRef:   externalRef,
		RedirectURL:   charge.RedirectURL,
		AmountCents:   amountCents,
	}, nil
}

// ConfirmCallback settles a pending top-up exactly once. The redis SETNX
// filters replayed deliveries onto a read-only fast path; the status guard on
// the settle update is the authority, so a crashed first delivery can still
// be completed by its retry, and a failed settlement clears the key to let
// the gateway's next retry through.
func (s *service) ConfirmCallback(ctx context.Context, input CallbackInput) (*CallbackResult, error) {
	if input.ExternalRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external reference required")
	}

	key := s.guard.IdempotencyKey(topupIdempotencyScope, input.ExternalRef)
	firstDelivery, err := s.guard.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), s.cfg.CallbackReplayTTL)
	if err != nil {
		// Redis being down must not drop callbacks; the DB guard still holds.
		firstDelivery = true
		if s.logg != nil {
			s.logg.Warn(ctx, "replay guard unavailable, relying on settlement guard")
		}
	}

	if !firstDelivery {
		recorded, err := s.recordedOutcome(ctx, input)
		if err != nil {
			return nil, err
		}
		if recorded != nil {
			s.logCallback(ctx, input.ExternalRef, recorded, firstDelivery)
			return recorded, nil
		}
		// Marked but never settled: the first delivery crashed mid-flight.
		// Fall through and settle on this retry.
	}

	var result *CallbackResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		txn, err := repo.FindTransactionByExternalRef(ctx, input.ExternalRef)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "unknown gateway transaction reference")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet transaction")
		}
		if input.AmountCents > 0 && input.AmountCents != txn.AmountCents {
			return pkgerrors.New(pkgerrors.CodeConflict, "callback amount does not match transaction")
		}

		if txn.Status.IsFinal() {
			result = &CallbackResult{
				AccountID:   txn.AccountID,
				Status:      txn.Status,
				AmountCents: txn.AmountCents,
				Replayed:    true,
			}
			return nil
		}

		status := enums.WalletTransactionStatusFailed
		if input.Succeeded {
			status = enums.WalletTransactionStatusSucceeded
		}
		settled, err := repo.SettleTransaction(ctx, txn.ID, status, time.Now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle wallet transaction")
		}
		if !settled {
			// Lost the race with a concurrent delivery; report the winner's
			// final status, not the pending one read before the race.
			fresh, err := repo.FindTransactionByExternalRef(ctx, input.ExternalRef)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload wallet transaction")
			}
			result = &CallbackResult{
				AccountID:   fresh.AccountID,
				Status:      fresh.Status,
				AmountCents: fresh.AmountCents,
				Replayed:    true,
			}
			return nil
		}

		if input.Succeeded {
			if err := repo.CreditBalance(ctx, txn.AccountID, txn.AmountCents); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit wallet balance")
			}
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventWalletTopupConfirmed,
				AggregateType: enums.AggregateWalletTransaction,
				AggregateID:   txn.ID,
				Data: TopupConfirmedEvent{
					AccountID:   txn.AccountID,
					ExternalRef: input.ExternalRef,
					AmountCents: txn.AmountCents,
				},
				Version: 1,
			}); err != nil {
				return err
			}
		}

		result = &CallbackResult{
			AccountID:   txn.AccountID,
			Status:      status,
			AmountCents: txn.AmountCents,
			Replayed:    false,
		}
		return nil
	})
	if err != nil {
		// The delivery was marked but not settled; clear the key so the
		// gateway's retry is not mistaken for a replay.
		if delErr := s.guard.Del(ctx, key); delErr != nil && s.logg != nil {
			s.logg.Warn(ctx, "failed to clear replay guard after settlement error")
		}
		return nil, err
	}

	s.logCallback(ctx, input.ExternalRef, result, firstDelivery)
	return result, nil
}

// recordedOutcome answers a replayed delivery from the stored transaction.
// A nil result with no error means the transaction is still pending and the
// caller should run the settle path.
func (s *service) recordedOutcome(ctx context.Context, input CallbackInput) (*CallbackResult, error) {
	txn, err := s.repo.FindTransactionByExternalRef(ctx, input.ExternalRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown gateway transaction reference")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet transaction")
	}
	if input.AmountCents > 0 && input.AmountCents != txn.AmountCents {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "callback amount does not match transaction")
	}
	if !txn.Status.IsFinal() {
		return nil, nil
	}
	return &CallbackResult{
		AccountID:   txn.AccountID,
		Status:      txn.Status,
		AmountCents: txn.AmountCents,
		Replayed:    true,
	}, nil
}

func (s *service) logCallback(ctx context.Context, externalRef string, result *CallbackResult, firstDelivery bool) {
	if s.logg == nil {
		return
	}
	fields := map[string]any{
		"external_ref":   externalRef,
		"status":         string(result.Status),
		"replayed":       result.Replayed,
		"first_delivery": firstDelivery,
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "wallet top-up callback processed")
}
