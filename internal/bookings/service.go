package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luisvillanueva/driveshare-backend/internal/pricing"
	"github.com/luisvillanueva/driveshare-backend/pkg/config"
	"github.com/luisvillanueva/driveshare-backend/pkg/db/models"
	"github.com/luisvillanueva/driveshare-backend/pkg/enums"
	pkgerrors "github.com/luisvillanueva/driveshare-backend/pkg/errors"
	"github.com/luisvillanueva/driveshare-backend/pkg/logger"
	"github.com/luisvillanueva/driveshare-backend/pkg/metrics"
	"github.com/luisvillanueva/driveshare-backend/pkg/outbox"
	"github.com/luisvillanueva/driveshare-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes the booking lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*BookingDetail, error)
	ApplyTransition(ctx context.Context, input TransitionInput) (*BookingDetail, error)
	GetByNumber(ctx context.Context, bookingNumber string) (*BookingDetail, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (*BookingList, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	recorder *Recorder
	metrics  *metrics.TransitionMetrics
	cfg      config.BookingConfig
	logg     *logger.Logger

	newBookingNumber func(prefix string) string
}

// BookingCreatedEvent is emitted when a booking is seeded.
type BookingCreatedEvent struct {
	BookingNumber    string              `json:"booking_number"`
	CarID            uuid.UUID           `json:"car_id"`
	RenterAccountID  uuid.UUID           `json:"renter_account_id"`
	OwnerAccountID   uuid.UUID           `json:"owner_account_id"`
	Status           enums.BookingStatus `json:"status"`
	TotalAmountCents int64               `json:"total_amount_cents"`
	PaymentType      enums.PaymentType   `json:"payment_type"`
}

// BookingStatusChangedEvent is emitted on every accepted transition.
type BookingStatusChangedEvent struct {
	BookingNumber string              `json:"booking_number"`
	OldStatus     enums.BookingStatus `json:"old_status"`
	NewStatus     enums.BookingStatus `json:"new_status"`
	ActorRole     enums.ActorRole     `json:"actor_role"`
	ChargesCents  int64               `json:"charges_cents"`
	Version       int                 `json:"version"`
	ChangedAt     time.Time           `json:"changed_at"`
}

// NewService builds the booking service with its required collaborators.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, met *metrics.TransitionMetrics, cfg config.BookingConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:             repo,
		tx:               tx,
		outbox:           ob,
		recorder:         NewRecorder(),
		metrics:          met,
		cfg:              cfg,
		logg:             logg,
		newBookingNumber: defaultBookingNumber,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*BookingDetail, error) {
	if input.CarID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "car id required")
	}
	if input.RenterAccountID == uuid.Nil || input.OwnerAccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "renter and owner account ids required")
	}
	if input.RenterAccountID == input.OwnerAccountID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "renter and owner must differ")
	}
	if !input.PaymentType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment type")
	}
	if input.ReturnDate.Sub(input.PickupDate) < s.cfg.MinRentalDuration {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental window below minimum duration").
			WithDetails(map[string]string{"min_duration": s.cfg.MinRentalDuration.String()})
	}

	dailyRate := input.DailyRateCents
	if dailyRate <= 0 {
		dailyRate = s.cfg.DailyRateFallback
	}
	quote, err := pricing.ComputeQuote(input.PickupDate, input.ReturnDate, dailyRate, s.cfg.DepositRatePercent)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		BookingNumber:    s.newBookingNumber(s.cfg.NumberPrefix),
		CarID:            input.CarID,
		RenterAccountID:  input.RenterAccountID,
		OwnerAccountID:   input.OwnerAccountID,
		Status:           enums.BookingStatusWaitingConfirmed,
		PickupDate:       input.PickupDate,
		ReturnDate:       input.ReturnDate,
		BasePriceCents:   quote.BasePriceCents,
		DepositCents:     quote.DepositCents,
		TotalAmountCents: quote.TotalAmountCents,
		PaymentType:      input.PaymentType,
		Version:          1,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.CreateBooking(ctx, booking)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create booking")
		}
		booking = created

		seed := s.recorder.SeedEntry(booking)
		if err := repo.AppendStatusChange(ctx, &seed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append seed history entry")
		}
		booking.StatusHistory = append(booking.StatusHistory, seed)

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingCreated,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Actor:         &outbox.ActorRef{Role: enums.ActorRoleSystem.String()},
			Data: BookingCreatedEvent{
				BookingNumber:    booking.BookingNumber,
				CarID:            booking.CarID,
				RenterAccountID:  booking.RenterAccountID,
				OwnerAccountID:   booking.OwnerAccountID,
				Status:           booking.Status,
				TotalAmountCents: booking.TotalAmountCents,
				PaymentType:      booking.PaymentType,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithBookingNumber(ctx, booking.BookingNumber), "booking created")
	}
	return NewBookingDetail(booking), nil
}

func (s *service) ApplyTransition(ctx context.Context, input TransitionInput) (*BookingDetail, error) {
	if strings.TrimSpace(input.BookingNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking number required")
	}
	if !input.ActorRole.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown actor role")
	}

	start := time.Now()
	var detail *BookingDetail
	var accepted struct {
		from enums.BookingStatus
		to   enums.BookingStatus
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := repo.FindByNumber(ctx, input.BookingNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}

		if err := s.authorizeActor(booking, input); err != nil {
			return err
		}
		if input.ExpectedVersion > 0 && input.ExpectedVersion != booking.Version {
			return pkgerrors.New(pkgerrors.CodeStaleVersion, "booking version is stale; re-fetch and retry").
				WithDetails(map[string]int{"observed": input.ExpectedVersion, "current": booking.Version})
		}

		if err := ValidateTransition(TransitionRequest{
			Current:           booking.Status,
			Requested:         input.RequestedStatus,
			ActorRole:         input.ActorRole,
			PaymentType:       booking.PaymentType,
			HadRejectedReturn: historyContains(booking.StatusHistory, enums.BookingStatusRejectedReturn),
			Evidence:          input.Evidence,
		}); err != nil {
			return err
		}

		entry := s.recorder.NextEntry(booking, input.RequestedStatus, input.ActorRole, input.Evidence)

		committed, err := repo.CommitTransition(ctx, booking.ID, booking.Status, booking.Version, input.RequestedStatus)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "commit transition")
		}
		if !committed {
			return pkgerrors.New(pkgerrors.CodeStaleVersion, "booking was modified concurrently; re-fetch and retry")
		}
		if err := repo.AppendStatusChange(ctx, &entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append history entry")
		}

		accepted.from = booking.Status
		accepted.to = input.RequestedStatus
		booking.Status = input.RequestedStatus
		booking.Version++
		booking.StatusHistory = append(booking.StatusHistory, entry)

		event := BookingStatusChangedEvent{
			BookingNumber: booking.BookingNumber,
			OldStatus:     accepted.from,
			NewStatus:     accepted.to,
			ActorRole:     input.ActorRole,
			ChargesCents:  entry.ChargesCents,
			Version:       booking.Version,
			ChangedAt:     entry.ChangedAt,
		}
		actor := &outbox.ActorRef{Role: input.ActorRole.String()}
		if input.ActorAccountID != uuid.Nil {
			accountID := input.ActorAccountID
			actor.AccountID = &accountID
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingStatusChanged,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Actor:         actor,
			Data:          event,
			Version:       booking.Version,
		}); err != nil {
			return err
		}

		detail = NewBookingDetail(booking)
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			s.metrics.IncRejected(string(typed.Code()))
		}
		return nil, err
	}

	s.metrics.IncAccepted(accepted.from.String(), accepted.to.String())
	s.metrics.ObserveDuration(accepted.to.String(), time.Since(start))
	if s.logg != nil {
		fields := map[string]any{
			"old_status": accepted.from.String(),
			"new_status": accepted.to.String(),
			"actor_role": input.ActorRole.String(),
		}
		logCtx := s.logg.WithFields(s.logg.WithBookingNumber(ctx, input.BookingNumber), fields)
		s.logg.Info(logCtx, "booking transition accepted")
	}
	return detail, nil
}

// authorizeActor ensures renters and owners only touch their own bookings.
// Admin and system actors are not bound to a participant account.
func (s *service) authorizeActor(booking *models.Booking, input TransitionInput) error {
	if input.ActorAccountID == uuid.Nil {
		return nil
	}
	switch input.ActorRole {
	case enums.ActorRoleRenter:
		if booking.RenterAccountID != input.ActorAccountID {
			return pkgerrors.New(pkgerrors.CodeRoleDenied, "booking does not belong to this renter")
		}
	case enums.ActorRoleOwner:
		if booking.OwnerAccountID != input.ActorAccountID {
			return pkgerrors.New(pkgerrors.CodeRoleDenied, "booking does not belong to this owner")
		}
	}
	return nil
}

func (s *service) GetByNumber(ctx context.Context, bookingNumber string) (*BookingDetail, error) {
	if strings.TrimSpace(bookingNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking number required")
	}
	booking, err := s.repo.FindByNumber(ctx, bookingNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	return NewBookingDetail(booking), nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (*BookingList, error) {
	rows, total, err := s.repo.ListBookings(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	items := make([]BookingSummary, 0, len(rows))
	for i := range rows {
		items = append(items, NewBookingSummary(&rows[i]))
	}
	return &BookingList{
		Items:      items,
		Pagination: pagination.Build(params, total),
	}, nil
}

func historyContains(entries []models.StatusChange, status enums.BookingStatus) bool {
	for _, entry := range entries {
		if entry.NewStatus == status {
			return true
		}
	}
	return false
}

func defaultBookingNumber(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("20060102"), suffix)
}
