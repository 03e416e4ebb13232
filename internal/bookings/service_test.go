package bookings

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/luisvillanueva/driveshare-backend/pkg/config"
	"github.com/luisvillanueva/driveshare-backend/pkg/db/models"
	"github.com/luisvillanueva/driveshare-backend/pkg/enums"
	pkgerrors "github.com/luisvillanueva/driveshare-backend/pkg/errors"
	"github.com/luisvillanueva/driveshare-backend/pkg/outbox"
	"github.com/luisvillanueva/driveshare-backend/pkg/pagination"
)

type stubBookingsRepo struct {
	bookings map[string]*models.Booking

	commitTransition func(ctx context.Context, bookingID uuid.UUID, fromStatus enums.BookingStatus, fromVersion int, toStatus enums.BookingStatus) (bool, error)
}

func newStubBookingsRepo() *stubBookingsRepo {
	return &stubBookingsRepo{bookings: make(map[string]*models.Booking)}
}

func (s *stubBookingsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubBookingsRepo) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.CreatedAt = time.Now().UTC()
	stored := *booking
	s.bookings[booking.BookingNumber] = &stored
	return booking, nil
}

func (s *stubBookingsRepo) AppendStatusChange(ctx context.Context, entry *models.StatusChange) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now().UTC()
	for _, b := range s.bookings {
		if b.ID == entry.BookingID {
			b.StatusHistory = append(b.StatusHistory, *entry)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubBookingsRepo) FindByNumber(ctx context.Context, bookingNumber string) (*models.Booking, error) {
	stored, ok := s.bookings[bookingNumber]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *stored
	copied.StatusHistory = append([]models.StatusChange(nil), stored.StatusHistory...)
	return &copied, nil
}

func (s *stubBookingsRepo) CommitTransition(ctx context.Context, bookingID uuid.UUID, fromStatus enums.BookingStatus, fromVersion int, toStatus enums.BookingStatus) (bool, error) {
	if s.commitTransition != nil {
		return s.commitTransition(ctx, bookingID, fromStatus, fromVersion, toStatus)
	}
	for _, b := range s.bookings {
		if b.ID != bookingID {
			continue
		}
		if b.Status != fromStatus || b.Version != fromVersion {
			return false, nil
		}
		b.Status = toStatus
		b.Version = fromVersion + 1
		return true, nil
	}
	return false, nil
}

func (s *stubBookingsRepo) ListBookings(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Booking, int64, error) {
	var rows []models.Booking
	for _, b := range s.bookings {
		rows = append(rows, *b)
	}
	return rows, int64(len(rows)), nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func testBookingConfig() config.BookingConfig {
	return config.BookingConfig{
		NumberPrefix:       "DS",
		MinRentalDuration:  24 * time.Hour,
		DailyRateFallback:  5000,
		DepositRatePercent: 20,
	}
}

func newTestService(t *testing.T, repo Repository, ob outboxPublisher) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, ob, nil, testBookingConfig(), nil)
	require.NoError(t, err)
	return svc
}

func validCreateInput() CreateInput {
	pickup := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	return CreateInput{
		CarID:           uuid.New(),
		RenterAccountID: uuid.New(),
		OwnerAccountID:  uuid.New(),
		PickupDate:      pickup,
		ReturnDate:      pickup.Add(48 * time.Hour),
		DailyRateCents:  5000,
		PaymentType:     enums.PaymentTypeWallet,
	}
}

func requireStatusMatchesHistory(t *testing.T, detail *BookingDetail) {
	t.Helper()
	require.NotEmpty(t, detail.StatusHistory)
	last := detail.StatusHistory[len(detail.StatusHistory)-1]
	require.Equal(t, detail.Status, last.NewStatus)
	for i := 1; i < len(detail.StatusHistory); i++ {
		require.False(t, detail.StatusHistory[i].ChangedAt.Before(detail.StatusHistory[i-1].ChangedAt),
			"changedAt must be non-decreasing")
	}
}

func TestCreateSeedsBookingAndHistory(t *testing.T) {
	repo := newStubBookingsRepo()
	ob := &stubOutbox{}
	svc := newTestService(t, repo, ob)

	detail, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(detail.BookingNumber, "DS-"))
	require.Equal(t, enums.BookingStatusWaitingConfirmed, detail.Status)
	require.Equal(t, 1, detail.Version)
	require.Len(t, detail.StatusHistory, 1)
	require.Nil(t, detail.StatusHistory[0].OldStatus)
	require.Equal(t, enums.ActorRoleSystem, detail.StatusHistory[0].ActorRole)
	requireStatusMatchesHistory(t, detail)

	// Two days at 5000 plus 20% deposit.
	require.EqualValues(t, 10000, detail.BasePriceCents)
	require.EqualValues(t, 2000, detail.DepositCents)
	require.EqualValues(t, 12000, detail.TotalAmountCents)

	require.Len(t, ob.events, 1)
	require.Equal(t, enums.EventBookingCreated, ob.events[0].EventType)
}

func TestCreateRejectsShortRentalWindow(t *testing.T) {
	svc := newTestService(t, newStubBookingsRepo(), &stubOutbox{})

	input := validCreateInput()
	input.ReturnDate = input.PickupDate.Add(2 * time.Hour)

	_, err := svc.Create(context.Background(), input)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestCreateRejectsSameRenterAndOwner(t *testing.T) {
	svc := newTestService(t, newStubBookingsRepo(), &stubOutbox{})

	input := validCreateInput()
	input.OwnerAccountID = input.RenterAccountID

	_, err := svc.Create(context.Background(), input)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestRenterCancelThenBookingIsFrozen(t *testing.T) {
	repo := newStubBookingsRepo()
	ob := &stubOutbox{}
	svc := newTestService(t, repo, ob)

	input := validCreateInput()
	created, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	// Evidence-less cancel from waiting_confirmed is accepted.
	detail, err := svc.ApplyTransition(context.Background(), TransitionInput{
		BookingNumber:   created.BookingNumber,
		RequestedStatus: enums.BookingStatusCancelled,
		ActorRole:       enums.ActorRoleRenter,
		ActorAccountID:  input.RenterAccountID,
	})
	require.NoError(t, err)
	require.Equal(t, enums.BookingStatusCancelled, detail.Status)
	require.Len(t, detail.StatusHistory, 2)
	require.Equal(t, 2, detail.Version)
	requireStatusMatchesHistory(t, detail)

	// Everything after a terminal status is rejected.
	_, err = svc.ApplyTransition(context.Background(), TransitionInput{
		BookingNumber:   created.BookingNumber,
		RequestedStatus: enums.BookingStatusPendingDeposit,
		ActorRole:       enums.ActorRoleAdmin,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeTerminal))
}

func TestDisputedReturnResolvesToCompletedWithCharges(t *testing.T) {
	repo := newStubBookingsRepo()
	ob := &stubOutbox{}
	svc := newTestService(t, repo, ob)

	owner := uuid.New()
	initial := enums.BookingStatusWaitingConfirmReturn
	booking := &models.Booking{
		ID:             uuid.New(),
		BookingNumber:  "DS-20260501-TEST0001",
		CarID:          uuid.New(),
		OwnerAccountID: owner,
		Status:         initial,
		PaymentType:    enums.PaymentTypeWallet,
		Version:        1,
		StatusHistory: []models.StatusChange{
			{NewStatus: initial, ActorRole: enums.ActorRoleSystem, ChangedAt: time.Now().UTC()},
		},
	}
	booking.StatusHistory[0].BookingID = booking.ID
	repo.bookings[booking.BookingNumber] = booking

	pic := "https://img.example/damage.jpg"
	note := "damage found"
	detail, err := svc.ApplyTransition(context.Background(), TransitionInput{
		BookingNumber:   booking.BookingNumber,
		RequestedStatus: enums.BookingStatusRejectedReturn,
		ActorRole:       enums.ActorRoleOwner,
		ActorAccountID:  owner,
		Evidence:        Evidence{PictureURL: &pic, Note: &note},
	})
	require.NoError(t, err)
	require.Equal(t, enums.BookingStatusRejectedReturn, detail.Status)

	reopenNote := "resubmitted after correction"
	detail, err = svc.ApplyTransition(context.Background(), TransitionInput{
		BookingNumber:   booking.BookingNumber,
		RequestedStatus: enums.BookingStatusWaitingConfirmReturn,
		ActorRole:       enums.ActorRoleAdmin,
		Evidence:        Evidence{Note: &reopenNote},
	})
	require.NoError(t, err)
	require.Equal(t, enums.BookingStatusWaitingConfirmReturn, detail.Status)

	// Post-dispute completion requires an explicit charge amount.
	finalPic := "https://img.example/final.jpg"
	_, err = svc.ApplyTransition(context.Background(), TransitionInput{
		BookingNumber:   booking.BookingNumber,
		RequestedStatus: enums.BookingStatusCompleted,
		ActorRole:       enums.ActorRoleOwner,
		ActorAccountID:  owner,
		Evidence:        Evidence{PictureURL: &finalPic},
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeEvidence))

	charges := int64(50000)
	detail, err = svc.ApplyTransition(context.Background(), TransitionInput{
		BookingNumber:   booking.BookingNumber,
		RequestedStatus: enums.BookingStatusCompleted,
		ActorRole:       enums.ActorRoleOwner,
		ActorAccountID:  owner,
		Evidence:        Evidence{PictureURL: &finalPic, ChargesCents: &charges},
	})
	require.NoError(t, err)

	require.Equal(t, enums.BookingStatusCompleted, detail.Status)
	require.Len(t, detail.StatusHistory, 4)
	require.EqualValues(t, 50000, detail.StatusHistory[3].ChargesCents)
	requireStatusMatchesHistory(t, detail)
}

func TestApplyTransitionStaleObservedVersion(t *testing.T) {
	repo := newStubBookingsRepo()
	svc := newTestService(t, repo, &stubOutbox{})

	created, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	_, err = svc.ApplyTransition(context.Background(), TransitionInput{
		BookingNumber:   created.BookingNumber,
		RequestedStatus: enums.BookingStatusCancelled,
		ActorRole:       enums.ActorRoleAdmin,
		ExpectedVersion: 7,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStaleVersion))
}

func TestApplyTransitionLosesOptimisticRace(t *testing.T) {
	repo := newStubBookingsRepo()
	svc := newTestService(t, repo, &stubOutbox{})

	created, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	// A concurrent writer lands between our read and our commit.
	repo.commitTransition = func(ctx context.Context, bookingID uuid.UUID, fromStatus enums.BookingStatus, fromVersion int, toStatus enums.BookingStatus) (bool, error) {
		return false, nil
	}

	_, err = svc.ApplyTransition(context.Background(), TransitionInput{
		BookingNumber:   created.BookingNumber,
		RequestedStatus: enums.BookingStatusCancelled,
		ActorRole:       enums.ActorRoleAdmin,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStaleVersion))

	// The losing writer must not have touched the history.
	stored, err := repo.FindByNumber(context.Background(), created.BookingNumber)
	require.NoError(t, err)
	require.Len(t, stored.StatusHistory, 1)
}

func TestApplyTransitionWrongParticipant(t *testing.T) {
	repo := newStubBookingsRepo()
	svc := newTestService(t, repo, &stubOutbox{})

	created, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	_, err = svc.ApplyTransition(context.Background(), TransitionInput{
		BookingNumber:   created.BookingNumber,
		RequestedStatus: enums.BookingStatusCancelled,
		ActorRole:       enums.ActorRoleRenter,
		ActorAccountID:  uuid.New(),
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeRoleDenied))
}

func TestApplyTransitionUnknownBooking(t *testing.T) {
	svc := newTestService(t, newStubBookingsRepo(), &stubOutbox{})

	_, err := svc.ApplyTransition(context.Background(), TransitionInput{
		BookingNumber:   "DS-20260501-MISSING1",
		RequestedStatus: enums.BookingStatusCancelled,
		ActorRole:       enums.ActorRoleAdmin,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestApplyTransitionEmitsStatusChangedEvent(t *testing.T) {
	repo := newStubBookingsRepo()
	ob := &stubOutbox{}
	svc := newTestService(t, repo, ob)

	input := validCreateInput()
	created, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.ApplyTransition(context.Background(), TransitionInput{
		BookingNumber:   created.BookingNumber,
		RequestedStatus: enums.BookingStatusCancelled,
		ActorRole:       enums.ActorRoleRenter,
		ActorAccountID:  input.RenterAccountID,
	})
	require.NoError(t, err)

	require.Len(t, ob.events, 2)
	event := ob.events[1]
	require.Equal(t, enums.EventBookingStatusChanged, event.EventType)
	require.Equal(t, enums.AggregateBooking, event.AggregateType)

	payload, ok := event.Data.(BookingStatusChangedEvent)
	require.True(t, ok)
	require.Equal(t, enums.BookingStatusWaitingConfirmed, payload.OldStatus)
	require.Equal(t, enums.BookingStatusCancelled, payload.NewStatus)
	require.Equal(t, 2, payload.Version)
}

func TestGetByNumberProjectsTimeline(t *testing.T) {
	repo := newStubBookingsRepo()
	svc := newTestService(t, repo, &stubOutbox{})

	input := validCreateInput()
	created, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	detail, err := svc.GetByNumber(context.Background(), created.BookingNumber)
	require.NoError(t, err)
	require.Equal(t, 0, detail.ProgressIndex)
	require.Equal(t, enums.ProgressBranchMain, detail.Branch)
	requireStatusMatchesHistory(t, detail)
}

func TestGetByNumberNotFound(t *testing.T) {
	svc := newTestService(t, newStubBookingsRepo(), &stubOutbox{})

	_, err := svc.GetByNumber(context.Background(), "DS-20260501-NOPE0000")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}
