package bookings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luisvillanueva/driveshare-backend/pkg/db/models"
	"github.com/luisvillanueva/driveshare-backend/pkg/enums"
	"github.com/luisvillanueva/driveshare-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bookings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *repository) AppendStatusChange(ctx context.Context, entry *models.StatusChange) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindByNumber(ctx context.Context, bookingNumber string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at ASC").Order("created_at ASC")
		}).
		Where("booking_number = ?", bookingNumber).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CommitTransition performs the optimistic status swap: the update only lands
// when both the status and version still match what the caller observed.
func (r *repository) CommitTransition(ctx context.Context, bookingID uuid.UUID, fromStatus enums.BookingStatus, fromVersion int, toStatus enums.BookingStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ? AND version = ?", bookingID, fromStatus, fromVersion).
		Updates(map[string]any{
			"status":  toStatus,
			"version": fromVersion + 1,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) ListBookings(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Booking, int64, error) {
	params = pagination.Normalize(params)
	query := r.db.WithContext(ctx).Model(&models.Booking{})

	if filter.AccountID != nil {
		switch {
		case filter.Role != nil && *filter.Role == enums.ActorRoleRenter:
			query = query.Where("renter_account_id = ?", *filter.AccountID)
		case filter.Role != nil && *filter.Role == enums.ActorRoleOwner:
			query = query.Where("owner_account_id = ?", *filter.AccountID)
		default:
			query = query.Where("renter_account_id = ? OR owner_account_id = ?", *filter.AccountID, *filter.AccountID)
		}
	}
	if len(filter.StatusIn) > 0 {
		query = query.Where("status IN ?", filter.StatusIn)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Booking
	err := query.
		Order("created_at DESC").
		Limit(params.PageSize).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
