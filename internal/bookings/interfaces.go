package bookings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luisvillanueva/driveshare-backend/pkg/db/models"
	"github.com/luisvillanueva/driveshare-backend/pkg/enums"
	"github.com/luisvillanueva/driveshare-backend/pkg/pagination"
)

// Repository defines persistence operations for bookings and their history.
// There is intentionally no update or delete for status changes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	AppendStatusChange(ctx context.Context, entry *models.StatusChange) error
	FindByNumber(ctx context.Context, bookingNumber string) (*models.Booking, error)
	CommitTransition(ctx context.Context, bookingID uuid.UUID, fromStatus enums.BookingStatus, fromVersion int, toStatus enums.BookingStatus) (bool, error)
	ListBookings(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Booking, int64, error)
}
