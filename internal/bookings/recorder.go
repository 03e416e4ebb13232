package bookings

import (
	"time"

	"github.com/luisvillanueva/driveshare-backend/pkg/db/models"
	"github.com/luisvillanueva/driveshare-backend/pkg/enums"
)

// changedAtStep is the clamp applied when the wall clock would run backwards
// relative to the last history entry.
const changedAtStep = time.Millisecond

// Recorder builds immutable status history entries. Entries are append-only;
// nothing in the codebase updates or deletes a StatusChange row.
type Recorder struct {
	now func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// NewRecorderWithClock injects a clock for tests.
func NewRecorderWithClock(now func() time.Time) *Recorder {
	return &Recorder{now: now}
}

// SeedEntry builds the initial history entry written at booking creation.
// OldStatus is nil only here.
func (r *Recorder) SeedEntry(booking *models.Booking) models.StatusChange {
	return models.StatusChange{
		BookingID: booking.ID,
		OldStatus: nil,
		NewStatus: booking.Status,
		ActorRole: enums.ActorRoleSystem,
		ChangedAt: r.now().UTC(),
	}
}

// NextEntry builds the history entry for an accepted transition. ChangedAt is
// clamped to last.ChangedAt + 1ms when clock skew would otherwise break the
// non-decreasing ordering, rather than rejecting the transition.
func (r *Recorder) NextEntry(booking *models.Booking, to enums.BookingStatus, actor enums.ActorRole, ev Evidence) models.StatusChange {
	changedAt := r.now().UTC()
	if n := len(booking.StatusHistory); n > 0 {
		last := booking.StatusHistory[n-1].ChangedAt
		if !changedAt.After(last) {
			changedAt = last.Add(changedAtStep)
		}
	}

	oldStatus := booking.Status
	var charges int64
	if ev.ChargesCents != nil {
		charges = *ev.ChargesCents
	}
	return models.StatusChange{
		BookingID:    booking.ID,
		OldStatus:    &oldStatus,
		NewStatus:    to,
		Note:         ev.Note,
		PictureURL:   ev.PictureURL,
		ChargesCents: charges,
		ActorRole:    actor,
		ChangedAt:    changedAt,
	}
}
