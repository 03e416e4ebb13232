package bookings

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/luisvillanueva/driveshare-backend/api/middleware"
	"github.com/luisvillanueva/driveshare-backend/api/responses"
	"github.com/luisvillanueva/driveshare-backend/api/validators"
	internalbookings "github.com/luisvillanueva/driveshare-backend/internal/bookings"
	"github.com/luisvillanueva/driveshare-backend/pkg/enums"
	pkgerrors "github.com/luisvillanueva/driveshare-backend/pkg/errors"
	"github.com/luisvillanueva/driveshare-backend/pkg/logger"
	"github.com/luisvillanueva/driveshare-backend/pkg/pagination"
)

type createRequest struct {
	CarID           string    `json:"car_id" validate:"required,uuid"`
	RenterAccountID string    `json:"renter_account_id" validate:"required,uuid"`
	OwnerAccountID  string    `json:"owner_account_id" validate:"required,uuid"`
	PickupDate      time.Time `json:"pickup_date" validate:"required"`
	ReturnDate      time.Time `json:"return_date" validate:"required"`
	DailyRateCents  int64     `json:"daily_rate_cents" validate:"omitempty,min=1"`
	PaymentType     string    `json:"payment_type" validate:"required"`
}

type transitionRequest struct {
	RequestedStatus string  `json:"requested_status" validate:"required"`
	ExpectedVersion int     `json:"expected_version" validate:"omitempty,min=1"`
	Note            *string `json:"note"`
	PictureURL      *string `json:"picture_url"`
	ChargesCents    *int64  `json:"charges_cents"`
}

// Create books a car for a rental window.
func Create(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		carID, _ := uuid.Parse(req.CarID)
		renterID, _ := uuid.Parse(req.RenterAccountID)
		ownerID, _ := uuid.Parse(req.OwnerAccountID)
		paymentType, err := enums.ParsePaymentType(req.PaymentType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Create(r.Context(), internalbookings.CreateInput{
			CarID:           carID,
			RenterAccountID: renterID,
			OwnerAccountID:  ownerID,
			PickupDate:      req.PickupDate,
			ReturnDate:      req.ReturnDate,
			DailyRateCents:  req.DailyRateCents,
			PaymentType:     paymentType,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// Transition applies one status change to a booking.
func Transition(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "actor role header required"))
			return
		}

		bookingNumber := strings.TrimSpace(chi.URLParam(r, "bookingNumber"))
		if bookingNumber == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "booking number is required"))
			return
		}

		var req transitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		requested, err := enums.ParseBookingStatus(req.RequestedStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.ApplyTransition(r.Context(), internalbookings.TransitionInput{
			BookingNumber:   bookingNumber,
			RequestedStatus: requested,
			ActorRole:       actor.Role,
			ActorAccountID:  actor.AccountID,
			ExpectedVersion: req.ExpectedVersion,
			Evidence: internalbookings.Evidence{
				Note:         req.Note,
				PictureURL:   req.PictureURL,
				ChargesCents: req.ChargesCents,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// Detail returns a booking with its full status timeline.
func Detail(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookingNumber := strings.TrimSpace(chi.URLParam(r, "bookingNumber"))
		if bookingNumber == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "booking number is required"))
			return
		}

		detail, err := svc.GetByNumber(r.Context(), bookingNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// List returns a paged view of bookings for an account or status set.
func List(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := buildListFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pageSize, err := validators.ParseQueryInt(r, "pageSize", pagination.DefaultPageSize, 1, pagination.MaxPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), filter, pagination.Params{Page: page, PageSize: pageSize})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func buildListFilter(r *http.Request) (internalbookings.ListFilter, error) {
	var filter internalbookings.ListFilter

	if raw := strings.TrimSpace(r.URL.Query().Get("accountId")); raw != "" {
		accountID, err := uuid.Parse(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account id")
		}
		filter.AccountID = &accountID
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
		role, err := enums.ParseActorRole(raw)
		if err != nil {
			return filter, err
		}
		filter.Role = &role
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status, err := enums.ParseBookingStatus(strings.TrimSpace(part))
			if err != nil {
				return filter, err
			}
			filter.StatusIn = append(filter.StatusIn, status)
		}
	}
	return filter, nil
}
