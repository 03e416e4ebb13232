package webhooks

import (
	"net/http"

	"github.com/luisvillanueva/driveshare-backend/api/responses"
	"github.com/luisvillanueva/driveshare-backend/api/validators"
	internalwallet "github.com/luisvillanueva/driveshare-backend/internal/wallet"
	"github.com/luisvillanueva/driveshare-backend/pkg/logger"
)

type topupCallbackRequest struct {
	ExternalRef string `json:"external_ref" validate:"required"`
	Status      string `json:"status" validate:"required,oneof=succeeded failed"`
	AmountCents int64  `json:"amount_cents" validate:"omitempty,min=1"`
}

// TopupCallback receives the payment gateway's settlement notification.
// Deliveries are at-least-once; replays return the original outcome.
func TopupCallback(svc internalwallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req topupCallbackRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ConfirmCallback(r.Context(), internalwallet.CallbackInput{
			ExternalRef: req.ExternalRef,
			Succeeded:   req.Status == "succeeded",
			AmountCents: req.AmountCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
