package wallet

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/luisvillanueva/driveshare-backend/api/responses"
	"github.com/luisvillanueva/driveshare-backend/api/validators"
	internalwallet "github.com/luisvillanueva/driveshare-backend/internal/wallet"
	"github.com/luisvillanueva/driveshare-backend/pkg/logger"
)

type topupRequest struct {
	AccountID   string `json:"account_id" validate:"required,uuid"`
	AmountCents int64  `json:"amount_cents" validate:"required,min=1"`
}

// Topup starts a wallet top-up through the payment gateway.
func Topup(svc internalwallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req topupRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		accountID, _ := uuid.Parse(req.AccountID)
		result, err := svc.Topup(r.Context(), accountID, req.AmountCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, result)
	}
}
