package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/luisvillanueva/driveshare-backend/pkg/errors"
)

var hoursPerDay = decimal.NewFromInt(24)

// Quote is the financial snapshot priced at booking creation.
type Quote struct {
	Days             int64
	BasePriceCents   int64
	DepositCents     int64
	TotalAmountCents int64
}

// ComputeQuote prices a rental window. Partial days count as a full day; the
// deposit is a percentage of the base price rounded to the nearest cent.
func ComputeQuote(pickup, ret time.Time, dailyRateCents int64, depositRatePercent int) (*Quote, error) {
	if !ret.After(pickup) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return date must be after pickup date")
	}
	if dailyRateCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "daily rate must be positive")
	}
	if depositRatePercent < 0 || depositRatePercent > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit rate must be between 0 and 100")
	}

	hours := decimal.NewFromFloat(ret.Sub(pickup).Hours())
	days := hours.Div(hoursPerDay).Ceil().IntPart()
	if days < 1 {
		days = 1
	}

	base := decimal.NewFromInt(dailyRateCents).Mul(decimal.NewFromInt(days))
	deposit := base.Mul(decimal.NewFromInt(int64(depositRatePercent))).
		Div(decimal.NewFromInt(100)).
		Round(0)

	return &Quote{
		Days:             days,
		BasePriceCents:   base.IntPart(),
		DepositCents:     deposit.IntPart(),
		TotalAmountCents: base.Add(deposit).IntPart(),
	}, nil
}
