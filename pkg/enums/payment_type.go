package enums

import (
	pkgerrors "github.com/luisvillanueva/driveshare-backend/pkg/errors"
)

// PaymentType is the settlement channel chosen at booking creation.
type PaymentType string

const (
	PaymentTypeWallet       PaymentType = "wallet"
	PaymentTypeCash         PaymentType = "cash"
	PaymentTypeBankTransfer PaymentType = "bank_transfer"
)

var validPaymentTypes = []PaymentType{
	PaymentTypeWallet,
	PaymentTypeCash,
	PaymentTypeBankTransfer,
}

// String implements fmt.Stringer.
func (p PaymentType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentType.
func (p PaymentType) IsValid() bool {
	for _, candidate := range validPaymentTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// RequiresConfirmationNote reports whether confirming a booking paid through
// this channel needs a free-text note from the owner (offline settlement).
func (p PaymentType) RequiresConfirmationNote() bool {
	return p == PaymentTypeCash || p == PaymentTypeBankTransfer
}

// ParsePaymentType converts raw input into a PaymentType.
func ParsePaymentType(value string) (PaymentType, error) {
	for _, candidate := range validPaymentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown payment type").
		WithDetails(map[string]any{"payment_type": value})
}
