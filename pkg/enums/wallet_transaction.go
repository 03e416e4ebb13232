package enums

// WalletTransactionType distinguishes wallet ledger movements.
type WalletTransactionType string

const (
	WalletTransactionTypeTopup  WalletTransactionType = "topup"
	WalletTransactionTypeCharge WalletTransactionType = "charge"
	WalletTransactionTypeRefund WalletTransactionType = "refund"
)

// WalletTransactionStatus tracks a wallet movement through gateway settlement.
type WalletTransactionStatus string

const (
	WalletTransactionStatusPending   WalletTransactionStatus = "pending"
	WalletTransactionStatusSucceeded WalletTransactionStatus = "succeeded"
	WalletTransactionStatusFailed    WalletTransactionStatus = "failed"
)

// IsFinal reports whether the gateway outcome is settled.
func (s WalletTransactionStatus) IsFinal() bool {
	return s == WalletTransactionStatusSucceeded || s == WalletTransactionStatusFailed
}
