package enums

// OutboxEventType names the domain events emitted through the outbox.
type OutboxEventType string

const (
	EventBookingCreated       OutboxEventType = "booking.created"
	EventBookingStatusChanged OutboxEventType = "booking.status_changed"
	EventWalletTopupConfirmed OutboxEventType = "wallet.topup_confirmed"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateBooking           OutboxAggregateType = "booking"
	AggregateWalletTransaction OutboxAggregateType = "wallet_transaction"
)
