package observability

// Metric name prefixes
const (
	MetricPrefix = "rewards"
)

// Metric names
const (
	LedgerEntriesTotal   = MetricPrefix + ".ledger.entries_total"
	PityTriggersTotal    = MetricPrefix + ".pity.triggers_total"
	TransactionRetries   = MetricPrefix + ".transactions.retries_total"
	OperationDuration    = MetricPrefix + ".operations.duration"
	EventsPublishedTotal = MetricPrefix + ".events.published_total"
)

// Label keys
const (
	LabelCurrency        = "currency"
	LabelTransactionType = "transaction_type"
	LabelPrizeID         = "prize_id"
	LabelOperation       = "operation"
	LabelOutcome         = "outcome"
	LabelEventType       = "event_type"
)

// Outcomes
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)
