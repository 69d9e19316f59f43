package entities

// TransactionType tags the cause of a ledger entry
type TransactionType string

// All transaction types supported by the ledger
const (
	// Earning
	TransactionTypeMissionReward TransactionType = "mission_reward"
	TransactionTypeAttendance    TransactionType = "attendance"
	TransactionTypeReferral      TransactionType = "referral"

	// Prize drawings
	TransactionTypePrizeEntry TransactionType = "prize_entry"
	TransactionTypePrizePity  TransactionType = "prize_pity"

	// Redemption
	TransactionTypeWithdrawal TransactionType = "withdrawal"

	// System
	TransactionTypeAdminAdjustment TransactionType = "admin_adjustment"
)

// IsValid returns true if the transaction type is a known tag
func (tt TransactionType) IsValid() bool {
	switch tt {
	case TransactionTypeMissionReward,
		TransactionTypeAttendance,
		TransactionTypeReferral,
		TransactionTypePrizeEntry,
		TransactionTypePrizePity,
		TransactionTypeWithdrawal,
		TransactionTypeAdminAdjustment:
		return true
	}
	return false
}

// IsEarning returns true if the transaction type represents currency earned by the user
func (tt TransactionType) IsEarning() bool {
	return tt == TransactionTypeMissionReward ||
		tt == TransactionTypeAttendance ||
		tt == TransactionTypeReferral ||
		tt == TransactionTypePrizePity
}

// IsPrizeRelated returns true if the transaction type comes from a prize drawing
func (tt TransactionType) IsPrizeRelated() bool {
	return tt == TransactionTypePrizeEntry || tt == TransactionTypePrizePity
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
