package entities

import "errors"

// Error taxonomy shared by every layer. Callers match with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrMissionNotAllowed   = errors.New("mission not allowed")
	ErrPrizeInactive       = errors.New("prize inactive")
	ErrTransactionConflict = errors.New("transaction conflict")
	ErrStorageUnavailable  = errors.New("storage unavailable")

	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidCurrency    = errors.New("invalid currency")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidState       = errors.New("invalid state transition")
	ErrOutOfStock         = errors.New("out of stock")
	ErrReferralNotAllowed = errors.New("referral not allowed")
)

// IsRetryable reports whether an operation that failed with err may be retried as-is
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransactionConflict)
}
