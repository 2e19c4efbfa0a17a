package journal

import (
	"errors"

	"github.com/cleared-dev/finsim/internal/accounts"
	"github.com/cleared-dev/finsim/internal/balance"
)

var (
	// ErrAccountNotFound is returned when an imputation names an unknown account.
	ErrAccountNotFound = accounts.ErrAccountNotFound
	// ErrNegativeAmount is returned for an imputation with a negative amount.
	ErrNegativeAmount = balance.ErrNegativeAmount
	// ErrDuplicatedEntry is returned when an account appears twice in one entry.
	ErrDuplicatedEntry = errors.New("account imputed twice in one entry")
	// ErrUnbalancedEntry is returned when debits and credits differ after rounding.
	ErrUnbalancedEntry = errors.New("unbalanced entry")
	// ErrEmptyEntry is returned for an entry without imputations.
	ErrEmptyEntry = errors.New("entry has no imputations")
	// ErrAlreadyValidated is returned when validating a validated entry.
	ErrAlreadyValidated = errors.New("entry already validated")
	// ErrNotValidated is returned when reconciling an entry that was never validated.
	ErrNotValidated = errors.New("entry not validated")
	// ErrAlreadyReconciled is returned when reconciling a reconciled entry.
	ErrAlreadyReconciled = errors.New("entry already reconciled")
	// ErrEntryNotFound is returned for an unknown sequence number.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrInvalidSequence is returned for a non-positive sequence number.
	ErrInvalidSequence = errors.New("invalid sequence number")
	// ErrPrecision is returned for an amount finer than the currency precision.
	ErrPrecision = errors.New("amount exceeds currency precision")
	// ErrDuplicateSequence is returned when loaded records reuse a sequence number.
	ErrDuplicateSequence = errors.New("sequence number already used")
)
