package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrCurrencyMismatch indicates arithmetic or a transfer between two different
// currencies. This is a programmer or configuration error and is never retried.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// ErrInsufficientFunds is a business rejection: the debit exceeds the account
// balance plus its overdraft limit.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrAccountNotActive is a business rejection: the account is frozen, closed or dormant.
var ErrAccountNotActive = errors.New("account is not active")

// ErrInvalidAmount indicates a non-positive amount on a journal line or transaction.
var ErrInvalidAmount = errors.New("amount must be positive")

// ErrUnbalancedEntry indicates a journal entry whose debits do not equal its
// credits. Invariant violation; must never occur in correct code.
var ErrUnbalancedEntry = errors.New("journal entry debits do not equal credits")

// ErrAlreadyPosted indicates an attempt to post or mutate a journal entry that
// has already left Draft status.
var ErrAlreadyPosted = errors.New("journal entry already posted")

// ErrMissingGLConfiguration indicates a posting rule could not resolve one of
// its GL codes to an active leaf GL account. The whole operation fails closed.
var ErrMissingGLConfiguration = errors.New("required GL account configuration missing")

// ErrSameAccountTransfer indicates a transfer where source and destination are
// the same account.
var ErrSameAccountTransfer = errors.New("cannot transfer to the same account")

// ErrConcurrencyConflict indicates the persistence layer detected concurrent
// modification of an aggregate. Callers may re-fetch and retry once.
var ErrConcurrencyConflict = errors.New("concurrent modification detected")
