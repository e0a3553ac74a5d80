package service

import "errors"

// Sentinel errors surfaced to the dispatch layer. Callers classify with
// errors.Is; everything else is treated as a storage failure.
var (
	// ErrInsufficientBalance is returned when a debit would take the
	// balance below zero. No mutation occurs.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAlreadyCheckedIn is returned when a user checks in twice on
	// the same calendar day. Expected and non-fatal.
	ErrAlreadyCheckedIn = errors.New("already checked in today")

	// ErrUserNotFound is returned when a mutation targets a user row
	// that does not exist. Read operations never return it: a user
	// never seen reads as zero balance.
	ErrUserNotFound = errors.New("user not found")
)
