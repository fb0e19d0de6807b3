package models

import "errors"

var (
	ErrTaskNotFound          = errors.New("task not found")
	ErrProfileNotFound       = errors.New("user profile not found")
	ErrTaskNotActive         = errors.New("task not active")
	ErrTaskNotPaused         = errors.New("task not paused")
	ErrTaskAlreadyDeleted    = errors.New("task already deleted")
	ErrActionKindMismatch    = errors.New("action kind does not match task")
	ErrDuplicateCompletion   = errors.New("task already completed by this user")
	ErrSelfCompletion        = errors.New("creators cannot complete their own task")
	ErrNoRemainingActions    = errors.New("task has no remaining actions")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrNoAvailableTasks      = errors.New("no available tasks")
	ErrMissingDeletionReason = errors.New("deletion reason is required")
	ErrUnknownDeletionReason = errors.New("unknown deletion reason")
	ErrReasonNotAllowed      = errors.New("deletion reason not allowed for this actor")
	ErrNotTaskOwner          = errors.New("task belongs to another user")
	ErrInvalidActionKind     = errors.New("invalid action kind")
	ErrInvalidSocialNetwork  = errors.New("invalid social network")
	ErrInvalidTask           = errors.New("invalid task")
	ErrTargetLookupFailed    = errors.New("target lookup failed")
	ErrDuplicateReport       = errors.New("task already reported by this user")
	ErrDuplicatePayment      = errors.New("payment already credited")
	ErrInvalidAmount         = errors.New("invalid amount")
)
