package service

import "errors"

// Common service errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("resource not found")
)

// User service specific errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserBanned         = errors.New("user is banned")
)

// Duel service specific errors
var (
	ErrDuelNotFound           = errors.New("duel not found")
	ErrUsersNotFound          = errors.New("users not found")
	ErrNoProblemsAvailable    = errors.New("no problems available to create a duel")
	ErrNoReferenceSolution    = errors.New("no reference solution found for this problem")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrAlreadyStarted         = errors.New("duel already started")
	ErrCannotJoinOwnDuel      = errors.New("cannot join your own duel")
	ErrDuelNotInProgress      = errors.New("duel is not in progress")
	ErrNotAParticipant        = errors.New("not a participant of this duel")
	ErrOnlyCreatorCanCancel   = errors.New("only the creator can cancel the duel")
	ErrCannotCancelNotWaiting = errors.New("cannot cancel a duel that is not waiting")
	ErrJudgeExecutionFailed   = errors.New("judge execution failed")
)
