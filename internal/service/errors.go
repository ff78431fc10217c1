package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every caller-facing operation fails with an error that wraps
// exactly one of these, so transports can map the kind without knowing the
// specific failure.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrInternal        = errors.New("internal error")
)

// Ticket errors
var (
	ErrTicketNotFound  = fmt.Errorf("%w: ticket does not exist", ErrNotFound)
	ErrDuplicateTicket = fmt.Errorf("%w: owner already has an active ticket", ErrConflict)
	ErrTicketNotActive = fmt.Errorf("%w: ticket is not active", ErrInvalidState)
	ErrNotTicketOwner  = fmt.Errorf("%w: caller does not own this ticket", ErrForbidden)

	// ErrTicketUnavailable marks a lost pairing race. It is swallowed by the
	// immediate trigger and the scheduler and never reaches a caller.
	ErrTicketUnavailable = errors.New("ticket no longer available for pairing")
)

// Tournament errors
var (
	ErrTournamentNotFound    = fmt.Errorf("%w: tournament does not exist", ErrNotFound)
	ErrRegistrationClosed    = fmt.Errorf("%w: registration is closed", ErrInvalidState)
	ErrTournamentFull        = fmt.Errorf("%w: tournament is full", ErrConflict)
	ErrAlreadyJoined         = fmt.Errorf("%w: user already joined", ErrConflict)
	ErrNotOrganizer          = fmt.Errorf("%w: caller is not the tournament organizer", ErrForbidden)
	ErrBracketAlreadySeeded  = fmt.Errorf("%w: bracket has already been seeded", ErrInvalidState)
	ErrNotEnoughParticipants = fmt.Errorf("%w: at least two participants required", ErrInvalidState)
)

// Tournament match errors
var (
	ErrTournamentMatchNotFound = fmt.Errorf("%w: tournament match does not exist", ErrNotFound)
	ErrMatchNotFound           = fmt.Errorf("%w: match does not exist", ErrNotFound)
	ErrNotMatchParticipant     = fmt.Errorf("%w: caller is not a participant of this match", ErrForbidden)
	ErrMatchNotActive          = fmt.Errorf("%w: match is not awaiting a report", ErrInvalidState)
	ErrMatchNotReported        = fmt.Errorf("%w: match has no pending report", ErrInvalidState)
	ErrWinnerNotParticipant    = fmt.Errorf("%w: winner must be one of the match participants", ErrInvalidInput)
)
