package service

import (
	"context"
	"time"

	"github.com/playrivals/playrivals-backend/internal/models"
)

// The store interfaces below are what the services require from the backing
// store. The Postgres implementations live in internal/repository; tests run
// against in-memory fakes. Lookups return (nil, nil) when the record does not
// exist, conditional writes report whether they applied.

// TicketStore persists matchmaking tickets.
type TicketStore interface {
	Create(ctx context.Context, t *models.MatchTicket) error
	FindByID(ctx context.Context, id string) (*models.MatchTicket, error)
	HasActiveByOwner(ctx context.Context, ownerUserID string) (bool, error)

	// FindCandidates returns up to limit active tickets in the same
	// (game, region, gameMode) pool excluding the owner's own, oldest first.
	FindCandidates(ctx context.Context, game, region, gameMode, excludeOwner string, limit int) ([]models.MatchTicket, error)

	// ListOldestActive returns up to limit active tickets across all pools,
	// oldest first.
	ListOldestActive(ctx context.Context, limit int) ([]models.MatchTicket, error)

	// CancelIfActive transitions the ticket to cancelled only if it is still
	// active; it reports whether the transition applied.
	CancelIfActive(ctx context.Context, id string) (bool, error)

	// ExpireStale expires up to limit active tickets whose expiresAt is not
	// after now and returns how many it expired.
	ExpireStale(ctx context.Context, now time.Time, limit int) (int, error)
}

// MatchStore persists matches created from ticket pairs.
type MatchStore interface {
	// CreatePair atomically re-reads both tickets, inserts the match and
	// flips both tickets to matched. It reports paired=false without error
	// when either ticket is gone or no longer active, which is how a lost
	// race with a concurrent pairing attempt shows up.
	CreatePair(ctx context.Context, match *models.Match, ticketID1, ticketID2 string) (paired bool, err error)
	FindByID(ctx context.Context, id string) (*models.Match, error)
}

// TournamentStore persists tournaments. The validate callbacks run inside the
// store transaction against the freshly locked record, so capacity, dedup and
// state checks observe a consistent view.
type TournamentStore interface {
	Create(ctx context.Context, t *models.Tournament) error
	FindByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, limit, offset int) ([]models.Tournament, error)

	// AddParticipant appends p after validate passes on the current record.
	AddParticipant(ctx context.Context, id string, p models.UserProfile, validate func(*models.Tournament) error) error

	// ActivateWithBracket calls build on the current record; on success it
	// persists the returned bracket, creates the returned tournament matches
	// and flips the tournament to active, all in one transaction.
	ActivateWithBracket(ctx context.Context, id string, build func(*models.Tournament) (*models.Bracket, []*models.TournamentMatch, error)) error
}

// TournamentMatchStore persists per-round tournament matches.
type TournamentMatchStore interface {
	FindByID(ctx context.Context, tournamentID, matchID string) (*models.TournamentMatch, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]models.TournamentMatch, error)

	// UpdateIfStatus writes m only if the stored record is still in from,
	// reporting whether the write applied.
	UpdateIfStatus(ctx context.Context, m *models.TournamentMatch, from models.TournamentMatchStatus) (bool, error)
}

// ProfileLookup reads identity snapshots from the external user profile
// service. Never written to from this backend.
type ProfileLookup interface {
	Profile(ctx context.Context, userID string) (*models.UserProfile, error)
}

// Notifier delivers best-effort events. Failures are logged by callers and
// never propagated; nothing is retried.
type Notifier interface {
	Enqueue(ctx context.Context, event, recipientID string, payload map[string]interface{}) error
}
