package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/playrivals/playrivals-backend/internal/models"
	"github.com/playrivals/playrivals-backend/pkg/database"
)

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `id, owner_user_id, game, region, game_mode, skill_tier,
	preferred_roles, language, mic_required, status, match_id, created_at, expires_at`

// Create inserts a new ticket.
func (r *TicketRepository) Create(ctx context.Context, t *models.MatchTicket) error {
	query := `
		INSERT INTO match_tickets
			(id, owner_user_id, game, region, game_mode, skill_tier,
			 preferred_roles, language, mic_required, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.OwnerUserID, t.Game, t.Region, t.GameMode, t.SkillTier,
		pq.Array(t.PreferredRoles), t.Language, t.MicRequired, t.Status,
		t.CreatedAt, t.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ticket: %w", err)
	}
	return nil
}

// FindByID returns the ticket, or (nil, nil) when it does not exist.
func (r *TicketRepository) FindByID(ctx context.Context, id string) (*models.MatchTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM match_tickets WHERE id = $1`

	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}
	return ticket, nil
}

// HasActiveByOwner reports whether the owner already has an active ticket.
func (r *TicketRepository) HasActiveByOwner(ctx context.Context, ownerUserID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM match_tickets
			WHERE owner_user_id = $1 AND status = 'active'
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, ownerUserID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active ticket: %w", err)
	}
	return exists, nil
}

// FindCandidates returns the oldest active tickets in a pool, excluding the
// owner's own.
func (r *TicketRepository) FindCandidates(ctx context.Context, game, region, gameMode, excludeOwner string, limit int) ([]models.MatchTicket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM match_tickets
		WHERE game = $1
		  AND region = $2
		  AND game_mode = $3
		  AND owner_user_id != $4
		  AND status = 'active'
		ORDER BY created_at ASC
		LIMIT $5
	`
	rows, err := r.db.QueryContext(ctx, query, game, region, gameMode, excludeOwner, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}
	defer rows.Close()

	return collectTickets(rows)
}

// ListOldestActive returns the oldest active tickets across all pools.
func (r *TicketRepository) ListOldestActive(ctx context.Context, limit int) ([]models.MatchTicket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM match_tickets
		WHERE status = 'active'
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tickets: %w", err)
	}
	defer rows.Close()

	return collectTickets(rows)
}

// CancelIfActive flips the ticket to cancelled only while it is still active.
func (r *TicketRepository) CancelIfActive(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE match_tickets
		SET status = 'cancelled'
		WHERE id = $1 AND status = 'active'
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to cancel ticket: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read cancel result: %w", err)
	}
	return affected == 1, nil
}

// ExpireStale batch-expires active tickets whose TTL has run out.
func (r *TicketRepository) ExpireStale(ctx context.Context, now time.Time, limit int) (int, error) {
	query := `
		UPDATE match_tickets
		SET status = 'expired'
		WHERE id IN (
			SELECT id FROM match_tickets
			WHERE status = 'active' AND expires_at <= $1
			ORDER BY expires_at ASC
			LIMIT $2
		)
	`
	res, err := r.db.ExecContext(ctx, query, now, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to expire tickets: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read expire result: %w", err)
	}
	return int(affected), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(row rowScanner) (*models.MatchTicket, error) {
	var t models.MatchTicket
	var roles pq.StringArray
	err := row.Scan(
		&t.ID,
		&t.OwnerUserID,
		&t.Game,
		&t.Region,
		&t.GameMode,
		&t.SkillTier,
		&roles,
		&t.Language,
		&t.MicRequired,
		&t.Status,
		&t.MatchID,
		&t.CreatedAt,
		&t.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	t.PreferredRoles = roles
	return &t, nil
}

func collectTickets(rows *sql.Rows) ([]models.MatchTicket, error) {
	var tickets []models.MatchTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}
	return tickets, nil
}
