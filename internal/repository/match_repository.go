package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/playrivals/playrivals-backend/internal/models"
	"github.com/playrivals/playrivals-backend/pkg/database"
)

type MatchRepository struct {
	db *database.DB
}

func NewMatchRepository(db *database.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// CreatePair inserts the match and flips both tickets to matched in one
// transaction. Both tickets are re-read with row locks first; if either is
// gone or no longer active the transaction rolls back and paired=false is
// returned. This is the only write path that consumes tickets, which is what
// makes pairing at-most-once even when the immediate trigger and scheduler
// passes overlap.
func (r *MatchRepository) CreatePair(ctx context.Context, match *models.Match, ticketID1, ticketID2 string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock in id order so two concurrent pair attempts on the same tickets
	// cannot deadlock each other.
	first, second := ticketID1, ticketID2
	if second < first {
		first, second = second, first
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT status FROM match_tickets
		WHERE id IN ($1, $2)
		ORDER BY id
		FOR UPDATE
	`, first, second)
	if err != nil {
		return false, fmt.Errorf("failed to lock tickets: %w", err)
	}

	activeCount, rowCount := 0, 0
	for rows.Next() {
		var status models.TicketStatus
		if err := rows.Scan(&status); err != nil {
			rows.Close()
			return false, fmt.Errorf("failed to scan ticket status: %w", err)
		}
		rowCount++
		if status == models.TicketStatusActive {
			activeCount++
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("failed to iterate ticket locks: %w", err)
	}

	if rowCount != 2 || activeCount != 2 {
		return false, nil
	}

	player1, err := json.Marshal(match.Player1)
	if err != nil {
		return false, fmt.Errorf("failed to marshal player1: %w", err)
	}
	player2, err := json.Marshal(match.Player2)
	if err != nil {
		return false, fmt.Errorf("failed to marshal player2: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO matches
			(id, game, region, game_mode, language, player1, player2, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, match.ID, match.Game, match.Region, match.GameMode, match.Language,
		player1, player2, match.Status, match.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert match: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE match_tickets
		SET status = 'matched', match_id = $1
		WHERE id IN ($2, $3)
	`, match.ID, ticketID1, ticketID2)
	if err != nil {
		return false, fmt.Errorf("failed to mark tickets matched: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit pair: %w", err)
	}
	return true, nil
}

// FindByID returns the match, or (nil, nil) when it does not exist.
func (r *MatchRepository) FindByID(ctx context.Context, id string) (*models.Match, error) {
	query := `
		SELECT id, game, region, game_mode, language, player1, player2, status, created_at
		FROM matches
		WHERE id = $1
	`
	var m models.Match
	var player1, player2 []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID,
		&m.Game,
		&m.Region,
		&m.GameMode,
		&m.Language,
		&player1,
		&player2,
		&m.Status,
		&m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find match: %w", err)
	}

	if err := json.Unmarshal(player1, &m.Player1); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player1: %w", err)
	}
	if err := json.Unmarshal(player2, &m.Player2); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player2: %w", err)
	}
	return &m, nil
}
