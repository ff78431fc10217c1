package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/playrivals/playrivals-backend/internal/models"
	"github.com/playrivals/playrivals-backend/pkg/database"
)

type TournamentMatchRepository struct {
	db *database.DB
}

func NewTournamentMatchRepository(db *database.DB) *TournamentMatchRepository {
	return &TournamentMatchRepository{db: db}
}

const tournamentMatchColumns = `id, tournament_id, round_number, match_number,
	participants, status, result, created_at`

// FindByID returns the match scoped to its tournament, or (nil, nil) when it
// does not exist.
func (r *TournamentMatchRepository) FindByID(ctx context.Context, tournamentID, matchID string) (*models.TournamentMatch, error) {
	query := `
		SELECT ` + tournamentMatchColumns + `
		FROM tournament_matches
		WHERE tournament_id = $1 AND id = $2
	`
	m, err := scanTournamentMatch(r.db.QueryRowContext(ctx, query, tournamentID, matchID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tournament match: %w", err)
	}
	return m, nil
}

// ListByTournament returns all matches of a tournament in bracket order.
func (r *TournamentMatchRepository) ListByTournament(ctx context.Context, tournamentID string) ([]models.TournamentMatch, error) {
	query := `
		SELECT ` + tournamentMatchColumns + `
		FROM tournament_matches
		WHERE tournament_id = $1
		ORDER BY round_number ASC, match_number ASC
	`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament matches: %w", err)
	}
	defer rows.Close()

	var matches []models.TournamentMatch
	for rows.Next() {
		m, err := scanTournamentMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament match: %w", err)
		}
		matches = append(matches, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tournament matches: %w", err)
	}
	return matches, nil
}

// UpdateIfStatus writes status and result only while the stored record is
// still in from. The status guard is what serializes competing reports and
// verifications.
func (r *TournamentMatchRepository) UpdateIfStatus(ctx context.Context, m *models.TournamentMatch, from models.TournamentMatchStatus) (bool, error) {
	result, err := json.Marshal(m.Result)
	if err != nil {
		return false, fmt.Errorf("failed to marshal result: %w", err)
	}

	query := `
		UPDATE tournament_matches
		SET status = $1, result = $2
		WHERE tournament_id = $3 AND id = $4 AND status = $5
	`
	res, err := r.db.ExecContext(ctx, query, m.Status, result, m.TournamentID, m.ID, from)
	if err != nil {
		return false, fmt.Errorf("failed to update tournament match: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read update result: %w", err)
	}
	return affected == 1, nil
}

func scanTournamentMatch(row rowScanner) (*models.TournamentMatch, error) {
	var m models.TournamentMatch
	var participants []byte
	var result []byte
	err := row.Scan(
		&m.ID,
		&m.TournamentID,
		&m.RoundNumber,
		&m.MatchNumber,
		&participants,
		&m.Status,
		&result,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(participants, &m.Participants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal participants: %w", err)
	}
	if len(result) > 0 {
		m.Result = &models.MatchResult{}
		if err := json.Unmarshal(result, m.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
	}
	return &m, nil
}
