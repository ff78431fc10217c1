package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/playrivals/playrivals-backend/internal/models"
	"github.com/playrivals/playrivals-backend/pkg/database"
)

type TournamentRepository struct {
	db *database.DB
}

func NewTournamentRepository(db *database.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

const tournamentColumns = `id, organizer_user_id, name, game, format, max_participants,
	registration_deadline, start_date, participants, status, bracket, created_at`

// Create inserts a tournament open for registration.
func (r *TournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	participants, err := json.Marshal(t.Participants)
	if err != nil {
		return fmt.Errorf("failed to marshal participants: %w", err)
	}

	query := `
		INSERT INTO tournaments
			(id, organizer_user_id, name, game, format, max_participants,
			 registration_deadline, start_date, participants, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		t.ID, t.OrganizerUserID, t.Name, t.Game, t.Format, t.MaxParticipants,
		t.RegistrationDeadline, t.StartDate, participants, t.Status, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tournament: %w", err)
	}
	return nil
}

// FindByID returns the tournament, or (nil, nil) when it does not exist.
func (r *TournamentRepository) FindByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tournament: %w", err)
	}
	return t, nil
}

// List returns a page of tournaments, newest first.
func (r *TournamentRepository) List(ctx context.Context, limit, offset int) ([]models.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []models.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", err)
		}
		tournaments = append(tournaments, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tournaments: %w", err)
	}
	return tournaments, nil
}

// AddParticipant appends p to the participant list after validate accepts the
// locked record. The read, the check and the append commit as one unit, so a
// full or closed tournament can never gain a participant through a stale
// read.
func (r *TournamentRepository) AddParticipant(ctx context.Context, id string, p models.UserProfile, validate func(*models.Tournament) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	t, err := lockTournament(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := validate(t); err != nil {
		return err
	}

	t.Participants = append(t.Participants, p)
	participants, err := json.Marshal(t.Participants)
	if err != nil {
		return fmt.Errorf("failed to marshal participants: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE tournaments SET participants = $1 WHERE id = $2`,
		participants, id,
	); err != nil {
		return fmt.Errorf("failed to update participants: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit join: %w", err)
	}
	return nil
}

// ActivateWithBracket persists the bracket produced by build, inserts the
// playable round matches and flips the tournament to active, atomically.
func (r *TournamentRepository) ActivateWithBracket(ctx context.Context, id string, build func(*models.Tournament) (*models.Bracket, []*models.TournamentMatch, error)) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	t, err := lockTournament(ctx, tx, id)
	if err != nil {
		return err
	}

	bracket, matches, err := build(t)
	if err != nil {
		return err
	}

	bracketJSON, err := json.Marshal(bracket)
	if err != nil {
		return fmt.Errorf("failed to marshal bracket: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE tournaments SET bracket = $1, status = $2 WHERE id = $3`,
		bracketJSON, models.TournamentStatusActive, id,
	); err != nil {
		return fmt.Errorf("failed to store bracket: %w", err)
	}

	for _, m := range matches {
		participants, err := json.Marshal(m.Participants)
		if err != nil {
			return fmt.Errorf("failed to marshal match participants: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tournament_matches
				(id, tournament_id, round_number, match_number, participants, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, m.ID, m.TournamentID, m.RoundNumber, m.MatchNumber,
			participants, m.Status, m.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert tournament match: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bracket: %w", err)
	}
	return nil
}

// lockTournament reads the row under FOR UPDATE. A missing tournament yields
// (nil, nil) so the caller's validate sees the absence.
func lockTournament(ctx context.Context, tx *sql.Tx, id string) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`

	t, err := scanTournament(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock tournament: %w", err)
	}
	return t, nil
}

func scanTournament(row rowScanner) (*models.Tournament, error) {
	var t models.Tournament
	var participants []byte
	var bracket []byte
	err := row.Scan(
		&t.ID,
		&t.OrganizerUserID,
		&t.Name,
		&t.Game,
		&t.Format,
		&t.MaxParticipants,
		&t.RegistrationDeadline,
		&t.StartDate,
		&participants,
		&t.Status,
		&bracket,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(participants, &t.Participants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal participants: %w", err)
	}
	if len(bracket) > 0 {
		t.Bracket = &models.Bracket{}
		if err := json.Unmarshal(bracket, t.Bracket); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bracket: %w", err)
		}
	}
	return &t, nil
}
