package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/playrivals/playrivals-backend/internal/models"
	"github.com/playrivals/playrivals-backend/pkg/database"
)

// UserProfileRepository reads identity snapshots from the profile table owned
// by the account service. This backend never writes to it.
type UserProfileRepository struct {
	db *database.DB
}

func NewUserProfileRepository(db *database.DB) *UserProfileRepository {
	return &UserProfileRepository{db: db}
}

// Profile returns the profile snapshot, or (nil, nil) when the user is
// unknown.
func (r *UserProfileRepository) Profile(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := `
		SELECT user_id, username, display_name, avatar_url, stats
		FROM user_profiles
		WHERE user_id = $1
	`
	var p models.UserProfile
	var avatar sql.NullString
	var stats []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.Username,
		&p.DisplayName,
		&avatar,
		&stats,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user profile: %w", err)
	}

	p.AvatarURL = avatar.String
	if len(stats) > 0 {
		if err := json.Unmarshal(stats, &p.Stats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
		}
	}
	return &p, nil
}
