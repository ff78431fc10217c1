package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/playrivals/playrivals-backend/internal/models"
	"go.uber.org/zap"
)

// MatchService creates matches from ticket pairs with an at-most-once
// guarantee. The store transaction re-checks both tickets before committing,
// so any number of concurrent attempts on the same ticket produce at most one
// match. There is deliberately no lock between scheduler runs; overlapping
// runs both funnel through this check and the loser simply skips the pair.
type MatchService struct {
	matchStore MatchStore
	profiles   ProfileLookup
	notifier   Notifier
	logger     *zap.Logger
}

func NewMatchService(matchStore MatchStore, profiles ProfileLookup, notifier Notifier, logger *zap.Logger) *MatchService {
	return &MatchService{
		matchStore: matchStore,
		profiles:   profiles,
		notifier:   notifier,
		logger:     logger,
	}
}

// CreateFromTickets pairs two compatible tickets. Returns
// ErrTicketUnavailable when either ticket was consumed, cancelled or expired
// in the meantime; callers treat that as a lost race, not a failure.
func (s *MatchService) CreateFromTickets(ctx context.Context, a, b *models.MatchTicket) (*models.Match, error) {
	match := &models.Match{
		ID:        uuid.NewString(),
		Game:      a.Game,
		Region:    a.Region,
		GameMode:  a.GameMode,
		Language:  pairLanguage(a.Language, b.Language),
		Player1:   s.participant(ctx, a),
		Player2:   s.participant(ctx, b),
		Status:    models.MatchStatusCreated,
		CreatedAt: time.Now().UTC(),
	}

	paired, err := s.matchStore.CreatePair(ctx, match, a.ID, b.ID)
	if err != nil {
		return nil, fmt.Errorf("create pair: %w", err)
	}
	if !paired {
		s.logger.Debug("Pairing lost race, tickets no longer active",
			zap.String("ticket1", a.ID),
			zap.String("ticket2", b.ID))
		return nil, ErrTicketUnavailable
	}

	s.logger.Info("Match created",
		zap.String("matchId", match.ID),
		zap.String("game", match.Game),
		zap.String("region", match.Region),
		zap.String("gameMode", match.GameMode),
		zap.String("player1", a.OwnerUserID),
		zap.String("player2", b.OwnerUserID))

	// Notifications go out after the transaction committed; a delivery
	// failure must not undo the match.
	s.notifyMatched(ctx, match, match.Player1, match.Player2)
	s.notifyMatched(ctx, match, match.Player2, match.Player1)

	return match, nil
}

// Get returns a match by id.
func (s *MatchService) Get(ctx context.Context, id string) (*models.Match, error) {
	match, err := s.matchStore.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find match: %w", err)
	}
	if match == nil {
		return nil, ErrMatchNotFound
	}
	return match, nil
}

// participant snapshots the ticket owner's profile. The lookup is best
// effort; when the profile service is unreachable the match still carries the
// user id.
func (s *MatchService) participant(ctx context.Context, t *models.MatchTicket) models.MatchParticipant {
	p := models.MatchParticipant{
		UserID:    t.OwnerUserID,
		SkillTier: t.SkillTier,
		Profile:   models.UserProfile{UserID: t.OwnerUserID},
	}

	profile, err := s.profiles.Profile(ctx, t.OwnerUserID)
	if err != nil {
		s.logger.Warn("Profile lookup failed, using bare snapshot",
			zap.String("userId", t.OwnerUserID),
			zap.Error(err))
		return p
	}
	if profile != nil {
		p.Profile = *profile
	}
	return p
}

func (s *MatchService) notifyMatched(ctx context.Context, match *models.Match, recipient, opponent models.MatchParticipant) {
	err := s.notifier.Enqueue(ctx, "match_found", recipient.UserID, map[string]interface{}{
		"matchId":  match.ID,
		"game":     match.Game,
		"region":   match.Region,
		"gameMode": match.GameMode,
		"opponent": opponent.Profile.Username,
	})
	if err != nil {
		s.logger.Warn("Failed to enqueue match notification",
			zap.String("matchId", match.ID),
			zap.String("recipient", recipient.UserID),
			zap.Error(err))
	}
}

// pairLanguage picks the concrete language of the pair when one side accepts
// any.
func pairLanguage(a, b string) string {
	if a == models.LanguageAny {
		return b
	}
	return a
}
