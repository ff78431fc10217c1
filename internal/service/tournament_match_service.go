package service

import (
	"context"
	"fmt"
	"time"

	"github.com/playrivals/playrivals-backend/internal/models"
	"go.uber.org/zap"
)

// ReportMatchParams carry a participant's claimed result.
type ReportMatchParams struct {
	WinnerID string `json:"winnerId"`
	Score    string `json:"score"`
	Proof    string `json:"proof"`
}

// TournamentMatchService drives the per-match report/verify state machine:
// active -> reported -> completed | disputed. Completed and disputed are
// terminal; nothing here advances winners into the next round.
type TournamentMatchService struct {
	tournamentStore TournamentStore
	matchStore      TournamentMatchStore
	notifier        Notifier
	logger          *zap.Logger
}

func NewTournamentMatchService(
	tournamentStore TournamentStore,
	matchStore TournamentMatchStore,
	notifier Notifier,
	logger *zap.Logger,
) *TournamentMatchService {
	return &TournamentMatchService{
		tournamentStore: tournamentStore,
		matchStore:      matchStore,
		notifier:        notifier,
		logger:          logger,
	}
}

// Report files a result for an active match. The caller must play in the
// match and the claimed winner must be one of its participants.
func (s *TournamentMatchService) Report(ctx context.Context, callerID, tournamentID, matchID string, params ReportMatchParams) (*models.TournamentMatch, error) {
	tournament, match, err := s.load(ctx, tournamentID, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasParticipant(callerID) {
		return nil, ErrNotMatchParticipant
	}
	if match.Status != models.TournamentMatchStatusActive {
		return nil, ErrMatchNotActive
	}
	if !match.HasParticipant(params.WinnerID) {
		return nil, ErrWinnerNotParticipant
	}

	match.Status = models.TournamentMatchStatusReported
	match.Result = &models.MatchResult{
		ReportedBy:         callerID,
		WinnerID:           params.WinnerID,
		Score:              params.Score,
		Proof:              params.Proof,
		ReportedAt:         time.Now().UTC(),
		VerificationStatus: models.VerificationPending,
	}

	updated, err := s.matchStore.UpdateIfStatus(ctx, match, models.TournamentMatchStatusActive)
	if err != nil {
		return nil, fmt.Errorf("report match: %w", err)
	}
	if !updated {
		// Another participant reported first.
		return nil, ErrMatchNotActive
	}

	s.logger.Info("Match result reported",
		zap.String("tournamentId", tournamentID),
		zap.String("matchId", matchID),
		zap.String("reportedBy", callerID),
		zap.String("winnerId", params.WinnerID))

	s.notify(ctx, "match_reported", tournament.OrganizerUserID, map[string]interface{}{
		"tournamentId": tournamentID,
		"matchId":      matchID,
		"reportedBy":   callerID,
	})

	return match, nil
}

// Verify settles a reported match. Approval completes it, rejection marks it
// disputed; both are terminal. Organizer only.
func (s *TournamentMatchService) Verify(ctx context.Context, callerID, tournamentID, matchID string, approved bool) (*models.TournamentMatch, error) {
	tournament, match, err := s.load(ctx, tournamentID, matchID)
	if err != nil {
		return nil, err
	}
	if tournament.OrganizerUserID != callerID {
		return nil, ErrNotOrganizer
	}
	if match.Status != models.TournamentMatchStatusReported || match.Result == nil {
		return nil, ErrMatchNotReported
	}

	now := time.Now().UTC()
	match.Result.VerifiedBy = &callerID
	match.Result.VerifiedAt = &now
	if approved {
		match.Status = models.TournamentMatchStatusCompleted
		match.Result.VerificationStatus = models.VerificationVerified
	} else {
		match.Status = models.TournamentMatchStatusDisputed
		match.Result.VerificationStatus = models.VerificationDisputed
	}

	updated, err := s.matchStore.UpdateIfStatus(ctx, match, models.TournamentMatchStatusReported)
	if err != nil {
		return nil, fmt.Errorf("verify match: %w", err)
	}
	if !updated {
		return nil, ErrMatchNotReported
	}

	s.logger.Info("Match result verified",
		zap.String("tournamentId", tournamentID),
		zap.String("matchId", matchID),
		zap.Bool("approved", approved))

	event := "match_verified"
	if !approved {
		event = "match_disputed"
	}
	for _, p := range match.Participants {
		s.notify(ctx, event, p.UserID, map[string]interface{}{
			"tournamentId": tournamentID,
			"matchId":      matchID,
			"winnerId":     match.Result.WinnerID,
		})
	}

	return match, nil
}

// ListByTournament returns all playable matches of a tournament.
func (s *TournamentMatchService) ListByTournament(ctx context.Context, tournamentID string) ([]models.TournamentMatch, error) {
	tournament, err := s.tournamentStore.FindByID(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("find tournament: %w", err)
	}
	if tournament == nil {
		return nil, ErrTournamentNotFound
	}
	matches, err := s.matchStore.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list tournament matches: %w", err)
	}
	return matches, nil
}

func (s *TournamentMatchService) load(ctx context.Context, tournamentID, matchID string) (*models.Tournament, *models.TournamentMatch, error) {
	tournament, err := s.tournamentStore.FindByID(ctx, tournamentID)
	if err != nil {
		return nil, nil, fmt.Errorf("find tournament: %w", err)
	}
	if tournament == nil {
		return nil, nil, ErrTournamentNotFound
	}

	match, err := s.matchStore.FindByID(ctx, tournamentID, matchID)
	if err != nil {
		return nil, nil, fmt.Errorf("find tournament match: %w", err)
	}
	if match == nil {
		return nil, nil, ErrTournamentMatchNotFound
	}
	return tournament, match, nil
}

func (s *TournamentMatchService) notify(ctx context.Context, event, recipientID string, payload map[string]interface{}) {
	if err := s.notifier.Enqueue(ctx, event, recipientID, payload); err != nil {
		s.logger.Warn("Failed to enqueue tournament notification",
			zap.String("event", event),
			zap.String("recipient", recipientID),
			zap.Error(err))
	}
}
