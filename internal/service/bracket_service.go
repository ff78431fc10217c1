package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/playrivals/playrivals-backend/internal/models"
	"go.uber.org/zap"
)

// BracketService seeds the single-elimination bracket of a tournament. The
// random source is injected so seeding is reproducible under test.
type BracketService struct {
	tournamentStore TournamentStore
	notifier        Notifier
	rng             *rand.Rand
	logger          *zap.Logger
}

func NewBracketService(tournamentStore TournamentStore, notifier Notifier, src rand.Source, logger *zap.Logger) *BracketService {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &BracketService{
		tournamentStore: tournamentStore,
		notifier:        notifier,
		rng:             rand.New(src),
		logger:          logger,
	}
}

// Seed shuffles the participants, builds round 1 and the placeholder rounds,
// creates one tournament match per round-1 slot and flips the tournament to
// active. Organizer only, once per tournament. Later rounds
// stay empty; advancing winners is the organizer's job, not this service's.
func (s *BracketService) Seed(ctx context.Context, callerID, tournamentID string) error {
	var seeded *models.Bracket
	var participants []models.UserProfile

	err := s.tournamentStore.ActivateWithBracket(ctx, tournamentID,
		func(t *models.Tournament) (*models.Bracket, []*models.TournamentMatch, error) {
			if t == nil {
				return nil, nil, ErrTournamentNotFound
			}
			if t.OrganizerUserID != callerID {
				return nil, nil, ErrNotOrganizer
			}
			if t.Status != models.TournamentStatusRegistration || t.Bracket != nil {
				return nil, nil, ErrBracketAlreadySeeded
			}
			if len(t.Participants) < 2 {
				return nil, nil, ErrNotEnoughParticipants
			}

			bracket := s.generate(t.Format, t.Participants)
			matches := buildRoundMatches(t.ID, bracket.Rounds[0])

			seeded = bracket
			participants = t.Participants
			return bracket, matches, nil
		})
	if err != nil {
		return err
	}

	s.logger.Info("Bracket seeded",
		zap.String("tournamentId", tournamentID),
		zap.Int("participants", len(participants)),
		zap.Int("rounds", len(seeded.Rounds)))

	for _, p := range participants {
		if err := s.notifier.Enqueue(ctx, "bracket_seeded", p.UserID, map[string]interface{}{
			"tournamentId": tournamentID,
			"rounds":       len(seeded.Rounds),
		}); err != nil {
			s.logger.Warn("Failed to enqueue bracket notification",
				zap.String("tournamentId", tournamentID),
				zap.String("recipient", p.UserID),
				zap.Error(err))
		}
	}

	return nil
}

// generate builds the bracket tree: a shuffled round 1 with consecutive
// pairing, a bye for the odd participant out, and ceil(log2(n)) rounds in
// total with empty placeholders after round 1.
func (s *BracketService) generate(format string, participants []models.UserProfile) *models.Bracket {
	shuffled := make([]models.UserProfile, len(participants))
	copy(shuffled, participants)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	round1 := models.Round{Number: 1}
	for i := 0; i < len(shuffled); i += 2 {
		match := models.BracketMatch{MatchNumber: len(round1.Matches) + 1}
		if i+1 < len(shuffled) {
			match.Participants = []models.UserProfile{shuffled[i], shuffled[i+1]}
		} else {
			// Odd participant out advances unopposed.
			winner := shuffled[i].UserID
			match.Participants = []models.UserProfile{shuffled[i]}
			match.WinnerID = &winner
		}
		round1.Matches = append(round1.Matches, match)
	}

	bracket := &models.Bracket{
		Format: format,
		Rounds: []models.Round{round1},
	}
	for n := 2; n <= totalRounds(len(shuffled)); n++ {
		bracket.Rounds = append(bracket.Rounds, models.Round{Number: n})
	}
	return bracket
}

// buildRoundMatches creates one match record per bracket slot in the round,
// byes included. A bye record carries its single participant; the bracket
// slot already names the pre-set winner.
func buildRoundMatches(tournamentID string, round models.Round) []*models.TournamentMatch {
	now := time.Now().UTC()
	var matches []*models.TournamentMatch
	for _, bm := range round.Matches {
		matches = append(matches, &models.TournamentMatch{
			ID:           uuid.NewString(),
			TournamentID: tournamentID,
			RoundNumber:  round.Number,
			MatchNumber:  bm.MatchNumber,
			Participants: bm.Participants,
			Status:       models.TournamentMatchStatusActive,
			CreatedAt:    now,
		})
	}
	return matches
}

// totalRounds is ceil(log2(n)) computed without floating point.
func totalRounds(n int) int {
	rounds := 0
	for size := 1; size < n; size *= 2 {
		rounds++
	}
	return rounds
}
