package service

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/playrivals/playrivals-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type bracketFixture struct {
	tournaments *memTournamentStore
	matchStore  *memTournamentMatchStore
	notifier    *memNotifier
	svc         *BracketService
}

func newBracketFixture(t *testing.T, seed int64) *bracketFixture {
	t.Helper()
	matchStore := newMemTournamentMatchStore()
	tournaments := newMemTournamentStore(matchStore)
	notifier := newMemNotifier()
	return &bracketFixture{
		tournaments: tournaments,
		matchStore:  matchStore,
		notifier:    notifier,
		svc:         NewBracketService(tournaments, notifier, rand.NewSource(seed), zap.NewNop()),
	}
}

// registrationTournament stores a tournament with n registered participants.
func (f *bracketFixture) registrationTournament(t *testing.T, n int) *models.Tournament {
	t.Helper()
	now := time.Now().UTC()
	tournament := &models.Tournament{
		ID:                   fmt.Sprintf("tournament-%d", n),
		OrganizerUserID:      "org",
		Name:                 "Spring Open",
		Game:                 "rocket-league",
		Format:               models.FormatSingleElimination,
		MaxParticipants:      32,
		RegistrationDeadline: now.Add(time.Hour),
		StartDate:            now.Add(2 * time.Hour),
		Status:               models.TournamentStatusRegistration,
		CreatedAt:            now,
	}
	for i := 0; i < n; i++ {
		tournament.Participants = append(tournament.Participants, models.UserProfile{
			UserID:   fmt.Sprintf("user-%d", i),
			Username: fmt.Sprintf("player%d", i),
		})
	}
	require.NoError(t, f.tournaments.Create(context.Background(), tournament))
	return tournament
}

func expectedRounds(n int) int {
	rounds := 0
	for size := 1; size < n; size *= 2 {
		rounds++
	}
	return rounds
}

func TestSeedBracketShape(t *testing.T) {
	for n := 2; n <= 9; n++ {
		t.Run(fmt.Sprintf("%d participants", n), func(t *testing.T) {
			f := newBracketFixture(t, 1)
			tournament := f.registrationTournament(t, n)

			require.NoError(t, f.svc.Seed(context.Background(), "org", tournament.ID))

			stored, err := f.tournaments.FindByID(context.Background(), tournament.ID)
			require.NoError(t, err)
			assert.Equal(t, models.TournamentStatusActive, stored.Status)
			require.NotNil(t, stored.Bracket)

			bracket := stored.Bracket
			require.Len(t, bracket.Rounds, expectedRounds(n))

			round1 := bracket.Rounds[0]
			assert.Equal(t, 1, round1.Number)
			require.Len(t, round1.Matches, (n+1)/2)

			// Every participant appears in round 1 exactly once.
			seen := make(map[string]int)
			byes := 0
			for _, m := range round1.Matches {
				for _, p := range m.Participants {
					seen[p.UserID]++
				}
				if m.IsBye() {
					byes++
					require.NotNil(t, m.WinnerID)
					assert.Equal(t, m.Participants[0].UserID, *m.WinnerID)
				} else {
					require.Len(t, m.Participants, 2)
					assert.Nil(t, m.WinnerID)
				}
			}
			assert.Len(t, seen, n)
			for userID, count := range seen {
				assert.Equal(t, 1, count, "participant %s seeded more than once", userID)
			}
			assert.Equal(t, n%2, byes)

			// Later rounds are placeholders.
			for i, round := range bracket.Rounds[1:] {
				assert.Equal(t, i+2, round.Number)
				assert.Empty(t, round.Matches)
			}

			// One match record per round-1 slot, byes included.
			matches, err := f.matchStore.ListByTournament(context.Background(), tournament.ID)
			require.NoError(t, err)
			require.Len(t, matches, (n+1)/2)
			byeRecords := 0
			for _, m := range matches {
				assert.Equal(t, 1, m.RoundNumber)
				assert.Equal(t, models.TournamentMatchStatusActive, m.Status)
				if len(m.Participants) == 1 {
					byeRecords++
				} else {
					assert.Len(t, m.Participants, 2)
				}
			}
			assert.Equal(t, n%2, byeRecords)
		})
	}
}

func TestSeedBracketIsDeterministicPerSource(t *testing.T) {
	shapes := make([]*models.Bracket, 2)
	for run := 0; run < 2; run++ {
		f := newBracketFixture(t, 42)
		tournament := f.registrationTournament(t, 7)
		require.NoError(t, f.svc.Seed(context.Background(), "org", tournament.ID))

		stored, err := f.tournaments.FindByID(context.Background(), tournament.ID)
		require.NoError(t, err)
		shapes[run] = stored.Bracket
	}

	assert.Equal(t, shapes[0], shapes[1], "same source, same seeding")
}

func TestSeedBracketCreatesRecordForByeSlot(t *testing.T) {
	f := newBracketFixture(t, 1)
	tournament := f.registrationTournament(t, 3)

	require.NoError(t, f.svc.Seed(context.Background(), "org", tournament.ID))

	stored, err := f.tournaments.FindByID(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, stored.Bracket.Rounds[0].Matches, 2)

	matches, err := f.matchStore.ListByTournament(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, matches, 2, "every round-1 slot gets a record, the bye too")

	var bye *models.TournamentMatch
	for i := range matches {
		if len(matches[i].Participants) == 1 {
			bye = &matches[i]
		}
	}
	require.NotNil(t, bye)
	assert.Equal(t, models.TournamentMatchStatusActive, bye.Status)

	// The bracket slot for the bye already names its winner.
	for _, bm := range stored.Bracket.Rounds[0].Matches {
		if bm.MatchNumber == bye.MatchNumber {
			require.NotNil(t, bm.WinnerID)
			assert.Equal(t, bye.Participants[0].UserID, *bm.WinnerID)
		}
	}
}

func TestSeedBracketGuards(t *testing.T) {
	t.Run("unknown tournament", func(t *testing.T) {
		f := newBracketFixture(t, 1)
		err := f.svc.Seed(context.Background(), "org", "missing")
		assert.ErrorIs(t, err, ErrTournamentNotFound)
	})

	t.Run("not the organizer", func(t *testing.T) {
		f := newBracketFixture(t, 1)
		tournament := f.registrationTournament(t, 4)
		err := f.svc.Seed(context.Background(), "mallory", tournament.ID)
		assert.ErrorIs(t, err, ErrNotOrganizer)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("too few participants", func(t *testing.T) {
		f := newBracketFixture(t, 1)
		tournament := f.registrationTournament(t, 1)
		err := f.svc.Seed(context.Background(), "org", tournament.ID)
		assert.ErrorIs(t, err, ErrNotEnoughParticipants)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("already seeded", func(t *testing.T) {
		f := newBracketFixture(t, 1)
		tournament := f.registrationTournament(t, 4)
		require.NoError(t, f.svc.Seed(context.Background(), "org", tournament.ID))

		err := f.svc.Seed(context.Background(), "org", tournament.ID)
		assert.ErrorIs(t, err, ErrBracketAlreadySeeded)
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestSeedBracketNotifiesParticipants(t *testing.T) {
	f := newBracketFixture(t, 1)
	tournament := f.registrationTournament(t, 4)

	require.NoError(t, f.svc.Seed(context.Background(), "org", tournament.ID))

	events := f.notifier.byEvent("bracket_seeded")
	require.Len(t, events, 4)
	for _, e := range events {
		assert.Equal(t, tournament.ID, e.Payload["tournamentId"])
	}
}
