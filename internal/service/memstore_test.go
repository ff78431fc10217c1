package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/playrivals/playrivals-backend/internal/models"
)

// In-memory store fakes. One mutex per fake stands in for the store
// transaction: every method runs atomically, the same consistency the
// Postgres repositories get from BeginTx + row locks.

type memTicketStore struct {
	mu      sync.Mutex
	tickets map[string]*models.MatchTicket
}

func newMemTicketStore() *memTicketStore {
	return &memTicketStore{tickets: make(map[string]*models.MatchTicket)}
}

func (s *memTicketStore) Create(_ context.Context, t *models.MatchTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *t
	s.tickets[t.ID] = &clone
	return nil
}

func (s *memTicketStore) FindByID(_ context.Context, id string) (*models.MatchTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, nil
	}
	clone := *t
	return &clone, nil
}

func (s *memTicketStore) HasActiveByOwner(_ context.Context, ownerUserID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.OwnerUserID == ownerUserID && t.Status == models.TicketStatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (s *memTicketStore) FindCandidates(_ context.Context, game, region, gameMode, excludeOwner string, limit int) ([]models.MatchTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.MatchTicket
	for _, t := range s.tickets {
		if t.Status != models.TicketStatusActive ||
			t.Game != game || t.Region != region || t.GameMode != gameMode ||
			t.OwnerUserID == excludeOwner {
			continue
		}
		out = append(out, *t)
	}
	sortTicketsByAge(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memTicketStore) ListOldestActive(_ context.Context, limit int) ([]models.MatchTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.MatchTicket
	for _, t := range s.tickets {
		if t.Status == models.TicketStatusActive {
			out = append(out, *t)
		}
	}
	sortTicketsByAge(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memTicketStore) CancelIfActive(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok || t.Status != models.TicketStatusActive {
		return false, nil
	}
	t.Status = models.TicketStatusCancelled
	return true, nil
}

func (s *memTicketStore) ExpireStale(_ context.Context, now time.Time, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expired := 0
	for _, t := range s.tickets {
		if expired >= limit {
			break
		}
		if t.Status == models.TicketStatusActive && !t.ExpiresAt.After(now) {
			t.Status = models.TicketStatusExpired
			expired++
		}
	}
	return expired, nil
}

func sortTicketsByAge(tickets []models.MatchTicket) {
	sort.Slice(tickets, func(i, j int) bool {
		if tickets[i].CreatedAt.Equal(tickets[j].CreatedAt) {
			return tickets[i].ID < tickets[j].ID
		}
		return tickets[i].CreatedAt.Before(tickets[j].CreatedAt)
	})
}

type memMatchStore struct {
	tickets  *memTicketStore
	mu       sync.Mutex
	matches  map[string]*models.Match
	failPair bool
}

func newMemMatchStore(tickets *memTicketStore) *memMatchStore {
	return &memMatchStore{tickets: tickets, matches: make(map[string]*models.Match)}
}

func (s *memMatchStore) CreatePair(_ context.Context, match *models.Match, ticketID1, ticketID2 string) (bool, error) {
	if s.failPair {
		return false, errors.New("store unavailable")
	}

	s.tickets.mu.Lock()
	defer s.tickets.mu.Unlock()

	t1, ok1 := s.tickets.tickets[ticketID1]
	t2, ok2 := s.tickets.tickets[ticketID2]
	if !ok1 || !ok2 ||
		t1.Status != models.TicketStatusActive ||
		t2.Status != models.TicketStatusActive {
		return false, nil
	}

	t1.Status = models.TicketStatusMatched
	t1.MatchID = &match.ID
	t2.Status = models.TicketStatusMatched
	t2.MatchID = &match.ID

	s.mu.Lock()
	clone := *match
	s.matches[match.ID] = &clone
	s.mu.Unlock()
	return true, nil
}

func (s *memMatchStore) FindByID(_ context.Context, id string) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, nil
	}
	clone := *m
	return &clone, nil
}

func (s *memMatchStore) all() []models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Match
	for _, m := range s.matches {
		out = append(out, *m)
	}
	return out
}

type memTournamentStore struct {
	mu          sync.Mutex
	tournaments map[string]*models.Tournament
	matchStore  *memTournamentMatchStore
}

func newMemTournamentStore(matchStore *memTournamentMatchStore) *memTournamentStore {
	return &memTournamentStore{
		tournaments: make(map[string]*models.Tournament),
		matchStore:  matchStore,
	}
}

func (s *memTournamentStore) Create(_ context.Context, t *models.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments[t.ID] = cloneTournament(t)
	return nil
}

func (s *memTournamentStore) FindByID(_ context.Context, id string) (*models.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournaments[id]
	if !ok {
		return nil, nil
	}
	return cloneTournament(t), nil
}

func (s *memTournamentStore) List(_ context.Context, limit, offset int) ([]models.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Tournament
	for _, t := range s.tournaments {
		out = append(out, *cloneTournament(t))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memTournamentStore) AddParticipant(_ context.Context, id string, p models.UserProfile, validate func(*models.Tournament) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tournaments[id]
	if err := validate(cloneMaybe(t)); err != nil {
		return err
	}
	t.Participants = append(t.Participants, p)
	return nil
}

func (s *memTournamentStore) ActivateWithBracket(_ context.Context, id string, build func(*models.Tournament) (*models.Bracket, []*models.TournamentMatch, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tournaments[id]
	bracket, matches, err := build(cloneMaybe(t))
	if err != nil {
		return err
	}
	t.Bracket = bracket
	t.Status = models.TournamentStatusActive
	for _, m := range matches {
		s.matchStore.put(m)
	}
	return nil
}

func cloneTournament(t *models.Tournament) *models.Tournament {
	clone := *t
	clone.Participants = append([]models.UserProfile(nil), t.Participants...)
	return &clone
}

func cloneMaybe(t *models.Tournament) *models.Tournament {
	if t == nil {
		return nil
	}
	return cloneTournament(t)
}

type memTournamentMatchStore struct {
	mu      sync.Mutex
	matches map[string]*models.TournamentMatch
}

func newMemTournamentMatchStore() *memTournamentMatchStore {
	return &memTournamentMatchStore{matches: make(map[string]*models.TournamentMatch)}
}

func (s *memTournamentMatchStore) put(m *models.TournamentMatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.TournamentID+"/"+m.ID] = cloneTournamentMatch(m)
}

func (s *memTournamentMatchStore) FindByID(_ context.Context, tournamentID, matchID string) (*models.TournamentMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[tournamentID+"/"+matchID]
	if !ok {
		return nil, nil
	}
	return cloneTournamentMatch(m), nil
}

func (s *memTournamentMatchStore) ListByTournament(_ context.Context, tournamentID string) ([]models.TournamentMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TournamentMatch
	for _, m := range s.matches {
		if m.TournamentID == tournamentID {
			out = append(out, *cloneTournamentMatch(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoundNumber != out[j].RoundNumber {
			return out[i].RoundNumber < out[j].RoundNumber
		}
		return out[i].MatchNumber < out[j].MatchNumber
	})
	return out, nil
}

func (s *memTournamentMatchStore) UpdateIfStatus(_ context.Context, m *models.TournamentMatch, from models.TournamentMatchStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.matches[m.TournamentID+"/"+m.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	s.matches[m.TournamentID+"/"+m.ID] = cloneTournamentMatch(m)
	return true, nil
}

func cloneTournamentMatch(m *models.TournamentMatch) *models.TournamentMatch {
	clone := *m
	clone.Participants = append([]models.UserProfile(nil), m.Participants...)
	if m.Result != nil {
		result := *m.Result
		clone.Result = &result
	}
	return &clone
}

type stubProfiles struct {
	mu       sync.Mutex
	profiles map[string]models.UserProfile
}

func newStubProfiles() *stubProfiles {
	return &stubProfiles{profiles: make(map[string]models.UserProfile)}
}

func (s *stubProfiles) add(p models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
}

func (s *stubProfiles) Profile(_ context.Context, userID string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[userID]; ok {
		return &p, nil
	}
	return nil, nil
}

type recordedEvent struct {
	Event       string
	RecipientID string
	Payload     map[string]interface{}
}

type memNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
	fail   bool
}

func newMemNotifier() *memNotifier {
	return &memNotifier{}
}

func (n *memNotifier) Enqueue(_ context.Context, event, recipientID string, payload map[string]interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("dispatcher down")
	}
	n.events = append(n.events, recordedEvent{Event: event, RecipientID: recipientID, Payload: payload})
	return nil
}

func (n *memNotifier) byEvent(event string) []recordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []recordedEvent
	for _, e := range n.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
