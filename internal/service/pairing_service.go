package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/playrivals/playrivals-backend/internal/models"
	"go.uber.org/zap"
)

// pairingBatchSize caps how many active tickets one pairing pass works on.
// Anything beyond the cap waits for the next tick.
const pairingBatchSize = 100

// expirationBatchSize caps how many tickets one sweep expires. Backlogs
// larger than this drain over consecutive runs.
const expirationBatchSize = 100

// PairingService runs the two periodic matchmaking jobs: the pairing pass and
// the expiration sweep. Runs are not mutually excluded; if a pass outlives
// its interval the overlapping pass relies on the transactional ticket check
// in MatchService to avoid double-booking.
type PairingService struct {
	ticketStore    TicketStore
	matchSvc       *MatchService
	logger         *zap.Logger
	pairInterval   time.Duration
	expireInterval time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

func NewPairingService(
	ticketStore TicketStore,
	matchSvc *MatchService,
	pairInterval time.Duration,
	expireInterval time.Duration,
	logger *zap.Logger,
) *PairingService {
	return &PairingService{
		ticketStore:    ticketStore,
		matchSvc:       matchSvc,
		logger:         logger,
		pairInterval:   pairInterval,
		expireInterval: expireInterval,
		stopChan:       make(chan struct{}),
	}
}

// Start launches both job loops.
func (s *PairingService) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("Starting PairingService",
		zap.Duration("pairInterval", s.pairInterval),
		zap.Duration("expireInterval", s.expireInterval))

	s.wg.Add(2)
	go s.pairingLoop()
	go s.expirationLoop()
}

// Stop halts both loops and waits for in-flight runs to finish.
func (s *PairingService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping PairingService")
	close(s.stopChan)
	s.wg.Wait()
	s.logger.Info("PairingService stopped")
}

func (s *PairingService) pairingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pairInterval)
	defer ticker.Stop()

	s.RunPairingPass(context.Background())

	for {
		select {
		case <-ticker.C:
			s.RunPairingPass(context.Background())
		case <-s.stopChan:
			return
		}
	}
}

func (s *PairingService) expirationLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.expireInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunExpirationSweep(context.Background())
		case <-s.stopChan:
			return
		}
	}
}

// RunPairingPass fetches the oldest active tickets, partitions them into
// (game, region, gameMode) pools and greedily pairs each pool. The oldest
// unconsumed ticket is always the anchor that searches forward, so the
// longest-waiting players are served first. The pass ends with an expiration
// sweep.
func (s *PairingService) RunPairingPass(ctx context.Context) {
	tickets, err := s.ticketStore.ListOldestActive(ctx, pairingBatchSize)
	if err != nil {
		s.logger.Error("Failed to list active tickets", zap.Error(err))
		return
	}

	if len(tickets) >= 2 {
		matched := 0
		for _, group := range groupTickets(tickets) {
			matched += s.pairGroup(ctx, group)
		}
		if matched > 0 {
			s.logger.Info("Pairing pass completed",
				zap.Int("tickets", len(tickets)),
				zap.Int("matchesCreated", matched))
		}
	}

	s.RunExpirationSweep(ctx)
}

// pairGroup runs the greedy single pass over one pool and returns the number
// of matches created.
func (s *PairingService) pairGroup(ctx context.Context, group []models.MatchTicket) int {
	matched := 0
	consumed := make(map[string]bool)

	for i := range group {
		anchor := &group[i]
		if consumed[anchor.ID] {
			continue
		}
		for j := i + 1; j < len(group); j++ {
			partner := &group[j]
			if consumed[partner.ID] {
				continue
			}
			if !Compatible(anchor, partner) {
				continue
			}

			if _, err := s.matchSvc.CreateFromTickets(ctx, anchor, partner); err != nil {
				if errors.Is(err, ErrTicketUnavailable) {
					// Someone else consumed one of the two since the batch
					// was read. Leave both unmarked; the anchor may still
					// pair with a later partner.
					continue
				}
				s.logger.Error("Scheduled pairing failed",
					zap.String("ticket1", anchor.ID),
					zap.String("ticket2", partner.ID),
					zap.Error(err))
				continue
			}

			consumed[anchor.ID] = true
			consumed[partner.ID] = true
			matched++
			break
		}
	}

	return matched
}

// RunExpirationSweep batch-expires stale active tickets.
func (s *PairingService) RunExpirationSweep(ctx context.Context) {
	expired, err := s.ticketStore.ExpireStale(ctx, time.Now().UTC(), expirationBatchSize)
	if err != nil {
		s.logger.Error("Expiration sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		s.logger.Info("Expired stale tickets", zap.Int("count", expired))
	}
}

// groupTickets partitions tickets by pool, preserving creation order within
// each group. Iteration order over the result does not matter because pools
// never pair across each other.
func groupTickets(tickets []models.MatchTicket) map[string][]models.MatchTicket {
	groups := make(map[string][]models.MatchTicket)
	for _, t := range tickets {
		key := t.GroupKey()
		groups[key] = append(groups[key], t)
	}
	return groups
}
