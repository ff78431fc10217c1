package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/playrivals/playrivals-backend/internal/models"
	"go.uber.org/zap"
)

// immediateCandidateLimit caps how many waiting tickets a fresh submission is
// checked against before it is left to the pairing scheduler.
const immediateCandidateLimit = 10

// SubmitTicketParams are the compatibility attributes of a new ticket.
type SubmitTicketParams struct {
	Game           string           `json:"game"`
	Region         string           `json:"region"`
	GameMode       string           `json:"gameMode"`
	SkillTier      models.SkillTier `json:"skillTier"`
	PreferredRoles []string         `json:"preferredRoles"`
	Language       string           `json:"language"`
	MicRequired    bool             `json:"micRequired"`
}

// TicketService owns the matchmaking ticket lifecycle: submission with an
// immediate pairing attempt, explicit cancellation and reads.
type TicketService struct {
	ticketStore TicketStore
	matchSvc    *MatchService
	ticketTTL   time.Duration
	logger      *zap.Logger
}

func NewTicketService(ticketStore TicketStore, matchSvc *MatchService, ticketTTL time.Duration, logger *zap.Logger) *TicketService {
	return &TicketService{
		ticketStore: ticketStore,
		matchSvc:    matchSvc,
		ticketTTL:   ticketTTL,
		logger:      logger,
	}
}

// Submit creates a ticket for userID and immediately tries to pair it against
// the oldest waiting candidates in the same pool. When no candidate fits the
// ticket stays active for the scheduler.
func (s *TicketService) Submit(ctx context.Context, userID string, params SubmitTicketParams) (*models.MatchTicket, error) {
	if err := validateTicketParams(params); err != nil {
		return nil, err
	}

	active, err := s.ticketStore.HasActiveByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check active ticket: %w", err)
	}
	if active {
		return nil, ErrDuplicateTicket
	}

	now := time.Now().UTC()
	ticket := &models.MatchTicket{
		ID:             uuid.NewString(),
		OwnerUserID:    userID,
		Game:           params.Game,
		Region:         params.Region,
		GameMode:       params.GameMode,
		SkillTier:      params.SkillTier,
		PreferredRoles: params.PreferredRoles,
		Language:       params.Language,
		MicRequired:    params.MicRequired,
		Status:         models.TicketStatusActive,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ticketTTL),
	}

	if err := s.ticketStore.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	s.logger.Info("Ticket submitted",
		zap.String("ticketId", ticket.ID),
		zap.String("userId", userID),
		zap.String("pool", ticket.GroupKey()))

	s.tryImmediatePairing(ctx, ticket)

	return ticket, nil
}

// tryImmediatePairing scans the oldest waiting candidates and pairs with the
// first compatible one. Every failure mode here is silent by design: a lost
// transaction race just leaves the ticket active for the next scheduler pass.
func (s *TicketService) tryImmediatePairing(ctx context.Context, ticket *models.MatchTicket) {
	candidates, err := s.ticketStore.FindCandidates(ctx,
		ticket.Game, ticket.Region, ticket.GameMode, ticket.OwnerUserID, immediateCandidateLimit)
	if err != nil {
		s.logger.Error("Failed to fetch pairing candidates", zap.Error(err))
		return
	}

	for i := range candidates {
		candidate := &candidates[i]
		if !Compatible(ticket, candidate) {
			continue
		}
		if _, err := s.matchSvc.CreateFromTickets(ctx, candidate, ticket); err != nil {
			if errors.Is(err, ErrTicketUnavailable) {
				continue
			}
			s.logger.Error("Immediate pairing failed",
				zap.String("ticketId", ticket.ID),
				zap.String("candidateId", candidate.ID),
				zap.Error(err))
		}
		return
	}
}

// Cancel transitions the caller's active ticket to cancelled. Only the owner
// may cancel, and only while the ticket is still active.
func (s *TicketService) Cancel(ctx context.Context, userID, ticketID string) error {
	ticket, err := s.ticketStore.FindByID(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("find ticket: %w", err)
	}
	if ticket == nil {
		return ErrTicketNotFound
	}
	if ticket.OwnerUserID != userID {
		return ErrNotTicketOwner
	}
	if ticket.Status != models.TicketStatusActive {
		return ErrTicketNotActive
	}

	cancelled, err := s.ticketStore.CancelIfActive(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("cancel ticket: %w", err)
	}
	if !cancelled {
		// Consumed by a pairing pass between read and update.
		return ErrTicketNotActive
	}

	s.logger.Info("Ticket cancelled",
		zap.String("ticketId", ticketID),
		zap.String("userId", userID))
	return nil
}

// Get returns a ticket by id.
func (s *TicketService) Get(ctx context.Context, ticketID string) (*models.MatchTicket, error) {
	ticket, err := s.ticketStore.FindByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	return ticket, nil
}

func validateTicketParams(params SubmitTicketParams) error {
	if params.Game == "" || params.Region == "" || params.GameMode == "" {
		return fmt.Errorf("%w: game, region and gameMode are required", ErrInvalidInput)
	}
	if params.SkillTier.Ordinal() == 0 {
		return fmt.Errorf("%w: unknown skill tier %q", ErrInvalidInput, params.SkillTier)
	}
	if params.Language == "" {
		return fmt.Errorf("%w: language is required (use %q to accept any)", ErrInvalidInput, models.LanguageAny)
	}
	return nil
}
