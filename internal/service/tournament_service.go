package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/playrivals/playrivals-backend/internal/models"
	"go.uber.org/zap"
)

// CreateTournamentParams describe a new tournament.
type CreateTournamentParams struct {
	Name                 string    `json:"name"`
	Game                 string    `json:"game"`
	Format               string    `json:"format"`
	MaxParticipants      int       `json:"maxParticipants"`
	RegistrationDeadline time.Time `json:"registrationDeadline"`
	StartDate            time.Time `json:"startDate"`
}

// TournamentService owns tournament creation and registration. Joining is
// validated inside the store transaction so capacity and dedup checks can
// never observe a stale participant list.
type TournamentService struct {
	tournamentStore TournamentStore
	profiles        ProfileLookup
	logger          *zap.Logger
}

func NewTournamentService(tournamentStore TournamentStore, profiles ProfileLookup, logger *zap.Logger) *TournamentService {
	return &TournamentService{
		tournamentStore: tournamentStore,
		profiles:        profiles,
		logger:          logger,
	}
}

// Create opens a tournament for registration.
func (s *TournamentService) Create(ctx context.Context, organizerID string, params CreateTournamentParams) (*models.Tournament, error) {
	if err := validateTournamentParams(params); err != nil {
		return nil, err
	}

	format := params.Format
	if format == "" {
		format = models.FormatSingleElimination
	}

	tournament := &models.Tournament{
		ID:                   uuid.NewString(),
		OrganizerUserID:      organizerID,
		Name:                 params.Name,
		Game:                 params.Game,
		Format:               format,
		MaxParticipants:      params.MaxParticipants,
		RegistrationDeadline: params.RegistrationDeadline.UTC(),
		StartDate:            params.StartDate.UTC(),
		Participants:         []models.UserProfile{},
		Status:               models.TournamentStatusRegistration,
		CreatedAt:            time.Now().UTC(),
	}

	if err := s.tournamentStore.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("create tournament: %w", err)
	}

	s.logger.Info("Tournament created",
		zap.String("tournamentId", tournament.ID),
		zap.String("organizer", organizerID),
		zap.String("game", tournament.Game),
		zap.Int("maxParticipants", tournament.MaxParticipants))

	return tournament, nil
}

// Join registers userID. State, deadline, capacity and duplicate checks all
// run against the locked record inside the store transaction.
func (s *TournamentService) Join(ctx context.Context, userID, tournamentID string) error {
	snapshot := s.snapshot(ctx, userID)
	now := time.Now().UTC()

	err := s.tournamentStore.AddParticipant(ctx, tournamentID, snapshot, func(t *models.Tournament) error {
		if t == nil {
			return ErrTournamentNotFound
		}
		if t.Status != models.TournamentStatusRegistration {
			return ErrRegistrationClosed
		}
		if now.After(t.RegistrationDeadline) {
			return ErrRegistrationClosed
		}
		if len(t.Participants) >= t.MaxParticipants {
			return ErrTournamentFull
		}
		if t.HasParticipant(userID) {
			return ErrAlreadyJoined
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Participant joined tournament",
		zap.String("tournamentId", tournamentID),
		zap.String("userId", userID))
	return nil
}

// Get returns a tournament by id.
func (s *TournamentService) Get(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.tournamentStore.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find tournament: %w", err)
	}
	if t == nil {
		return nil, ErrTournamentNotFound
	}
	return t, nil
}

// List returns a page of tournaments, newest first.
func (s *TournamentService) List(ctx context.Context, page, pageSize int) ([]models.Tournament, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	tournaments, err := s.tournamentStore.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return tournaments, nil
}

// snapshot fetches the identity snapshot for a joining user, falling back to
// a bare entry when the profile service is unreachable.
func (s *TournamentService) snapshot(ctx context.Context, userID string) models.UserProfile {
	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil || profile == nil {
		if err != nil {
			s.logger.Warn("Profile lookup failed for joining user",
				zap.String("userId", userID),
				zap.Error(err))
		}
		return models.UserProfile{UserID: userID}
	}
	return *profile
}

func validateTournamentParams(params CreateTournamentParams) error {
	if params.Name == "" || params.Game == "" {
		return fmt.Errorf("%w: name and game are required", ErrInvalidInput)
	}
	if params.MaxParticipants < 2 {
		return fmt.Errorf("%w: maxParticipants must be at least 2", ErrInvalidInput)
	}
	if params.RegistrationDeadline.IsZero() || params.StartDate.IsZero() {
		return fmt.Errorf("%w: registrationDeadline and startDate are required", ErrInvalidInput)
	}
	if params.StartDate.Before(params.RegistrationDeadline) {
		return fmt.Errorf("%w: startDate must not precede registrationDeadline", ErrInvalidInput)
	}
	return nil
}
