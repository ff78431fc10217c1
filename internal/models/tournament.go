package models

import "time"

type TournamentStatus string

const (
	TournamentStatusRegistration TournamentStatus = "registration"
	TournamentStatusActive       TournamentStatus = "active"
	TournamentStatusCompleted    TournamentStatus = "completed"
)

const FormatSingleElimination = "single_elimination"

type Tournament struct {
	ID                   string           `db:"id" json:"id"`
	OrganizerUserID      string           `db:"organizer_user_id" json:"organizerUserId"`
	Name                 string           `db:"name" json:"name"`
	Game                 string           `db:"game" json:"game"`
	Format               string           `db:"format" json:"format"`
	MaxParticipants      int              `db:"max_participants" json:"maxParticipants"`
	RegistrationDeadline time.Time        `db:"registration_deadline" json:"registrationDeadline"`
	StartDate            time.Time        `db:"start_date" json:"startDate"`
	Participants         []UserProfile    `db:"participants" json:"participants"`
	Status               TournamentStatus `db:"status" json:"status"`
	Bracket              *Bracket         `db:"bracket" json:"bracket,omitempty"`
	CreatedAt            time.Time        `db:"created_at" json:"createdAt"`
}

// HasParticipant reports whether userID is registered in the tournament.
func (t *Tournament) HasParticipant(userID string) bool {
	for _, p := range t.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Bracket is the single-elimination tree. Round 1 is fully populated at
// seeding time; later rounds are empty placeholders that the organizer fills
// in out of band.
type Bracket struct {
	Format string  `json:"format"`
	Rounds []Round `json:"rounds"`
}

type Round struct {
	Number  int            `json:"number"`
	Matches []BracketMatch `json:"matches"`
}

// BracketMatch holds up to two participants. A bye has a single participant
// and a pre-set winner.
type BracketMatch struct {
	MatchNumber  int           `json:"matchNumber"`
	Participants []UserProfile `json:"participants"`
	WinnerID     *string       `json:"winnerId,omitempty"`
}

// IsBye reports whether the slot has no opponent.
func (m *BracketMatch) IsBye() bool {
	return len(m.Participants) == 1
}

type TournamentMatchStatus string

const (
	TournamentMatchStatusActive    TournamentMatchStatus = "active"
	TournamentMatchStatusReported  TournamentMatchStatus = "reported"
	TournamentMatchStatusCompleted TournamentMatchStatus = "completed"
	TournamentMatchStatusDisputed  TournamentMatchStatus = "disputed"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending_verification"
	VerificationVerified VerificationStatus = "verified"
	VerificationDisputed VerificationStatus = "disputed"
)

// MatchResult is the reported outcome of a tournament match, embedded in the
// match record once a participant files a report.
type MatchResult struct {
	ReportedBy         string             `json:"reportedBy"`
	WinnerID           string             `json:"winnerId"`
	Score              string             `json:"score"`
	Proof              string             `json:"proof,omitempty"`
	ReportedAt         time.Time          `json:"reportedAt"`
	VerifiedBy         *string            `json:"verifiedBy,omitempty"`
	VerifiedAt         *time.Time         `json:"verifiedAt,omitempty"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
}

// TournamentMatch is the playable unit of a bracket round, persisted
// separately from the embedded bracket tree so that reporting and
// verification can update it independently.
type TournamentMatch struct {
	ID           string                `db:"id" json:"id"`
	TournamentID string                `db:"tournament_id" json:"tournamentId"`
	RoundNumber  int                   `db:"round_number" json:"roundNumber"`
	MatchNumber  int                   `db:"match_number" json:"matchNumber"`
	Participants []UserProfile         `db:"participants" json:"participants"`
	Status       TournamentMatchStatus `db:"status" json:"status"`
	Result       *MatchResult          `db:"result" json:"result,omitempty"`
	CreatedAt    time.Time             `db:"created_at" json:"createdAt"`
}

// HasParticipant reports whether userID plays in this match.
func (m *TournamentMatch) HasParticipant(userID string) bool {
	for _, p := range m.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
