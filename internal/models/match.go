package models

import "time"

type MatchStatus string

const (
	MatchStatusCreated MatchStatus = "created"
)

// MatchParticipant is one side of a matchmaking match.
type MatchParticipant struct {
	UserID    string      `json:"userId"`
	SkillTier SkillTier   `json:"skillTier"`
	Profile   UserProfile `json:"profile"`
}

// Match is the record produced when two compatible tickets are paired. It is
// created exactly once per ticket pair and is immutable afterwards.
type Match struct {
	ID        string           `db:"id" json:"id"`
	Game      string           `db:"game" json:"game"`
	Region    string           `db:"region" json:"region"`
	GameMode  string           `db:"game_mode" json:"gameMode"`
	Language  string           `db:"language" json:"language"`
	Player1   MatchParticipant `db:"player1" json:"player1"`
	Player2   MatchParticipant `db:"player2" json:"player2"`
	Status    MatchStatus      `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}
