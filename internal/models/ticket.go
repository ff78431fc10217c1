package models

import "time"

type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusMatched   TicketStatus = "matched"
	TicketStatusExpired   TicketStatus = "expired"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// IsTerminal reports whether a ticket can no longer change state.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusMatched || s == TicketStatusExpired || s == TicketStatusCancelled
}

// SkillTier is the 8-level ordinal rank ladder, lowest first.
type SkillTier string

const (
	TierBronze   SkillTier = "bronze"
	TierSilver   SkillTier = "silver"
	TierGold     SkillTier = "gold"
	TierPlatinum SkillTier = "platinum"
	TierDiamond  SkillTier = "diamond"
	TierCrown    SkillTier = "crown"
	TierMaster   SkillTier = "master"
	TierAce      SkillTier = "ace"
)

var tierOrdinals = map[SkillTier]int{
	TierBronze:   1,
	TierSilver:   2,
	TierGold:     3,
	TierPlatinum: 4,
	TierDiamond:  5,
	TierCrown:    6,
	TierMaster:   7,
	TierAce:      8,
}

// Ordinal returns the 1-based rank of the tier, or 0 for an unknown tier.
func (t SkillTier) Ordinal() int {
	return tierOrdinals[t]
}

// LanguageAny matches any language preference.
const LanguageAny = "any"

// RoleAny in a role set makes the ticket accept any role split.
const RoleAny = "any"

type MatchTicket struct {
	ID             string       `db:"id" json:"id"`
	OwnerUserID    string       `db:"owner_user_id" json:"ownerUserId"`
	Game           string       `db:"game" json:"game"`
	Region         string       `db:"region" json:"region"`
	GameMode       string       `db:"game_mode" json:"gameMode"`
	SkillTier      SkillTier    `db:"skill_tier" json:"skillTier"`
	PreferredRoles []string     `db:"preferred_roles" json:"preferredRoles,omitempty"`
	Language       string       `db:"language" json:"language"`
	MicRequired    bool         `db:"mic_required" json:"micRequired"`
	Status         TicketStatus `db:"status" json:"status"`
	MatchID        *string      `db:"match_id" json:"matchId,omitempty"`
	CreatedAt      time.Time    `db:"created_at" json:"createdAt"`
	ExpiresAt      time.Time    `db:"expires_at" json:"expiresAt"`
}

// GroupKey identifies the pairing pool a ticket belongs to. Tickets are only
// ever paired within the same key.
func (t *MatchTicket) GroupKey() string {
	return t.Game + "|" + t.Region + "|" + t.GameMode
}
