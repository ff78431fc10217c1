package service

import "github.com/playrivals/playrivals-backend/internal/models"

const maxTierDistance = 1

// Compatible decides whether two tickets from the same (game, region,
// gameMode) pool can be paired. All four rules must hold:
//
//  1. skill tiers at most one apart on the 8-level ladder
//  2. languages equal, or either side accepts any
//  3. mic requirement equal on both sides
//  4. preferred roles must not overlap, unless either side left roles empty
//     or listed the "any" role
//
// Overlapping role sets conflict because both players would be demanding the
// same slot in a 1:1 pairing.
func Compatible(a, b *models.MatchTicket) bool {
	return tiersCompatible(a.SkillTier, b.SkillTier) &&
		languagesCompatible(a.Language, b.Language) &&
		a.MicRequired == b.MicRequired &&
		rolesCompatible(a.PreferredRoles, b.PreferredRoles)
}

func tiersCompatible(a, b models.SkillTier) bool {
	oa, ob := a.Ordinal(), b.Ordinal()
	if oa == 0 || ob == 0 {
		return false
	}
	diff := oa - ob
	if diff < 0 {
		diff = -diff
	}
	return diff <= maxTierDistance
}

func languagesCompatible(a, b string) bool {
	return a == b || a == models.LanguageAny || b == models.LanguageAny
}

func rolesCompatible(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return true
	}
	if containsRole(a, models.RoleAny) || containsRole(b, models.RoleAny) {
		return true
	}
	for _, role := range a {
		if containsRole(b, role) {
			return false
		}
	}
	return true
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
