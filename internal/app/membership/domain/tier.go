package domain

// Tier is an ordered membership level. The zero value means the member has
// no subscription at all.
type Tier string

const (
	TierBasic   Tier = "basic"
	TierPro     Tier = "pro"
	TierPremium Tier = "premium"
)

// AccessRequirement is the gate attached to a piece of content. RequireAll
// means unconditionally visible.
type AccessRequirement string

const (
	RequireAll     AccessRequirement = "all"
	RequirePro     AccessRequirement = "pro"
	RequirePremium AccessRequirement = "premium"
)

// Rank returns the ordering of a tier (basic=1, pro=2, premium=3).
// Unknown or absent tiers rank 0, below every requirement.
func (t Tier) Rank() int {
	switch t {
	case TierBasic:
		return 1
	case TierPro:
		return 2
	case TierPremium:
		return 3
	default:
		return 0
	}
}

// Valid reports whether t is one of the three defined tiers.
func (t Tier) Valid() bool {
	return t.Rank() > 0
}

// Rank returns the minimum tier rank a requirement demands. RequireAll
// demands nothing (rank 0).
func (r AccessRequirement) Rank() int {
	switch r {
	case RequirePro:
		return 2
	case RequirePremium:
		return 3
	default:
		return 0
	}
}

// CanAccessTier answers the static tier-gating rule: a member on memberTier
// may see content gated at requirement. It ignores subscription status; see
// ResolveContentAccess for the status-aware check.
func CanAccessTier(memberTier Tier, requirement AccessRequirement) bool {
	if requirement == RequireAll {
		return true
	}
	if !memberTier.Valid() {
		return false
	}
	return memberTier.Rank() >= requirement.Rank()
}
