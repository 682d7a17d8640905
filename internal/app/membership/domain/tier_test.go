package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAccessTier_AllCombinations(t *testing.T) {
	// Exhaustive over the full (member tier or absent) x requirement grid.
	testCases := []struct {
		name        string
		memberTier  Tier
		requirement AccessRequirement
		expected    bool
	}{
		{"absent member, all", "", RequireAll, true},
		{"absent member, pro", "", RequirePro, false},
		{"absent member, premium", "", RequirePremium, false},
		{"basic, all", TierBasic, RequireAll, true},
		{"basic, pro", TierBasic, RequirePro, false},
		{"basic, premium", TierBasic, RequirePremium, false},
		{"pro, all", TierPro, RequireAll, true},
		{"pro, pro", TierPro, RequirePro, true},
		{"pro, premium", TierPro, RequirePremium, false},
		{"premium, all", TierPremium, RequireAll, true},
		{"premium, pro", TierPremium, RequirePro, true},
		{"premium, premium", TierPremium, RequirePremium, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CanAccessTier(tc.memberTier, tc.requirement))
		})
	}
}

func TestCanAccessTier_Monotonic(t *testing.T) {
	// A higher tier can see everything a lower tier can see.
	tiers := []Tier{TierBasic, TierPro, TierPremium}
	requirements := []AccessRequirement{RequireAll, RequirePro, RequirePremium}

	for i, lower := range tiers {
		for _, higher := range tiers[i:] {
			for _, req := range requirements {
				if CanAccessTier(lower, req) {
					assert.True(t, CanAccessTier(higher, req),
						"tier %s should access %s because %s does", higher, req, lower)
				}
			}
		}
	}
}

func TestTierRank_Ordering(t *testing.T) {
	assert.Equal(t, 1, TierBasic.Rank())
	assert.Equal(t, 2, TierPro.Rank())
	assert.Equal(t, 3, TierPremium.Rank())
	assert.Equal(t, 0, Tier("").Rank())
	assert.Equal(t, 0, Tier("platinum").Rank())
}

func TestTierValid(t *testing.T) {
	assert.True(t, TierBasic.Valid())
	assert.True(t, TierPro.Valid())
	assert.True(t, TierPremium.Valid())
	assert.False(t, Tier("").Valid())
	assert.False(t, Tier("gold").Valid())
}
