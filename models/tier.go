package models

// Tier is a subscription level. Ordering matters: a feature open to "plus" is open to "pro" and "agent".
type Tier string

const (
	TierFree  Tier = "free"
	TierPlus  Tier = "plus"
	TierPro   Tier = "pro"
	TierAgent Tier = "agent"
)

var tierRank = map[Tier]int{
	TierFree:  0,
	TierPlus:  1,
	TierPro:   2,
	TierAgent: 3,
}

var tierOrder = []Tier{TierFree, TierPlus, TierPro, TierAgent}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

// AtLeast reports whether t is the same as or above min. Unknown tiers rank as free.
func (t Tier) AtLeast(min Tier) bool {
	return tierRank[t] >= tierRank[min]
}

// VisibleTiers lists t and every tier below it, lowest first. Unknown tiers see free content only.
func (t Tier) VisibleTiers() []Tier {
	if !t.Valid() {
		t = TierFree
	}
	out := make([]Tier, 0, len(tierOrder))
	for _, tier := range tierOrder {
		if tierRank[tier] <= tierRank[t] {
			out = append(out, tier)
		}
	}
	return out
}

// Feature identifiers shared by reward settings, bans and the tier gate.
const (
	FeatureGiftSuggestion    = "gift_suggestion"
	FeatureVoiceAssistant    = "voice_assistant"
	FeatureMemoryVaultSearch = "memory_vault_search"
	FeatureRevealSession     = "reveal_session"
	FeatureEmotionalCheckin  = "emotional_checkin"
)

// FeatureMinTier is the static tier gate.
var FeatureMinTier = map[string]Tier{
	FeatureGiftSuggestion:    TierFree,
	FeatureEmotionalCheckin:  TierFree,
	FeatureRevealSession:     TierPlus,
	FeatureMemoryVaultSearch: TierPro,
	FeatureVoiceAssistant:    TierAgent,
}
