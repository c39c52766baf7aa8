// Package gifting implements the lookup-table gift suggestions, the physical
// follow-through checklist and reveal session keys.
package gifting

import (
	"strings"

	"agentgift-service/models"
)

type SuggestionInput struct {
	OccasionType   string `json:"occasion_type" validate:"required,max=64"`
	EmotionalState string `json:"emotional_state" validate:"required,max=64"`
	RecipientName  string `json:"recipient_name,omitempty" validate:"max=128"`
	Budget         int    `json:"budget,omitempty" validate:"gte=0"`
}

type Suggestion struct {
	GiftName    string   `json:"giftName"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Confidence  int      `json:"confidence"`
	Reasoning   string   `json:"reasoning"`
	Tags        []string `json:"tags"`
}

type suggestionKey struct {
	occasion string
	emotion  string
}

var suggestionTable = map[suggestionKey]Suggestion{
	{"birthday", "happy"}: {
		GiftName: "Custom Star Map Print", Category: "keepsake", Confidence: 92,
		Description: "The night sky exactly as it looked on the day they were born.",
		Tags:        []string{"personalized", "art"},
	},
	{"birthday", "nostalgic"}: {
		GiftName: "Vintage Polaroid Memory Book", Category: "keepsake", Confidence: 90,
		Description: "An instant camera with a blank album to fill with the next chapter.",
		Tags:        []string{"memories", "photography"},
	},
	{"anniversary", "romantic"}: {
		GiftName: "Handwritten Love Letter Kit", Category: "experience", Confidence: 94,
		Description: "Wax seals, deckle-edge paper and prompts for a letter worth keeping.",
		Tags:        []string{"romance", "handmade"},
	},
	{"graduation", "proud"}: {
		GiftName: "Engraved Compass", Category: "keepsake", Confidence: 91,
		Description: "A brass compass engraved with a line about the road ahead.",
		Tags:        []string{"milestone", "engraved"},
	},
	{"sympathy", "sad"}: {
		GiftName: "Comfort Tea Collection", Category: "wellness", Confidence: 89,
		Description: "Calming loose-leaf blends with a note that asks for nothing back.",
		Tags:        []string{"comfort", "self-care"},
	},
	{"just because", "anxious"}: {
		GiftName: "Worry Stone Garden Kit", Category: "wellness", Confidence: 93,
		Description: "Smooth river stones and a tiny zen garden for restless hands.",
		Tags:        []string{"calm", "mindfulness"},
	},
	{"just because", "lonely"}: {
		GiftName: "Monthly Letter Subscription", Category: "subscription", Confidence: 88,
		Description: "A real letter in the mailbox every month.",
		Tags:        []string{"connection", "subscription"},
	},
	{"thank you", "grateful"}: {
		GiftName: "Artisan Gratitude Journal", Category: "keepsake", Confidence: 87,
		Description: "A linen journal with a page of thanks already written inside.",
		Tags:        []string{"gratitude", "journal"},
	},
	{"get well", "stressed"}: {
		GiftName: "Aromatherapy Recovery Box", Category: "wellness", Confidence: 88,
		Description: "Lavender, eucalyptus and a weighted eye mask for proper rest.",
		Tags:        []string{"recovery", "self-care"},
	},
}

var fallbackSuggestion = Suggestion{
	GiftName:    "Serendipity Box",
	Description: "A curated surprise of small delights picked for the moment.",
	Category:    "surprise",
	Confidence:  85,
	Tags:        []string{"surprise", "curated"},
}

// GenerateGiftSuggestion looks the (occasion, emotion) pair up exactly, after trimming and
// lowercasing both. Anything else gets the Serendipity Box.
func GenerateGiftSuggestion(in SuggestionInput) Suggestion {
	key := suggestionKey{
		occasion: strings.ToLower(strings.TrimSpace(in.OccasionType)),
		emotion:  strings.ToLower(strings.TrimSpace(in.EmotionalState)),
	}

	s, ok := suggestionTable[key]
	if !ok {
		s = fallbackSuggestion
		s.Reasoning = "No close match for this moment, so we picked something joyful and open-ended."
	} else {
		s.Reasoning = "Matched a " + key.occasion + " feeling " + key.emotion + "."
	}
	s.Tags = append([]string(nil), s.Tags...)

	if name := strings.TrimSpace(in.RecipientName); name != "" {
		s.Reasoning += " Chosen with " + displayName(name) + " in mind."
	}
	return s
}

// FollowThroughStep is one physical task that turns a digital gift into something tangible.
type FollowThroughStep struct {
	Step        int    `json:"step"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

type stepTemplate struct {
	action      string
	description string
	minTier     models.Tier
}

var followThroughTable = map[string][]stepTemplate{
	"experience": {
		{"print_ticket", "Print the booking confirmation as a keepsake ticket", models.TierFree},
		{"gift_envelope", "Seal it in a gift envelope with the date on the front", models.TierFree},
		{"memento_kit", "Add a small memento that hints at the experience", models.TierPlus},
		{"courier_delivery", "Schedule hand delivery on the morning of the event", models.TierPro},
	},
	"digital": {
		{"qr_card", "Print a card with a QR code that opens the gift", models.TierFree},
		{"photo_print", "Print one photo that relates to the gift", models.TierPlus},
		{"framed_print", "Frame the printout for display", models.TierPro},
	},
	"subscription": {
		{"welcome_card", "Mail a welcome card announcing the subscription", models.TierFree},
		{"first_box_note", "Slip a note into the first delivery", models.TierPlus},
		{"monthly_reminder", "Set a monthly reminder to check in about it", models.TierPro},
	},
	"physical": {
		{"gift_wrap", "Wrap the gift in recycled paper", models.TierFree},
		{"tracking_share", "Share tracking so the sender knows when it lands", models.TierFree},
		{"premium_wrap", "Upgrade to fabric wrap with a dried flower", models.TierPlus},
		{"white_glove", "Book white-glove delivery with a timed drop-off", models.TierAgent},
	},
}

// SuggestPhysicalFollowThrough returns the steps for giftType the tier unlocks. A non-empty
// message adds a handwritten note. Unknown gift types yield an empty, non-nil slice.
func SuggestPhysicalFollowThrough(giftType, message string, tier models.Tier) []FollowThroughStep {
	steps := make([]FollowThroughStep, 0)

	templates, ok := followThroughTable[strings.ToLower(strings.TrimSpace(giftType))]
	if !ok {
		return steps
	}

	for _, t := range templates {
		if !tier.AtLeast(t.minTier) {
			continue
		}
		steps = append(steps, FollowThroughStep{
			Step:        len(steps) + 1,
			Action:      t.action,
			Description: t.description,
		})
	}

	if strings.TrimSpace(message) != "" {
		steps = append(steps, FollowThroughStep{
			Step:        len(steps) + 1,
			Action:      "handwritten_note",
			Description: "Copy the message by hand onto a card and tuck it inside",
		})
	}
	return steps
}

// RevealSessionKey joins the two ids with a hyphen, as-is.
func RevealSessionKey(giftID, recipientID string) string {
	return giftID + "-" + recipientID
}
