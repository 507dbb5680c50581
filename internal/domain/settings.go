package domain

import "strings"

// Tier is the entitlement level of a user.
type Tier string

const (
	TierFree Tier = "free"
	TierLite Tier = "lite"
	TierPro  Tier = "pro"
)

// ParseTier matches s case-insensitively against the known tiers.
func ParseTier(s string) (Tier, bool) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TierFree, TierLite, TierPro:
		return t, true
	}
	return "", false
}

// Allows reports whether the tier may use model m.
// Free has no AI access, lite is limited to non-premium models.
func (t Tier) Allows(m Model) bool {
	switch t {
	case TierPro:
		return true
	case TierLite:
		return !m.Premium
	default:
		return false
	}
}

// BestModel returns the best catalog model the tier allows, preferring
// non-premium models. ok is false for tiers without AI access.
func (t Tier) BestModel() (Model, bool) {
	for _, m := range catalog {
		if !m.Premium && t.Allows(m) {
			return m, true
		}
	}
	for _, m := range catalog {
		if t.Allows(m) {
			return m, true
		}
	}
	return Model{}, false
}

// Settings is the AI configuration surface of a user.
type Settings struct {
	APIKey    string  `json:"apiKey,omitempty"`
	Tier      Tier    `json:"tier"`
	Model     ModelID `json:"model"`
	AIEnabled bool    `json:"aiEnabled"`
}

// AIEntitled reports whether the settings allow the AI path at all.
func (s Settings) AIEntitled() bool {
	return s.Tier != TierFree && s.Tier != "" && s.APIKey != ""
}

// UseAI reports whether a refresh should take the AI path.
func (s Settings) UseAI() bool {
	return s.AIEnabled && s.AIEntitled()
}
