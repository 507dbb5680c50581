package domain

import (
	"strings"
	"time"
)

// RecommendationType groups recommendations by area.
type RecommendationType string

const (
	TypeDiet      RecommendationType = "diet"
	TypeExercise  RecommendationType = "exercise"
	TypeLifestyle RecommendationType = "lifestyle"
	TypeMedical   RecommendationType = "medical"
)

// ParseRecommendationType matches s case-insensitively against the known types.
func ParseRecommendationType(s string) (RecommendationType, bool) {
	t := RecommendationType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TypeDiet, TypeExercise, TypeLifestyle, TypeMedical:
		return t, true
	}
	return "", false
}

// Priority of a recommendation.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority matches s case-insensitively against the known priorities.
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p, true
	}
	return "", false
}

// Rank orders priorities: high sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Icon names understood by the front-end.
const (
	IconHeartPulse  = "heart-pulse"
	IconApple       = "apple"
	IconDumbbell    = "dumbbell"
	IconMoon        = "moon"
	IconDroplet     = "droplet"
	IconStethoscope = "stethoscope"
	IconSalad       = "salad"
	IconFootprints  = "footprints"
	IconScale       = "scale"
	IconActivity    = "activity"
)

// DefaultIcon is shown for unknown icon names.
const DefaultIcon = IconHeartPulse

var knownIcons = map[string]string{
	IconHeartPulse:  "❤️",
	IconApple:       "🍎",
	IconDumbbell:    "🏋️",
	IconMoon:        "🌙",
	IconDroplet:     "🩸",
	IconStethoscope: "🩺",
	IconSalad:       "🥗",
	IconFootprints:  "👣",
	IconScale:       "⚖️",
	IconActivity:    "📈",
}

// IconOrDefault returns icon when it is known, DefaultIcon otherwise.
func IconOrDefault(icon string) string {
	if _, ok := knownIcons[icon]; ok {
		return icon
	}
	return DefaultIcon
}

// IconEmoji renders an icon name for text front-ends.
func IconEmoji(icon string) string {
	return knownIcons[IconOrDefault(icon)]
}

// Recommendation is one actionable suggestion shown to the user.
type Recommendation struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Type        RecommendationType `json:"type"`
	Priority    Priority           `json:"priority"`
	Icon        string             `json:"icon"`
}

// RecommendationSource tells which path produced an analysis.
type RecommendationSource string

const (
	SourceRules RecommendationSource = "rules"
	SourceAI    RecommendationSource = "ai"
)

// Analysis is the outcome of one recommendation computation.
type Analysis struct {
	Score           int                  `json:"score"`
	Recommendations []Recommendation     `json:"recommendations"`
	Source          RecommendationSource `json:"source"`
	Model           ModelID              `json:"model,omitempty"`
	GeneratedAt     time.Time            `json:"generatedAt"`
}

// Clone returns a deep copy of a.
func (a Analysis) Clone() Analysis {
	out := a
	if a.Recommendations != nil {
		out.Recommendations = make([]Recommendation, len(a.Recommendations))
		copy(out.Recommendations, a.Recommendations)
	}
	return out
}
