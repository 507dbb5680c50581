package health

import "github.com/vladimiradmaev/health-helper/internal/domain"

const (
	baseScore = 70
	minScore  = 0
	maxScore  = 100
)

// ComputeScore derives the 0..100 health score of a record.
func ComputeScore(r domain.HealthRecord) int {
	return Score(r.BMI, r.BloodGlucose)
}

// Score applies the additive BMI and glucose adjustments to the base score.
// Absent values contribute nothing.
func Score(bmi, glucose *float64) int {
	score := baseScore
	if bmi != nil {
		score += bmiAdjustment(*bmi)
	}
	if glucose != nil {
		score += glucoseAdjustment(*glucose)
	}
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

func bmiAdjustment(bmi float64) int {
	switch {
	case bmi >= 18.5 && bmi < 25:
		return 15
	case bmi >= 17 && bmi < 18.5, bmi >= 25 && bmi < 30:
		return 5
	default:
		return -10
	}
}

func glucoseAdjustment(g float64) int {
	switch {
	case g >= 70 && g <= 99:
		return 15
	case g > 99 && g < 126:
		return -5
	case g >= 126:
		return -15
	default:
		// below 70: no rule
		return 0
	}
}

// ScoreLabel describes a score for display.
func ScoreLabel(score int) string {
	switch {
	case score >= 85:
		return "Excellent"
	case score >= 70:
		return "Good"
	case score >= 50:
		return "Fair"
	default:
		return "Needs attention"
	}
}

// Glucose status labels.
const (
	GlucoseLow         = "Low"
	GlucoseNormal      = "Normal"
	GlucosePrediabetes = "Prediabetes range"
	GlucoseDiabetes    = "Diabetes range"
)

// GlucoseStatus classifies a fasting blood glucose value in mg/dL.
func GlucoseStatus(g float64) string {
	switch {
	case g < 70:
		return GlucoseLow
	case g <= 99:
		return GlucoseNormal
	case g < 126:
		return GlucosePrediabetes
	default:
		return GlucoseDiabetes
	}
}
