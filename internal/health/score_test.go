package health

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vladimiradmaev/health-helper/internal/domain"
)

func TestScore(t *testing.T) {
	f := domain.Float
	tests := []struct {
		name    string
		bmi     *float64
		glucose *float64
		want    int
	}{
		{"absent values", nil, nil, 70},
		{"healthy", f(22), f(85), 100},
		{"obese with diabetes range glucose", f(35), f(140), 45},
		{"slightly under", f(17.5), nil, 75},
		{"overweight", f(27), nil, 75},
		{"severely under", f(16), nil, 60},
		{"prediabetes", nil, f(110), 65},
		{"glucose upper normal bound", nil, f(99), 85},
		{"glucose 126", nil, f(126), 55},
		{"low glucose has no rule", nil, f(60), 70},
		{"glucose without bmi zero", f(0), f(0), 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.bmi, tt.glucose))
		})
	}
}

func TestScoreAlwaysInRange(t *testing.T) {
	values := []float64{-1e9, -10, 0, 16.9, 17, 18.5, 25, 30, 69, 70, 99, 99.5, 126, 1e9, math.Inf(1), math.Inf(-1)}
	for _, b := range values {
		for _, g := range values {
			s := Score(domain.Float(b), domain.Float(g))
			assert.GreaterOrEqual(t, s, 0)
			assert.LessOrEqual(t, s, 100)
		}
	}
}

func TestComputeScoreUsesRecord(t *testing.T) {
	r := domain.HealthRecord{BMI: domain.Float(22), BloodGlucose: domain.Float(85)}
	assert.Equal(t, 100, ComputeScore(r))
	assert.Equal(t, 70, ComputeScore(domain.HealthRecord{}))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Excellent", ScoreLabel(100))
	assert.Equal(t, "Good", ScoreLabel(70))
	assert.Equal(t, "Fair", ScoreLabel(55))
	assert.Equal(t, "Needs attention", ScoreLabel(45))

	assert.Equal(t, GlucoseLow, GlucoseStatus(65))
	assert.Equal(t, GlucoseNormal, GlucoseStatus(99))
	assert.Equal(t, GlucosePrediabetes, GlucoseStatus(100))
	assert.Equal(t, GlucoseDiabetes, GlucoseStatus(126))
}
