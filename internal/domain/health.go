package domain

import "time"

// Gender of the person the record describes. The empty value means "not set".
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// HealthRecord is the live biometric profile of a user.
// BMI and BMICategory are derived from Height and Weight and are only
// written by the health package.
type HealthRecord struct {
	Age              int      `json:"age,omitempty"`
	Gender           Gender   `json:"gender,omitempty"`
	Height           float64  `json:"height,omitempty"` // cm
	Weight           float64  `json:"weight,omitempty"` // kg
	BMI              *float64 `json:"bmi,omitempty"`
	BMICategory      string   `json:"bmiCategory,omitempty"`
	BloodGlucose     *float64 `json:"bloodGlucose"` // mg/dL, nil = unspecified
	CompletedProfile bool     `json:"completedProfile"`

	// Filled by the advanced analysis pass only.
	SleepScore           *int `json:"sleepScore,omitempty"`
	ExerciseScore        *int `json:"exerciseScore,omitempty"`
	OverallAdvancedScore *int `json:"overallAdvancedScore,omitempty"`
}

// Clone returns a deep copy of r.
func (r HealthRecord) Clone() HealthRecord {
	out := r
	out.BMI = cloneFloat(r.BMI)
	out.BloodGlucose = cloneFloat(r.BloodGlucose)
	out.SleepScore = cloneInt(r.SleepScore)
	out.ExerciseScore = cloneInt(r.ExerciseScore)
	out.OverallAdvancedScore = cloneInt(r.OverallAdvancedScore)
	return out
}

// MissingFields lists the profile fields required before recommendations
// can be requested.
func (r HealthRecord) MissingFields() []string {
	var missing []string
	if r.Age <= 0 {
		missing = append(missing, "age")
	}
	if !r.Gender.Valid() {
		missing = append(missing, "gender")
	}
	if r.Height <= 0 {
		missing = append(missing, "height")
	}
	if r.Weight <= 0 {
		missing = append(missing, "weight")
	}
	return missing
}

// HistoryEntry is an immutable snapshot of a record saved by the user.
type HistoryEntry struct {
	ID         string       `json:"id"`
	Date       time.Time    `json:"date"`
	HealthData HealthRecord `json:"healthData"`
	Analysis   *Analysis    `json:"analysis,omitempty"`
}

// Clone returns a deep copy of e.
func (e HistoryEntry) Clone() HistoryEntry {
	out := e
	out.HealthData = e.HealthData.Clone()
	if e.Analysis != nil {
		a := e.Analysis.Clone()
		out.Analysis = &a
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
