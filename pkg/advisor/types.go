package advisor

import "context"

// StudentProfile carries the aggregate facts the advisor reasons over.
type StudentProfile struct {
	StudentName       string
	SessionTitle      string
	EngagedPercent    float64
	DisengagedPercent float64
	ModePercents      map[string]float64
	PoseCounts        map[string]int
	GazeCounts        map[string]int
	EmotionCounts     map[string]int
	YawnCounts        map[string]int
	Note              string
}

// Recommendation is the structured suggestion list returned by the model.
type Recommendation struct {
	Suggestions []string               `json:"suggestions"`
	Model       string                 `json:"model,omitempty"`
	Raw         map[string]interface{} `json:"raw,omitempty"`
}

// Advisor describes a model capable of turning an engagement profile into
// human-readable teaching suggestions.
type Advisor interface {
	Recommend(ctx context.Context, profile StudentProfile) (Recommendation, error)
}
