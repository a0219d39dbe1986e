package dto

import "time"

// ModeTallyResponse reports engaged/disengaged counts with percentages.
type ModeTallyResponse struct {
	Engaged           int     `json:"engaged"`
	Disengaged        int     `json:"disengaged"`
	EngagedPercent    float64 `json:"engaged_percent"`
	DisengagedPercent float64 `json:"disengaged_percent"`
}

// StudentEngagementResponse is the per-student drill-down aggregate.
type StudentEngagementResponse struct {
	SessionID      uint                         `json:"session_id"`
	StudentID      uint                         `json:"student_id"`
	StudentName    string                       `json:"student_name,omitempty"`
	Overall        ModeTallyResponse            `json:"overall"`
	ByMode         map[string]ModeTallyResponse `json:"by_mode"`
	PoseCounts     map[string]int               `json:"pose_counts"`
	GazeCounts     map[string]int               `json:"gaze_counts"`
	EmotionCounts  map[string]int               `json:"emotion_counts"`
	YawnCounts     map[string]int               `json:"yawn_counts"`
	SkippedRecords int                          `json:"skipped_records"`
	GeneratedAt    time.Time                    `json:"generated_at"`
	CacheHit       bool                         `json:"cache_hit"`
}

// RecommendationResponse carries advisor suggestions for one student.
type RecommendationResponse struct {
	SessionID   uint      `json:"session_id"`
	StudentID   uint      `json:"student_id"`
	Suggestions []string  `json:"suggestions"`
	Model       string    `json:"model,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	CacheHit    bool      `json:"cache_hit"`
}
