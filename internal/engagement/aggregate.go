package engagement

import "math"

// Tally counts engaged versus disengaged observations.
type Tally struct {
	Engaged    int `json:"engaged"`
	Disengaged int `json:"disengaged"`
}

// EngagedPercent reports the engaged share as a percentage rounded to one
// decimal. A zero denominator reports 0, never NaN.
func (t Tally) EngagedPercent() float64 {
	total := t.Engaged + t.Disengaged
	if total == 0 {
		return 0
	}
	return roundOneDecimal(float64(t.Engaged) / float64(total) * 100)
}

// DisengagedPercent mirrors EngagedPercent for the disengaged share.
func (t Tally) DisengagedPercent() float64 {
	total := t.Engaged + t.Disengaged
	if total == 0 {
		return 0
	}
	return roundOneDecimal(float64(t.Disengaged) / float64(total) * 100)
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

// StudentAggregate is the derived per-student summary: overall and
// per-mode tallies plus per-feature-value frequency tables. It is
// recomputed on demand and never stored.
type StudentAggregate struct {
	Overall       Tally                `json:"overall"`
	ByMode        map[SessionMode]Tally `json:"by_mode"`
	PoseCounts    map[string]int       `json:"pose_counts"`
	GazeCounts    map[string]int       `json:"gaze_counts"`
	EmotionCounts map[string]int       `json:"emotion_counts"`
	YawnCounts    map[string]int       `json:"yawn_counts"`
	Skipped       int                  `json:"skipped"`
}

var (
	knownGaze    = map[string]struct{}{GazeCenter: {}, GazeLeft: {}, GazeRight: {}, GazeNotDetected: {}}
	knownPose    = map[string]struct{}{PoseForward: {}, PoseLeft: {}, PoseRight: {}, PoseUp: {}, PoseDown: {}, PoseNotDetected: {}}
	knownYawn    = map[string]struct{}{YawnNone: {}, YawnActive: {}}
	knownEmotion = map[string]struct{}{
		EmotionHappy: {}, EmotionNeutral: {}, EmotionSurprise: {},
		EmotionAngry: {}, EmotionSad: {}, EmotionFear: {}, EmotionUnknown: {},
	}
)

// Aggregate walks one student's full observation history, resolves the mode
// active at each record, classifies it, and accumulates the tallies. The
// reduction is order-independent: no record depends on its neighbours.
// Records whose keys fail normalization are skipped, not counted.
func Aggregate(records map[string]FeatureRecord, timeline Timeline, classifier Classifier, fallback SessionMode) StudentAggregate {
	aggregate := StudentAggregate{
		ByMode:        make(map[SessionMode]Tally),
		PoseCounts:    make(map[string]int),
		GazeCounts:    make(map[string]int),
		EmotionCounts: make(map[string]int),
		YawnCounts:    make(map[string]int),
	}

	for key, record := range records {
		at, ok := NormalizeTimeKey(key)
		if !ok {
			aggregate.Skipped++
			continue
		}

		mode := timeline.ModeAt(at, fallback)
		engaged := classifier.Classify(record, mode)

		aggregate.PoseCounts[bucketValue(record.PoseState, knownPose)]++
		aggregate.GazeCounts[bucketValue(record.GazeState, knownGaze)]++
		aggregate.EmotionCounts[bucketValue(record.EmotionState, knownEmotion)]++
		aggregate.YawnCounts[bucketValue(record.YawnState, knownYawn)]++

		tally := aggregate.ByMode[mode]
		if engaged {
			aggregate.Overall.Engaged++
			tally.Engaged++
		} else {
			aggregate.Overall.Disengaged++
			tally.Disengaged++
		}
		aggregate.ByMode[mode] = tally
	}

	return aggregate
}

// bucketValue folds unseen feature values into the unknown bucket instead
// of dropping them, so the frequency tables always sum to the record count.
func bucketValue(value string, known map[string]struct{}) string {
	if _, ok := known[value]; ok {
		return value
	}
	return EmotionUnknown
}
