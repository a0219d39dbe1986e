package engagement

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func attentiveRecord() FeatureRecord {
	return FeatureRecord{
		DrowsyState:  DrowsyAwake,
		YawnState:    YawnNone,
		GazeState:    GazeCenter,
		PoseState:    PoseForward,
		HandState:    HandNotRaised,
		EmotionState: EmotionNeutral,
	}
}

func TestRuleClassifierTeaching(t *testing.T) {
	classifier := NewRuleClassifier()

	cases := []struct {
		name   string
		mutate func(*FeatureRecord)
		want   bool
	}{
		{"attentive", func(r *FeatureRecord) {}, true},
		{"pose up still engaged", func(r *FeatureRecord) { r.PoseState = PoseUp }, true},
		{"happy still engaged", func(r *FeatureRecord) { r.EmotionState = EmotionHappy }, true},
		{"drowsy", func(r *FeatureRecord) { r.DrowsyState = DrowsyDrowsy }, false},
		{"yawning", func(r *FeatureRecord) { r.YawnState = YawnActive }, false},
		{"gaze left", func(r *FeatureRecord) { r.GazeState = GazeLeft }, false},
		{"pose down", func(r *FeatureRecord) { r.PoseState = PoseDown }, false},
		{"angry", func(r *FeatureRecord) { r.EmotionState = EmotionAngry }, false},
		{"sad", func(r *FeatureRecord) { r.EmotionState = EmotionSad }, false},
		{"fear", func(r *FeatureRecord) { r.EmotionState = EmotionFear }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := attentiveRecord()
			tc.mutate(&record)
			require.Equal(t, tc.want, classifier.Classify(record, ModeTeaching))
		})
	}
}

func TestRuleClassifierDiscussion(t *testing.T) {
	classifier := NewRuleClassifier()

	// Gaze away from center is fine during discussion.
	record := attentiveRecord()
	record.GazeState = GazeLeft
	record.PoseState = PoseRight
	require.True(t, classifier.Classify(record, ModeDiscussion))

	record.PoseState = PoseNotDetected
	require.False(t, classifier.Classify(record, ModeDiscussion))

	record.PoseState = PoseForward
	record.EmotionState = EmotionAngry
	require.False(t, classifier.Classify(record, ModeDiscussion))
}

func TestRuleClassifierExam(t *testing.T) {
	classifier := NewRuleClassifier()

	record := attentiveRecord()
	require.True(t, classifier.Classify(record, ModeExam))

	record.PoseState = PoseDown
	require.True(t, classifier.Classify(record, ModeExam))

	record.HandState = HandRaised
	require.False(t, classifier.Classify(record, ModeExam))

	record.HandState = HandNotRaised
	record.EmotionState = EmotionHappy
	require.False(t, classifier.Classify(record, ModeExam))
}

func TestRuleClassifierBreakAlwaysEngaged(t *testing.T) {
	classifier := NewRuleClassifier()

	worst := FeatureRecord{
		DrowsyState:  DrowsyDrowsy,
		YawnState:    YawnActive,
		GazeState:    GazeNotDetected,
		PoseState:    PoseNotDetected,
		HandState:    HandRaised,
		EmotionState: EmotionAngry,
	}

	require.True(t, classifier.Classify(worst, ModeBreak))
}

func TestRuleClassifierFailClosed(t *testing.T) {
	classifier := NewRuleClassifier()
	record := attentiveRecord()

	require.False(t, classifier.Classify(record, "unknown_mode"))
	require.False(t, classifier.Classify(record, ""))
	// group_work has no predicate clause and falls through the same way.
	require.False(t, classifier.Classify(record, ModeGroupWork))
}

func TestRuleClassifierPure(t *testing.T) {
	classifier := NewRuleClassifier()
	record := attentiveRecord()

	for _, mode := range []SessionMode{ModeTeaching, ModeDiscussion, ModeExam, ModeBreak, "bogus"} {
		first := classifier.Classify(record, mode)
		second := classifier.Classify(record, mode)
		require.Equal(t, first, second, mode)
	}
}

func TestWeightedClassifierThreshold(t *testing.T) {
	classifier := NewWeightedClassifier(7)

	record := attentiveRecord()
	// Awake(2) + NotYawning(1) + Center(2) + Forward(2) + neutral(1) = 8.
	require.True(t, classifier.Classify(record, ModeTeaching))

	record.GazeState = GazeNotDetected
	// Drops to 6, below threshold.
	require.False(t, classifier.Classify(record, ModeTeaching))

	require.True(t, classifier.Classify(record, ModeBreak))
	require.False(t, classifier.Classify(record, "unknown_mode"))
}
