package engagement

// Feature state values emitted by the capture pipeline.
const (
	DrowsyAwake  = "Awake"
	DrowsyDrowsy = "Drowsy"

	YawnNone   = "NotYawning"
	YawnActive = "Yawning"

	GazeCenter      = "Center"
	GazeLeft        = "Left"
	GazeRight       = "Right"
	GazeNotDetected = "NotDetected"

	PoseForward     = "Forward"
	PoseLeft        = "Left"
	PoseRight       = "Right"
	PoseUp          = "Up"
	PoseDown        = "Down"
	PoseNotDetected = "NotDetected"

	HandRaised    = "Raised"
	HandNotRaised = "NotRaised"

	EmotionHappy    = "happy"
	EmotionNeutral  = "neutral"
	EmotionSurprise = "surprise"
	EmotionAngry    = "angry"
	EmotionSad      = "sad"
	EmotionFear     = "fear"
	EmotionUnknown  = "unknown"
)

// FeatureRecord is one timestamped behavioural snapshot for one student.
type FeatureRecord struct {
	DrowsyState  string `json:"drowsy_state"`
	YawnState    string `json:"yawn_state"`
	GazeState    string `json:"gaze_state"`
	PoseState    string `json:"pose_state"`
	HandState    string `json:"hand_state"`
	EmotionState string `json:"emotion_state"`
}

// Classifier decides whether a snapshot counts as engaged under a mode.
// Implementations must be pure: same inputs, same answer, no side effects.
type Classifier interface {
	Classify(record FeatureRecord, mode SessionMode) bool
}

// RuleClassifier is the primary strategy: a closed per-mode predicate
// table. Each clause encodes pedagogical judgment, not incidental logic,
// so the conditions are spelled out literally rather than factored.
type RuleClassifier struct{}

// NewRuleClassifier returns the predicate-table classifier.
func NewRuleClassifier() RuleClassifier {
	return RuleClassifier{}
}

// Classify applies the per-mode rule table. Modes without a clause,
// including unrecognized strings, classify as not engaged (fail-closed).
func (RuleClassifier) Classify(record FeatureRecord, mode SessionMode) bool {
	switch mode {
	case ModeBreak:
		// Disengagement is never penalized during a break.
		return true

	case ModeTeaching:
		return record.DrowsyState == DrowsyAwake &&
			record.YawnState == YawnNone &&
			record.GazeState == GazeCenter &&
			(record.PoseState == PoseForward || record.PoseState == PoseUp) &&
			record.EmotionState != EmotionAngry &&
			record.EmotionState != EmotionSad &&
			record.EmotionState != EmotionFear

	case ModeDiscussion:
		// Gaze is deliberately unconstrained: students look at peers.
		return record.DrowsyState == DrowsyAwake &&
			record.YawnState == YawnNone &&
			record.PoseState != PoseNotDetected &&
			record.EmotionState != EmotionAngry

	case ModeExam:
		return record.DrowsyState == DrowsyAwake &&
			record.YawnState == YawnNone &&
			record.GazeState == GazeCenter &&
			(record.PoseState == PoseForward || record.PoseState == PoseDown) &&
			record.HandState == HandNotRaised &&
			(record.EmotionState == EmotionNeutral || record.EmotionState == "focused")

	default:
		return false
	}
}

// FeatureWeights assigns additive points to individual feature values.
type FeatureWeights struct {
	Drowsy  map[string]int
	Yawn    map[string]int
	Gaze    map[string]int
	Pose    map[string]int
	Hand    map[string]int
	Emotion map[string]int
}

// WeightedClassifier is the secondary strategy: an additive point-scoring
// table summed per mode against a threshold. It is kept as a parallel
// alternative to RuleClassifier and is never merged with the rule set.
type WeightedClassifier struct {
	weights   map[SessionMode]FeatureWeights
	threshold int
}

// NewWeightedClassifier builds the scoring classifier with the default
// weight table and the supplied engagement threshold.
func NewWeightedClassifier(threshold int) WeightedClassifier {
	return WeightedClassifier{weights: defaultWeights(), threshold: threshold}
}

// Classify sums the per-feature weights for the mode and compares against
// the threshold. Modes without a weight table score zero (fail-closed).
func (c WeightedClassifier) Classify(record FeatureRecord, mode SessionMode) bool {
	if mode == ModeBreak {
		return true
	}

	table, ok := c.weights[mode]
	if !ok {
		return false
	}

	score := table.Drowsy[record.DrowsyState] +
		table.Yawn[record.YawnState] +
		table.Gaze[record.GazeState] +
		table.Pose[record.PoseState] +
		table.Hand[record.HandState] +
		table.Emotion[record.EmotionState]

	return score >= c.threshold
}

func defaultWeights() map[SessionMode]FeatureWeights {
	return map[SessionMode]FeatureWeights{
		ModeTeaching: {
			Drowsy:  map[string]int{DrowsyAwake: 2},
			Yawn:    map[string]int{YawnNone: 1},
			Gaze:    map[string]int{GazeCenter: 2, GazeLeft: 1, GazeRight: 1},
			Pose:    map[string]int{PoseForward: 2, PoseUp: 1},
			Hand:    map[string]int{HandRaised: 1},
			Emotion: map[string]int{EmotionHappy: 1, EmotionNeutral: 1, EmotionSurprise: 1},
		},
		ModeDiscussion: {
			Drowsy:  map[string]int{DrowsyAwake: 2},
			Yawn:    map[string]int{YawnNone: 1},
			Gaze:    map[string]int{GazeCenter: 1, GazeLeft: 1, GazeRight: 1},
			Pose:    map[string]int{PoseForward: 1, PoseLeft: 1, PoseRight: 1, PoseUp: 1, PoseDown: 1},
			Hand:    map[string]int{HandRaised: 2},
			Emotion: map[string]int{EmotionHappy: 2, EmotionNeutral: 1, EmotionSurprise: 1},
		},
		ModeGroupWork: {
			Drowsy:  map[string]int{DrowsyAwake: 2},
			Yawn:    map[string]int{YawnNone: 1},
			Gaze:    map[string]int{GazeCenter: 1, GazeLeft: 1, GazeRight: 1},
			Pose:    map[string]int{PoseForward: 1, PoseLeft: 1, PoseRight: 1},
			Hand:    map[string]int{},
			Emotion: map[string]int{EmotionHappy: 2, EmotionNeutral: 1},
		},
		ModeExam: {
			Drowsy:  map[string]int{DrowsyAwake: 2},
			Yawn:    map[string]int{YawnNone: 1},
			Gaze:    map[string]int{GazeCenter: 2},
			Pose:    map[string]int{PoseForward: 2, PoseDown: 1},
			Hand:    map[string]int{HandNotRaised: 1},
			Emotion: map[string]int{EmotionNeutral: 2},
		},
	}
}
