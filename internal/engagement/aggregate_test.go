package engagement

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregateTotalsInvariant(t *testing.T) {
	records := map[string]FeatureRecord{
		"1000":    attentiveRecord(),
		"2000":    {DrowsyState: DrowsyDrowsy, YawnState: YawnActive},
		"3000":    attentiveRecord(),
		"garbage": attentiveRecord(),
	}

	timeline := BuildTimeline(map[string]string{"1000": "teaching"})
	aggregate := Aggregate(records, timeline, NewRuleClassifier(), ModeTeaching)

	require.Equal(t, 1, aggregate.Skipped)
	require.Equal(t, 3, aggregate.Overall.Engaged+aggregate.Overall.Disengaged)
	require.Equal(t, 2, aggregate.Overall.Engaged)
	require.Equal(t, 1, aggregate.Overall.Disengaged)

	byMode := aggregate.ByMode[ModeTeaching]
	require.Equal(t, aggregate.Overall, byMode)
}

func TestAggregatePerModeTallies(t *testing.T) {
	// Teaching until t=2000s, then break: the drowsy record lands in break
	// and still counts engaged.
	records := map[string]FeatureRecord{
		"1500": attentiveRecord(),
		"2500": {DrowsyState: DrowsyDrowsy, YawnState: YawnActive},
	}
	timeline := BuildTimeline(map[string]string{"1000": "teaching", "2000": "break"})

	aggregate := Aggregate(records, timeline, NewRuleClassifier(), ModeTeaching)

	require.Equal(t, Tally{Engaged: 1}, aggregate.ByMode[ModeTeaching])
	require.Equal(t, Tally{Engaged: 1}, aggregate.ByMode[ModeBreak])
	require.Equal(t, Tally{Engaged: 2}, aggregate.Overall)
}

func TestAggregateEmptyTimelineUsesFallback(t *testing.T) {
	records := map[string]FeatureRecord{"1000": attentiveRecord()}

	aggregate := Aggregate(records, nil, NewRuleClassifier(), ModeBreak)
	require.Equal(t, Tally{Engaged: 1}, aggregate.ByMode[ModeBreak])
}

func TestAggregateFrequencyBuckets(t *testing.T) {
	records := map[string]FeatureRecord{
		"1000": attentiveRecord(),
		"2000": {PoseState: "Sideways", GazeState: GazeLeft, EmotionState: "confused", YawnState: YawnActive},
	}

	aggregate := Aggregate(records, nil, NewRuleClassifier(), ModeTeaching)

	require.Equal(t, 1, aggregate.PoseCounts[PoseForward])
	require.Equal(t, 1, aggregate.PoseCounts[EmotionUnknown])
	require.Equal(t, 1, aggregate.GazeCounts[GazeCenter])
	require.Equal(t, 1, aggregate.GazeCounts[GazeLeft])
	require.Equal(t, 1, aggregate.EmotionCounts[EmotionNeutral])
	require.Equal(t, 1, aggregate.EmotionCounts[EmotionUnknown])
	require.Equal(t, 1, aggregate.YawnCounts[YawnNone])
	require.Equal(t, 1, aggregate.YawnCounts[YawnActive])
}

func TestTallyPercentages(t *testing.T) {
	require.Equal(t, float64(0), Tally{}.EngagedPercent())
	require.Equal(t, float64(0), Tally{}.DisengagedPercent())

	tally := Tally{Engaged: 2, Disengaged: 1}
	require.Equal(t, 66.7, tally.EngagedPercent())
	require.Equal(t, 33.3, tally.DisengagedPercent())

	require.Equal(t, float64(100), Tally{Engaged: 5}.EngagedPercent())
}
