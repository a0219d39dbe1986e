package engagement

import (
	"errors"
	"sort"
)

// ErrNoData signals that no student produced a single valid change-point,
// which is distinct from "data exists but nobody engaged". Presentation
// layers show a placeholder instead of an empty grid.
var ErrNoData = errors.New("no engagement data for any student")

// DefaultResolution is the heatmap sampling step in milliseconds.
const DefaultResolution int64 = 1000

// ChangePoint is one boolean state transition on a student's clock.
type ChangePoint struct {
	Time    int64
	Engaged bool
}

// StudentSeries pairs a display label with the student's raw observation
// feed for one session.
type StudentSeries struct {
	Label   string
	Records map[string]FeatureRecord
}

// Cell is one sampled grid entry: (tick, student, 0|1).
type Cell struct {
	Time    int64  `json:"time"`
	Student string `json:"student"`
	State   int    `json:"state"`
}

// Matrix is the dense, uniform-resolution grid across all students. It
// fully determines the rendered heatmap; row ordering and sizing are
// presentation concerns left to the consumer.
type Matrix struct {
	Cells      []Cell   `json:"cells"`
	Students   []string `json:"students"`
	Start      int64    `json:"start"`
	End        int64    `json:"end"`
	Resolution int64    `json:"resolution"`
}

// OffsetSeconds translates an axis time back into seconds since session
// start, used by consumers to seek external playback.
func (m Matrix) OffsetSeconds(t int64) float64 {
	if t < m.Start {
		return 0
	}
	return float64(t-m.Start) / 1000
}

// MatrixOptions tunes the densifier.
type MatrixOptions struct {
	// Resolution is the axis step in milliseconds; DefaultResolution when zero.
	Resolution int64
	// ModeOverride, when set, pins every observation to one mode instead of
	// resolving the historical mode per event.
	ModeOverride *SessionMode
	// Fallback applies when the timeline is empty and no override is set.
	Fallback SessionMode
}

// BuildMatrix resamples every student's irregular boolean state onto a
// shared fixed-step axis spanning the earliest to latest valid observation.
// Students without any valid change-point are zero-filled so the grid stays
// rectangular; if no student has one at all, ErrNoData is returned.
func BuildMatrix(students []StudentSeries, timeline Timeline, classifier Classifier, opts MatrixOptions) (Matrix, error) {
	resolution := opts.Resolution
	if resolution <= 0 {
		resolution = DefaultResolution
	}

	points := make([][]ChangePoint, len(students))
	minTime := int64(0)
	maxTime := int64(0)
	any := false

	for i, student := range students {
		points[i] = buildChangePoints(student.Records, timeline, classifier, opts)
		if len(points[i]) == 0 {
			continue
		}

		first := points[i][0].Time
		last := points[i][len(points[i])-1].Time
		if !any || first < minTime {
			minTime = first
		}
		if !any || last > maxTime {
			maxTime = last
		}
		any = true
	}

	if !any {
		return Matrix{}, ErrNoData
	}

	matrix := Matrix{
		Students:   make([]string, 0, len(students)),
		Start:      minTime,
		End:        maxTime,
		Resolution: resolution,
	}

	ticks := int((maxTime-minTime)/resolution) + 1
	matrix.Cells = make([]Cell, 0, ticks*len(students))

	for i, student := range students {
		matrix.Students = append(matrix.Students, student.Label)
		matrix.Cells = append(matrix.Cells, resampleStudent(student.Label, points[i], minTime, maxTime, resolution)...)
	}

	return matrix, nil
}

// buildChangePoints classifies every valid observation and returns the
// change-points sorted ascending by time.
func buildChangePoints(records map[string]FeatureRecord, timeline Timeline, classifier Classifier, opts MatrixOptions) []ChangePoint {
	points := make([]ChangePoint, 0, len(records))
	for key, record := range records {
		at, ok := NormalizeTimeKey(key)
		if !ok {
			continue
		}

		mode := timeline.ModeAt(at, opts.Fallback)
		if opts.ModeOverride != nil {
			mode = *opts.ModeOverride
		}

		points = append(points, ChangePoint{Time: at, Engaged: classifier.Classify(record, mode)})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Time < points[j].Time })

	return points
}

// resampleStudent walks the uniform axis with a monotonic pointer into the
// student's change-point list, carrying the last known state forward. The
// pointer never rescans, keeping the pass O(axis + change-points).
func resampleStudent(label string, points []ChangePoint, start, end, resolution int64) []Cell {
	lastState := false
	if len(points) > 0 {
		lastState = points[0].Engaged
	}

	cells := make([]Cell, 0, int((end-start)/resolution)+1)
	cursor := 0
	for tick := start; tick <= end; tick += resolution {
		for cursor < len(points) && points[cursor].Time <= tick {
			lastState = points[cursor].Engaged
			cursor++
		}

		state := 0
		if lastState {
			state = 1
		}
		cells = append(cells, Cell{Time: tick, Student: label, State: state})
	}

	return cells
}
