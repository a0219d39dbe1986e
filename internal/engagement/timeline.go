package engagement

import (
	"sort"
	"strings"
)

// SessionMode is the instructor-declared context a classroom is in. It
// decides which behaviours count as engaged.
type SessionMode string

// Known session modes.
const (
	ModeTeaching   SessionMode = "teaching"
	ModeDiscussion SessionMode = "discussion"
	ModeGroupWork  SessionMode = "group_work"
	ModeBreak      SessionMode = "break"
	ModeExam       SessionMode = "exam"
)

// ParseSessionMode maps a raw mode string onto the closed enumeration.
func ParseSessionMode(value string) (SessionMode, bool) {
	switch SessionMode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeTeaching:
		return ModeTeaching, true
	case ModeDiscussion:
		return ModeDiscussion, true
	case ModeGroupWork:
		return ModeGroupWork, true
	case ModeBreak:
		return ModeBreak, true
	case ModeExam:
		return ModeExam, true
	default:
		return "", false
	}
}

// ModeEvent is one instructor mode declaration on the session clock.
type ModeEvent struct {
	Time int64       `json:"time"`
	Mode SessionMode `json:"mode"`
}

// Timeline is the ascending sequence of mode declarations for a session.
type Timeline []ModeEvent

// BuildTimeline normalizes every key of the mode-change feed and returns the
// events sorted ascending by time. Keys that fail normalization are dropped.
func BuildTimeline(changes map[string]string) Timeline {
	timeline := make(Timeline, 0, len(changes))
	for key, raw := range changes {
		at, ok := NormalizeTimeKey(key)
		if !ok {
			continue
		}
		timeline = append(timeline, ModeEvent{Time: at, Mode: SessionMode(strings.TrimSpace(raw))})
	}

	sort.SliceStable(timeline, func(i, j int) bool { return timeline[i].Time < timeline[j].Time })

	return timeline
}

// ModeAt resolves the mode in effect at t: the last event at or before t.
// A query before the first event clamps to the first event; an empty
// timeline yields the fallback. Equal-time events resolve to the later
// one in the scan, since each matching event overwrites the previous.
func (tl Timeline) ModeAt(t int64, fallback SessionMode) SessionMode {
	if len(tl) == 0 {
		return fallback
	}

	nearest := tl[0].Mode
	for _, event := range tl {
		if event.Time > t {
			break
		}
		nearest = event.Mode
	}

	return nearest
}

// Span returns the first and last event times, or false when empty.
func (tl Timeline) Span() (int64, int64, bool) {
	if len(tl) == 0 {
		return 0, 0, false
	}
	return tl[0].Time, tl[len(tl)-1].Time, true
}
