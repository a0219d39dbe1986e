package dto

import "time"

// HeatmapCellResponse is one sampled grid entry.
type HeatmapCellResponse struct {
	Time    int64  `json:"time"`
	Student string `json:"student"`
	State   int    `json:"state"`
}

// HeatmapResponse is the dense class-wide engagement matrix. NoData is set
// when no student produced a valid observation, so clients can render a
// placeholder instead of an empty grid.
type HeatmapResponse struct {
	SessionID    uint                  `json:"session_id"`
	Cells        []HeatmapCellResponse `json:"cells"`
	Students     []string              `json:"students"`
	Start        int64                 `json:"start"`
	End          int64                 `json:"end"`
	ResolutionMs int64                 `json:"resolution_ms"`
	NoData       bool                  `json:"no_data"`
	Sequence     uint64                `json:"sequence"`
	Recomputed   bool                  `json:"recomputed"`
	GeneratedAt  time.Time             `json:"generated_at"`
}

// SeekResponse translates a heatmap selection into a playback offset.
type SeekResponse struct {
	Student       string  `json:"student"`
	Time          int64   `json:"time"`
	OffsetSeconds float64 `json:"offset_seconds"`
}
