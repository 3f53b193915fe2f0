package calls

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Meeting is a call record as returned by the backend. It is read-only from the
// console's perspective; display fields are derived from the raw timestamps.
//
// Timestamps stay as the backend's ISO strings so the record round-trips
// unchanged; use the accessor methods for parsed values.
type Meeting struct {
	MeetingID     string `json:"meeting_id"`
	AgentType     string `json:"agent_type"`
	OrgID         string `json:"org_id,omitempty"`
	AgentCategory string `json:"agent_category,omitempty"`

	Inbound    *bool  `json:"inbound,omitempty"`
	FromNumber string `json:"from_number,omitempty"`
	ToNumber   string `json:"to_number,omitempty"`

	CreatedAt    string `json:"created_at,omitempty"`
	StartTimeUTC string `json:"start_time_utc,omitempty"`
	EndTimeUTC   string `json:"end_time_utc,omitempty"`

	// Duration is in seconds when the backend has computed it.
	Duration *float64 `json:"duration,omitempty"`

	RecordingURL      string           `json:"recording_url,omitempty"`
	TranscriptURL     string           `json:"transcript_url,omitempty"`
	TranscriptContent string           `json:"transcript_content,omitempty"`
	Transcript        []map[string]any `json:"transcript,omitempty"`

	CallBusy *bool `json:"call_busy,omitempty"`
}

type Status string

const (
	StatusCompleted  Status = "completed"
	StatusBusy       Status = "busy"
	StatusInProgress Status = "in_progress"
	StatusUnknown    Status = "unknown"
)

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
	DirectionUnknown  Direction = "unknown"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts the timestamp shapes the backend emits. Values without a zone
// are UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func (m Meeting) StartedAt() (time.Time, bool) { return ParseTime(m.StartTimeUTC) }

func (m Meeting) EndedAt() (time.Time, bool) { return ParseTime(m.EndTimeUTC) }

// When is the best timestamp for ordering: start, else created.
func (m Meeting) When() time.Time {
	if t, ok := m.StartedAt(); ok {
		return t
	}
	t, _ := ParseTime(m.CreatedAt)
	return t
}

// DurationSeconds prefers the stored duration and falls back to end minus start.
func (m Meeting) DurationSeconds() (float64, bool) {
	if m.Duration != nil && *m.Duration > 0 {
		return *m.Duration, true
	}
	start, okS := m.StartedAt()
	end, okE := m.EndedAt()
	if okS && okE {
		if d := end.Sub(start).Seconds(); d > 0 {
			return d, true
		}
	}
	return 0, false
}

// Connected follows the analytics rule: not busy, and either ended or with a
// positive duration.
func (m Meeting) Connected() bool {
	if m.CallBusy != nil && *m.CallBusy {
		return false
	}
	if m.EndTimeUTC != "" {
		return true
	}
	return m.Duration != nil && *m.Duration > 0
}

func (m Meeting) Status() Status {
	switch {
	case m.CallBusy != nil && *m.CallBusy:
		return StatusBusy
	case m.Connected():
		return StatusCompleted
	case m.StartTimeUTC != "":
		return StatusInProgress
	default:
		return StatusUnknown
	}
}

func (m Meeting) Direction() Direction {
	if m.Inbound == nil {
		return DirectionUnknown
	}
	if *m.Inbound {
		return DirectionInbound
	}
	return DirectionOutbound
}

// AgentNumber is the organization's side of the call.
func (m Meeting) AgentNumber() string {
	if m.Direction() == DirectionOutbound {
		return m.FromNumber
	}
	return m.ToNumber
}

// CallerNumber is the remote party.
func (m Meeting) CallerNumber() string {
	if m.Direction() == DirectionOutbound {
		return m.ToNumber
	}
	return m.FromNumber
}

// FormatDuration renders seconds as m:ss, or h:mm:ss past an hour.
func FormatDuration(seconds float64) string {
	total := int(math.Round(seconds))
	if total < 0 {
		total = 0
	}
	h, rem := total/3600, total%3600
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, rem/60, rem%60)
	}
	return fmt.Sprintf("%d:%02d", rem/60, rem%60)
}

// Row is the flattened history-table view of a meeting.
type Row struct {
	MeetingID       string    `json:"meeting_id"`
	AgentType       string    `json:"agent_type"`
	Direction       Direction `json:"direction"`
	FromNumber      string    `json:"from_number"`
	ToNumber        string    `json:"to_number"`
	AgentNumber     string    `json:"agent_number"`
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds float64   `json:"duration_seconds"`
	Duration        string    `json:"duration"`
	Status          Status    `json:"status"`
	HasRecording    bool      `json:"has_recording"`
	HasTranscript   bool      `json:"has_transcript"`
}

func (m Meeting) Row() Row {
	r := Row{
		MeetingID:     m.MeetingID,
		AgentType:     m.AgentType,
		Direction:     m.Direction(),
		FromNumber:    m.FromNumber,
		ToNumber:      m.ToNumber,
		AgentNumber:   m.AgentNumber(),
		StartedAt:     m.When(),
		Status:        m.Status(),
		HasRecording:  m.RecordingURL != "",
		HasTranscript: m.TranscriptURL != "" || m.TranscriptContent != "" || len(m.Transcript) > 0,
		Duration:      "-",
	}
	if d, ok := m.DurationSeconds(); ok {
		r.DurationSeconds = d
		r.Duration = FormatDuration(d)
	}
	return r
}

func Rows(ms []Meeting) []Row {
	out := make([]Row, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Row())
	}
	return out
}
