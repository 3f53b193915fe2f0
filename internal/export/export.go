// Package export renders the call-history table as CSV or PDF.
package export

import (
	"fmt"
	"strings"
	"time"

	"voicera-console/internal/calls"
)

// Format is a supported export format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("export: unsupported format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Filename is the download name for an export generated at now.
func Filename(prefix string, f Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.UTC().Format("20060102T150405Z"), f)
}

var header = []string{
	"Meeting ID", "Agent", "Direction", "From", "To", "Started", "Duration", "Status", "Recording", "Transcript",
}

func record(r calls.Row, loc *time.Location) []string {
	started := ""
	if !r.StartedAt.IsZero() {
		started = r.StartedAt.In(loc).Format("2006-01-02 15:04:05")
	}
	return []string{
		r.MeetingID,
		r.AgentType,
		string(r.Direction),
		r.FromNumber,
		r.ToNumber,
		started,
		r.Duration,
		string(r.Status),
		yesNo(r.HasRecording),
		yesNo(r.HasTranscript),
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
