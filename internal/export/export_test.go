package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicera-console/internal/calls"
)

func sampleRows() []calls.Row {
	inbound := true
	return calls.Rows([]calls.Meeting{
		{MeetingID: "m1", AgentType: "sales", Inbound: &inbound, FromNumber: "+911", ToNumber: "+912",
			StartTimeUTC: "2025-01-02T10:00:00Z", EndTimeUTC: "2025-01-02T10:01:05Z", RecordingURL: "s3://r"},
		{MeetingID: "m2", AgentType: "support, tier 2", FromNumber: "+913"},
	})
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows(), nil))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, header, recs[0])
	assert.Equal(t, []string{"m1", "sales", "inbound", "+911", "+912", "2025-01-02 10:00:00", "1:05", "completed", "yes", "no"}, recs[1])
	assert.Equal(t, "support, tier 2", recs[2][1])
	assert.Equal(t, "-", recs[2][6])
	assert.Equal(t, "unknown", recs[2][7])
}

func TestWriteCSVLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows()[:1], ist))
	assert.Contains(t, buf.String(), "2025-01-02 15:30:00")
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	err := WritePDF(&buf, sampleRows(), PDFOptions{Subtitle: "Agent: sales", GeneratedAt: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))

	buf.Reset()
	require.NoError(t, WritePDF(&buf, nil, PDFOptions{}))
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
}

func TestFormatAndFilename(t *testing.T) {
	f, err := ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)

	now := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "call_history_20250102T150405Z.csv", Filename("call_history", FormatCSV, now))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 40))
	long := strings.Repeat("x", 50)
	got := truncate(long, 20)
	assert.Equal(t, 11, len(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}
