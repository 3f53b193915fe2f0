package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"voicera-console/internal/calls"
)

// WriteCSV writes a header row and one record per row. Times are rendered
// in loc (UTC when nil).
func WriteCSV(w io.Writer, rows []calls.Row, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(record(r, loc)); err != nil {
			return fmt.Errorf("export: write csv row %s: %w", r.MeetingID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: csv writer: %w", err)
	}
	return nil
}
