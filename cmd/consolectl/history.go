package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"voicera-console/internal/backend"
	"voicera-console/internal/calls"
	"voicera-console/internal/export"
	"voicera-console/internal/listing"
)

// tokenSession is a fixed bearer token for one CLI run.
type tokenSession struct{ token string }

func (s *tokenSession) Token() string { return s.token }
func (s *tokenSession) OrgID() string { return "" }
func (s *tokenSession) Clear(context.Context) error {
	s.token = ""
	return nil
}

type historyFlags struct {
	input, backendURL, token string
	format, output, tz       string
	filters                  map[string]string
	from, to, search         string
}

func historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Work with call history",
	}
	cmd.AddCommand(historyExportCommand())
	return cmd
}

func historyExportCommand() *cobra.Command {
	f := historyFlags{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export call history to CSV or PDF",
		Long: "Reads meetings from --input (a JSON array as returned by GET /meetings) or " +
			"from the backend with --backend-url and --token, applies the history filters " +
			"and writes every matching row.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryExport(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.input, "input", "", "JSON file of meetings")
	fl.StringVar(&f.backendURL, "backend-url", os.Getenv("BACKEND_SERVER_URL"), "backend base URL")
	fl.StringVar(&f.token, "token", os.Getenv("CONSOLE_TOKEN"), "backend bearer token")
	fl.StringVar(&f.format, "format", string(export.FormatCSV), "csv or pdf")
	fl.StringVarP(&f.output, "output", "o", "", "output file (default: generated name; - for stdout)")
	fl.StringVar(&f.tz, "tz", "UTC", "IANA time zone for rendered times")
	fl.StringToStringVar(&f.filters, "filter", nil, "filters such as agent_type=sales,status=completed")
	fl.StringVar(&f.from, "from", "", "start date (YYYY-MM-DD or RFC 3339)")
	fl.StringVar(&f.to, "to", "", "end date, inclusive")
	fl.StringVar(&f.search, "search", "", "free-text search")
	return cmd
}

func runHistoryExport(ctx context.Context, stdout io.Writer, f historyFlags) error {
	format, err := export.ParseFormat(f.format)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(f.tz)
	if err != nil {
		return fmt.Errorf("time zone: %w", err)
	}
	meetings, err := loadMeetings(ctx, f)
	if err != nil {
		return err
	}

	v := url.Values{}
	for k, val := range f.filters {
		v.Set(k, val)
	}
	for k, val := range map[string]string{"from": f.from, "to": f.to, "q": f.search} {
		if val != "" {
			v.Set(k, val)
		}
	}
	q := listing.ParseQuery(v).WithDefaultSort("started_at", true)
	rows := listing.Select(calls.Rows(meetings), listing.History, q)

	now := time.Now()
	var w io.Writer = stdout
	name := f.output
	if name == "" {
		name = export.Filename("call_history", format, now)
	}
	if name != "-" {
		file, err := os.Create(name)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	if format == export.FormatPDF {
		err = export.WritePDF(w, rows, export.PDFOptions{GeneratedAt: now, Location: loc})
	} else {
		err = export.WriteCSV(w, rows, loc)
	}
	if err != nil {
		return err
	}
	if name != "-" {
		fmt.Fprintf(stdout, "wrote %d rows to %s\n", len(rows), name)
	}
	return nil
}

func loadMeetings(ctx context.Context, f historyFlags) ([]calls.Meeting, error) {
	if f.input != "" {
		b, err := os.ReadFile(f.input)
		if err != nil {
			return nil, err
		}
		var ms []calls.Meeting
		if err := json.Unmarshal(b, &ms); err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.input, err)
		}
		return ms, nil
	}
	if f.backendURL == "" || f.token == "" {
		return nil, fmt.Errorf("either --input or both --backend-url and --token are required")
	}
	api := backend.New(f.backendURL, &tokenSession{token: f.token})
	return api.ListMeetings(ctx, f.filters["agent_type"])
}
