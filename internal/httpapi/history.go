package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"voicera-console/internal/audit"
	"voicera-console/internal/backend"
	"voicera-console/internal/calls"
	"voicera-console/internal/export"
	"voicera-console/internal/listing"
	"voicera-console/internal/reporting"
	"voicera-console/pkg/logger"
)

// historyRows fetches the session's meetings and flattens them. agent_type is
// pushed down to the backend; the remaining filters run locally.
func (h *Handlers) historyRows(c *gin.Context, api *backend.Client) ([]calls.Row, bool) {
	ms, err := api.ListMeetings(c.Request.Context(), c.Query("agent_type"))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return calls.Rows(ms), true
}

func historyQuery(c *gin.Context) listing.Query {
	return listing.ParseQuery(c.Request.URL.Query()).WithDefaultSort("started_at", true)
}

func (h *Handlers) ListHistory(c *gin.Context) {
	_, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	rows, ok := h.historyRows(c, api)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, listing.Apply(rows, listing.History, historyQuery(c)))
}

// HistoryOptions lists the values the history filter bar can offer.
func (h *Handlers) HistoryOptions(c *gin.Context) {
	_, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	rows, ok := h.historyRows(c, api)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, listing.HistoryFilterOptions(rows))
}

func (h *Handlers) GetMeeting(c *gin.Context) {
	_, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	m, err := api.GetMeeting(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meeting": m, "row": m.Row()})
}

// Recording streams the meeting audio through the console so the backend
// token stays server-side.
func (h *Handlers) Recording(c *gin.Context) {
	_, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	body, ct, err := api.Recording(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer body.Close()
	c.Header("Content-Type", ct)
	c.Header("Cache-Control", "private, no-store")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		logger.FromGin(c).Warn("recording stream interrupted", "meeting_id", c.Param("id"), "err", err)
	}
}

// ExportHistory renders every row matching the history query as CSV or PDF.
func (h *Handlers) ExportHistory(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	f, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatCSV)))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	rows, ok := h.historyRows(c, api)
	if !ok {
		return
	}
	rows = listing.Select(rows, listing.History, historyQuery(c))

	now := time.Now()
	loc := h.location()
	var buf bytes.Buffer
	switch f {
	case export.FormatPDF:
		err = export.WritePDF(&buf, rows, export.PDFOptions{
			Subtitle:    historySubtitle(c),
			GeneratedAt: now,
			Location:    loc,
		})
	default:
		err = export.WriteCSV(&buf, rows, loc)
	}
	ev := audit.Event{Type: audit.EventHistoryExported, Target: string(f), Metadata: audit.Metadata(map[string]any{"rows": len(rows)})}
	if err != nil {
		ev.Outcome, ev.Message = audit.OutcomeFailed, err.Error()
		h.record(c, hd, ev)
		h.fail(c, fmt.Errorf("export history: %w", err))
		return
	}
	h.record(c, hd, ev)
	if h.Metrics != nil {
		h.Metrics.ObserveExport(string(f))
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename("call_history", f, now)))
	c.Data(http.StatusOK, f.ContentType(), buf.Bytes())
}

func historySubtitle(c *gin.Context) string {
	var parts []string
	for _, k := range []string{"agent_type", "phone_number", "status", "direction", "from", "to", "q"} {
		if v := c.Query(k); v != "" && !strings.EqualFold(v, "all") {
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, "  ")
}

func (h *Handlers) location() *time.Location {
	if h.Location != nil {
		return h.Location
	}
	return time.UTC
}

// meetingSource adapts the session-bound client to reporting.Repository.
// The backend scopes meetings by token; other orgs' rows are dropped anyway.
type meetingSource struct {
	api       *backend.Client
	agentType string
}

func (s meetingSource) ListMeetings(ctx context.Context, orgID string) ([]calls.Meeting, error) {
	ms, err := s.api.ListMeetings(ctx, s.agentType)
	if err != nil {
		return nil, err
	}
	out := ms[:0]
	for _, m := range ms {
		if m.OrgID == "" || m.OrgID == orgID {
			out = append(out, m)
		}
	}
	return out, nil
}

// Analytics summarizes calls locally from the meeting list. With
// ?source=backend the backend's own analytics endpoint answers instead.
func (h *Handlers) Analytics(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	req := reporting.Request{
		OrgID:       hd.OrgID(),
		AgentType:   c.Query("agent_type"),
		PhoneNumber: c.Query("phone_number"),
		StartDate:   c.Query("start_date"),
		EndDate:     c.Query("end_date"),
	}
	if c.Query("source") == "backend" {
		sum, err := api.Analytics(c.Request.Context(), backend.AnalyticsFilter{
			AgentType:   req.AgentType,
			PhoneNumber: req.PhoneNumber,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
		})
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, sum)
		return
	}
	sum, err := reporting.NewService(meetingSource{api: api, agentType: req.AgentType}).Summary(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
