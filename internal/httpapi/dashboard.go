package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"voicera-console/internal/backend"
	"voicera-console/internal/calls"
	"voicera-console/internal/listing"
	"voicera-console/internal/reporting"
)

const recentCalls = 5

type dashboard struct {
	Agents       int               `json:"agents"`
	PhoneNumbers int               `json:"phone_numbers"`
	Attached     int               `json:"attached_numbers"`
	Summary      reporting.Summary `json:"summary"`
	Recent       []calls.Row       `json:"recent_calls"`
}

// Dashboard loads agents, numbers and meetings concurrently and summarizes
// them. Any failed fetch fails the whole view.
func (h *Handlers) Dashboard(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	var (
		agents   []backend.Agent
		numbers  []backend.PhoneNumber
		meetings []calls.Meeting
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		agents, err = api.ListAgents(ctx, hd.OrgID())
		return err
	})
	g.Go(func() error {
		var err error
		numbers, err = api.ListPhoneNumbers(ctx, hd.OrgID())
		return err
	})
	g.Go(func() error {
		var err error
		meetings, err = api.ListMeetings(ctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		h.fail(c, err)
		return
	}

	out := dashboard{
		Agents:       len(agents),
		PhoneNumbers: len(numbers),
		Summary:      reporting.Summarize(reporting.Request{OrgID: hd.OrgID()}, meetings),
	}
	for _, n := range numbers {
		if n.Attached() {
			out.Attached++
		}
	}
	out.Summary.CalculatedAt = time.Now().UTC().Format(time.RFC3339)
	recent := listing.Apply(calls.Rows(meetings), listing.History, listing.Query{
		SortKey:  "started_at",
		Desc:     true,
		PageSize: recentCalls,
	})
	out.Recent = recent.Items
	c.JSON(http.StatusOK, out)
}
