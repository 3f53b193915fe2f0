package reporting

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"voicera-console/internal/calls"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository supplies the meetings a summary is computed over. Implementations
// must scope results to orgID.
type Repository interface {
	ListMeetings(ctx context.Context, orgID string) ([]calls.Meeting, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Summary(ctx context.Context, req Request) (Summary, error) {
	if req.OrgID == "" {
		return Summary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return Summary{}, errors.New("reporting: repository not configured")
	}
	rows, err := s.repo.ListMeetings(ctx, req.OrgID)
	if err != nil {
		return Summary{}, err
	}
	out := Summarize(req, rows)
	out.CalculatedAt = s.now().UTC().Format(time.RFC3339)
	return out, nil
}

// Summarize computes call analytics over meetings that match req.
//
// A call is connected when it was not busy and either ended or has a positive
// duration. The average covers connected calls with a known duration. The
// most used agent is the one with the most calls; ties go to the agent seen
// first.
func Summarize(req Request, meetings []calls.Meeting) Summary {
	out := Summary{
		OrgID:          req.OrgID,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		AgentBreakdown: []AgentCount{},
	}

	var (
		totalMinutes float64
		timed        int
		order        []string
		counts       = map[string]int{}
	)
	for _, m := range meetings {
		if !req.matches(m) {
			continue
		}
		out.CallsAttempted++
		if m.AgentType != "" {
			if _, seen := counts[m.AgentType]; !seen {
				order = append(order, m.AgentType)
			}
			counts[m.AgentType]++
		}
		if !m.Connected() {
			continue
		}
		out.CallsConnected++
		if secs, ok := m.DurationSeconds(); ok {
			totalMinutes += secs / 60
			timed++
		}
	}

	if timed > 0 {
		out.AverageCallDuration = round2(totalMinutes / float64(timed))
	}
	out.TotalMinutesConnected = round2(totalMinutes)

	for _, a := range order {
		out.AgentBreakdown = append(out.AgentBreakdown, AgentCount{AgentType: a, CallCount: counts[a]})
	}
	sort.SliceStable(out.AgentBreakdown, func(i, j int) bool {
		return out.AgentBreakdown[i].CallCount > out.AgentBreakdown[j].CallCount
	})
	if len(out.AgentBreakdown) > 0 {
		out.MostUsedAgent = out.AgentBreakdown[0].AgentType
		out.MostUsedAgentCount = out.AgentBreakdown[0].CallCount
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
