package reporting

import (
	"context"
	"errors"
	"sync"

	"voicera-console/internal/calls"
)

// MemoryRepo is an in-memory meeting source for tests and the CLI. It
// enforces org isolation on reads.
type MemoryRepo struct {
	mu       sync.Mutex
	Meetings []calls.Meeting
}

func NewMemoryRepo(ms ...calls.Meeting) *MemoryRepo { return &MemoryRepo{Meetings: ms} }

func (r *MemoryRepo) ListMeetings(_ context.Context, orgID string) ([]calls.Meeting, error) {
	if orgID == "" {
		return nil, errors.New("org_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]calls.Meeting, 0, len(r.Meetings))
	for _, m := range r.Meetings {
		if m.OrgID != "" && m.OrgID != orgID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MemoryRepo) Add(ms ...calls.Meeting) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Meetings = append(r.Meetings, ms...)
}
