package photosync

import (
	"context"
	"sync"
)

// Phase is the sync state of one location.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseCountingPages
	PhaseFetchingPage
	PhasePopulated
	PhaseFailed
	// PhaseCancelRequested is held from the moment an in-flight request is
	// cancelled until its underlying call returns.
	PhaseCancelRequested
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCountingPages:
		return "counting_pages"
	case PhaseFetchingPage:
		return "fetching_page"
	case PhasePopulated:
		return "populated"
	case PhaseFailed:
		return "failed"
	case PhaseCancelRequested:
		return "cancel_requested"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Status is a snapshot of a location's sync state.
type Status struct {
	LocationID  int64  `json:"locationId"`
	Phase       Phase  `json:"phase"`
	PagesKnown  bool   `json:"pagesKnown"`
	TotalPages  int    `json:"totalPages"`
	TotalPhotos int    `json:"totalPhotos"`
	Page        int    `json:"page,omitempty"`
	AlbumSize   int    `json:"albumSize"`
	InFlight    bool   `json:"inFlight"`
	LastError   string `json:"lastError,omitempty"`
}

// syncState is guarded by mu. Record writes for a location happen while mu
// is held, so once abort returns no cancelled request can touch records.
type syncState struct {
	mu sync.Mutex

	phase      Phase
	pagesKnown bool
	pages      int
	total      int
	page       int
	albumSize  int
	lastErr    error

	seq      uint64
	inflight context.CancelFunc
	onAbort  func()
}

// begin starts a new request and returns its sequence number and context.
// Any previous request must have been aborted first.
func (s *syncState) begin(parent context.Context, phase Phase, onAbort func()) (uint64, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	s.seq++
	s.inflight = cancel
	s.onAbort = onAbort
	s.phase = phase
	s.lastErr = nil
	return s.seq, ctx
}

// abort cancels the in-flight request, if any, and reports whether there was
// one.
func (s *syncState) abort() bool {
	if s.inflight == nil {
		return false
	}
	s.inflight()
	if s.onAbort != nil {
		s.onAbort()
	}
	s.inflight, s.onAbort = nil, nil
	s.phase = PhaseCancelRequested
	return true
}

// settle is called when the call for seq has returned. It reports whether
// the request is still the active one and may apply its result. A request
// whose context was cancelled by its caller counts as aborted.
func (s *syncState) settle(seq uint64, ctx context.Context) bool {
	if s.seq != seq || s.inflight == nil {
		if s.seq == seq && s.phase == PhaseCancelRequested {
			s.phase = PhaseIdle
		}
		return false
	}

	cancelled := ctx.Err() != nil
	s.inflight()
	s.inflight, s.onAbort = nil, nil
	if cancelled {
		s.phase = PhaseIdle
		return false
	}
	return true
}

func (s *syncState) fail(err error) {
	s.phase = PhaseFailed
	s.lastErr = err
}

func (s *syncState) snapshot(locationID int64) Status {
	st := Status{
		LocationID:  locationID,
		Phase:       s.phase,
		PagesKnown:  s.pagesKnown,
		TotalPages:  s.pages,
		TotalPhotos: s.total,
		Page:        s.page,
		AlbumSize:   s.albumSize,
		InFlight:    s.inflight != nil,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}
