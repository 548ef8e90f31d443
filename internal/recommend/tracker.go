package recommend

import (
	"context"
	"errors"
	"sync"

	"github.com/bilgisen/veritas/internal/models"
	"github.com/bilgisen/veritas/internal/utils"
)

// ErrSuperseded is returned by Resolve when a call for another link started
// before this one finished.
var ErrSuperseded = errors.New("recommendation superseded by a newer link")

// Tracker follows the article currently on display. Resolving a new link
// cancels the fetch still running for the previous one. Resolving the same
// link again joins the running fetch, or returns its result once complete.
type Tracker struct {
	fetcher *Fetcher

	mu     sync.Mutex
	flight *flight
}

// flight is one fetch for one canonical link. result and err are written
// before done is closed.
type flight struct {
	link   string
	done   chan struct{}
	cancel context.CancelFunc
	result []models.Candidate
	err    error
}

func NewTracker(f *Fetcher) *Tracker {
	return &Tracker{fetcher: f}
}

func (t *Tracker) Resolve(ctx context.Context, link string) ([]models.Candidate, error) {
	canonical := utils.CanonicalLink(link)

	t.mu.Lock()
	if f := t.flight; f != nil && f.link == canonical {
		select {
		case <-f.done:
			if f.err == nil {
				t.mu.Unlock()
				return copyCandidates(f.result), nil
			}
			// A failed fetch is not kept; fetch again.
		default:
			t.mu.Unlock()
			return f.wait(ctx)
		}
	}
	if t.flight != nil {
		t.flight.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	f := &flight{link: canonical, done: make(chan struct{}), cancel: cancel}
	t.flight = f
	t.mu.Unlock()

	res, err := t.fetcher.Fetch(fetchCtx, link)
	cancel()

	t.mu.Lock()
	if t.flight != f {
		res, err = nil, ErrSuperseded
	}
	f.result, f.err = res, err
	close(f.done)
	t.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return copyCandidates(res), nil
}

func (f *flight) wait(ctx context.Context) ([]models.Candidate, error) {
	select {
	case <-f.done:
		if f.err != nil {
			return nil, f.err
		}
		return copyCandidates(f.result), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func copyCandidates(in []models.Candidate) []models.Candidate {
	return append([]models.Candidate(nil), in...)
}
