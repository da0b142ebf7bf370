package view

import (
	"context"
	"sync"

	"inventory/internal/core"
)

// FetchFunc retrieves the full expense list. It must honour ctx.
type FetchFunc func(ctx context.Context) ([]core.ExpenseByCategory, error)

// Loader owns the fetched list and the current selection. A new Refresh
// cancels the fetch still in flight, and results of superseded fetches are
// dropped, so the model always reflects the latest request.
type Loader struct {
	fetch    FetchFunc
	onChange func(Model)

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	loading  bool
	records  []core.ExpenseByCategory
	err      error
	sel      core.BreakdownFilter
	inFlight sync.WaitGroup
}

// NewLoader creates a loader in the Loading state. onChange, if set, is
// called with every new model; it runs without the loader lock held.
func NewLoader(fetch FetchFunc, onChange func(Model)) *Loader {
	return &Loader{
		fetch:    fetch,
		onChange: onChange,
		loading:  true,
		sel:      core.BreakdownFilter{Category: core.AllCategories},
	}
}

// Refresh starts a new fetch derived from ctx.
func (l *Loader) Refresh(ctx context.Context) {
	fetchCtx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	l.cancel = cancel
	l.loading = true
	l.inFlight.Add(1)
	m := l.modelLocked()
	l.mu.Unlock()

	l.notify(m)

	go func() {
		defer l.inFlight.Done()
		defer cancel()

		records, err := l.fetch(fetchCtx)

		l.mu.Lock()
		if gen != l.gen {
			l.mu.Unlock()
			return
		}
		l.loading = false
		l.records, l.err = records, err
		l.cancel = nil
		m := l.modelLocked()
		l.mu.Unlock()

		l.notify(m)
	}()
}

// Select changes the category and date range. The totals are recomputed from
// the list already held; nothing is fetched.
func (l *Loader) Select(sel core.BreakdownFilter) {
	if sel.Category == "" {
		sel.Category = core.AllCategories
	}
	l.mu.Lock()
	l.sel = sel
	m := l.modelLocked()
	l.mu.Unlock()

	l.notify(m)
}

// Model returns the current snapshot.
func (l *Loader) Model() Model {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.modelLocked()
}

// Wait blocks until every started fetch has returned.
func (l *Loader) Wait() {
	l.inFlight.Wait()
}

// Close cancels the fetch in flight, if any.
func (l *Loader) Close() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
	l.mu.Unlock()
	l.Wait()
}

func (l *Loader) modelLocked() Model {
	if l.loading {
		return Model{State: Loading, Message: LoadingMessage, Selection: l.sel}
	}
	return Build(l.records, l.err, l.sel)
}

func (l *Loader) notify(m Model) {
	if l.onChange != nil {
		l.onChange(m)
	}
}
