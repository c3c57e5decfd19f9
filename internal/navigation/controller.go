// Package navigation owns the current position within a procedure and keeps
// every view that displays it in step.
package navigation

import (
	"sync"
	"time"

	"github.com/raphaelgruber/procview/internal/models"
)

// DefaultMinDisplay is how long the loading screen stays up before the first
// item opens.
const DefaultMinDisplay = 1500 * time.Millisecond

// Source names what caused a position change.
type Source string

const (
	SourceSeek   Source = "seek"
	SourceNext   Source = "next"
	SourcePrev   Source = "previous"
	SourceAnswer Source = "answer"
	SourceOpen   Source = "open"
	SourceDetail Source = "detail"
)

// Event is delivered to subscribers after the position or detail visibility
// changes.
type Event struct {
	Position      int
	Previous      int
	DetailVisible bool
	Source        Source
}

// Resolver maps an answer to the index it targets.
type Resolver func(models.Answer) (int, bool)

// LoadingPolicy controls the loading screen shown before the first item.
type LoadingPolicy struct {
	MinDisplay time.Duration
}

// DefaultLoadingPolicy returns the policy used when none is configured.
func DefaultLoadingPolicy() LoadingPolicy {
	return LoadingPolicy{MinDisplay: DefaultMinDisplay}
}

// Remaining returns how much longer the loading screen must stay visible
// given when loading started.
func (p LoadingPolicy) Remaining(started, now time.Time) time.Duration {
	if p.MinDisplay <= 0 {
		return 0
	}
	left := p.MinDisplay - now.Sub(started)
	if left < 0 {
		return 0
	}
	return left
}

type subscriber struct {
	id int
	fn func(Event)
}

// Controller is the single writer of the current position. Subscribers are
// notified synchronously, in subscription order, before the mutating call
// returns.
type Controller struct {
	mu       sync.Mutex
	count    int
	pos      int
	detail   bool
	resolver Resolver
	subs     []subscriber
	nextID   int
}

// New creates a controller over count items positioned at 0. A nil resolver
// makes every answer unresolvable.
func New(count int, resolver Resolver) *Controller {
	if count < 0 {
		count = 0
	}
	return &Controller{count: count, resolver: resolver}
}

// Position returns the current index.
func (c *Controller) Position() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

// Count returns the number of items.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// DetailVisible reports whether the item detail view is open.
func (c *Controller) DetailVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detail
}

// CanNext reports whether Next would move.
func (c *Controller) CanNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos+1 < c.count
}

// CanPrevious reports whether Previous would move.
func (c *Controller) CanPrevious() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos > 0
}

// Seek moves to index i. Out-of-range indexes are ignored and return false.
// Seeking to the current position succeeds without notifying.
func (c *Controller) Seek(i int) bool {
	return c.move(i, false, SourceSeek)
}

// Next advances one item; a no-op on the last item.
func (c *Controller) Next() bool {
	return c.move(c.Position()+1, false, SourceNext)
}

// Previous goes back one item; a no-op on the first item.
func (c *Controller) Previous() bool {
	return c.move(c.Position()-1, false, SourcePrev)
}

// JumpToAnswer moves to the item the answer targets. Unresolved answers leave
// the position unchanged.
func (c *Controller) JumpToAnswer(answer models.Answer) bool {
	if c.resolver == nil {
		return false
	}
	idx, ok := c.resolver(answer)
	if !ok {
		return false
	}
	return c.move(idx, false, SourceAnswer)
}

// OpenAt moves to index i and shows the detail view.
func (c *Controller) OpenAt(i int) bool {
	return c.move(i, true, SourceOpen)
}

// CloseDetail hides the detail view without moving.
func (c *Controller) CloseDetail() {
	c.mu.Lock()
	if !c.detail {
		c.mu.Unlock()
		return
	}
	c.detail = false
	ev := Event{Position: c.pos, Previous: c.pos, Source: SourceDetail}
	subs := c.snapshot()
	c.mu.Unlock()

	notify(subs, ev)
}

// Subscribe registers fn for change events and returns a function that
// removes it.
func (c *Controller) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.subs = append(c.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (c *Controller) move(i int, showDetail bool, src Source) bool {
	c.mu.Lock()
	if i < 0 || i >= c.count {
		c.mu.Unlock()
		return false
	}
	prev := c.pos
	changed := i != prev || (showDetail && !c.detail)
	c.pos = i
	if showDetail {
		c.detail = true
	}
	ev := Event{Position: i, Previous: prev, DetailVisible: c.detail, Source: src}
	var subs []subscriber
	if changed {
		subs = c.snapshot()
	}
	c.mu.Unlock()

	notify(subs, ev)
	return true
}

// snapshot copies the subscriber list; the caller holds mu.
func (c *Controller) snapshot() []subscriber {
	return append([]subscriber(nil), c.subs...)
}

func notify(subs []subscriber, ev Event) {
	for _, s := range subs {
		s.fn(ev)
	}
}
