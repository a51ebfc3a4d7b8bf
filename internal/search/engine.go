package search

import (
	"sync/atomic"

	"github.com/hinto-janai/festival-sub001/internal/collection"
)

// Request is one query-message sent to the Search thread.
type Request struct {
	Query string
	Mode  Mode
	Resp  chan collection.Keychain
}

// Engine services query messages against the currently active
// Collection on a single dedicated thread, per spec.md §5's "Search:
// one thread servicing query messages".
type Engine struct {
	col atomic.Pointer[collection.Collection]
	req chan Request
}

// NewEngine returns an Engine holding col until DropCollection or
// SetCollection replaces it.
func NewEngine(col *collection.Collection) *Engine {
	e := &Engine{req: make(chan Request, 32)}
	e.col.Store(col)
	return e
}

// Requests returns the channel the Kernel (or a direct caller) sends
// Requests on.
func (e *Engine) Requests() chan<- Request { return e.req }

// SetCollection publishes a new Collection handle, used by the Kernel's
// reset protocol once CCD hands over a freshly built Collection.
func (e *Engine) SetCollection(col *collection.Collection) { e.col.Store(col) }

// DropCollection swaps in an empty dummy Collection, per the reset
// protocol's "tell Search and Audio to drop their Collection handles"
// step.
func (e *Engine) DropCollection() { e.col.Store(collection.EmptyCollection()) }

// Run services Requests until stop is closed.
func (e *Engine) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case r := <-e.req:
			col := e.col.Load()
			r.Resp <- Query(col, r.Query, r.Mode)
		}
	}
}
