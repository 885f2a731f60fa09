package form

import "sync"

// Event is delivered to a handler.
type Event struct {
	Type   string
	Source string

	// Skipped is set when the handler passed the event on.
	Skipped bool
}

// Handler handles one event.
type Handler func(*Event)

// Skip is the default handler: it passes the event on untouched.
func Skip(e *Event) {
	e.Skipped = true
}

// Registry maps event types to handlers. A handler is registered either
// for every source of an event type, or for one source widget; Dispatch
// prefers the widget's own handler. Events without a handler go to Skip.
// The zero value is ready to use and a Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[eventKey]Handler
}

// eventKey names a binding. An empty source matches any widget.
type eventKey struct {
	typ    string
	source string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[eventKey]Handler)}
}

// On registers h for eventType from any source unless a handler is
// already set. It reports whether h was registered.
func (r *Registry) On(eventType string, h Handler) bool {
	return r.OnSource(eventType, "", h)
}

// OnSource registers h for eventType raised by the widget named source,
// unless that binding already has a handler. It reports whether h was
// registered.
func (r *Registry) OnSource(eventType, source string, h Handler) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := eventKey{eventType, source}
	if _, ok := r.handlers[k]; ok {
		return false
	}
	if r.handlers == nil {
		r.handlers = make(map[eventKey]Handler)
	}
	r.handlers[k] = h
	return true
}

// Override replaces the handler for eventType from any source and
// returns the previous one, or Skip if there was none. A nil h removes
// the handler.
func (r *Registry) Override(eventType string, h Handler) Handler {
	return r.OverrideSource(eventType, "", h)
}

// OverrideSource is Override for the binding of one source widget.
func (r *Registry) OverrideSource(eventType, source string, h Handler) Handler {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := eventKey{eventType, source}
	prev, ok := r.handlers[k]
	if !ok {
		prev = Skip
	}
	if h == nil {
		delete(r.handlers, k)
		return prev
	}
	if r.handlers == nil {
		r.handlers = make(map[eventKey]Handler)
	}
	r.handlers[k] = h
	return prev
}

// Lookup returns the handler for eventType from any source and whether
// one was registered. The returned handler is Skip when none was.
func (r *Registry) Lookup(eventType string) (Handler, bool) {
	return r.LookupSource(eventType, "")
}

// LookupSource returns the handler Dispatch would use for eventType
// raised by source: the widget's own binding, else the one for any
// source, else Skip.
func (r *Registry) LookupSource(eventType, source string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if source != "" {
		if h, ok := r.handlers[eventKey{eventType, source}]; ok {
			return h, true
		}
	}
	if h, ok := r.handlers[eventKey{eventType, ""}]; ok {
		return h, true
	}
	return Skip, false
}

// Dispatch delivers e to its handler.
func (r *Registry) Dispatch(e *Event) {
	h, _ := r.LookupSource(e.Type, e.Source)
	h(e)
}

// Clone returns an independent copy. Overrides on the copy do not affect r.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := NewRegistry()
	for k, h := range r.handlers {
		c.handlers[k] = h
	}
	return c
}

// Bind builds a registry for the form rooted at n. Events bound on the
// root window apply to any source; events bound on a child are tied to
// that child by name, as the generated Bind calls are. Bindings whose
// handler impl does not provide fall back to Skip.
func Bind(n *Node, impl map[string]Handler) *Registry {
	r := NewRegistry()
	n.Walk(func(node *Node) {
		source := node.Name
		if node == n {
			source = ""
		}
		for _, b := range node.Events {
			if h, ok := impl[b.Handler]; ok {
				r.OnSource(b.Event, source, h)
			}
		}
	})
	return r
}
