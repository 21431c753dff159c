package worker

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/datatypes"
)

// Handler executes one unit of work for a job type. The returned value is
// serialized and stored as the item's result.
type Handler func(ctx context.Context, payload datatypes.JSON) (any, error)

// Registry is the closed dispatch table built at startup. Registration of
// a type outside the allowed set is an error, so unknown keys are rejected
// before any item is ever dispatched.
type Registry struct {
	allowed    map[string]bool
	handlers   map[string]Handler
	middleware []Middleware
}

// Middleware wraps a handler at registration time. Use it for cross
// cutting concerns such as run bookkeeping.
type Middleware func(jobType string, next Handler) Handler

func NewRegistry(allowedTypes []string) *Registry {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = true
	}
	return &Registry{
		allowed:  allowed,
		handlers: make(map[string]Handler),
	}
}

// Use appends a middleware applied to every handler registered after
// this call.
func (r *Registry) Use(mw Middleware) {
	r.middleware = append(r.middleware, mw)
}

func (r *Registry) Register(jobType string, h Handler) error {
	if h == nil {
		return fmt.Errorf("nil handler for job type %q", jobType)
	}
	if !r.allowed[jobType] {
		return fmt.Errorf("unknown job type %q", jobType)
	}
	if _, dup := r.handlers[jobType]; dup {
		return fmt.Errorf("handler already registered for job type %q", jobType)
	}
	for i := len(r.middleware) - 1; i >= 0; i-- {
		h = r.middleware[i](jobType, h)
	}
	r.handlers[jobType] = h
	return nil
}

func (r *Registry) Lookup(jobType string) (Handler, bool) {
	h, ok := r.handlers[jobType]
	return h, ok
}

// Types returns the registered job types, sorted for stable logging.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
