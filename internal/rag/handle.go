package rag

import "sync/atomic"

// Handle is an atomically replaceable reference to the active Router.
// Readers dereference once per request and use that snapshot for the whole
// request, so an in-flight query never observes a half-swapped index set.
//
// Single writer (the supervisor), many readers.
type Handle struct {
	ptr atomic.Pointer[Router]
}

// NewHandle creates a handle over the initial router.
func NewHandle(r *Router) *Handle {
	h := &Handle{}
	h.ptr.Store(r)
	return h
}

// Router returns the current router snapshot.
func (h *Handle) Router() *Router {
	return h.ptr.Load()
}

// Replace installs a new router. Requests already holding the old snapshot
// finish against the old indexes.
func (h *Handle) Replace(r *Router) {
	h.ptr.Store(r)
}
