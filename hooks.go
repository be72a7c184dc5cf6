package krate

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; the cache calls them on
// hot paths. Wrap with hooks/async to decouple slow sinks.
type Hooks interface {
	// PutCommitted fires after a record is durably written, with the
	// stored (post-interceptor) byte size.
	PutCommitted(key string, size int)

	// DecodeFailed fires when stored bytes cannot be restored or
	// unmarshaled. The record is left in place; the read fails.
	DecodeFailed(key string, err error)

	// FetchFailed fires when a caller-supplied fetch function returns an
	// error inside a combinator.
	FetchFailed(key string, err error)

	// ObserverLagging fires when a subscriber's notification backlog
	// crosses the reporting threshold (it keeps growing; nothing is dropped).
	ObserverLagging(queued int)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) PutCommitted(string, int)   {}
func (NopHooks) DecodeFailed(string, error) {}
func (NopHooks) FetchFailed(string, error)  {}
func (NopHooks) ObserverLagging(int)        {}
