package krate

import (
	"errors"

	"github.com/SonPatrick/Krate/intercept"
	"github.com/SonPatrick/Krate/serializer"
	"github.com/SonPatrick/Krate/store"
)

// Options configure a Krate instance. Only Store is required.
type Options struct {
	// Required. The durable backend. The Krate owns it from New on and
	// closes it in Close.
	Store store.Store

	// Serializer converts values to bytes. Defaults to serializer.JSON.
	Serializer serializer.Serializer

	// Interceptor transforms serialized bytes before storage (encryption,
	// compression). Defaults to the identity transform.
	Interceptor intercept.Interceptor

	Logger Logger // nil => NopLogger
	Hooks  Hooks  // nil => NopHooks
}

// New builds a Krate over the given store.
func New(opts Options) (*Krate, error) {
	if opts.Store == nil {
		return nil, errors.New("krate: store is required")
	}
	k := &Krate{
		store: opts.Store,
		bus:   newBroadcaster(),
	}
	if opts.Serializer != nil {
		k.ser = opts.Serializer
	} else {
		k.ser = serializer.JSON{}
	}
	if opts.Interceptor != nil {
		k.icept = opts.Interceptor
	} else {
		k.icept = intercept.Identity{}
	}
	k.log = coalesce[Logger](opts.Logger, NopLogger{})
	k.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	return k, nil
}
