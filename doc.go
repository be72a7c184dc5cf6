// Package krate implements a local, persistent key-value cache with
// asynchronous read-through semantics, pluggable value serialization,
// pluggable byte-level transformation, and a change-notification stream.
// It targets applications that want an offline-first cache in front of a
// slow or unreliable remote source.
//
// Components:
//   - store.Store: durable key -> (bytes, modified) mapping
//     (SQLite reference backend, Redis, BigCache, in-memory, ristretto front).
//   - serializer.Serializer: value <-> []byte, chosen per store, typed per call.
//   - intercept.Interceptor: bytes <-> bytes (encryption, compression);
//     identity by default.
//
// One store holds values of many types, so the typed operations are
// package-level generic functions over the store handle:
//
//	k, _ := krate.New(krate.Options{Store: st})
//	_ = krate.Put(ctx, k, "user:1", user)
//	u, ok, _ := krate.Get[User](ctx, k, "user:1")
//
// GetAndFetch and GetOrFetch layer fetch-and-store sequencing on top: the
// cached value (if any) is always delivered before the remote fetch starts,
// a fetched value is written back before it is delivered, and fetch errors
// follow any already-delivered cached value.
//
// Every successful put publishes the key on the Observe stream after the
// write is durably committed. Removals deliberately do not publish.
package krate
