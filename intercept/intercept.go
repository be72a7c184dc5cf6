// Package intercept provides the byte-level transformation stage of the
// krate codec pipeline, applied between serialization and storage.
//
// Seal runs on the write path, Open on the read path, and the two must be
// symmetric: Open(key, Seal(key, b)) == b for every key and payload. The
// record key is passed to both so per-key transforms (e.g. per-key derived
// encryption keys) are possible.
package intercept

// Interceptor transforms serialized bytes before storage and reverses the
// transform after retrieval.
type Interceptor interface {
	Seal(key string, plain []byte) ([]byte, error)
	Open(key string, sealed []byte) ([]byte, error)
}

// Identity is the default interceptor: bytes pass through unchanged.
type Identity struct{}

func (Identity) Seal(_ string, b []byte) ([]byte, error) { return b, nil }
func (Identity) Open(_ string, b []byte) ([]byte, error) { return b, nil }

// Chain composes interceptors. Seal applies them first to last, Open in
// reverse, so Chain{gzip, crypto} compresses then encrypts on write and
// decrypts then decompresses on read.
type Chain []Interceptor

func (c Chain) Seal(key string, b []byte) ([]byte, error) {
	var err error
	for _, it := range c {
		if b, err = it.Seal(key, b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (c Chain) Open(key string, b []byte) ([]byte, error) {
	var err error
	for i := len(c) - 1; i >= 0; i-- {
		if b, err = c[i].Open(key, b); err != nil {
			return nil, err
		}
	}
	return b, nil
}
