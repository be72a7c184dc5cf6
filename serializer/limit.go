package serializer

import "fmt"

// Limit wraps another serializer to enforce a maximum allowed payload size
// at Unmarshal time. Marshal is forwarded to Inner unchanged.
// If MaxUnmarshal <= 0, size limiting is disabled.
//
// Typical use: protect against oversized/malicious payloads coming from a
// shared store or untrusted source.
type Limit struct {
	// Inner is the underlying serializer being wrapped. It must be set.
	Inner Serializer
	// MaxUnmarshal is the maximum permitted length (in bytes) of the
	// incoming payload. If exceeded, Unmarshal returns an error without
	// invoking Inner.
	MaxUnmarshal int
}

func (l Limit) Marshal(v any) ([]byte, error) { return l.Inner.Marshal(v) }

func (l Limit) Unmarshal(data []byte, v any) error {
	if l.MaxUnmarshal > 0 && len(data) > l.MaxUnmarshal {
		return fmt.Errorf("payload too large: %d > %d", len(data), l.MaxUnmarshal)
	}
	return l.Inner.Unmarshal(data, v)
}
