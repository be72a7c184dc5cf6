// Package serializer converts caller values to and from the bytes a krate
// store persists.
//
// Serializer is deliberately not generic: one store holds values of many
// types, so the type is supplied at each call site (krate.Get[T] passes a
// *T to Unmarshal). Implementations must be symmetric: Unmarshal(Marshal(v))
// reproduces v for every supported value.
package serializer

// Serializer encodes values to []byte and back.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}
