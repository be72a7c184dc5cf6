package serializer

import "fmt"

// Bytes is an identity serializer for []byte values. Useful when the caller
// already holds raw bytes and only wants krate's storage and interception.
type Bytes struct{}

func (Bytes) Marshal(v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("bytes serializer: want []byte, got %T", v)
	}
	return append([]byte(nil), b...), nil
}

func (Bytes) Unmarshal(data []byte, v any) error {
	p, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("bytes serializer: want *[]byte, got %T", v)
	}
	*p = append([]byte(nil), data...)
	return nil
}

// String is a trivial serializer for Go string values. By convention this
// assumes UTF-8 and performs no validation.
type String struct{}

func (String) Marshal(v any) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("string serializer: want string, got %T", v)
	}
	return []byte(s), nil
}

func (String) Unmarshal(data []byte, v any) error {
	p, ok := v.(*string)
	if !ok {
		return fmt.Errorf("string serializer: want *string, got %T", v)
	}
	*p = string(data)
	return nil
}
