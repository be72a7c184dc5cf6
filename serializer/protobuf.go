package serializer

import (
	"fmt"
	"reflect"

	"google.golang.org/protobuf/proto"
)

var protoMessage = reflect.TypeOf((*proto.Message)(nil)).Elem()

// Protobuf serializes proto.Message values. Marshal accepts any value that
// implements proto.Message; Unmarshal additionally accepts a pointer to a
// message pointer (what krate.Get[*pb.User] passes) and allocates the
// message when nil.
type Protobuf struct{}

func (Protobuf) Marshal(v any) ([]byte, error) {
	m, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("protobuf: %T does not implement proto.Message", v)
	}
	return proto.Marshal(m)
}

func (Protobuf) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return proto.Unmarshal(data, m)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		elem := rv.Elem()
		if elem.Kind() == reflect.Pointer && elem.Type().Implements(protoMessage) {
			if elem.IsNil() {
				elem.Set(reflect.New(elem.Type().Elem()))
			}
			return proto.Unmarshal(data, elem.Interface().(proto.Message))
		}
	}
	return fmt.Errorf("protobuf: cannot unmarshal into %T", v)
}
