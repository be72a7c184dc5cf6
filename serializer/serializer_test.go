package serializer

import (
	"bytes"
	"testing"
)

type pair struct {
	A string `json:"a" msgpack:"a"`
	B int    `json:"b" msgpack:"b"`
}

func TestSymmetryAcrossSerializers(t *testing.T) {
	in := pair{A: "x", B: 7}
	for name, s := range map[string]Serializer{
		"json":     JSON{},
		"cbor":     MustCBOR(false),
		"cbor-det": MustCBOR(true),
		"msgpack":  Msgpack{},
	} {
		b, err := s.Marshal(in)
		if err != nil {
			t.Fatalf("%s Marshal: %v", name, err)
		}
		var out pair
		if err := s.Unmarshal(b, &out); err != nil {
			t.Fatalf("%s Unmarshal: %v", name, err)
		}
		if out != in {
			t.Fatalf("%s round trip: got %+v want %+v", name, out, in)
		}
	}
}

func TestBytesSerializer(t *testing.T) {
	in := []byte{1, 2, 3}
	b, err := Bytes{}.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out []byte
	if err := (Bytes{}).Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Fatalf("got %v want %v", out, in)
	}

	if _, err := (Bytes{}).Marshal("nope"); err == nil {
		t.Fatalf("expected type error for non-[]byte value")
	}
	if err := (Bytes{}).Unmarshal(b, &struct{}{}); err == nil {
		t.Fatalf("expected type error for non-*[]byte target")
	}
}

func TestStringSerializer(t *testing.T) {
	b, err := String{}.Marshal("hei")
	if err != nil {
		t.Fatal(err)
	}
	var out string
	if err := (String{}).Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out != "hei" {
		t.Fatalf("got %q", out)
	}
	if _, err := (String{}).Marshal(42); err == nil {
		t.Fatalf("expected type error for non-string value")
	}
}

func TestLimitRejectsOversizedPayload(t *testing.T) {
	l := Limit{Inner: JSON{}, MaxUnmarshal: 4}

	big, err := l.Marshal(pair{A: "long enough", B: 1})
	if err != nil {
		t.Fatalf("Marshal must be forwarded unchanged: %v", err)
	}
	var out pair
	if err := l.Unmarshal(big, &out); err == nil {
		t.Fatalf("expected size error for %d bytes", len(big))
	}

	small := Limit{Inner: JSON{}, MaxUnmarshal: 0} // disabled
	if err := small.Unmarshal(big, &out); err != nil {
		t.Fatalf("limit 0 must disable the guard: %v", err)
	}
}

func TestProtobufRejectsNonMessages(t *testing.T) {
	if _, err := (Protobuf{}).Marshal(pair{}); err == nil {
		t.Fatalf("expected error for non-proto value")
	}
	var p pair
	if err := (Protobuf{}).Unmarshal(nil, &p); err == nil {
		t.Fatalf("expected error for non-proto target")
	}
}
