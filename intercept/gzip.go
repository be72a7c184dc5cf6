package intercept

import (
	"bytes"
	"compress/gzip"
	"io"
)

// Gzip compresses payloads on the write path. Level 0 means
// gzip.DefaultCompression.
type Gzip struct {
	Level int
}

var _ Interceptor = Gzip{}

func (g Gzip) Seal(_ string, plain []byte) ([]byte, error) {
	level := g.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(plain); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g Gzip) Open(_ string, sealed []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(sealed))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
