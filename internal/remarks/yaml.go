package remarks

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLEmitter writes remarks as a stream of YAML documents, one per remark,
// in the style of compiler optimization-record files.
type YAMLEmitter struct {
	w       io.Writer
	closer  io.Closer
	encoder *yaml.Encoder
}

// NewYAMLEmitter writes remark documents to w.
func NewYAMLEmitter(w io.Writer) *YAMLEmitter {
	return &YAMLEmitter{w: w, encoder: yaml.NewEncoder(w)}
}

// CreateYAMLFile creates (or truncates) path and returns an emitter that
// owns the file handle.
func CreateYAMLFile(path string) (*YAMLEmitter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating remarks file: %w", err)
	}
	e := NewYAMLEmitter(f)
	e.closer = f
	return e, nil
}

// Emit implements Emitter.
func (e *YAMLEmitter) Emit(r Remark) error {
	if err := e.encoder.Encode(r); err != nil {
		return fmt.Errorf("encoding remark: %w", err)
	}
	return nil
}

// Close flushes the encoder and closes the underlying file if this emitter
// owns one.
func (e *YAMLEmitter) Close() error {
	err := e.encoder.Close()
	if e.closer != nil {
		if cerr := e.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
