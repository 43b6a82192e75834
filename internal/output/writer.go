package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Indent is the indentation used for every nesting level.
const Indent = "    "

// StdoutPath selects standard output as the destination.
const StdoutPath = "-"

// ErrAlreadyWritten is returned when Write is called more than once.
var ErrAlreadyWritten = errors.New("output already written")

// Writer handles writing one JSON document to a file or io.Writer.
type Writer struct {
	mu        sync.Mutex
	output    io.Writer
	encoder   *json.Encoder
	written   bool
	closeFunc func() error
}

// NewWriter creates a new JSON writer that writes to the specified output.
func NewWriter(w io.Writer) *Writer {
	enc := json.NewEncoder(w)
	enc.SetIndent("", Indent)
	enc.SetEscapeHTML(false)
	return &Writer{
		output:  w,
		encoder: enc,
	}
}

// NewFileWriter creates a new JSON writer that writes to a file.
// An existing file is truncated.
// The caller must call Close() when done to ensure the file is properly closed.
func NewFileWriter(filename string) (*Writer, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	w := NewWriter(file)
	w.closeFunc = file.Close
	return w, nil
}

// Open returns a writer for path, using standard output when path is empty or "-".
func Open(path string) (*Writer, error) {
	if path == "" || path == StdoutPath {
		return NewWriter(os.Stdout), nil
	}
	return NewFileWriter(path)
}

// Write serializes v as indented JSON. It may be called once.
func (w *Writer) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.written {
		return ErrAlreadyWritten
	}
	w.written = true

	if err := w.encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// Written reports whether a value has been written.
func (w *Writer) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Close closes the underlying writer if it's a file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closeFunc != nil {
		closeFunc := w.closeFunc
		w.closeFunc = nil
		return closeFunc()
	}
	return nil
}
