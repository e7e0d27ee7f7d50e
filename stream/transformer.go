package stream

import (
	"bufio"
	"context"
	"io"
	"unicode/utf8"

	"github.com/KromDaniel/symtrie/pkg/symtrie"
	"github.com/pkg/errors"
)

// TransformFunc is the callback invoked for every token. It receives:
//   - tok: the completed match
//   - emit: writes output bytes (can be called multiple times)
//
// If emit is not called, the token is dropped. Characters that start no
// pattern are passed through to the output unchanged.
type TransformFunc[V any] func(tok Token[V], emit func([]byte))

// TransformConfig extends Config with transform-specific options.
type TransformConfig struct {
	Config

	// Context for cancellation support.
	// Default: nil (no cancellation).
	Context context.Context
}

// DefaultTransformConfig returns a TransformConfig with sensible defaults.
func DefaultTransformConfig() TransformConfig {
	return TransformConfig{Config: DefaultConfig()}
}

// Transformer wraps a source io.Reader and rewrites every token found by the
// matcher. It implements io.Reader, allowing standard Go composition via
// io.Copy, etc.
//
// The transformation is lazy: input is consumed only when Read is called.
type Transformer[V any] struct {
	source  *bufio.Reader
	cfg     TransformConfig
	driver  *Driver[V]
	onMatch TransformFunc[V]

	out      []byte
	outStart int

	sourceEOF bool
	err       error
}

// NewTransformer creates a Transformer reading from source. An invalid
// configuration is reported by the first Read.
func NewTransformer[V any](source io.Reader, m *symtrie.Matcher[V], cfg TransformConfig, onMatch TransformFunc[V]) *Transformer[V] {
	cfg.Config = cfg.Config.ApplyDefaults()
	t := &Transformer[V]{
		source:  bufio.NewReaderSize(source, cfg.BufferSize),
		cfg:     cfg,
		driver:  NewDriver(m, cfg.Config),
		onMatch: onMatch,
		out:     make([]byte, 0, 4096),
	}
	t.err = cfg.Validate()
	return t
}

// Read implements io.Reader.
func (t *Transformer[V]) Read(p []byte) (n int, err error) {
	if err := t.cancelled(); err != nil {
		return 0, err
	}

	if t.buffered() > 0 {
		return t.drain(p), nil
	}
	if t.err != nil {
		return 0, t.err
	}

	for t.buffered() == 0 {
		if err := t.processMore(); err != nil {
			// Hand out what was produced before the error first.
			t.err = err
			if t.buffered() > 0 {
				return t.drain(p), nil
			}
			return 0, err
		}
		if err := t.cancelled(); err != nil {
			t.err = err
			return 0, err
		}
	}
	return t.drain(p), nil
}

// processMore offers the next source character to the driver. Returns io.EOF
// once the source is exhausted and the pending match has been flushed.
func (t *Transformer[V]) processMore() error {
	if t.sourceEOF {
		return io.EOF
	}

	// Peek rather than ReadRune so invalid UTF-8 passes through byte-exact.
	buf, err := t.source.Peek(utf8.UTFMax)
	if err != nil && err != io.EOF {
		return errors.Wrap(err, "stream: read failed")
	}
	if len(buf) == 0 {
		t.sourceEOF = true
		tok, ok, err := t.driver.Flush()
		if err != nil {
			return err
		}
		if ok {
			t.onMatch(tok, t.emitOutput)
		}
		return io.EOF
	}

	ch, size := utf8.DecodeRune(buf)
	raw := buf[:size]
	for {
		step, err := t.driver.step(ch, size)
		if err != nil {
			return err
		}
		if step.Skipped {
			t.emitOutput(raw)
		}
		if step.Emitted {
			t.onMatch(step.Token, t.emitOutput)
		}
		if !step.Replay {
			break
		}
	}
	_, err = t.source.Discard(size)
	return err
}

func (t *Transformer[V]) cancelled() error {
	if t.cfg.Context == nil {
		return nil
	}
	select {
	case <-t.cfg.Context.Done():
		return t.cfg.Context.Err()
	default:
		return nil
	}
}

func (t *Transformer[V]) buffered() int {
	return len(t.out) - t.outStart
}

func (t *Transformer[V]) drain(p []byte) int {
	n := copy(p, t.out[t.outStart:])
	t.outStart += n
	if t.outStart == len(t.out) {
		t.out = t.out[:0]
		t.outStart = 0
	}
	return n
}

// emitOutput appends data to the output buffer.
func (t *Transformer[V]) emitOutput(data []byte) {
	t.out = append(t.out, data...)
}

// Reset resets the transformer to read from a new source, reusing its
// buffers.
func (t *Transformer[V]) Reset(source io.Reader) {
	t.source.Reset(source)
	t.driver.Reset()
	t.out = t.out[:0]
	t.outStart = 0
	t.sourceEOF = false
	t.err = t.cfg.Validate()
}
