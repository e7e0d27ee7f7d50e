package stream

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/KromDaniel/symtrie/pkg/symtrie"
	"github.com/pkg/errors"
)

// Step is the result of offering one character to a Driver.
type Step[V any] struct {
	// Emitted is true when Token holds a completed match.
	Emitted bool
	Token   Token[V]

	// Replay is true when the character was not part of Token and must be
	// offered again.
	Replay bool

	// Skipped is true when the character started no pattern and was absorbed
	// in the Initial state.
	Skipped bool
}

// Driver owns the matcher state for a single tokenization pass. It is not
// safe for concurrent use; create one Driver per stream.
type Driver[V any] struct {
	m      *symtrie.Matcher[V]
	cfg    Config
	state  symtrie.State
	text   []byte
	start  int64
	offset int64
}

// NewDriver creates a driver positioned at offset 0 in the Initial state.
func NewDriver[V any](m *symtrie.Matcher[V], cfg Config) *Driver[V] {
	return &Driver[V]{m: m, cfg: cfg.ApplyDefaults()}
}

// State returns the current matcher state.
func (d *Driver[V]) State() symtrie.State {
	return d.state
}

// Offset returns the byte offset of the next character.
func (d *Driver[V]) Offset() int64 {
	return d.offset
}

// Reset returns the driver to the Initial state at offset 0.
func (d *Driver[V]) Reset() {
	d.state = symtrie.Initial
	d.text = d.text[:0]
	d.start = 0
	d.offset = 0
}

// Step offers r to the matcher. When the returned Step has Replay set, the
// caller must offer the same character again.
func (d *Driver[V]) Step(r rune) (Step[V], error) {
	size := utf8.RuneLen(r)
	if size < 0 {
		size = 1
	}
	return d.step(r, size)
}

func (d *Driver[V]) step(r rune, size int) (Step[V], error) {
	o, err := d.m.Match(d.state, r)
	if err != nil {
		return Step[V]{}, errors.Wrapf(err, "stream: offset %d", d.offset)
	}

	if o.Kind == symtrie.Advance {
		if d.state == symtrie.Initial && o.Next == symtrie.Initial {
			if d.cfg.Strict && !d.cfg.Skip(r) {
				return Step[V]{}, &UnexpectedRuneError{Rune: r, Offset: d.offset}
			}
			d.offset += int64(size)
			d.start = d.offset
			return Step[V]{Skipped: true}, nil
		}
		d.text = utf8.AppendRune(d.text, r)
		d.state = o.Next
		d.offset += int64(size)
		return Step[V]{}, nil
	}

	if o.Consumed {
		d.text = utf8.AppendRune(d.text, r)
		d.offset += int64(size)
	}
	return Step[V]{Emitted: true, Token: d.complete(o.Value), Replay: !o.Consumed}, nil
}

// Flush resolves a pending partial match at end of input. ok is false when
// there was nothing pending.
func (d *Driver[V]) Flush() (tok Token[V], ok bool, err error) {
	if d.state == symtrie.Initial {
		return tok, false, nil
	}

	v, ok, err := d.m.Flush(d.state)
	if err != nil {
		return tok, false, &TruncatedError{Text: string(d.text), Offset: d.start, Err: err}
	}
	return d.complete(v), ok, nil
}

func (d *Driver[V]) complete(v V) Token[V] {
	tok := Token[V]{Value: v, Text: string(d.text), Offset: d.start}
	d.state = symtrie.Initial
	d.text = d.text[:0]
	d.start = d.offset
	return tok
}

// Tokenize reads r to the end, calling fn for every token. fn may return
// false to stop early. Any partial match left at end of input is flushed.
func Tokenize[V any](r io.Reader, m *symtrie.Matcher[V], cfg Config, fn func(Token[V]) bool) error {
	cfg = cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	br := bufio.NewReaderSize(r, cfg.BufferSize)
	d := NewDriver(m, cfg)
	for {
		ch, size, err := br.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "stream: read failed")
		}

		for {
			step, err := d.step(ch, size)
			if err != nil {
				return err
			}
			if step.Emitted && !fn(step.Token) {
				return nil
			}
			if !step.Replay {
				break
			}
		}
	}

	tok, ok, err := d.Flush()
	if err != nil {
		return err
	}
	if ok {
		fn(tok)
	}
	return nil
}

// TokenizeString tokenizes s and returns all tokens.
func TokenizeString[V any](s string, m *symtrie.Matcher[V], cfg Config) ([]Token[V], error) {
	var tokens []Token[V]
	err := Tokenize(strings.NewReader(s), m, cfg, func(tok Token[V]) bool {
		tokens = append(tokens, tok)
		return true
	})
	return tokens, err
}
