package stream

import (
	"io"
	"strings"
	"testing"

	"github.com/KromDaniel/symtrie/pkg/symtrie"
)

var benchInput = strings.Repeat("if (a === b) { x => y; c = d == e; }\n", 2000)

func BenchmarkMatch(b *testing.B) {
	runes := []rune(benchInput)
	b.SetBytes(int64(len(benchInput)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		state := symtrie.Initial
		for _, r := range runes {
			for {
				o, err := jsSymbols.Match(state, r)
				if err != nil {
					b.Fatal(err)
				}
				if o.Kind == symtrie.Advance {
					state = o.Next
					break
				}
				state = symtrie.Initial
				if o.Consumed {
					break
				}
			}
		}
	}
}

func BenchmarkTokenize(b *testing.B) {
	b.SetBytes(int64(len(benchInput)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		err := Tokenize(strings.NewReader(benchInput), jsSymbols, Config{}, func(Token[kind]) bool {
			return true
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTransformer(b *testing.B) {
	b.SetBytes(int64(len(benchInput)))
	b.ResetTimer()
	tr := NewTransformer(strings.NewReader(""), jsSymbols, DefaultTransformConfig(), bracket)
	for i := 0; i < b.N; i++ {
		tr.Reset(strings.NewReader(benchInput))
		if _, err := io.Copy(io.Discard, tr); err != nil {
			b.Fatal(err)
		}
	}
}
