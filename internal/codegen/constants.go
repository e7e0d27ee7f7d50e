// Package codegen provides code generation helpers and constants.
package codegen

import (
	"go/token"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// InitialStateName is the name of the state that represents "nothing matched yet".
const InitialStateName = "None"

// Variable and field names used in generated code
const (
	StateParamName = "state"
	CharParamName  = "chr"
	EmitField      = "Emit"
	ValueField     = "Value"
	ConsumedField  = "Consumed"
	NextField      = "Next"
	StateField     = "State"
	CharField      = "Char"
	EOFSuffix      = "EOF"
	ErrorSuffix    = "Error"
	NamesSuffix    = "Names"
)

// SiblingSegment returns the name segment for the index-th child (1-based)
// of a state. The first 26 siblings get a single lowercase letter; the rest
// fall back to an underscore and the decimal index.
func SiblingSegment(index int) string {
	if index >= 1 && index <= 26 {
		return string(rune('a' + index - 1))
	}
	return "_" + strconv.Itoa(index)
}

// ChildStateName derives a state name from its parent's name and its
// 1-based sibling index.
func ChildStateName(parent string, index int) string {
	if parent == "" || parent == InitialStateName {
		return SiblingSegment(index)
	}
	return parent + SiblingSegment(index)
}

// StateIdent returns the exported identifier of a state constant.
func StateIdent(stateType, stateName string) string {
	if stateName == InitialStateName {
		return stateType + InitialStateName
	}
	return stateType + strings.ToUpper(stateName)
}

// IsIdentifier reports whether name is a valid, non-blank Go identifier.
func IsIdentifier(name string) bool {
	return name != "_" && token.IsIdentifier(name)
}

// LowerFirst converts the first character of a string to lowercase.
// Characters without case, such as '_', are left alone.
func LowerFirst(s string) string {
	return mapFirst(s, unicode.ToLower)
}

// UpperFirst converts the first character of a string to uppercase.
func UpperFirst(s string) string {
	return mapFirst(s, unicode.ToUpper)
}

func mapFirst(s string, fn func(rune) rune) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return s
	}
	return string(fn(r)) + s[size:]
}
