// Package encoder frames outgoing text for the prover's input lexer.
package encoder

import (
	"fmt"
	"strconv"
	"strings"

	"prover/internal/app/errors"
)

const (
	// SyncMarker delimits every wrapped command
	SyncMarker = `\<^sync>`

	CommandName = "Isabelle.command"
	MLName      = "ML"
)

// Encode quotes text as a string literal, escaping control characters, backslash and double quote as \DDD
func Encode(text string) string {
	var b strings.Builder

	b.Grow(len(text) + 2)
	b.WriteByte('"')

	for _, r := range text {
		if r < 32 || r == '\\' || r == '"' {
			fmt.Fprintf(&b, "\\%03d", r)
			continue
		}

		b.WriteRune(r)
	}

	b.WriteByte('"')

	return b.String()
}

// Decode reverses Encode
func Decode(literal string) (string, error) {
	if len(literal) < 2 || literal[0] != '"' || literal[len(literal)-1] != '"' {
		return "", fmt.Errorf("%w: missing quotes", errors.ErrMalformedLiteral)
	}

	body := literal[1 : len(literal)-1]

	var b strings.Builder

	b.Grow(len(body))

	for i := 0; i < len(body); i++ {
		c := body[i]

		switch c {
		case '\\':
			if i+3 >= len(body) {
				return "", fmt.Errorf("%w: truncated escape at %d", errors.ErrMalformedLiteral, i)
			}

			digits := body[i+1 : i+4]
			if strings.Trim(digits, "0123456789") != "" {
				return "", fmt.Errorf("%w: bad escape %q", errors.ErrMalformedLiteral, body[i:i+4])
			}

			code, err := strconv.Atoi(digits)
			if err != nil || code > 127 {
				return "", fmt.Errorf("%w: bad escape %q", errors.ErrMalformedLiteral, body[i:i+4])
			}

			b.WriteRune(rune(code))
			i += 3
		case '"':
			return "", fmt.Errorf("%w: unescaped quote at %d", errors.ErrMalformedLiteral, i)
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}

// Wrap frames a named command around the encoded text between sync markers
func Wrap(name, text string) string {
	return " " + SyncMarker + " " + name + " " + Encode(text) + " " + SyncMarker + ";\n"
}

// Command wraps text as a prover command
func Command(text string) string {
	return Wrap(CommandName, text)
}

// ML wraps text as ML source to be evaluated
func ML(text string) string {
	return Wrap(MLName, text)
}
