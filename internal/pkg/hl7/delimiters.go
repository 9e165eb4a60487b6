package hl7

import (
	"strings"

	"limslite-service/internal/pkg/exceptions"
)

const (
	SegmentTerminator = '\r'
	headerSegmentName = "MSH"
)

// Delimiters is the encoding character set a message declares in MSH-1 and
// MSH-2.
type Delimiters struct {
	Field        byte
	Component    byte
	Repetition   byte
	Escape       byte
	Subcomponent byte
}

var DefaultDelimiters = Delimiters{
	Field:        '|',
	Component:    '^',
	Repetition:   '~',
	Escape:       '\\',
	Subcomponent: '&',
}

// EncodingCharacters renders the MSH-2 value for d.
func (d Delimiters) EncodingCharacters() string {
	return string([]byte{d.Component, d.Repetition, d.Escape, d.Subcomponent})
}

// ReadDelimiters reads the delimiter set from the start of a message.
func ReadDelimiters(payload string) (Delimiters, error) {
	if !strings.HasPrefix(payload, headerSegmentName) {
		return Delimiters{}, exceptions.ErrMalformedMessage(nil, "message does not start with an MSH segment")
	}
	if len(payload) < len(headerSegmentName)+1+4 {
		return Delimiters{}, exceptions.ErrMalformedMessage(nil, "MSH segment too short to declare delimiters")
	}

	d := Delimiters{
		Field:        payload[3],
		Component:    payload[4],
		Repetition:   payload[5],
		Escape:       payload[6],
		Subcomponent: payload[7],
	}

	seen := map[byte]bool{SegmentTerminator: true}
	for _, c := range []byte{d.Field, d.Component, d.Repetition, d.Escape, d.Subcomponent} {
		if seen[c] || isAlphaNumeric(c) {
			return Delimiters{}, exceptions.ErrMalformedMessage(nil, "MSH declares an invalid delimiter set")
		}
		seen[c] = true
	}
	return d, nil
}

func isAlphaNumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
