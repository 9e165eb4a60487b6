package hl7

import (
	"fmt"
	"strings"

	"limslite-service/internal/pkg/exceptions"
)

// Message is a parsed ER7 message. Segments keep their order of arrival.
type Message struct {
	Delimiters Delimiters
	Segments   []*Segment
}

// Segment holds its fields so that Fields[n] is the n-th field in HL7
// notation. Fields[0] carries the segment name, and for MSH Fields[1] is the
// field separator itself.
type Segment struct {
	Name   string
	Fields []Field
}

type Field struct {
	Raw         string
	Repetitions []Repetition
}

type Repetition struct {
	Raw        string
	Components []Component
}

type Component struct {
	Raw           string
	Subcomponents []string
}

// Parse splits a normalized payload into segments, fields, repetitions,
// components and subcomponents using the delimiters declared in MSH. An
// encoded delimiter is always a letter sequence such as \F\, so raw
// delimiter bytes are structural and escapes are resolved per value.
func Parse(payload string) (*Message, error) {
	payload = strings.ReplaceAll(payload, "\r\n", "\r")
	payload = strings.ReplaceAll(payload, "\n", "\r")

	delimiters, err := ReadDelimiters(payload)
	if err != nil {
		return nil, err
	}

	message := &Message{Delimiters: delimiters}
	for _, line := range strings.Split(payload, string(SegmentTerminator)) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		segment, err := delimiters.parseSegment(line)
		if err != nil {
			return nil, err
		}
		message.Segments = append(message.Segments, segment)
	}

	if len(message.Segments) == 0 || message.Segments[0].Name != headerSegmentName {
		return nil, exceptions.ErrMalformedMessage(nil, "first segment is not MSH")
	}
	return message, nil
}

func (d Delimiters) parseSegment(line string) (*Segment, error) {
	if len(line) < 3 || (len(line) > 3 && line[3] != d.Field) {
		return nil, exceptions.ErrMalformedMessage(nil, fmt.Sprintf("invalid segment %q", truncate(line, 16)))
	}
	name := line[:3]
	for i := 0; i < len(name); i++ {
		if !isAlphaNumeric(name[i]) {
			return nil, exceptions.ErrMalformedMessage(nil, fmt.Sprintf("invalid segment name %q", name))
		}
	}

	segment := &Segment{Name: name}
	segment.Fields = append(segment.Fields, d.literalField(name))
	if len(line) == 3 {
		return segment, nil
	}

	rest := line[4:]
	if name == headerSegmentName {
		// MSH-1 and MSH-2 declare the delimiters and are never split.
		encoding := rest
		if idx := strings.IndexByte(rest, d.Field); idx >= 0 {
			encoding, rest = rest[:idx], rest[idx+1:]
		} else {
			rest = ""
		}
		segment.Fields = append(segment.Fields, d.literalField(string(d.Field)), d.literalField(encoding))
		if rest == "" {
			return segment, nil
		}
	}

	for _, raw := range strings.Split(rest, string(d.Field)) {
		segment.Fields = append(segment.Fields, d.parseField(raw))
	}
	return segment, nil
}

func (d Delimiters) parseField(raw string) Field {
	field := Field{Raw: raw}
	for _, rawRepetition := range strings.Split(raw, string(d.Repetition)) {
		repetition := Repetition{Raw: rawRepetition}
		for _, rawComponent := range strings.Split(rawRepetition, string(d.Component)) {
			component := Component{Raw: rawComponent}
			for _, rawSubcomponent := range strings.Split(rawComponent, string(d.Subcomponent)) {
				component.Subcomponents = append(component.Subcomponents, d.Unescape(rawSubcomponent))
			}
			repetition.Components = append(repetition.Components, component)
		}
		field.Repetitions = append(field.Repetitions, repetition)
	}
	return field
}

func (d Delimiters) literalField(value string) Field {
	return Field{
		Raw: value,
		Repetitions: []Repetition{{
			Raw:        value,
			Components: []Component{{Raw: value, Subcomponents: []string{value}}},
		}},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
