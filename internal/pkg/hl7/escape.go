package hl7

import "strings"

// Unescape resolves the delimiter escape sequences in s. Sequences it does
// not recognize are kept verbatim.
func (d Delimiters) Unescape(s string) string {
	if strings.IndexByte(s, d.Escape) < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != d.Escape {
			b.WriteByte(s[i])
			continue
		}
		end := strings.IndexByte(s[i+1:], d.Escape)
		if end < 0 {
			b.WriteString(s[i:])
			break
		}
		sequence := s[i+1 : i+1+end]
		switch sequence {
		case "F":
			b.WriteByte(d.Field)
		case "S":
			b.WriteByte(d.Component)
		case "T":
			b.WriteByte(d.Subcomponent)
		case "R":
			b.WriteByte(d.Repetition)
		case "E":
			b.WriteByte(d.Escape)
		default:
			b.WriteString(s[i : i+end+2])
		}
		i += end + 1
	}
	return b.String()
}

// EscapeText encodes the delimiter characters of s so it can be placed in a
// single field.
func (d Delimiters) EscapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case d.Escape:
			b.WriteString(string(d.Escape) + "E" + string(d.Escape))
		case d.Field:
			b.WriteString(string(d.Escape) + "F" + string(d.Escape))
		case d.Component:
			b.WriteString(string(d.Escape) + "S" + string(d.Escape))
		case d.Subcomponent:
			b.WriteString(string(d.Escape) + "T" + string(d.Escape))
		case d.Repetition:
			b.WriteString(string(d.Escape) + "R" + string(d.Escape))
		case SegmentTerminator, '\n':
			b.WriteByte(' ')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
