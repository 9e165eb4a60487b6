package hl7

import (
	"fmt"
	"strings"
)

type GroupRef struct {
	Name  string
	Index int
}

// Path addresses one value below a group. Group, segment and repetition
// indexes are zero based; Field follows HL7 numbering; Component and
// Subcomponent are one based with zero selecting the enclosing value.
type Path struct {
	Groups       []GroupRef
	Segment      string
	SegmentIndex int
	Field        int
	Repetition   int
	Component    int
	Subcomponent int
}

func (p Path) String() string {
	var b strings.Builder
	for _, ref := range p.Groups {
		fmt.Fprintf(&b, "%s[%d].", ref.Name, ref.Index)
	}
	fmt.Fprintf(&b, "%s[%d]-%d", p.Segment, p.SegmentIndex, p.Field)
	if p.Repetition > 0 {
		fmt.Fprintf(&b, "(%d)", p.Repetition)
	}
	if p.Component > 0 {
		fmt.Fprintf(&b, ".%d", p.Component)
		if p.Subcomponent > 0 {
			fmt.Fprintf(&b, ".%d", p.Subcomponent)
		}
	}
	return b.String()
}

type Status int

const (
	Found Status = iota
	Absent
	Malformed
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case Absent:
		return "absent"
	case Malformed:
		return "malformed"
	}
	return "unknown"
}

// Lookup is the tagged outcome of resolving a Path.
type Lookup struct {
	Status Status
	Value  string
	Path   Path
	Reason string
}

func (l Lookup) IsFound() bool {
	return l.Status == Found
}

// Lookup resolves p below g. A group or segment with no occurrences is
// Absent; an index past the end of an occurrence list that does exist is
// Malformed. Missing fields, components and subcomponents are Absent.
func (g *Group) Lookup(p Path) Lookup {
	current := g
	for _, ref := range p.Groups {
		groups := current.GroupsNamed(ref.Name)
		switch {
		case len(groups) == 0:
			return Lookup{Status: Absent, Path: p, Reason: fmt.Sprintf("no %s group", ref.Name)}
		case ref.Index < 0 || ref.Index >= len(groups):
			return Lookup{Status: Malformed, Path: p, Reason: fmt.Sprintf("%s index %d out of %d", ref.Name, ref.Index, len(groups))}
		}
		current = groups[ref.Index]
	}

	segments := current.SegmentsNamed(p.Segment)
	switch {
	case len(segments) == 0:
		return Lookup{Status: Absent, Path: p, Reason: fmt.Sprintf("no %s segment", p.Segment)}
	case p.SegmentIndex < 0 || p.SegmentIndex >= len(segments):
		return Lookup{Status: Malformed, Path: p, Reason: fmt.Sprintf("%s index %d out of %d", p.Segment, p.SegmentIndex, len(segments))}
	}

	value, ok := segments[p.SegmentIndex].Value(p.Field, p.Repetition, p.Component, p.Subcomponent, g.delimiters)
	if !ok {
		return Lookup{Status: Absent, Path: p, Reason: "position not present"}
	}
	return Lookup{Status: Found, Value: value, Path: p}
}
