package hl7

import (
	"fmt"

	"limslite-service/internal/pkg/exceptions"
)

// Structure describes the segment grammar of a message or of one of its
// groups. Every group starts with a leading segment, which is how the
// matcher recognizes a new occurrence.
type Structure struct {
	Name     string
	Children []Element
}

// Element is either a segment or a nested group.
type Element struct {
	Segment string
	Group   *Structure
	Repeat  bool
}

func (e Element) startsWith(name string) bool {
	if e.Group != nil {
		return len(e.Group.Children) > 0 && e.Group.Children[0].Segment == name
	}
	return e.Segment == name
}

// Group names used by the OUL^R22 grammar.
const (
	GroupPatient   = "PATIENT"
	GroupVisit     = "VISIT"
	GroupSpecimen  = "SPECIMEN"
	GroupContainer = "CONTAINER"
	GroupOrder     = "ORDER"
	GroupTimingQty = "TIMING_QTY"
	GroupResult    = "RESULT"
)

var (
	oulR22Visit = &Structure{Name: GroupVisit, Children: []Element{
		{Segment: "PV1"},
		{Segment: "PV2"},
	}}
	oulR22Patient = &Structure{Name: GroupPatient, Children: []Element{
		{Segment: "PID"},
		{Segment: "PD1"},
		{Segment: "NTE", Repeat: true},
		{Group: oulR22Visit},
	}}
	oulR22Container = &Structure{Name: GroupContainer, Children: []Element{
		{Segment: "SAC"},
		{Segment: "INV"},
	}}
	oulR22TimingQty = &Structure{Name: GroupTimingQty, Children: []Element{
		{Segment: "TQ1"},
		{Segment: "TQ2", Repeat: true},
	}}
	oulR22Result = &Structure{Name: GroupResult, Children: []Element{
		{Segment: "OBX"},
		{Segment: "TCD"},
		{Segment: "SID", Repeat: true},
		{Segment: "NTE", Repeat: true},
	}}
	oulR22Order = &Structure{Name: GroupOrder, Children: []Element{
		{Segment: "OBR"},
		{Segment: "ORC"},
		{Segment: "NTE", Repeat: true},
		{Group: oulR22TimingQty, Repeat: true},
		{Group: oulR22Result, Repeat: true},
		{Segment: "CTI", Repeat: true},
	}}
	oulR22Specimen = &Structure{Name: GroupSpecimen, Children: []Element{
		{Segment: "SPM"},
		{Segment: "OBX", Repeat: true},
		{Group: oulR22Container, Repeat: true},
		{Group: oulR22Order, Repeat: true},
	}}

	// OULR22 is the unsolicited specimen oriented observation message.
	OULR22 = &Structure{Name: "OUL_R22", Children: []Element{
		{Segment: "MSH"},
		{Segment: "SFT", Repeat: true},
		{Segment: "NTE", Repeat: true},
		{Group: oulR22Patient},
		{Group: oulR22Specimen, Repeat: true},
		{Segment: "DSC"},
	}}
)

// Group is one matched occurrence of a Structure.
type Group struct {
	Name       string
	Segments   []*Segment
	Groups     []*Group
	delimiters Delimiters
}

func (g *Group) SegmentsNamed(name string) []*Segment {
	var segments []*Segment
	for _, segment := range g.Segments {
		if segment.Name == name {
			segments = append(segments, segment)
		}
	}
	return segments
}

func (g *Group) GroupsNamed(name string) []*Group {
	var groups []*Group
	for _, group := range g.Groups {
		if group.Name == name {
			groups = append(groups, group)
		}
	}
	return groups
}

// Build arranges the segments of m into the groups of structure. A segment
// that fits nowhere in the grammar makes the message malformed.
func Build(m *Message, structure *Structure) (*Group, error) {
	root, pos := structure.match(m.Segments, 0, m.Delimiters)
	if pos < len(m.Segments) {
		return nil, exceptions.ErrMalformedMessage(nil, fmt.Sprintf("unexpected segment %s at position %d", m.Segments[pos].Name, pos+1))
	}
	return root, nil
}

func (s *Structure) match(segments []*Segment, pos int, d Delimiters) (*Group, int) {
	group := &Group{Name: s.Name, delimiters: d}
	for _, element := range s.Children {
		for pos < len(segments) && element.startsWith(segments[pos].Name) {
			if element.Group != nil {
				var child *Group
				child, pos = element.Group.match(segments, pos, d)
				group.Groups = append(group.Groups, child)
			} else {
				group.Segments = append(group.Segments, segments[pos])
				pos++
			}
			if !element.Repeat {
				break
			}
		}
	}
	return group, pos
}
