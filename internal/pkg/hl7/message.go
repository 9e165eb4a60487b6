package hl7

// Header returns the MSH segment.
func (m *Message) Header() *Segment {
	return m.Segments[0]
}

// ControlID returns MSH-10.
func (m *Message) ControlID() string {
	value, _ := m.Header().Value(10, 0, 0, 0, m.Delimiters)
	return value
}

// MessageType returns MSH-9 as "<code>^<trigger>".
func (m *Message) MessageType() string {
	code, _ := m.Header().Value(9, 0, 1, 0, m.Delimiters)
	trigger, _ := m.Header().Value(9, 0, 2, 0, m.Delimiters)
	if trigger == "" {
		return code
	}
	return code + "^" + trigger
}

// Timestamp returns the raw MSH-7 value.
func (m *Message) Timestamp() string {
	value, _ := m.Header().Value(7, 0, 0, 0, m.Delimiters)
	return value
}

// SendingApplication returns the unescaped components of MSH-3.
func (m *Message) SendingApplication() []string {
	header := m.Header()
	if len(header.Fields) <= 3 || len(header.Fields[3].Repetitions) == 0 {
		return nil
	}
	components := header.Fields[3].Repetitions[0].Components
	values := make([]string, 0, len(components))
	for _, component := range components {
		values = append(values, m.Delimiters.Unescape(component.Raw))
	}
	return values
}

// Value returns the addressed leaf of s. Repetition is zero based;
// component and subcomponent are one based and zero selects the whole
// enclosing value. The boolean is false when the position does not exist.
func (s *Segment) Value(field, repetition, component, subcomponent int, d Delimiters) (string, bool) {
	if field < 0 || field >= len(s.Fields) {
		return "", false
	}
	reps := s.Fields[field].Repetitions
	if repetition < 0 || repetition >= len(reps) {
		return "", false
	}
	rep := reps[repetition]
	if component == 0 {
		return d.Unescape(rep.Raw), true
	}
	if component < 0 || component > len(rep.Components) {
		return "", false
	}
	comp := rep.Components[component-1]
	if subcomponent == 0 {
		return d.Unescape(comp.Raw), true
	}
	if subcomponent < 0 || subcomponent > len(comp.Subcomponents) {
		return "", false
	}
	return comp.Subcomponents[subcomponent-1], true
}
