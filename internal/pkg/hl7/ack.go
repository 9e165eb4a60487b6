package hl7

import (
	"strings"
	"time"

	"limslite-service/internal/pkg/constvars"
	"limslite-service/internal/pkg/exceptions"
	"limslite-service/internal/pkg/mllp"
)

type AckKind string

const (
	AckAccept AckKind = constvars.AckCodeAccept
	AckError  AckKind = constvars.AckCodeError
	AckReject AckKind = constvars.AckCodeReject
)

func (k AckKind) Valid() bool {
	switch k {
	case AckAccept, AckError, AckReject:
		return true
	}
	return false
}

// Responder identifies this system in acknowledgment headers.
type Responder struct {
	Application string
	Facility    string
	LabName     string
}

type AckRequest struct {
	ControlID          string
	SendingApplication []string
	Kind               AckKind
	Text               string
}

// BuildAck renders an ACK^R22 for request and frames it for the wire. An
// unknown kind fails before anything is rendered.
func BuildAck(responder Responder, request AckRequest, now time.Time) ([]byte, error) {
	if !request.Kind.Valid() {
		return nil, exceptions.ErrInvalidAckKind(nil, string(request.Kind))
	}

	d := DefaultDelimiters
	receivingApplication := make([]string, 0, len(request.SendingApplication))
	for _, component := range request.SendingApplication {
		receivingApplication = append(receivingApplication, d.EscapeText(component))
	}

	header := make([]string, 21)
	header[0] = headerSegmentName
	header[1] = d.EncodingCharacters()
	header[2] = d.EscapeText(responder.Application)
	header[3] = d.EscapeText(responder.Facility)
	header[4] = strings.Join(receivingApplication, string(d.Component))
	header[5] = d.EscapeText(responder.LabName)
	header[6] = now.Format(constvars.HL7TimestampTZLayout)
	header[8] = constvars.HL7AckMessageType
	header[9] = d.EscapeText(request.ControlID)
	header[10] = constvars.HL7ProcessingID
	header[11] = constvars.HL7VersionID
	header[17] = constvars.HL7CharacterSet
	header[20] = constvars.HL7AckProfileID

	acknowledgment := []string{"MSA", string(request.Kind), d.EscapeText(request.ControlID)}
	if request.Text != "" {
		acknowledgment = append(acknowledgment, d.EscapeText(request.Text))
	}

	payload := strings.Join(header, string(d.Field)) + string(SegmentTerminator) +
		strings.Join(acknowledgment, string(d.Field))
	return mllp.Frame([]byte(payload)), nil
}
