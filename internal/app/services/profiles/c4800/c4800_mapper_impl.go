package c4800

import (
	"context"
	"errors"
	"fmt"
	"time"

	"limslite-service/internal/app/contracts"
	"limslite-service/internal/app/models"
	"limslite-service/internal/pkg/constvars"
	"limslite-service/internal/pkg/exceptions"
	"limslite-service/internal/pkg/hl7"
	"limslite-service/internal/pkg/utils"

	"go.uber.org/zap"
)

// c4800Mapper reads OUL^R22 result messages sent by the cobas 4800.
// Timestamps without an offset are interpreted in Location.
type c4800Mapper struct {
	Location *time.Location
	Log      *zap.Logger
}

func NewC4800Mapper(location *time.Location, logger *zap.Logger) contracts.MessageMapper {
	if location == nil {
		location = time.Local
	}
	return &c4800Mapper{
		Location: location,
		Log:      logger,
	}
}

func (m *c4800Mapper) Structure() *hl7.Structure {
	return hl7.OULR22
}

// Extract reads the instrument and run identity from the header and one
// result per specimen group. Header problems fail the whole message; a bad
// specimen is reported in Failures and its siblings are still extracted.
func (m *c4800Mapper) Extract(ctx context.Context, message *hl7.Message, root *hl7.Group) (*models.MessageExtraction, error) {
	requestID := utils.RequestIDFromContext(ctx)
	m.Log.Info("c4800Mapper.Extract called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingControlIDKey, message.ControlID()),
	)

	controlID := message.ControlID()
	if controlID == "" {
		return nil, exceptions.ErrFieldExtraction(errors.New("empty control id"), "MSH-10")
	}

	timestamp, err := time.Parse(constvars.HL7TimestampTZLayout, message.Timestamp())
	if err != nil {
		return nil, exceptions.ErrFieldExtraction(err, "MSH-7")
	}

	instrument, err := m.extractInstrument(message, root)
	if err != nil {
		m.Log.Error("c4800Mapper.Extract error reading instrument identity",
			append([]zap.Field{zap.String(constvars.LoggingRequestIDKey, requestID)}, utils.ErrorFields(err)...)...,
		)
		return nil, err
	}

	extraction := &models.MessageExtraction{
		ControlID:        controlID,
		MessageTimestamp: timestamp,
		Instrument:       *instrument,
	}

	specimens := root.GroupsNamed(hl7.GroupSpecimen)
	for index := range specimens {
		record, err := m.extractSpecimen(root, index)
		if err != nil {
			sampleID := root.Lookup(specimenPath(index, nil, "SPM", 0, 2, 1, 1)).Value
			m.Log.Warn("c4800Mapper.Extract specimen extraction failed",
				append([]zap.Field{
					zap.String(constvars.LoggingRequestIDKey, requestID),
					zap.Int(constvars.LoggingSpecimenIndexKey, index),
					zap.String(constvars.LoggingSampleIDKey, sampleID),
				}, utils.ErrorFields(err)...)...,
			)
			extraction.Failures = append(extraction.Failures, models.SpecimenFailure{
				Index:    index,
				SampleID: sampleID,
				Err:      err,
			})
			continue
		}
		extraction.Results = append(extraction.Results, *record)
	}

	m.Log.Info("c4800Mapper.Extract succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingInstrumentKey, instrument.String()),
		zap.Int(constvars.LoggingSpecimenCountKey, len(specimens)),
		zap.Int(constvars.LoggingResultCountKey, len(extraction.Results)),
		zap.Int(constvars.LoggingSkippedCountKey, len(extraction.Failures)),
	)
	return extraction, nil
}

func (m *c4800Mapper) extractInstrument(message *hl7.Message, root *hl7.Group) (*models.InstrumentInfo, error) {
	application := message.SendingApplication()
	if len(application) < 2 || application[1] == "" {
		return nil, exceptions.ErrFieldExtraction(errors.New("sending application has no serial number"), "MSH-3.2")
	}

	version, ok := ParseSoftwareVersion(application[0])
	if !ok {
		return nil, exceptions.ErrVersionPatternNotFound(nil, application[0])
	}

	model, err := required(root, specimenPath(0, []hl7.GroupRef{{Name: hl7.GroupOrder}, {Name: hl7.GroupResult}}, "OBX", 0, 18, 1, 0))
	if err != nil {
		return nil, err
	}

	instrument := &models.InstrumentInfo{
		Model:           model,
		SerialNumber:    application[1],
		SoftwareVersion: version,
	}
	if err := utils.ValidateStruct(instrument); err != nil {
		return nil, exceptions.ErrFieldExtraction(err, "MSH-3")
	}
	return instrument, nil
}

func (m *c4800Mapper) extractSpecimen(root *hl7.Group, index int) (*models.ResultRecord, error) {
	var (
		order0  = []hl7.GroupRef{{Name: hl7.GroupOrder, Index: 0}}
		order1  = []hl7.GroupRef{{Name: hl7.GroupOrder, Index: 1}}
		timing  = []hl7.GroupRef{{Name: hl7.GroupOrder, Index: 0}, {Name: hl7.GroupResult, Index: 0}}
		outcome = []hl7.GroupRef{{Name: hl7.GroupOrder, Index: 0}, {Name: hl7.GroupResult, Index: 1}}
	)

	record := &models.ResultRecord{}
	var err error

	if record.SampleRole, err = required(root, specimenPath(index, nil, "SPM", 0, 11, 1, 0)); err != nil {
		return nil, err
	}
	if record.SampleID, err = required(root, specimenPath(index, nil, "SPM", 0, 2, 1, 1)); err != nil {
		return nil, err
	}
	if record.LisCode, err = required(root, specimenPath(index, order0, "OBR", 0, 4, 1, 0)); err != nil {
		return nil, err
	}

	samplePath := specimenPath(index, []hl7.GroupRef{{Name: hl7.GroupContainer, Index: 0}}, "INV", 0, 1, 1, 0)
	if record.SampleRole == constvars.SampleRolePatient {
		samplePath = specimenPath(index, nil, "SPM", 0, 4, 1, 0)
	}
	if record.SampleType, err = optional(root, samplePath); err != nil {
		return nil, err
	}

	rawResult, err := required(root, specimenPath(index, outcome, "OBX", 0, 5, 0, 0))
	if err != nil {
		return nil, err
	}
	record.Result = ProcessResult(rawResult)
	if record.Units, err = optional(root, specimenPath(index, outcome, "OBX", 0, 6, 1, 0)); err != nil {
		return nil, err
	}
	if record.ResultStatus, err = optional(root, specimenPath(index, outcome, "OBX", 0, 11, 0, 0)); err != nil {
		return nil, err
	}
	if record.OperatorUsername, err = optional(root, specimenPath(index, outcome, "OBX", 0, 16, 1, 0)); err != nil {
		return nil, err
	}

	flags, err := optional(root, specimenPath(index, order1, "NTE", 0, 3, 0, 0))
	if err != nil {
		return nil, err
	}
	record.Flags = ParseFlags(flags)

	if record.SampleRole == constvars.SampleRoleControl && record.SampleType != constvars.SampleTypeNegControl {
		ctsPath := specimenPath(index, order1, "NTE", 1, 3, 0, 0)
		note, err := required(root, ctsPath)
		if err != nil {
			return nil, err
		}
		if record.ControlCtValues, err = ParseControlCts(note); err != nil {
			return nil, exceptions.ErrFieldExtraction(err, ctsPath.String())
		}
	}

	if record.SampleRole == constvars.SampleRolePatient {
		if record.Comments, err = optional(root, specimenPath(index, order1, "NTE", 2, 3, 0, 0)); err != nil {
			return nil, err
		}
	}

	masterWell := []hl7.GroupRef{{Name: hl7.GroupContainer, Index: 1}}
	if record.DryWellID, err = optional(root, specimenPath(index, []hl7.GroupRef{{Name: hl7.GroupContainer, Index: 2}}, "INV", 0, 5, 1, 0)); err != nil {
		return nil, err
	}
	if record.MasterWellID, err = optional(root, specimenPath(index, masterWell, "INV", 0, 5, 1, 0)); err != nil {
		return nil, err
	}
	if record.MasterWellPosition, err = optional(root, specimenPath(index, masterWell, "INV", 0, 6, 1, 0)); err != nil {
		return nil, err
	}

	if record.StartTimestamp, err = m.timestamp(root, specimenPath(index, timing, "OBX", 0, 5, 1, 0)); err != nil {
		return nil, err
	}
	if record.EndTimestamp, err = m.timestamp(root, specimenPath(index, timing, "OBX", 0, 5, 2, 0)); err != nil {
		return nil, err
	}

	if err := utils.ValidateStruct(record); err != nil {
		return nil, exceptions.ErrFieldExtraction(err, fmt.Sprintf("%s[%d]", hl7.GroupSpecimen, index))
	}
	return record, nil
}

// timestamp parses an optional offset-less date-time. An absent value
// yields the zero time.
func (m *c4800Mapper) timestamp(root *hl7.Group, path hl7.Path) (time.Time, error) {
	value, err := optional(root, path)
	if err != nil {
		return time.Time{}, err
	}
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.ParseInLocation(constvars.HL7TimestampLayout, value, m.Location)
	if err != nil {
		return time.Time{}, exceptions.ErrFieldExtraction(err, path.String())
	}
	return parsed, nil
}

func specimenPath(index int, groups []hl7.GroupRef, segment string, segmentIndex, field, component, subcomponent int) hl7.Path {
	refs := append([]hl7.GroupRef{{Name: hl7.GroupSpecimen, Index: index}}, groups...)
	return hl7.Path{
		Groups:       refs,
		Segment:      segment,
		SegmentIndex: segmentIndex,
		Field:        field,
		Component:    component,
		Subcomponent: subcomponent,
	}
}

func required(root *hl7.Group, path hl7.Path) (string, error) {
	lookup := root.Lookup(path)
	if !lookup.IsFound() {
		return "", exceptions.ErrFieldExtraction(fmt.Errorf("%s: %s", lookup.Status, lookup.Reason), path.String())
	}
	if lookup.Value == "" {
		return "", exceptions.ErrFieldExtraction(errors.New("empty value"), path.String())
	}
	return lookup.Value, nil
}

// optional defaults to an empty value only when path is legitimately
// absent. An index past the end of an existing group list is an error.
func optional(root *hl7.Group, path hl7.Path) (string, error) {
	lookup := root.Lookup(path)
	if lookup.Status == hl7.Malformed {
		return "", exceptions.ErrFieldExtraction(fmt.Errorf("%s: %s", lookup.Status, lookup.Reason), path.String())
	}
	return lookup.Value, nil
}
