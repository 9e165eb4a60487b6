package constvars

// Acknowledgment codes carried in MSA-1
const (
	AckCodeAccept = "AA"
	AckCodeError  = "AE"
	AckCodeReject = "AR"
)

// Message profile observed from the c4800 analyzer
const (
	HL7VersionID          = "2.5.1"
	HL7MessageTypeOULR22  = "OUL^R22"
	HL7AckMessageType     = "ACK^R22^ACK"
	HL7ProcessingID       = "P"
	HL7CharacterSet       = "UNICODE UTF-8"
	HL7AckProfileID       = "LAB-29^IHE"
	HL7TimestampLayout    = "20060102150405"
	HL7TimestampTZLayout  = "20060102150405-0700"
	SampleRolePatient     = "P"
	SampleRoleControl     = "Q"
	SampleTypeNegControl  = "NEGCONTROL"
	ResultUnitsSuffix     = "cp/ml"
	ResultNumericLength   = 8
	FlagsPrefixLength     = 2
	FlagsNone             = "NONE"
	AssayPlaceholderName  = "temp"
	FrameRejectionNotice  = "msg rejected\nincorrect framing\nclosing connection...\n"
	DefaultMaxFrameSize   = 1024 * 1024
	SoftwareVersionRegexp = `(\d+\.\d+\.\d+\.\d{4})$`
)
