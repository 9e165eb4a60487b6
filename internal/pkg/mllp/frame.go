package mllp

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"limslite-service/internal/pkg/exceptions"
)

// Block markers of the minimal lower layer protocol.
const (
	StartBlock     byte = 0x0B
	EndBlock       byte = 0x1C
	CarriageReturn byte = 0x0D
)

var endSequence = []byte{EndBlock, CarriageReturn}

// Frame wraps payload in block markers after normalizing its line endings to
// carriage returns.
func Frame(payload []byte) []byte {
	normalized := NormalizeLineEndings(payload)
	framed := make([]byte, 0, len(normalized)+3)
	framed = append(framed, StartBlock)
	framed = append(framed, normalized...)
	framed = append(framed, endSequence...)
	return framed
}

// Unwrap validates a complete frame and returns its normalized payload.
func Unwrap(frame []byte) ([]byte, error) {
	if len(frame) == 0 || frame[0] != StartBlock {
		return nil, exceptions.ErrFrameRejected(nil, "missing start block")
	}
	if len(frame) < 3 || !bytes.HasSuffix(frame, endSequence) {
		return nil, exceptions.ErrFrameRejected(nil, "missing end sequence")
	}
	return NormalizeLineEndings(frame[1 : len(frame)-len(endSequence)]), nil
}

// NormalizeLineEndings rewrites CRLF and LF to a single CR.
func NormalizeLineEndings(payload []byte) []byte {
	normalized := bytes.ReplaceAll(payload, []byte("\r\n"), []byte("\r"))
	return bytes.ReplaceAll(normalized, []byte("\n"), []byte("\r"))
}

// Reader reassembles frames from a byte stream that may deliver them in
// arbitrary chunks. Bytes following an end sequence stay buffered for the
// next ReadFrame call.
type Reader struct {
	reader  *bufio.Reader
	maxSize int
}

func NewReader(r io.Reader, maxSize int) *Reader {
	return &Reader{
		reader:  bufio.NewReader(r),
		maxSize: maxSize,
	}
}

// ReadFrame blocks until one complete frame has been read and returns its
// payload with markers stripped and line endings normalized.
//
// io.EOF is returned when the peer closes the stream before sending any
// byte of a new frame.
func (r *Reader) ReadFrame() ([]byte, error) {
	first, err := r.reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if first != StartBlock {
		return nil, exceptions.ErrFrameRejected(nil, "missing start block")
	}

	buf := []byte{first}
	for {
		b, err := r.reader.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, exceptions.ErrFrameRejected(io.ErrUnexpectedEOF, "connection closed mid-frame")
			}
			return nil, err
		}
		buf = append(buf, b)

		if r.maxSize > 0 && len(buf) > r.maxSize {
			return nil, exceptions.ErrFrameTooLarge(nil, r.maxSize)
		}
		if b == CarriageReturn && len(buf) >= 3 && buf[len(buf)-2] == EndBlock {
			return Unwrap(buf)
		}
	}
}
