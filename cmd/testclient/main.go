package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"limslite-service/internal/app/drivers/logger"
	"limslite-service/internal/pkg/hl7"
	"limslite-service/internal/pkg/mllp"

	"github.com/sirupsen/logrus"
)

func main() {
	addr := flag.String("addr", "localhost:9999", "MLLP listener address")
	file := flag.String("file", "", "HL7 message file to send")
	chunk := flag.Int("chunk", 0, "write the frame in chunks of this many bytes (0 sends it at once)")
	timeout := flag.Duration("timeout", 30*time.Second, "time to wait for the acknowledgment")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	log := logger.NewLogrusLogger(*verbose)
	if *file == "" {
		log.Fatal("-file is required")
	}

	if err := run(log, *addr, *file, *chunk, *timeout); err != nil {
		log.WithError(err).Fatal("exchange failed")
	}
}

func run(log *logrus.Logger, addr, file string, chunk int, timeout time.Duration) error {
	payload, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	frame := mllp.Frame(payload)

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.WithFields(logrus.Fields{"addr": addr, "bytes": len(frame)}).Info("connected")

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	if err := writeChunked(log, conn, frame, chunk); err != nil {
		return err
	}

	ack, err := mllp.NewReader(conn, 0).ReadFrame()
	if err != nil {
		return fmt.Errorf("reading acknowledgment: %w", err)
	}
	fmt.Println(strings.ReplaceAll(string(ack), "\r", "\n"))

	message, err := hl7.Parse(string(ack))
	if err != nil {
		return fmt.Errorf("parsing acknowledgment: %w", err)
	}
	for _, segment := range message.Segments {
		if segment.Name != "MSA" {
			continue
		}
		code, _ := segment.Value(1, 0, 0, 0, message.Delimiters)
		controlID, _ := segment.Value(2, 0, 0, 0, message.Delimiters)
		log.WithFields(logrus.Fields{"code": code, "control_id": controlID}).Info("acknowledgment received")
	}
	return nil
}

// writeChunked writes frame in pieces of size bytes so that reassembly on
// the listener side can be observed.
func writeChunked(log *logrus.Logger, conn net.Conn, frame []byte, size int) error {
	if size <= 0 {
		size = len(frame)
	}
	for start := 0; start < len(frame); start += size {
		end := start + size
		if end > len(frame) {
			end = len(frame)
		}
		if _, err := conn.Write(frame[start:end]); err != nil {
			return err
		}
		log.WithField("bytes", end-start).Debug("chunk written")
	}
	return nil
}
