package ch55x

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"
)

// DefaultTrigger is the byte that makes the firmware send its test line
const DefaultTrigger byte = 's'

// SpeedResult is one throughput measurement
type SpeedResult struct {
	Elapsed time.Duration
	Bytes   int
	Line    []byte
}

// KBps returns the throughput in kilobytes (1000 bytes) per second
func (r SpeedResult) KBps() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Bytes) / r.Elapsed.Seconds() / 1000
}

type inputFlusher interface {
	FlushInput() error
}

// MeasureSpeed writes trigger to rw and times the read of the line the
// device answers with. Stale input is discarded first when rw supports it.
//
// Returns ErrNoResponse if nothing arrives before the read timeout.
func MeasureSpeed(rw io.ReadWriter, trigger byte) (SpeedResult, error) {
	if f, ok := rw.(inputFlusher); ok {
		if err := f.FlushInput(); err != nil {
			return SpeedResult{}, fmt.Errorf("failed to flush input: %w", err)
		}
	}

	if _, err := rw.Write([]byte{trigger}); err != nil {
		return SpeedResult{}, fmt.Errorf("failed to write trigger: %w", err)
	}

	start := time.Now()
	line, err := ReadLine(rw)
	elapsed := time.Since(start)
	if err != nil {
		return SpeedResult{}, err
	}
	if len(line) == 0 {
		return SpeedResult{}, ErrNoResponse
	}

	return SpeedResult{
		Elapsed: elapsed,
		Bytes:   len(line),
		Line:    line,
	}, nil
}

// ReadLine reads up to and including the next '\n'. A read returning no
// data (the port's read timeout) or io.EOF ends the line early.
// Bytes received after the newline in the same read are discarded.
func ReadLine(r io.Reader) ([]byte, error) {
	var line []byte
	buf := make([]byte, 256)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			if i := bytes.IndexByte(buf[:n], '\n'); i >= 0 {
				return append(line, buf[:i+1]...), nil
			}
			line = append(line, buf[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return line, nil
			}
			return line, fmt.Errorf("read error: %w", err)
		}
		if n == 0 {
			return line, nil
		}
	}
}
