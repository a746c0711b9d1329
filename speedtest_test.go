package ch55x

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
	"time"
)

// scriptedPort returns one chunk per Read; an exhausted script behaves
// like an expired read timeout.
type scriptedPort struct {
	chunks   [][]byte
	written  bytes.Buffer
	flushed  bool
	readErr  error
	writeErr error
}

func (p *scriptedPort) Read(buf []byte) (int, error) {
	if len(p.chunks) == 0 {
		return 0, p.readErr
	}
	n := copy(buf, p.chunks[0])
	p.chunks = p.chunks[1:]
	return n, nil
}

func (p *scriptedPort) Write(data []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.written.Write(data)
}

func (p *scriptedPort) FlushInput() error {
	p.flushed = true
	return nil
}

func TestMeasureSpeed(t *testing.T) {
	p := &scriptedPort{chunks: [][]byte{
		[]byte("0123456789"),
		[]byte("abcdef\nleftover"),
	}}

	res, err := MeasureSpeed(p, DefaultTrigger)
	if err != nil {
		t.Fatalf("MeasureSpeed failed: %v", err)
	}

	if got := p.written.String(); got != "s" {
		t.Errorf("written = %q, expected %q", got, "s")
	}
	if !p.flushed {
		t.Error("Expected stale input to be flushed")
	}
	if res.Bytes != 17 {
		t.Errorf("Bytes = %d, expected 17", res.Bytes)
	}
	if string(res.Line) != "0123456789abcdef\n" {
		t.Errorf("Line = %q", res.Line)
	}
	if res.Elapsed < 0 {
		t.Errorf("Elapsed = %v, expected >= 0", res.Elapsed)
	}
}

func TestMeasureSpeedNoResponse(t *testing.T) {
	_, err := MeasureSpeed(&scriptedPort{}, DefaultTrigger)
	if err != ErrNoResponse {
		t.Errorf("Expected ErrNoResponse, got %v", err)
	}
}

func TestMeasureSpeedWriteError(t *testing.T) {
	writeErr := errors.New("EIO")
	_, err := MeasureSpeed(&scriptedPort{writeErr: writeErr}, DefaultTrigger)
	if !errors.Is(err, writeErr) {
		t.Errorf("Expected write error, got %v", err)
	}
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		name     string
		chunks   [][]byte
		readErr  error
		expected string
		wantErr  bool
	}{
		{"single chunk", [][]byte{[]byte("hello\n")}, nil, "hello\n", false},
		{"split chunks", [][]byte{[]byte("he"), []byte("llo\nworld")}, nil, "hello\n", false},
		{"timeout mid line", [][]byte{[]byte("partial")}, nil, "partial", false},
		{"eof mid line", [][]byte{[]byte("partial")}, io.EOF, "partial", false},
		{"read error", [][]byte{[]byte("x")}, errors.New("EIO"), "x", true},
		{"nothing", nil, nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := ReadLine(&scriptedPort{chunks: tt.chunks, readErr: tt.readErr})
			if (err != nil) != tt.wantErr {
				t.Errorf("ReadLine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if string(line) != tt.expected {
				t.Errorf("ReadLine() = %q, expected %q", line, tt.expected)
			}
		})
	}
}

func TestSpeedResultKBps(t *testing.T) {
	tests := []struct {
		result   SpeedResult
		expected float64
	}{
		{SpeedResult{Elapsed: time.Second, Bytes: 2000}, 2.0},
		{SpeedResult{Elapsed: 500 * time.Millisecond, Bytes: 1000}, 2.0},
		{SpeedResult{Elapsed: 0, Bytes: 1000}, 0},
	}

	for _, tt := range tests {
		if got := tt.result.KBps(); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("KBps(%v, %d) = %v, expected %v", tt.result.Elapsed, tt.result.Bytes, got, tt.expected)
		}
	}
}
