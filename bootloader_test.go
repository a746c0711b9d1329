package ch55x

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/gousb"
)

type controlCall struct {
	rType, request uint8
	val, idx       uint16
	data           []byte
}

type fakeDevice struct {
	claimErr   error
	controlErr error
	claimed    []int
	calls      []controlCall
	closed     bool
}

func (d *fakeDevice) ClaimInterfaces(nums ...int) error {
	if d.claimErr != nil {
		return d.claimErr
	}
	d.claimed = append(d.claimed, nums...)
	return nil
}

func (d *fakeDevice) Control(rType, request uint8, val, idx uint16, data []byte) (int, error) {
	d.calls = append(d.calls, controlCall{rType, request, val, idx, data})
	return 0, d.controlErr
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

type fakeOpener struct {
	dev     *fakeDevice
	openErr error
	vid     uint16
	pid     uint16
}

func (o *fakeOpener) OpenDevice(vid, pid uint16) (USBDevice, error) {
	o.vid, o.pid = vid, pid
	if o.openErr != nil {
		return nil, o.openErr
	}
	if o.dev == nil {
		return nil, nil
	}
	return o.dev, nil
}

func (o *fakeOpener) Close() error { return nil }

func TestResetDeviceNotFound(t *testing.T) {
	opener := &fakeOpener{}

	result, err := ResetDevice(opener, 0x1a2b, 0xc550)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != ResetNotFound {
		t.Errorf("result = %v, expected %v", result, ResetNotFound)
	}
	if opener.vid != 0x1a2b || opener.pid != 0xc550 {
		t.Errorf("opened %04x:%04x, expected 1a2b:c550", opener.vid, opener.pid)
	}
}

func TestResetDeviceSendsVendorRequest(t *testing.T) {
	dev := &fakeDevice{}

	result, err := ResetDevice(&fakeOpener{dev: dev}, 0x1a2b, 0xc550)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != ResetSent {
		t.Errorf("result = %v, expected %v", result, ResetSent)
	}

	if len(dev.claimed) != 2 || dev.claimed[0] != 0 || dev.claimed[1] != 1 {
		t.Errorf("claimed interfaces %v, expected [0 1]", dev.claimed)
	}
	if len(dev.calls) != 1 {
		t.Fatalf("Expected 1 control transfer, got %d", len(dev.calls))
	}
	call := dev.calls[0]
	if call.rType != 0x21 || call.request != 0x65 || call.val != 0x01 || call.idx != 0 || len(call.data) != 0 {
		t.Errorf("control transfer = %+v, expected 0x21/0x65/1/0 without data", call)
	}
	if !dev.closed {
		t.Error("Device was not closed")
	}
}

func TestResetDeviceTransferFailureIsBenign(t *testing.T) {
	dev := &fakeDevice{controlErr: gousb.ErrorNoDevice}

	result, err := ResetDevice(&fakeOpener{dev: dev}, 0x1a2b, 0xc550, WithSettleDelay(0))
	if err != nil {
		t.Fatalf("Transfer failure must not be an error, got %v", err)
	}
	if result != ResetDisconnected {
		t.Errorf("result = %v, expected %v", result, ResetDisconnected)
	}
}

func TestResetDeviceErrors(t *testing.T) {
	permission := fmt.Errorf("%w: libusb", ErrPermissionDenied)

	tests := []struct {
		name   string
		opener *fakeOpener
	}{
		{"open", &fakeOpener{openErr: permission}},
		{"claim", &fakeOpener{dev: &fakeDevice{claimErr: permission}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ResetDevice(tt.opener, 0x1a2b, 0xc550)
			if !errors.Is(err, ErrPermissionDenied) {
				t.Errorf("Expected ErrPermissionDenied, got %v", err)
			}
			if result != ResetFailed {
				t.Errorf("result = %v, expected %v", result, ResetFailed)
			}
			if tt.opener.dev != nil && len(tt.opener.dev.calls) != 0 {
				t.Error("No control transfer expected after a failed claim")
			}
		})
	}
}

func TestResetToBootloader(t *testing.T) {
	dev := &fakeDevice{controlErr: errors.New("libusb: no device [code -4]")}
	opener := &fakeOpener{dev: dev}

	old := newOpener
	newOpener = func() USBOpener { return opener }
	t.Cleanup(func() { newOpener = old })

	result, err := ResetToBootloader(0x1a2b, 0xc550, WithSettleDelay(0))
	if err != nil {
		t.Fatalf("ResetToBootloader failed: %v", err)
	}
	if result != ResetDisconnected {
		t.Errorf("result = %v, expected %v", result, ResetDisconnected)
	}
	if opener.vid != 0x1a2b || opener.pid != 0xc550 {
		t.Errorf("opened %04x:%04x, expected 1a2b:c550", opener.vid, opener.pid)
	}
	if len(dev.calls) != 1 || dev.calls[0].request != ResetRequest {
		t.Errorf("control calls = %+v, expected one 0x%02x request", dev.calls, ResetRequest)
	}
	if !dev.closed {
		t.Error("Device was not closed")
	}
}

func TestWithInterfaces(t *testing.T) {
	dev := &fakeDevice{}
	if _, err := ResetDevice(&fakeOpener{dev: dev}, 1, 2, WithInterfaces(0)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(dev.claimed) != 1 || dev.claimed[0] != 0 {
		t.Errorf("claimed interfaces %v, expected [0]", dev.claimed)
	}
}

func TestClassifyUSBError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{"wrapped access", fmt.Errorf("open: %w", gousb.ErrorAccess), ErrPermissionDenied},
		{"formatted access", fmt.Errorf("failed to claim interface 0: %v", gousb.ErrorAccess), ErrPermissionDenied},
		{"busy", gousb.ErrorBusy, ErrUSBAccess},
		{"other", errors.New("boom"), ErrUSBAccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := classifyUSBError(tt.err); !errors.Is(err, tt.expected) {
				t.Errorf("classifyUSBError(%v) = %v, expected %v", tt.err, err, tt.expected)
			}
		})
	}
}

func TestUdevRule(t *testing.T) {
	expected := `SUBSYSTEM=="usb", ATTR{idVendor}=="1a2b", ATTR{idProduct}=="0c55", MODE="666"`
	if got := UdevRule(0x1a2b, 0x0c55); got != expected {
		t.Errorf("UdevRule() = %s, expected %s", got, expected)
	}
}

func TestResetResultString(t *testing.T) {
	tests := map[ResetResult]string{
		ResetFailed:       "failed",
		ResetNotFound:     "not found",
		ResetSent:         "sent",
		ResetDisconnected: "disconnected",
	}
	for result, expected := range tests {
		if got := result.String(); got != expected {
			t.Errorf("ResetResult(%d).String() = %q, expected %q", int(result), got, expected)
		}
	}
}
