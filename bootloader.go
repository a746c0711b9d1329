package ch55x

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/gousb"
)

// Vendor request handled by the firmware's EP0 setup code: it jumps
// straight into the ROM bootloader without acknowledging.
const (
	ResetRequestType = 0x21 // host to device, class, interface
	ResetRequest     = 0x65
	ResetValue       = 0x01
	ResetIndex       = 0
)

// UdevRulePath is where the udev rule granting access to the device belongs
const UdevRulePath = "/etc/udev/rules.d/99-ch55x.rules"

// ResetResult describes how a bootloader reset attempt ended
type ResetResult int

const (
	ResetFailed       ResetResult = iota
	ResetNotFound                 // no device with the requested IDs is attached
	ResetSent                     // the control transfer completed
	ResetDisconnected             // the transfer failed, the device most likely left the bus
)

func (r ResetResult) String() string {
	switch r {
	case ResetNotFound:
		return "not found"
	case ResetSent:
		return "sent"
	case ResetDisconnected:
		return "disconnected"
	default:
		return "failed"
	}
}

// USBDevice is an opened USB device as used by the reset sequence
type USBDevice interface {
	// ClaimInterfaces detaches kernel drivers from and claims the given
	// interfaces of the active configuration.
	ClaimInterfaces(nums ...int) error
	Control(rType, request uint8, val, idx uint16, data []byte) (int, error)
	Close() error
}

// USBOpener finds and opens USB devices.
// OpenDevice returns nil, nil when no device with the IDs is attached.
type USBOpener interface {
	OpenDevice(vid, pid uint16) (USBDevice, error)
	Close() error
}

type resetConfig struct {
	interfaces  []int
	settleDelay time.Duration
	logger      *slog.Logger
}

// ResetOption configures ResetDevice
type ResetOption func(*resetConfig)

// WithInterfaces sets the interfaces claimed before the transfer (default 0 and 1)
func WithInterfaces(nums ...int) ResetOption {
	return func(c *resetConfig) {
		c.interfaces = nums
	}
}

// WithSettleDelay sets how long to wait after the device dropped off the bus
func WithSettleDelay(d time.Duration) ResetOption {
	return func(c *resetConfig) {
		c.settleDelay = d
	}
}

// WithResetLogger sets the logger for control transfer traces
func WithResetLogger(l *slog.Logger) ResetOption {
	return func(c *resetConfig) {
		c.logger = l
	}
}

func defaultResetConfig() resetConfig {
	return resetConfig{
		interfaces:  []int{0, 1},
		settleDelay: time.Second,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// ResetToBootloader resets the device vid:pid into bootloader mode using libusb.
//
// Returns:
// - ResetNotFound, nil if the device is not attached
// - ResetSent or ResetDisconnected, nil once the request was issued
// - ErrPermissionDenied if the device cannot be opened or claimed for lack of permissions
// - ErrUSBAccess for any other failure opening or claiming the device
func ResetToBootloader(vid, pid uint16, opts ...ResetOption) (ResetResult, error) {
	opener := newOpener()
	defer opener.Close()

	return ResetDevice(opener, vid, pid, opts...)
}

// ResetDevice runs the bootloader reset sequence against devices from opener
func ResetDevice(opener USBOpener, vid, pid uint16, opts ...ResetOption) (ResetResult, error) {
	cfg := defaultResetConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	l := cfg.logger.With("vid", fmt.Sprintf("%04x", vid), "pid", fmt.Sprintf("%04x", pid))

	dev, err := opener.OpenDevice(vid, pid)
	if err != nil {
		return ResetFailed, err
	}
	if dev == nil {
		l.Debug("device not attached")
		return ResetNotFound, nil
	}
	defer dev.Close()

	if err := dev.ClaimInterfaces(cfg.interfaces...); err != nil {
		return ResetFailed, err
	}
	l.Debug("claimed interfaces", "interfaces", cfg.interfaces)

	_, err = dev.Control(ResetRequestType, ResetRequest, ResetValue, ResetIndex, nil)
	if err != nil {
		// The firmware leaves for the bootloader without completing the
		// status stage, so a failing transfer is the usual outcome.
		l.Debug("CTRL-OUT",
			"bm", fmt.Sprintf("0x%02x", ResetRequestType),
			"bReq", fmt.Sprintf("0x%02x", ResetRequest),
			"wValue", ResetValue, "wIndex", ResetIndex,
			"err", err)
		time.Sleep(cfg.settleDelay)
		return ResetDisconnected, nil
	}

	l.Debug("CTRL-OUT",
		"bm", fmt.Sprintf("0x%02x", ResetRequestType),
		"bReq", fmt.Sprintf("0x%02x", ResetRequest),
		"wValue", ResetValue, "wIndex", ResetIndex)
	return ResetSent, nil
}

// UdevRule returns the udev rule line that grants users access to vid:pid
func UdevRule(vid, pid uint16) string {
	return fmt.Sprintf(`SUBSYSTEM=="usb", ATTR{idVendor}=="%04x", ATTR{idProduct}=="%04x", MODE="666"`, vid, pid)
}

// newOpener is replaced in tests
var newOpener = NewUSBContext

// usbContext implements USBOpener on top of gousb
type usbContext struct {
	ctx *gousb.Context
}

// NewUSBContext returns a USBOpener backed by a new libusb context
func NewUSBContext() USBOpener {
	return &usbContext{ctx: gousb.NewContext()}
}

func (c *usbContext) OpenDevice(vid, pid uint16) (USBDevice, error) {
	dev, err := c.ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		return nil, classifyUSBError(fmt.Errorf("failed to open device %04x:%04x: %w", vid, pid, err))
	}
	if dev == nil {
		return nil, nil
	}
	return &usbDevice{dev: dev}, nil
}

func (c *usbContext) Close() error {
	return c.ctx.Close()
}

// usbDevice implements USBDevice on top of gousb
type usbDevice struct {
	dev        *gousb.Device
	config     *gousb.Config
	interfaces []*gousb.Interface
}

func (d *usbDevice) ClaimInterfaces(nums ...int) error {
	if err := d.dev.SetAutoDetach(true); err != nil {
		return classifyUSBError(fmt.Errorf("failed to enable kernel driver auto-detach: %w", err))
	}

	cfgNum, err := d.dev.ActiveConfigNum()
	if err != nil {
		return classifyUSBError(fmt.Errorf("failed to get active configuration: %w", err))
	}

	config, err := d.dev.Config(cfgNum)
	if err != nil {
		return classifyUSBError(fmt.Errorf("failed to get configuration: %w", err))
	}
	d.config = config

	for _, num := range nums {
		intf, err := config.Interface(num, 0)
		if err != nil {
			return classifyUSBError(fmt.Errorf("failed to claim interface %d: %w", num, err))
		}
		d.interfaces = append(d.interfaces, intf)
	}
	return nil
}

func (d *usbDevice) Control(rType, request uint8, val, idx uint16, data []byte) (int, error) {
	return d.dev.Control(rType, request, val, idx, data)
}

func (d *usbDevice) Close() error {
	for _, intf := range d.interfaces {
		intf.Close()
	}
	if d.config != nil {
		d.config.Close()
	}
	return d.dev.Close()
}

// classifyUSBError maps libusb failures onto ErrPermissionDenied or ErrUSBAccess.
// gousb formats some errors with %v, so the libusb text is matched as well.
func classifyUSBError(err error) error {
	if errors.Is(err, gousb.ErrorAccess) || strings.Contains(err.Error(), gousb.ErrorAccess.Error()) {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %v", ErrUSBAccess, err)
}
