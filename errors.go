package ch55x

import "errors"

// Predefined error types for robust error handling
var (
	ErrDeviceNotFound  = errors.New("serial device not found")
	ErrInvalidBaudRate = errors.New("invalid baud rate")
	ErrInvalidConfig   = errors.New("invalid serial configuration")
	ErrPortClosed      = errors.New("serial port is closed")
	ErrNoResponse      = errors.New("no response from device before read timeout")

	// USB-related errors
	ErrPermissionDenied = errors.New("permission denied accessing USB device")
	ErrUSBAccess        = errors.New("could not access USB device")
)
