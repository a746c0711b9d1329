// Package ch55x provides host-side helpers for a CH55x USB CDC firmware
// project: resetting the device into its bootloader, measuring serial
// throughput and discovering the serial port the firmware enumerates as.
//
// The descriptor generator that produces the firmware's usb-descriptor.h
// lives in the descriptor subpackage.
//
// # Bootloader Reset
//
// Send the vendor request that makes the firmware jump to its bootloader:
//
//	result, err := ch55x.ResetToBootloader(0x1209, 0xc550)
//	switch {
//	case errors.Is(err, ch55x.ErrPermissionDenied):
//	    fmt.Println(ch55x.UdevRule(0x1209, 0xc550))
//	case err != nil:
//	    log.Fatal(err)
//	case result == ch55x.ResetNotFound:
//	    fmt.Println("device not attached")
//	}
//
// A failing control transfer is reported as ResetDisconnected: the firmware
// usually drops off the bus before it can acknowledge the request.
//
// # Speed Test
//
// Open the CDC port and time one line of output triggered by a single byte:
//
//	port, err := ch55x.Open("/dev/ttyACM0",
//	    ch55x.WithBaudRate(19200),
//	    ch55x.WithReadTimeout(3*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	res, err := ch55x.MeasureSpeed(port, ch55x.DefaultTrigger)
//	fmt.Printf("%v, %d bytes, %.2f kB/s\n", res.Elapsed, res.Bytes, res.KBps())
//
// # Port Discovery
//
// List serial ports and match them against the descriptor's USB IDs:
//
//	ports, err := ch55x.FindPortsByID(0x1209, 0xc550)
//
// USB metadata is read from sysfs and is only available on Linux.
//
// # Default Configuration
//
//   - BaudRate: 115200
//   - DataBits: 8
//   - StopBits: 1
//   - Parity: None
//   - ReadTimeout: 2.5 seconds
package ch55x
