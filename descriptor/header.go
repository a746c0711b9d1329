package descriptor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

const headerPreamble = `/**
 * USB Descriptors
 *
 * ** Automatically generated! **
 * ** Do not change, change usb-descriptor.json! **
 */

#pragma once

#include "../lib/inc.h"

`

// stringDescriptors lists the generated string arrays in output order
var stringDescriptors = []struct {
	comment string
	name    string
	text    func(*Config) string
}{
	{
		comment: "// Serial number string descriptor\n" +
			"// Use this as identifier for Linux and Windows,\n" +
			"// the Name is the only Attribute displayed on Windows\n",
		name: "g_DescriptorSerial",
		text: func(c *Config) string { return c.SerialText },
	},
	{
		comment: "// Product string descriptor\n",
		name:    "g_DescriptorProduct",
		text:    func(c *Config) string { return c.ProductText },
	},
	{
		comment: "// Manufacturer string descriptor\n",
		name:    "g_DescriptorManufacturer",
		text:    func(c *Config) string { return c.ManufacturerText },
	},
}

// WriteHeader renders the header for cfg to w. template is copied verbatim
// between the device descriptor and the string descriptors.
func WriteHeader(w io.Writer, cfg *Config, template []byte) error {
	vid, err := cfg.VendorID()
	if err != nil {
		return err
	}
	pid, err := cfg.ProductID()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(headerPreamble)
	writeDeviceDescriptor(&buf, cfg, vid, pid)
	buf.Write(template)

	for _, sd := range stringDescriptors {
		buf.WriteString(sd.comment)
		if err := writeStringDescriptor(&buf, sd.name, sd.text(cfg)); err != nil {
			return fmt.Errorf("%s: %w", sd.name, err)
		}
	}

	_, err = w.Write(buf.Bytes())
	return err
}

// writeDeviceDescriptor emits g_DescriptorDevice with idVendor and idProduct
// in USB (little endian) byte order
func writeDeviceDescriptor(buf *bytes.Buffer, cfg *Config, vid, pid uint16) {
	buf.WriteString("// Device descriptor\n\n")
	buf.WriteString("__code uint8_t g_DescriptorDevice[] = {\n")
	buf.WriteString("\t0x12, 0x01, 0x10, 0x01,\n")
	buf.WriteString("\t0x02, 0x00, 0x00, DEFAULT_ENDP0_SIZE,\n\n")

	fmt.Fprintf(buf, "\t// %s\n", singleLine(cfg.VendorInfo))
	buf.WriteString("\t// Vendor\n")
	fmt.Fprintf(buf, "\t%s,\n\n", littleEndianLiteral(vid))

	fmt.Fprintf(buf, "\t// %s\n", singleLine(cfg.ProductInfo))
	buf.WriteString("\t// Product\n")
	fmt.Fprintf(buf, "\t%s,\n\n", littleEndianLiteral(pid))

	buf.WriteString("\t0x00, 0x01, 0x01, 0x02,\n")
	buf.WriteString("\t0x03, 0x01\n")
	buf.WriteString("};\n\n")
}

func writeStringDescriptor(buf *bytes.Buffer, name, text string) error {
	desc, err := StringDescriptor(text)
	if err != nil {
		return err
	}

	fmt.Fprintf(buf, "unsigned char __code %s[] = {\n", name)
	fmt.Fprintf(buf, "\t%d, // Length of the whole array including this byte\n", desc[0])
	fmt.Fprintf(buf, "\t%d,\n", desc[1])
	buf.WriteString(FormatBytes(desc[2:]))
	buf.WriteString("\n};\n\n")
	return nil
}

// littleEndianLiteral formats v as "0xLL, 0xHH"
func littleEndianLiteral(v uint16) string {
	return fmt.Sprintf("0x%02x, 0x%02x", byte(v), byte(v>>8))
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// singleLine keeps free text inside a // comment, other spacing is kept verbatim
func singleLine(s string) string {
	return lineBreaks.Replace(s)
}

// GenerateFile loads configPath and templatePath and writes the header to
// headerPath. Both inputs are read before the header is created.
func GenerateFile(configPath, templatePath, headerPath string) error {
	cfg, err := Load(configPath)
	if err != nil {
		return err
	}

	template, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteHeader(&buf, cfg, template); err != nil {
		return err
	}

	if err := os.WriteFile(headerPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}
