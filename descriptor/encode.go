package descriptor

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// StringDescriptorType is bDescriptorType of a USB string descriptor
const StringDescriptorType = 3

// ValuesPerLine is how many byte literals go on one header line
const ValuesPerLine = 18

var utf16BOM = []byte{0xff, 0xfe}

// EncodeUTF16 encodes text as UTF-16 little endian without byte order mark
func EncodeUTF16(text string) ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	b, err := enc.Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to encode %q as UTF-16: %w", text, err)
	}
	return bytes.TrimPrefix(b, utf16BOM), nil
}

// StringDescriptor returns the complete string descriptor for text:
// bLength, bDescriptorType (3) and the UTF-16 payload.
func StringDescriptor(text string) ([]byte, error) {
	payload, err := EncodeUTF16(text)
	if err != nil {
		return nil, err
	}
	if len(payload)+2 > 0xff {
		return nil, fmt.Errorf("string %q too long for a descriptor: %d bytes", text, len(payload)+2)
	}

	desc := make([]byte, 0, len(payload)+2)
	desc = append(desc, byte(len(payload)+2), StringDescriptorType)
	return append(desc, payload...), nil
}

// FormatBytes renders b as a C initializer list, ValuesPerLine values per
// tab-indented line. Printable ASCII becomes a character literal, everything
// else a decimal literal.
func FormatBytes(b []byte) string {
	var sb strings.Builder
	for i, v := range b {
		switch {
		case i == 0:
			sb.WriteString("\t")
		case i%ValuesPerLine == 0:
			sb.WriteString(",\n\t")
		default:
			sb.WriteString(", ")
		}
		sb.WriteString(byteLiteral(v))
	}
	return sb.String()
}

func byteLiteral(b byte) string {
	switch {
	case b == '\'' || b == '\\':
		return `'\` + string(rune(b)) + `'`
	case b >= 0x20 && b < 0x7f:
		return "'" + string(rune(b)) + "'"
	default:
		return strconv.Itoa(int(b))
	}
}
