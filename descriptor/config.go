// Package descriptor turns usb-descriptor.json into the usb-descriptor.h
// header compiled into the firmware.
package descriptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Default file names inside the usb-descriptor directory
const (
	DefaultConfigName   = "usb-descriptor.json"
	DefaultTemplateName = "part1.template.h"
	DefaultHeaderName   = "usb-descriptor.h"
)

var (
	ErrInvalidID    = errors.New("invalid USB ID")
	ErrMissingField = errors.New("missing descriptor field")
)

// Config is the content of usb-descriptor.json
type Config struct {
	Vendor           string `json:"vendor"`
	Product          string `json:"product"`
	VendorInfo       string `json:"vendor-info"`
	ProductInfo      string `json:"product-info"`
	SerialText       string `json:"serial-text"`
	ProductText      string `json:"product-text"`
	ManufacturerText string `json:"manufacturer-text"`
}

// Load reads and validates a descriptor configuration file
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open descriptor: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// rawConfig tells absent keys apart from empty strings
type rawConfig struct {
	Vendor           *string `json:"vendor"`
	Product          *string `json:"product"`
	VendorInfo       *string `json:"vendor-info"`
	ProductInfo      *string `json:"product-info"`
	SerialText       *string `json:"serial-text"`
	ProductText      *string `json:"product-text"`
	ManufacturerText *string `json:"manufacturer-text"`
}

// Parse decodes and validates a descriptor configuration. Every key must be
// present, an empty string is allowed for the text fields.
func Parse(r io.Reader) (*Config, error) {
	var raw rawConfig
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode descriptor: %w", err)
	}

	var cfg Config
	fields := []struct {
		key string
		src *string
		dst *string
	}{
		{"vendor", raw.Vendor, &cfg.Vendor},
		{"product", raw.Product, &cfg.Product},
		{"vendor-info", raw.VendorInfo, &cfg.VendorInfo},
		{"product-info", raw.ProductInfo, &cfg.ProductInfo},
		{"serial-text", raw.SerialText, &cfg.SerialText},
		{"product-text", raw.ProductText, &cfg.ProductText},
		{"manufacturer-text", raw.ManufacturerText, &cfg.ManufacturerText},
	}
	for _, f := range fields {
		if f.src == nil {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, f.key)
		}
		*f.dst = *f.src
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that both USB IDs parse
func (c *Config) Validate() error {
	if _, err := c.VendorID(); err != nil {
		return err
	}
	if _, err := c.ProductID(); err != nil {
		return err
	}
	return nil
}

// VendorID returns the parsed vendor ID
func (c *Config) VendorID() (uint16, error) {
	return ParseID("vendor", c.Vendor)
}

// ProductID returns the parsed product ID
func (c *Config) ProductID() (uint16, error) {
	return ParseID("product", c.Product)
}

// ParseID parses a 16 bit hex ID such as "1a86" or "0x1a86"
func ParseID(field, s string) (uint16, error) {
	hex := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if hex == "" || len(hex) > 4 {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidID, field, s)
	}
	v, err := strconv.ParseUint(hex, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidID, field, s)
	}
	return uint16(v), nil
}

// SiblingPaths returns the template and header paths that belong next to configPath
func SiblingPaths(configPath string) (templatePath, headerPath string) {
	dir := filepath.Dir(configPath)
	return filepath.Join(dir, DefaultTemplateName), filepath.Join(dir, DefaultHeaderName)
}
