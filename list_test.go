package ch55x

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestListPorts(t *testing.T) {
	ports, err := ListPorts()
	if err != nil {
		t.Errorf("ListPorts failed: %v", err)
	}

	for _, port := range ports {
		if !strings.HasPrefix(port, "/dev/") {
			t.Errorf("Port path doesn't start with /dev/: %s", port)
		}
		if !isCharacterDevice(port) {
			t.Errorf("Port is not a character device: %s", port)
		}
	}

	for i := 1; i < len(ports); i++ {
		if ports[i-1] > ports[i] {
			t.Errorf("Ports are not sorted: %s > %s", ports[i-1], ports[i])
		}
	}
}

func TestIsCharacterDevice(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/dev/null", true},
		{"/dev/zero", true},
		{"/tmp", false},
		{"/nonexistent", false},
	}

	for _, test := range tests {
		result := isCharacterDevice(test.path)
		if result != test.expected {
			t.Errorf("isCharacterDevice(%s) = %v, expected %v", test.path, result, test.expected)
		}
	}
}

func TestIsSerialName(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"ttyUSB0", true},
		{"ttyUSB1", true},
		{"ttyACM0", true},
		{"ttyS0", true},
		{"ttyAMA0", true},
		{"ttyTHS2", true},
		{"tty1", false},    // virtual terminal
		{"console", false}, // console
		{"ptmx", false},    // pseudo-terminal multiplexer
		{"ptyp0", false},   // pseudo-terminal
		{"random", false},
		{"ttyACM", false},
	}

	for _, tt := range tests {
		if got := isSerialName(tt.name); got != tt.expected {
			t.Errorf("isSerialName(%s) = %v, expected %v", tt.name, got, tt.expected)
		}
	}
}

func TestGetPortDescription(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"ttyUSB0", "USB Serial Port"},
		{"ttyACM0", "USB CDC/ACM Device"},
		{"ttyS0", "Standard Serial Port"},
		{"ttyAMA0", "ARM Serial Port"},
		{"ttymxc0", "i.MX Serial Port"},
		{"ttyO0", "OMAP Serial Port"},
		{"ttySAC0", "Samsung Serial Port"},
		{"ttyTHS0", "Tegra Serial Port"},
		{"unknown", "Serial Port"},
	}

	for _, test := range tests {
		result := getPortDescription(test.name)
		if result != test.expected {
			t.Errorf("getPortDescription(%s) = %s, expected %s", test.name, result, test.expected)
		}
	}
}

func TestGetPortInfo(t *testing.T) {
	info, err := GetPortInfo("/dev/null")
	if err != nil {
		t.Fatalf("GetPortInfo failed for /dev/null: %v", err)
	}
	if info.Name != "null" {
		t.Errorf("Expected name 'null', got '%s'", info.Name)
	}
	if info.Path != "/dev/null" {
		t.Errorf("Expected path '/dev/null', got '%s'", info.Path)
	}
	if info.IsUSB() {
		t.Error("/dev/null must not carry USB metadata")
	}

	_, err = GetPortInfo("/dev/nonexistent")
	if err != ErrDeviceNotFound {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
}

func TestReadSysfsFile(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		content  *string
		expected string
	}{
		{"normal file", strPtr("1a86\n"), "1a86"},
		{"file with spaces", strPtr("  test value  \n"), "test value"},
		{"empty file", strPtr(""), ""},
		{"nonexistent file", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name)
			if tt.content != nil {
				if err := os.WriteFile(path, []byte(*tt.content), 0644); err != nil {
					t.Fatalf("Setup failed: %v", err)
				}
			}
			if result := readSysfsFile(path); result != tt.expected {
				t.Errorf("readSysfsFile() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

func strPtr(s string) *string { return &s }

// mockSysfs builds <root>/devices/usb1/1-2/1-2:1.0 with a class/tty/<name>/device
// symlink pointing at target below the interface directory.
func mockSysfs(t *testing.T, name string, belowInterface bool) string {
	t.Helper()
	root := t.TempDir()

	devicePath := filepath.Join(root, "devices", "usb1", "1-2")
	interfacePath := filepath.Join(devicePath, "1-2:1.0")
	target := interfacePath
	if belowInterface {
		target = filepath.Join(interfacePath, name)
	}
	classPath := filepath.Join(root, "class", "tty", name)

	for _, dir := range []string{target, classPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	files := map[string]string{
		filepath.Join(devicePath, "idVendor"):             "1a2b",
		filepath.Join(devicePath, "idProduct"):            "c550",
		filepath.Join(devicePath, "serial"):               "CH55x-0001",
		filepath.Join(devicePath, "manufacturer"):         "Hi",
		filepath.Join(devicePath, "product"):              "CH55x Serial",
		filepath.Join(devicePath, "busnum"):               "1",
		filepath.Join(devicePath, "devnum"):               "9",
		filepath.Join(interfacePath, "bInterfaceNumber"): "00",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content+"\n"), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}

	if err := os.Symlink(target, filepath.Join(classPath, "device")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}
	return root
}

func TestEnrichUSBInfo(t *testing.T) {
	tests := []struct {
		name           string
		belowInterface bool
	}{
		{"ttyACM0", false}, // cdc_acm links the interface itself
		{"ttyUSB0", true},  // usb-serial links a port below the interface
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldRoot := sysfsRoot
			sysfsRoot = mockSysfs(t, tt.name, tt.belowInterface)
			defer func() { sysfsRoot = oldRoot }()

			info := &PortInfo{Name: tt.name, Path: "/dev/" + tt.name}
			enrichUSBInfo(info)

			fields := []struct {
				name     string
				got      string
				expected string
			}{
				{"VendorID", info.VendorID, "1a2b"},
				{"ProductID", info.ProductID, "c550"},
				{"SerialNumber", info.SerialNumber, "CH55x-0001"},
				{"InterfaceNumber", info.InterfaceNumber, "00"},
				{"BusNumber", info.BusNumber, "1"},
				{"DeviceNumber", info.DeviceNumber, "9"},
				{"Manufacturer", info.Manufacturer, "Hi"},
				{"Product", info.Product, "CH55x Serial"},
			}
			for _, f := range fields {
				if f.got != f.expected {
					t.Errorf("%s = %q, expected %q", f.name, f.got, f.expected)
				}
			}

			if !info.MatchesID(0x1a2b, 0xc550) {
				t.Error("MatchesID(1a2b, c550) = false, expected true")
			}
			if info.MatchesID(0x1a2b, 0x0001) {
				t.Error("MatchesID(1a2b, 0001) = true, expected false")
			}
		})
	}
}

func TestEnrichUSBInfoGracefulFailure(t *testing.T) {
	oldRoot := sysfsRoot
	sysfsRoot = t.TempDir()
	defer func() { sysfsRoot = oldRoot }()

	info := &PortInfo{Name: "ttyUSB999", Path: "/dev/ttyUSB999"}
	enrichUSBInfo(info)

	if info.IsUSB() || info.SerialNumber != "" {
		t.Errorf("Expected empty USB fields, got %+v", info)
	}
}

func TestFindPortsByIDNotFound(t *testing.T) {
	oldDev := devDir
	devDir = t.TempDir()
	defer func() { devDir = oldDev }()

	_, err := FindPortsByID(0x1a2b, 0xc550)
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
}

// TestListPortsIntegration is an integration test that requires actual system
func TestListPortsIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ports, err := ListPorts()
	if err != nil {
		t.Fatalf("ListPorts failed: %v", err)
	}

	t.Logf("Found %d serial ports:", len(ports))
	for i, port := range ports {
		info, err := GetPortInfo(port)
		if err != nil {
			t.Logf("  %d. %s (error getting info: %v)", i+1, port, err)
		} else {
			t.Logf("  %d. %s (%s) %s:%s", i+1, port, info.Description, info.VendorID, info.ProductID)
		}
	}
}
