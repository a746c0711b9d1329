package cmd

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

var testDescriptor = filepath.Join("..", "descriptor", "testdata", "usb-descriptor.json")

// setConfig overrides a viper key for the duration of the test
func setConfig(t *testing.T, key string, value any) {
	t.Helper()
	old := viper.Get(key)
	viper.Set(key, value)
	t.Cleanup(func() { viper.Set(key, old) })
}
