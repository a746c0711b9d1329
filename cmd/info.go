/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/allbin/ch55x-tools"
	"github.com/allbin/ch55x-tools/internal/tui/styles"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display detailed information about a serial port including USB metadata.

Examples:
  ch55x info /dev/ttyACM0
  ch55x info /dev/ttyUSB0

For USB devices, this displays vendor/product IDs, serial numbers, interface
numbers, and other USB-specific metadata extracted from sysfs. Ports belonging
to the device described by usb-descriptor.json are marked.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		info, err := ch55x.GetPortInfo(args[0])
		if err != nil {
			printError(cmd.ErrOrStderr(), fmt.Errorf("getting port info: %w", err))
			exit(exitFailure)
			return
		}
		printPortInfo(cmd.OutOrStdout(), info)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func printPortInfo(w io.Writer, info *ch55x.PortInfo) {
	fmt.Fprintf(w, "Port Information: %s\n\n", info.Path)
	fmt.Fprintf(w, "  Name:        %s\n", info.Name)
	fmt.Fprintf(w, "  Description: %s\n", info.Description)

	if !info.IsUSB() {
		return
	}

	fmt.Fprintln(w, "\nUSB Device Information:")
	fields := []struct {
		label string
		value string
	}{
		{"Vendor ID:   ", info.VendorID},
		{"Product ID:  ", info.ProductID},
		{"Serial:      ", info.SerialNumber},
		{"Interface:   ", info.InterfaceNumber},
		{"Bus:         ", info.BusNumber},
		{"Device:      ", info.DeviceNumber},
		{"Manufacturer:", info.Manufacturer},
		{"Product:     ", info.Product},
	}
	for _, f := range fields {
		if f.value != "" {
			fmt.Fprintf(w, "  %s %s\n", f.label, f.value)
		}
	}

	if vid, pid, err := descriptorIDs(); err == nil && info.MatchesID(vid, pid) {
		fmt.Fprintf(w, "\n%s This port belongs to the device in %s\n", styles.SymbolOK, viper.GetString("descriptor"))
	}
}
