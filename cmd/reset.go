/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/allbin/ch55x-tools"
	"github.com/allbin/ch55x-tools/internal/tui/styles"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newUSBOpener is replaced in tests
var newUSBOpener = ch55x.NewUSBContext

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the device into bootloader mode",
	Long: `Reset the attached device into its bootloader so new firmware can be flashed.

The device is looked up by the vendor/product IDs from usb-descriptor.json.
Kernel drivers are detached from interfaces 0 and 1, then the vendor request
0x65 is sent. The firmware jumps to the bootloader without answering, so a
failing transfer is expected and reported as success.

Exit status:
  0  reset sent, or no matching device attached
  2  the device could not be accessed (see the udev hint on Linux)

Examples:
  ch55x reset
  ch55x reset --descriptor fw/usb-descriptor/usb-descriptor.json`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if code := runReset(cmd.OutOrStdout(), cmd.ErrOrStderr()); code != exitOK {
			exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().Duration("settle", time.Second, "Time to wait for the device to re-enumerate after it dropped off the bus")
	viper.BindPFlag("reset.settle", resetCmd.Flags().Lookup("settle"))
}

func runReset(out, errOut io.Writer) int {
	vid, pid, err := descriptorIDs()
	if err != nil {
		printError(errOut, err)
		return exitFailure
	}

	opener := newUSBOpener()
	defer opener.Close()

	result, err := ch55x.ResetDevice(opener, vid, pid,
		ch55x.WithResetLogger(logger),
		ch55x.WithSettleDelay(viper.GetDuration("reset.settle")),
	)
	if err != nil {
		fmt.Fprintf(errOut, "%s Could not access USB Device\n", styles.SymbolError)
		if errors.Is(err, ch55x.ErrPermissionDenied) && runtime.GOOS == "linux" {
			printUdevGuidance(errOut, vid, pid)
		} else {
			fmt.Fprintf(errOut, "  %v\n", err)
		}
		return exitUSBError
	}

	switch result {
	case ch55x.ResetNotFound:
		fmt.Fprintf(out, "%s Device (0x%04x/0x%04x) not found, may not be running\n", styles.SymbolInfo, vid, pid)
	case ch55x.ResetDisconnected:
		fmt.Fprintf(out, "%s Device dropped off the bus, it is probably in bootloader mode now, all OK!\n", styles.SymbolOK)
	case ch55x.ResetSent:
		fmt.Fprintf(out, "%s Bootloader reset request sent to 0x%04x/0x%04x\n", styles.SymbolOK, vid, pid)
	}
	return exitOK
}

func printUdevGuidance(w io.Writer, vid, pid uint16) {
	fmt.Fprintln(w, "No access to USB Device, configure udev or execute as root (sudo)")
	fmt.Fprintf(w, "For udev create %s\n", ch55x.UdevRulePath)
	fmt.Fprintln(w, "with one line:")
	fmt.Fprintln(w, "---")
	fmt.Fprintln(w, ch55x.UdevRule(vid, pid))
	fmt.Fprintln(w, "---")
	fmt.Fprintln(w, "Restart udev: sudo udevadm control --reload-rules && sudo udevadm trigger")
	fmt.Fprintln(w, "Reconnect device, should work now!")
}
