/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/allbin/ch55x-tools"
	"github.com/allbin/ch55x-tools/internal/tui/models"
	"github.com/allbin/ch55x-tools/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultSpeedPort    = "/dev/ttyACM0"
	defaultSpeedBaud    = 19200
	defaultSpeedTimeout = 3 * time.Second
)

// speedtestCmd represents the speedtest command
var speedtestCmd = &cobra.Command{
	Use:   "speedtest",
	Short: "Measure serial throughput of the device",
	Long: `Measure how fast the firmware can push data over its CDC serial port.

A trigger byte ('s' by default) is written to the port and the time until the
device has answered with a complete line is measured.

Examples:
  ch55x speedtest
  ch55x speedtest --port /dev/ttyACM1 --baud 115200
  ch55x speedtest --auto                # find the port via usb-descriptor.json
  ch55x speedtest --watch --interval 500ms`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if code := runSpeedtest(cmd.OutOrStdout(), cmd.ErrOrStderr()); code != exitOK {
			exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(speedtestCmd)

	speedtestCmd.Flags().StringP("port", "p", defaultSpeedPort, "Serial port of the device")
	speedtestCmd.Flags().IntP("baud", "b", defaultSpeedBaud, "Baud rate")
	speedtestCmd.Flags().DurationP("timeout", "t", defaultSpeedTimeout, "Read timeout (100ms steps, max 25.5s)")
	speedtestCmd.Flags().String("trigger", string(ch55x.DefaultTrigger), "Byte that starts the transfer")
	speedtestCmd.Flags().BoolP("auto", "a", false, "Find the port by the IDs in usb-descriptor.json")
	speedtestCmd.Flags().BoolP("watch", "w", false, "Repeat the measurement in an interactive view")
	speedtestCmd.Flags().Duration("interval", time.Second, "Pause between measurements in watch mode")

	for _, name := range []string{"port", "baud", "timeout", "trigger", "auto", "watch", "interval"} {
		viper.BindPFlag("speedtest."+name, speedtestCmd.Flags().Lookup(name))
	}
}

func runSpeedtest(out, errOut io.Writer) int {
	trigger, err := parseTrigger(viper.GetString("speedtest.trigger"))
	if err != nil {
		printError(errOut, err)
		return exitFailure
	}

	portName, err := resolveSpeedPort()
	if err != nil {
		printError(errOut, err)
		return exitFailure
	}

	port, err := ch55x.Open(portName,
		ch55x.WithBaudRate(viper.GetInt("speedtest.baud")),
		ch55x.WithReadTimeout(viper.GetDuration("speedtest.timeout")),
	)
	if err != nil {
		printError(errOut, err)
		if errors.Is(err, ch55x.ErrPermissionDenied) {
			fmt.Fprintf(errOut, "%s Add your user to the dialout group or run as root\n", styles.SymbolWarn)
		}
		return exitFailure
	}
	defer port.Close()
	logger.Debug("port opened", "port", port)

	measure := func() (ch55x.SpeedResult, error) {
		return ch55x.MeasureSpeed(port, trigger)
	}

	if viper.GetBool("speedtest.watch") {
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			printError(errOut, errors.New("--watch needs an interactive terminal"))
			return exitFailure
		}
		model := models.NewSpeedModel(portName, measure, viper.GetDuration("speedtest.interval"))
		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			printError(errOut, err)
			return exitFailure
		}
		return exitOK
	}

	fmt.Fprintln(out, styles.TitleStyle.Render("Measure Serial Speed"))
	result, err := measure()
	if err != nil {
		printError(errOut, err)
		return exitFailure
	}
	printSpeedResult(out, result)
	return exitOK
}

// resolveSpeedPort returns the configured port, or with --auto the first
// port that belongs to the device described by usb-descriptor.json
func resolveSpeedPort() (string, error) {
	if !viper.GetBool("speedtest.auto") {
		return viper.GetString("speedtest.port"), nil
	}

	vid, pid, err := descriptorIDs()
	if err != nil {
		return "", err
	}
	ports, err := ch55x.FindPortsByID(vid, pid)
	if err != nil {
		return "", err
	}
	if len(ports) > 1 {
		logger.Debug("multiple ports match, using the first", "ports", ports)
	}
	return ports[0], nil
}

// parseTrigger accepts a single character or a 0x prefixed byte value
func parseTrigger(s string) (byte, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	if hex, ok := strings.CutPrefix(s, "0x"); ok {
		if b, err := strconv.ParseUint(hex, 16, 8); err == nil {
			return byte(b), nil
		}
	}
	return 0, fmt.Errorf("invalid trigger %q: expected one character or a byte like 0x73", s)
}

func printSpeedResult(w io.Writer, r ch55x.SpeedResult) {
	fmt.Fprintf(w, "%.6f s\n", r.Elapsed.Seconds())
	fmt.Fprintf(w, "Bytes: %d\n", r.Bytes)
	fmt.Fprintf(w, "Speed %s kB/s\n", styles.HighlightStyle.Render(fmt.Sprintf("%.2f", r.KBps())))
}
