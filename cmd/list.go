/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/allbin/ch55x-tools"
	"github.com/allbin/ch55x-tools/internal/tui/colors"
	"github.com/allbin/ch55x-tools/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List all available serial ports on the system.

This command scans for communication-capable serial devices including:
- USB serial adapters (ttyUSB*)
- USB CDC/ACM devices (ttyACM*)
- Standard serial ports (ttyS*)
- ARM/Raspberry Pi ports (ttyAMA*)

Virtual terminals and pseudo-terminals are excluded from the listing.
With --device only the ports of the device described by usb-descriptor.json
are shown.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")
		deviceOnly, _ := cmd.Flags().GetBool("device")

		if code := runList(cmd.OutOrStdout(), cmd.ErrOrStderr(), filterType, tableFormat, deviceOnly); code != exitOK {
			exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, standard, arm, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
	listCmd.Flags().Bool("device", false, "Only show ports of the device in usb-descriptor.json")
}

// listedPort is a port with the metadata needed for rendering
type listedPort struct {
	path  string
	info  *ch55x.PortInfo
	match bool
}

func runList(out, errOut io.Writer, filterType string, tableFormat, deviceOnly bool) int {
	paths, err := ch55x.ListPorts()
	if err != nil {
		printError(errOut, fmt.Errorf("listing ports: %w", err))
		return exitFailure
	}

	ports := make([]listedPort, 0, len(paths))
	for _, p := range paths {
		lp := listedPort{path: p}
		if info, err := ch55x.GetPortInfo(p); err == nil {
			lp.info = info
		}
		ports = append(ports, lp)
	}

	vid, pid, idErr := descriptorIDs()
	if idErr == nil {
		for i := range ports {
			ports[i].match = ports[i].info != nil && ports[i].info.MatchesID(vid, pid)
		}
	} else {
		logger.Debug("descriptor not available, not marking ports", "error", idErr)
	}

	if deviceOnly {
		if idErr != nil {
			printError(errOut, idErr)
			return exitFailure
		}
		ports = devicePorts(ports)
	}
	ports = filterPorts(ports, filterType)

	if len(ports) == 0 {
		switch {
		case deviceOnly:
			fmt.Fprintf(out, "No serial ports found for device %04x:%04x\n", vid, pid)
		case filterType != "":
			fmt.Fprintf(out, "No serial ports found matching filter: %s\n", filterType)
		default:
			fmt.Fprintln(out, "No serial ports found")
		}
		return exitOK
	}

	if tableFormat {
		renderTable(out, ports)
	} else {
		renderSimple(out, ports)
	}
	return exitOK
}

func devicePorts(ports []listedPort) []listedPort {
	var matched []listedPort
	for _, p := range ports {
		if p.match {
			matched = append(matched, p)
		}
	}
	return matched
}

// filterPorts filters the port list based on the specified filter type
func filterPorts(ports []listedPort, filterType string) []listedPort {
	if filterType == "" || filterType == "all" {
		return ports
	}

	var filtered []listedPort
	for _, port := range ports {
		if port.info == nil {
			continue
		}

		name := strings.ToLower(port.info.Name)
		switch strings.ToLower(filterType) {
		case "usb":
			if strings.HasPrefix(name, "ttyusb") || strings.HasPrefix(name, "ttyacm") {
				filtered = append(filtered, port)
			}
		case "standard":
			if strings.HasPrefix(name, "ttys") {
				filtered = append(filtered, port)
			}
		case "arm":
			if strings.HasPrefix(name, "ttyama") {
				filtered = append(filtered, port)
			}
		}
	}
	return filtered
}

const (
	columnKeyPort  = "port"
	columnKeyType  = "type"
	columnKeyID    = "id"
	columnKeyDesc  = "desc"
	columnKeyMatch = "match"
)

// renderTable renders the port list in a styled static table format
func renderTable(w io.Writer, ports []listedPort) {
	fmt.Fprintf(w, "Found %d serial port(s):\n\n", len(ports))

	columns := []table.Column{
		table.NewColumn(columnKeyPort, "Port", 15),
		table.NewColumn(columnKeyType, "Type", 18),
		table.NewColumn(columnKeyID, "VID:PID", 11),
		table.NewColumn(columnKeyDesc, "Description", 30),
		table.NewColumn(columnKeyMatch, "", 3),
	}

	rows := make([]table.Row, 0, len(ports))
	for _, port := range ports {
		if port.info == nil {
			rows = append(rows, table.NewRow(table.RowData{
				columnKeyPort: port.path,
				columnKeyType: "Unknown",
				columnKeyDesc: "No port information",
			}).WithStyle(styles.MutedStyle))
			continue
		}

		data := table.RowData{
			columnKeyPort: port.info.Name,
			columnKeyType: getPortType(port.info.Name),
			columnKeyDesc: port.info.Description,
		}
		if port.info.IsUSB() {
			data[columnKeyID] = port.info.VendorID + ":" + port.info.ProductID
		}

		if port.match {
			data[columnKeyMatch] = "✓"
			rows = append(rows, table.NewRow(data).WithStyle(styles.HighlightStyle))
			continue
		}
		rows = append(rows, table.NewRow(data))
	}

	t := table.New(columns).
		WithRows(rows).
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(colors.Mauve)).
		WithBaseStyle(lipgloss.NewStyle().BorderForeground(colors.Surface1).Align(lipgloss.Left))
	fmt.Fprintln(w, t.View())
}

// renderSimple renders the port list in simple text format
func renderSimple(w io.Writer, ports []listedPort) {
	for _, port := range ports {
		if port.match {
			fmt.Fprintf(w, "%s %s\n", port.path, styles.SymbolOK)
			continue
		}
		fmt.Fprintln(w, port.path)
	}
}

// getPortType returns a more specific type classification for the port
func getPortType(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, "ttyusb"):
		return "USB Serial"
	case strings.HasPrefix(name, "ttyacm"):
		return "USB CDC/ACM"
	case strings.HasPrefix(name, "ttyama"):
		return "ARM Serial"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial"
	case strings.HasPrefix(name, "ttysac"):
		return "Samsung Serial"
	case strings.HasPrefix(name, "ttyths"):
		return "Tegra Serial"
	case strings.HasPrefix(name, "ttyo"):
		return "OMAP Serial"
	case strings.HasPrefix(name, "ttys"):
		return "Standard Serial"
	default:
		return "Serial Port"
	}
}
