/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/allbin/ch55x-tools/descriptor"
	"github.com/allbin/ch55x-tools/internal/tui/styles"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate usb-descriptor.h from usb-descriptor.json",
	Long: `Generate the C header holding the USB device and string descriptors.

The vendor and product IDs and the three description strings are taken from
usb-descriptor.json. part1.template.h from the same directory is copied
between the device descriptor and the string descriptors, and the result is
written to usb-descriptor.h next to the JSON file.

Examples:
  ch55x generate
  ch55x generate -d fw/usb-descriptor/usb-descriptor.json
  ch55x generate --output /tmp/usb-descriptor.h`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if code := runGenerate(cmd.OutOrStdout(), cmd.ErrOrStderr()); code != exitOK {
			exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("template", "", "Template copied into the header (default: part1.template.h next to the descriptor)")
	generateCmd.Flags().StringP("output", "o", "", "Header to write (default: usb-descriptor.h next to the descriptor)")

	viper.BindPFlag("generate.template", generateCmd.Flags().Lookup("template"))
	viper.BindPFlag("generate.output", generateCmd.Flags().Lookup("output"))
}

func runGenerate(out, errOut io.Writer) int {
	configPath := viper.GetString("descriptor")
	templatePath, headerPath := descriptor.SiblingPaths(configPath)
	if p := viper.GetString("generate.template"); p != "" {
		templatePath = p
	}
	if p := viper.GetString("generate.output"); p != "" {
		headerPath = p
	}

	logger.Debug("generating header", "config", configPath, "template", templatePath, "output", headerPath)
	if err := descriptor.GenerateFile(configPath, templatePath, headerPath); err != nil {
		printError(errOut, err)
		return exitFailure
	}

	fmt.Fprintf(out, "%s Generated %s\n", styles.SymbolOK, headerPath)
	return exitOK
}
