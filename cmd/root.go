/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/allbin/ch55x-tools/descriptor"
	"github.com/allbin/ch55x-tools/internal/tui/styles"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes shared by the commands
const (
	exitOK       = 0
	exitFailure  = 1
	exitUSBError = 2
)

// defaultDescriptorPath is where the firmware tree keeps usb-descriptor.json
const defaultDescriptorPath = "usb-descriptor/" + descriptor.DefaultConfigName

var (
	cfgFile string
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))

	// exit is replaced in tests
	exit = os.Exit
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ch55x",
	Short: "Developer tools for CH55x USB CDC firmware",
	Long: `Host-side helpers for the CH55x USB CDC firmware.

  ch55x generate    Generate usb-descriptor.h from usb-descriptor.json
  ch55x reset       Reset the attached device into its bootloader
  ch55x speedtest   Measure serial throughput of the CDC port
  ch55x list        List serial ports, marking the ones of the device

Every command works without arguments. Defaults can be overridden with
flags, a config file ($HOME/.ch55x.yaml) or CH55X_* environment variables,
e.g. CH55X_SPEEDTEST_PORT=/dev/ttyACM1.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd.ErrOrStderr())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitFailure)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ch55x.yaml)")
	rootCmd.PersistentFlags().StringP("descriptor", "d", defaultDescriptorPath, "Path to usb-descriptor.json")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging on stderr")

	viper.BindPFlag("descriptor", rootCmd.PersistentFlags().Lookup("descriptor"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ch55x")
	}

	viper.SetEnvPrefix("ch55x")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "%s Error reading config: %v\n", styles.SymbolError, err)
		}
	}
}

// setupLogging routes debug traces to stderr when --verbose is set
func setupLogging(w io.Writer) {
	if !viper.GetBool("verbose") {
		return
	}
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", "path", used)
	}
}

// loadDescriptor loads the descriptor configured via --descriptor
func loadDescriptor() (*descriptor.Config, error) {
	path := viper.GetString("descriptor")
	logger.Debug("loading descriptor", "path", path)
	return descriptor.Load(path)
}

// descriptorIDs returns the vendor and product ID of the configured descriptor
func descriptorIDs() (uint16, uint16, error) {
	cfg, err := loadDescriptor()
	if err != nil {
		return 0, 0, err
	}
	vid, err := cfg.VendorID()
	if err != nil {
		return 0, 0, err
	}
	pid, err := cfg.ProductID()
	if err != nil {
		return 0, 0, err
	}
	return vid, pid, nil
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s Error: %v\n", styles.SymbolError, err)
}
