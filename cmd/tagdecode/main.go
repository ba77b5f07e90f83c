// Command tagdecode decodes message feeds stored as JSON or YAML documents and prints
// them as canonical JSON.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds the state shared by all commands of one invocation.
type app struct {
	// Global flags
	verbose    bool
	configPath string

	logger *zap.Logger

	// builds the logger once the global flags are parsed
	buildLogger func(verbose bool) (*zap.Logger, error)
}

func newApp() *app {
	return &app{
		logger:      zap.NewNop(),
		buildLogger: productionLogger,
	}
}

func productionLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	return config.Build()
}

func (a *app) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tagdecode",
		Short: "Decode tagged message feeds",
		Long: `tagdecode reads feeds of tagged messages from JSON or YAML files.

Every record carries a discriminator field naming its message type. Unknown
or missing discriminators and malformed fields abort decoding of the file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := a.buildLogger(a.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			a.logger = logger
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a config file")

	rootCmd.AddCommand(a.newDecodeCmd())
	rootCmd.AddCommand(a.newTagsCmd())

	return rootCmd
}

// run executes cmd and flushes the logger afterwards, even if the command failed.
func (a *app) run(cmd *cobra.Command) error {
	defer func() { _ = a.logger.Sync() }()
	return cmd.Execute()
}

func main() {
	a := newApp()
	if err := a.run(a.newRootCmd()); err != nil {
		os.Exit(1)
	}
}
