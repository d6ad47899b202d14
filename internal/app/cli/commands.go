package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"prover/internal/app/console"
	"prover/internal/config"
)

// CommandType represents the type of CLI command
type CommandType int

// Command type values
const (
	CommandRun CommandType = iota
	CommandInit
	CommandVersion
	CommandHelp
)

// Options contains the parsed command-line arguments
type Options struct {
	Type       CommandType
	Logic      string
	Mode       console.Mode
	Force      bool
	ConfigPath string
}

// rootFlags holds flag values for the root command
type rootFlags struct {
	version bool
	ml      bool
	raw     bool
}

// Parse parses command-line args and returns a Options struct
func Parse(args []string) (*Options, error) {
	result := &Options{
		Type: CommandRun,
		Mode: console.ModeCommand,
	}

	var flags rootFlags

	root := buildRootCommand(result, &flags)
	root.AddCommand(
		buildInitCommand(result),
		buildRunCommand(result),
		buildVersionCommand(result),
	)

	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		return nil, err
	}

	if flags.version {
		result.Type = CommandVersion
	}

	switch {
	case flags.raw:
		result.Mode = console.ModeRaw
	case flags.ml:
		result.Mode = console.ModeML
	}

	return result, nil
}

// ConfigPath extracts the --config flag ahead of full parsing, so configuration can load before the app starts
func ConfigPath(args []string) string {
	for i, arg := range args {
		switch {
		case (arg == "--config" || arg == "-c") && i+1 < len(args):
			return args[i+1]
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		}
	}

	return config.FileName
}

// buildRootCommand creates the root cobra command
func buildRootCommand(result *Options, flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prover [logic]",
		Short: "Interactive channel to a theorem prover process",
		Long: `Prover spawns a theorem prover child process, feeds it commands read from
standard input and prints every classified result it produces.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandRun
			if len(args) > 0 {
				result.Logic = args[0]
			}
		},
	}

	cmd.PersistentFlags().BoolVar(&flags.ml, "ml", false, "Submit input lines as ML code")
	cmd.PersistentFlags().BoolVar(&flags.raw, "raw", false, "Submit input lines verbatim")
	cmd.PersistentFlags().StringVarP(&result.ConfigPath, "config", "c", config.FileName, "Path to the configuration file")
	cmd.MarkFlagsMutuallyExclusive("ml", "raw")
	cmd.Flags().BoolVarP(&flags.version, "version", "v", false, "Show version information")

	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		result.Type = CommandHelp
	})

	return cmd
}

// buildInitCommand creates the init subcommand
func buildInitCommand(result *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init",
		Aliases: []string{"i"},
		Short:   "Generate prover.yaml template",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandInit
		},
	}

	cmd.Flags().BoolVarP(&result.Force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

// buildRunCommand creates the run subcommand
func buildRunCommand(result *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run [logic]",
		Aliases: []string{"r"},
		Short:   "Start the prover with the given logic",
		Args:    cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandRun
			if len(args) > 0 {
				result.Logic = args[0]
			}
		},
	}

	return cmd
}

// buildVersionCommand creates the version subcommand
func buildVersionCommand(result *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandVersion
		},
	}

	return cmd
}
