package command

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"sigs.k8s.io/release-utils/version"

	"github.com/jacoelho/solrschema/cmd/solrlint/internal/view"
)

const logEnv = "SOLRLINT_LOG"

var (
	outputFlag string
	debugFlag  bool
	rootCmd    *cobra.Command
)

func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "solrlint",
		Short: color.RGB(50, 108, 229).Sprintf("solrlint [global options] <subcommand> [args]") + "\n" +
			"Validate Solr schema.xml files",
		Long: color.RGB(50, 108, 229).Sprintf("Usage: solrlint [global options] <subcommand> [args]\n") + "\n" +
			"solrlint checks Solr schema.xml files for unsupported elements,\n" +
			"unknown or malformed field properties, deprecated field type classes,\n" +
			"duplicate or reserved names and references that do not resolve.\n\n",
		Version:       version.GetVersionInfo().GitVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				_ = cmd.Help()
			}
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "Output format. One of: (human | json)")
	cmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Set log level to debug")
	return cmd
}

func setCobraUsageTemplate() {
	cobra.AddTemplateFunc("StyleHeading", color.RGB(50, 108, 229).SprintFunc())
	usageTemplate := rootCmd.UsageTemplate()
	usageTemplate = strings.NewReplacer(
		`Usage:`, `{{StyleHeading "Usage:"}}`,
		`Examples:`, `{{StyleHeading "Examples:"}}`,
		`Available Commands:`, `{{StyleHeading "Available Commands:"}}`,
		`Additional Commands:`, `{{StyleHeading "Additional Commands:"}}`,
		`Flags:`, `{{StyleHeading "Options:"}}`,
		`Global Flags:`, `{{StyleHeading "Global Options:"}}`,
	).Replace(usageTemplate)
	rootCmd.SetUsageTemplate(usageTemplate)
}

func setVersionTemplate() {
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// ConfigureViewer returns the PersistentPreRunE hook that rebuilds the CLI
// viewer once flags are parsed.
func ConfigureViewer(cli *CLI) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}
		viewType, err := view.ParseOutputFormat(output)
		if err != nil {
			return err
		}

		logLevel := view.ParseLogLevel(strings.ToLower(os.Getenv(logEnv)))
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			logLevel = view.LogLevelDebug
		}

		s := view.NewStreams(cmd.OutOrStdout(), cmd.ErrOrStderr())
		cli.Viewer = view.NewViewer(viewType, s, logLevel)
		cli.Stream = s
		return nil
	}
}

func Execute() {
	rootCmd = NewRootCommand()

	setCobraUsageTemplate()
	setVersionTemplate()

	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		color.NoColor = true
	}

	cli := NewCLI(view.ViewHuman, os.Stdout, view.LogLevelSilent)
	AddCommands(rootCmd, cli)
	rootCmd.PersistentPreRunE = ConfigureViewer(cli)

	if err := rootCmd.Execute(); err != nil {
		if msg := err.Error(); msg != "" {
			cli.Println("Error:", msg)
		}
		os.Exit(1)
	}

	os.Exit(0)
}

// AddCommands registers all subcommands to the root command.
func AddCommands(root *cobra.Command, cli *CLI) {
	root.AddCommand(
		NewValidateCommand(cli),
		NewRulesCommand(cli),
		NewVersionCommand(cli),
	)
}
