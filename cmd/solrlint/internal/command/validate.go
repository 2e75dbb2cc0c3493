package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacoelho/solrschema"
	"github.com/jacoelho/solrschema/cmd/solrlint/internal/view"
	schemaerrors "github.com/jacoelho/solrschema/errors"
)

type ValidateOptions struct {
	RulesPath  string
	CPUProfile string
	MemProfile string
	MaxDepth   int
	MaxAttrs   int
}

func NewValidateCommand(cli *CLI) *cobra.Command {
	var opts ValidateOptions

	cmd := &cobra.Command{
		Use:   "validate <schema.xml>...",
		Short: "Validate Solr schema files",
		Long: Highlight("solrlint validate <schema.xml>...") + "\n\n" +
			"Validate one or more Solr schema.xml files.\n\n" +
			"Each file is checked independently; the first violation in a file\n" +
			"is reported and the remaining files are still validated.\n\n" +
			"Examples:\n" +
			"  # Validate a single schema\n" +
			"  solrlint validate conf/managed-schema.xml\n\n" +
			"  # Validate with custom rule tables and JSON output\n" +
			"  solrlint validate -o json --rules rules.yaml conf/*.xml\n",
		Args: MinArgsWithUsage(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunValidate(cmd.Context(), cli, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.RulesPath, "rules", "", "Path to a YAML rule tables file")
	cmd.Flags().StringVar(&opts.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().StringVar(&opts.MemProfile, "memprofile", "", "Write memory profile to file")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "Maximum element nesting depth (0 uses the default)")
	cmd.Flags().IntVar(&opts.MaxAttrs, "max-attrs", 0, "Maximum attributes per element (0 uses the default)")

	return cmd
}

// RunValidate validates every path and renders one result. It returns an
// empty error when any file fails so the process exits non-zero without
// printing twice.
func RunValidate(ctx context.Context, cli *CLI, opts ValidateOptions, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cli.Logger()

	if opts.CPUProfile != "" {
		stopCPUProfile, err := startCPUProfile(opts.CPUProfile)
		if err != nil {
			return fmt.Errorf("starting CPU profile: %w", err)
		}
		defer func() {
			if stopErr := stopCPUProfile(); stopErr != nil {
				logger.Error("stopping CPU profile", "error", stopErr)
			}
		}()
	}
	if opts.MemProfile != "" {
		defer func() {
			if memErr := writeMemProfile(opts.MemProfile); memErr != nil {
				logger.Error("writing memory profile", "error", memErr)
			}
		}()
	}

	rules, err := loadRules(cli, opts.RulesPath)
	if err != nil {
		return err
	}
	validator, err := solrschema.New(
		solrschema.WithRules(rules),
		solrschema.WithLogger(logger.Slog()),
		solrschema.WithMaxDepth(opts.MaxDepth),
		solrschema.WithMaxAttrs(opts.MaxAttrs),
	)
	if err != nil {
		return err
	}

	result := view.ValidateResult{FileCount: len(paths), Files: paths}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Debug("validating", "file", path)
		if err := validator.ValidateFile(path); err != nil {
			result.Errors = append(result.Errors, fileError(path, err))
		}
	}

	view.NewValidateView(cli.Viewer).Render(result)
	if result.HasErrors() {
		return errors.New("")
	}
	return nil
}

func fileError(path string, err error) view.ValidateFileError {
	fe := view.ValidateFileError{File: path, Message: err.Error()}
	if v, ok := schemaerrors.AsViolation(err); ok {
		fe.Code = string(v.Code)
		fe.Line = v.Line
		fe.Column = v.Column
	}
	return fe
}
