package command

import (
	"github.com/spf13/cobra"

	"github.com/jacoelho/solrschema"
	"github.com/jacoelho/solrschema/cmd/solrlint/internal/view"
)

type RulesOptions struct {
	RulesPath string
}

func NewRulesCommand(cli *CLI) *cobra.Command {
	var opts RulesOptions

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the active rule tables",
		Long: Highlight("solrlint rules [--rules <file.yaml>]") + "\n\n" +
			"Print the rule tables used for validation: accepted elements,\n" +
			"field properties, field type classes and reserved names.\n" +
			"Without --rules the built-in tables are shown.\n",
		Args: MaxArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunRules(cli, opts)
		},
	}

	cmd.Flags().StringVar(&opts.RulesPath, "rules", "", "Path to a YAML rule tables file")
	return cmd
}

func RunRules(cli *CLI, opts RulesOptions) error {
	rules, err := loadRules(cli, opts.RulesPath)
	if err != nil {
		return err
	}

	list := rules.List()
	tables := make([]view.RulesTable, 0, len(list))
	for _, t := range list {
		tables = append(tables, view.RulesTable{Name: t.Name, Entries: t.Entries})
	}
	view.NewRulesView(cli.Viewer).Render(tables)
	return nil
}

func loadRules(cli *CLI, path string) (*solrschema.Rules, error) {
	if path == "" {
		return solrschema.DefaultRules(), nil
	}
	cli.Logger().Debug("loading rules", "path", path)
	return solrschema.LoadRulesFile(path)
}
