package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/TheusHen/ptstd/ptstd"
	"github.com/TheusHen/ptstd/ptstd/feature"
)

func newFeaturesCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "features [feature...]",
		Short: "Resolve features to the packages they select",
		Long: `Resolve feature names through the feature graph and list the capability
packages they select. Without arguments the configured feature set is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = getConfig(cmd).Features
			}
			g := feature.Manifest()
			names, err := g.Parse(args...)
			if err != nil {
				return err
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)

			if all {
				closure, err := g.Resolve(names...)
				if err != nil {
					return err
				}
				t.AppendHeader(table.Row{"Feature", "Kind"})
				for _, n := range closure {
					kind := "group"
					if g.IsLeaf(n) {
						kind = "leaf"
					}
					t.AppendRow(table.Row{n, kind})
				}
				t.Render()
				return nil
			}

			mods, err := ptstd.Modules(names...)
			if err != nil {
				return err
			}
			t.AppendHeader(table.Row{"Feature", "Package", "Summary"})
			for _, m := range mods {
				t.AppendRow(table.Row{m.Feature, m.Package, m.Summary})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list the whole closure, groups included")
	return cmd
}
