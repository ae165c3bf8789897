package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse and validate course templates",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available course templates",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		templates := a.engine.Templates()

		fmt.Fprintf(a.out, "%-24s  %-36s  %7s  %s\n", "ID", "Title", "Modules", "Project")
		fmt.Fprintln(a.out, strings.Repeat("─", 80))
		for _, t := range templates {
			title := t.Title
			if len(title) > 36 {
				title = title[:33] + "..."
			}
			project := "-"
			if t.FinalProject != nil {
				project = "yes"
			}
			fmt.Fprintf(a.out, "%-24s  %-36s  %7d  %s\n", t.ID, title, len(t.Modules), project)
		}
		fmt.Fprintf(a.out, "\n%d templates\n", len(templates))
		return nil
	}),
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <template-id>",
	Short: "Print a template as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		tmpl, err := a.catalog.Get(args[0])
		if err != nil {
			return err
		}
		data, err := catalog.Marshal(tmpl)
		if err != nil {
			return err
		}
		_, err = a.out.Write(data)
		return err
	}),
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check template files without loading them into the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := catalog.New()
		failed := 0
		for _, path := range args {
			if err := c.LoadFile(path); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "✗ %s: %v\n", path, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d templates invalid", failed, len(args))
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
}
