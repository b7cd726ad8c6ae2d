package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/adscreen/internal/dispatch"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List registered screening modules",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newScreeningEnv(cfg)
		if err != nil {
			return err
		}
		return printModules(cmd.OutOrStdout(), env.Dispatcher.Modules())
	},
}

func init() {
	rootCmd.AddCommand(modulesCmd)
}

func printModules(w io.Writer, infos []dispatch.ModuleInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVERSION\tENABLED")
	for _, m := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%t\n", m.Name, m.Version, m.Enabled)
	}
	return tw.Flush()
}
