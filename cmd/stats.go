package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/codelio/codelio/internal/screens/stats"
	"github.com/codelio/codelio/internal/view"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show progress and the per-difficulty breakdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		return printStats(cmd.Context(), e, cmd.OutOrStdout())
	},
}

func printStats(ctx context.Context, e *env, w io.Writer) error {
	e.loadCatalog(ctx)
	sess, err := e.activeSession(ctx)
	if err != nil {
		return err
	}

	all := e.ws.Catalog.Snapshot()
	mapping := e.ws.Mapping()
	p := view.ComputeProgress(all, mapping)

	fmt.Fprintln(w, sess.Label())
	fmt.Fprintf(w, "%d of %d solved (%d%%)\n\n", p.Solved, p.Total, p.Percent)
	for _, b := range stats.Breakdowns(all, view.Solved(all, mapping)) {
		fmt.Fprintf(w, "  %-8s %4d / %d\n", b.Difficulty, b.Solved, b.Total)
	}
	return nil
}
