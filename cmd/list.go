package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codelio/codelio/internal/solved"
	"github.com/codelio/codelio/internal/ui/layout"
	"github.com/codelio/codelio/internal/view"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalog grouped by topic, with solved marks",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("search")
		onlySolved, _ := cmd.Flags().GetBool("solved")

		e, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		return listQuestions(cmd.Context(), e, cmd.OutOrStdout(), query, onlySolved)
	},
}

// loadCatalog fetches the catalog. A failed fetch leaves it empty and is
// reported on stderr.
func (e *env) loadCatalog(ctx context.Context) {
	if err := e.ws.LoadCatalog(ctx, e.feed()); err != nil {
		fmt.Fprintln(os.Stderr, "Catalog unavailable:", err)
	}
}

func listQuestions(ctx context.Context, e *env, w io.Writer, query string, onlySolved bool) error {
	e.loadCatalog(ctx)

	mapping := solved.Mapping{}
	if _, err := e.activeSession(ctx); err == nil {
		mapping = e.ws.Mapping()
	}

	questions := view.Filter(e.ws.Catalog.Snapshot(), query)
	if onlySolved {
		questions = view.Solved(questions, mapping)
	}
	if len(questions) == 0 {
		fmt.Fprintln(w, "No questions found.")
		return nil
	}

	for _, topic := range view.Group(questions) {
		fmt.Fprintf(w, "%s (%d)\n", topic.Name, topic.Len())
		for _, sub := range topic.SubTopics {
			fmt.Fprintf(w, "  %s\n", sub.Name)
			for _, q := range sub.Questions {
				mark := " "
				if mapping[q.ID] {
					mark = "x"
				}
				fmt.Fprintf(w, "    [%s] %-26s  %-48s  %-7s  %s\n",
					mark, q.ID, layout.Truncate(q.Name(), 48), q.DifficultyLabel(), q.ProblemURL())
			}
		}
	}

	p := view.ComputeProgress(questions, mapping)
	fmt.Fprintln(w, strings.Repeat("─", 96))
	fmt.Fprintf(w, "%d questions, %d solved\n", p.Total, p.Solved)
	return nil
}

var toggleCmd = &cobra.Command{
	Use:   "toggle ID...",
	Short: "Toggle questions between solved and unsolved",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		if err := e.ws.LoadCatalog(ctx, e.feed()); err != nil {
			return err
		}
		if _, err := e.activeSession(ctx); err != nil {
			return err
		}

		for _, id := range args {
			q, ok := e.ws.Catalog.Get(id)
			if !ok {
				return fmt.Errorf("unknown question %q", id)
			}
			now, err := e.ws.Toggle(id)
			if err != nil {
				return err
			}
			state := "unsolved"
			if now {
				state = "solved"
			}
			fmt.Printf("%s  %s: %s\n", id, q.Name(), state)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("search", "s", "", "Filter by title, name, topic or sub-topic")
	listCmd.Flags().Bool("solved", false, "Only show solved questions")
}
