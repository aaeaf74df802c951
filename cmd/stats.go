package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/reviewz/internal/spacedrep"
	"github.com/abhisek/reviewz/internal/ui/components"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show queue counts and review statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd, false, true)
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := cmd.Context()

	sched := spacedrep.NewScheduler(e.deck, e.store.ReviewStateRepo(), nil, nil, "", e.log)
	due, fresh, err := sched.Counts(ctx)
	if err != nil {
		return err
	}
	st, err := e.store.EventRepo().ReviewStats(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Deck:      %s\n", e.deck.Name())
	fmt.Fprintf(out, "Due:       %d\n", due)
	fmt.Fprintf(out, "New:       %d\n", fresh)
	fmt.Fprintf(out, "Sessions:  %d\n", st.Sessions)
	fmt.Fprintf(out, "Answers:   %d\n", st.Answers)
	if st.Answers == 0 {
		return nil
	}

	names := components.EaseNames(4)
	for ease := 1; ease <= len(names); ease++ {
		fmt.Fprintf(out, "  %-6s %d\n", names[ease-1], st.ByEase[ease])
	}
	fmt.Fprintf(out, "Undone:    %d\n", st.Undone)
	fmt.Fprintf(out, "Buried:    %d\n", st.Buried)
	fmt.Fprintf(out, "Suspended: %d\n", st.Suspended)
	fmt.Fprintf(out, "Avg time:  %s\n", st.AvgTimeTaken.Round(100*time.Millisecond))
	if !st.LastReview.IsZero() {
		fmt.Fprintf(out, "Last:      %s\n", st.LastReview.Local().Format(time.DateTime))
	}
	return nil
}
