package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the deck and report missing media files",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd, false, true)
	if err != nil {
		return err
	}
	defer e.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Deck: %s (%d cards)\n", e.deck.Name(), len(e.deck.Cards()))
	fmt.Fprintf(out, "Media: %s\n", e.deck.MediaDir())

	missing, err := e.deck.CheckMedia(cmd.Context())
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		fmt.Fprintln(out, "All media files are present.")
		return nil
	}

	for _, m := range missing {
		ids := make([]string, len(m.CardIDs))
		for i, id := range m.CardIDs {
			ids[i] = strconv.FormatInt(id, 10)
		}
		fmt.Fprintf(out, "  missing %s (cards %s)\n", m.Name, strings.Join(ids, ", "))
	}
	return fmt.Errorf("%d media file(s) missing", len(missing))
}
