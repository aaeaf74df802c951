package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/reviewz/internal/prefs"
	"github.com/abhisek/reviewz/internal/store"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "List and change review preferences",
}

var prefsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every preference with its current value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false, false)
		if err != nil {
			return err
		}
		defer e.Close()

		m, err := prefs.LoadMap(cmd.Context(), e.store.PreferenceRepo())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, k := range prefs.Keys {
			v, set := m[k.Name]
			if !set {
				v = k.Default
			}
			mark := ""
			if set {
				mark = "*"
			}
			fmt.Fprintf(w, "%s%s\t%s\t%s\n", k.Name, mark, v, k.Help)
		}
		return w.Flush()
	},
}

var prefsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print one preference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, ok := prefs.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown preference %q", args[0])
		}
		e, err := openEnv(cmd, false, false)
		if err != nil {
			return err
		}
		defer e.Close()

		v, err := e.store.PreferenceRepo().Get(cmd.Context(), k.Name)
		if errors.Is(err, store.ErrNotFound) {
			v = k.Default
		} else if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Change a preference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := prefs.Validate(args[0], args[1]); err != nil {
			return err
		}
		e, err := openEnv(cmd, false, false)
		if err != nil {
			return err
		}
		defer e.Close()
		return e.store.PreferenceRepo().Set(cmd.Context(), args[0], args[1])
	},
}

var prefsUnsetCmd = &cobra.Command{
	Use:   "unset <name>",
	Short: "Restore a preference to its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := prefs.Lookup(args[0]); !ok {
			return fmt.Errorf("unknown preference %q", args[0])
		}
		e, err := openEnv(cmd, false, false)
		if err != nil {
			return err
		}
		defer e.Close()
		return e.store.PreferenceRepo().Delete(cmd.Context(), args[0])
	},
}

func init() {
	prefsCmd.AddCommand(prefsListCmd, prefsGetCmd, prefsSetCmd, prefsUnsetCmd)
}
