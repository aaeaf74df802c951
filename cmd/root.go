package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/reviewz/internal/config"
	"github.com/abhisek/reviewz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "reviewz",
	Short: "Spaced repetition flashcards in the terminal",
	Long:  "Reviewz: review flashcard decks in the terminal with typed answers, audio and mouse gestures.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, false)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides REVIEWZ_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides REVIEWZ_CONFIG env var)")
	rootCmd.PersistentFlags().String("deck", "", "Path to deck file (overrides deck.path)")

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file named by --config, then applies the
// --deck and --db overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("deck"); p != "" {
		cfg.Deck.Path = p
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.Path = p
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db or store.path (highest
// priority), then REVIEWZ_DB env var, then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if p := cfg.Store.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
