package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/reviewz/internal/markup"
	"github.com/abhisek/reviewz/internal/render"
	"github.com/abhisek/reviewz/internal/sound"
	"github.com/abhisek/reviewz/internal/typeans"
)

var previewCmd = &cobra.Command{
	Use:   "preview <card-id>",
	Short: "Print the rendered markup of a card (no scheduling)",
	Long: `Render one card the way a review session would and print the result.

Nothing is scheduled or logged. Use --typed to see the comparison shown
for a typed answer, and --text to strip the markup.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().Bool("answer", false, "Render the answer side")
	previewCmd.Flags().String("typed", "", "Typed answer to compare against the expected one")
	previewCmd.Flags().Bool("text", false, "Print plain text instead of markup")
}

func runPreview(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid card id %q", args[0])
	}
	answer, _ := cmd.Flags().GetBool("answer")
	typed, _ := cmd.Flags().GetString("typed")
	plain, _ := cmd.Flags().GetBool("text")

	e, err := openEnv(cmd, false, true)
	if err != nil {
		return err
	}
	defer e.Close()

	p, err := e.preferences(cmd.Context())
	if err != nil {
		return err
	}

	card, err := e.deck.Card(id)
	if err != nil {
		return err
	}

	raw, err := e.deck.RenderQuestion(card)
	if err != nil {
		return fmt.Errorf("render question: %w", err)
	}
	spec := typeans.Extract(raw, card.Ord, func(name string) (typeans.Field, bool) {
		return e.deck.Field(card, name)
	})
	content := typeans.RenderQuestion(raw, spec, p.WriteAnswers)

	if answer {
		raw, err := e.deck.RenderAnswer(card)
		if err != nil {
			return fmt.Errorf("render answer: %w", err)
		}
		raw = sound.RemoveFrontSideAudio(raw, e.deck.AnswerFormat(card), content)
		content = typeans.RenderAnswer(raw, spec, typed, p.WriteAnswers)
	}

	if plain {
		fmt.Fprintln(cmd.OutOrStdout(), markup.Text(content))
		return nil
	}

	out := render.NewRenderer("").Render(content,
		render.Style{CardZoom: p.CardZoom, ImageZoom: p.ImageZoom},
		render.Flags{
			Answer:           answer,
			Ord:              card.Ord,
			NightMode:        p.InvertedColors,
			CenterVertically: p.CenterVertically,
		})
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
