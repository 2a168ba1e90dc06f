package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/streettype/pkg/alphabet"
)

// composeCommand opens the interactive composer and renders the result.
func (c *CLI) composeCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "compose [text...]",
		Short: "Compose a render interactively",
		Long: `Open an interactive composer to type the text and pick style, city and
case, then render it like the render command. Flags preset the composer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.options(strings.Join(args, " "), cfg.Defaults)

			var locations []string
			if cfg.Assets.BaseURL == "" {
				src, _, err := newSource(cfg.Assets)
				if err != nil {
					return err
				}
				if fs, ok := src.(*alphabet.FSSource); ok {
					if locations, err = fs.Locations(); err != nil {
						return fmt.Errorf("list locations: %w", err)
					}
				}
			}

			model := NewComposeModel(opts, alphabet.Styles(), locations)
			final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
			if err != nil {
				return fmt.Errorf("composer: %w", err)
			}

			composed := final.(ComposeModel)
			if !composed.Confirmed {
				printInfo("Cancelled")
				return nil
			}
			composed.Apply(&opts)
			return c.runRender(ctx, cfg, opts, &flags)
		},
	}
	flags.register(cmd)

	return cmd
}
