package cli

import (
	"context"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/streettype/pkg/alphabet"
	"github.com/matzehuels/streettype/pkg/errors"
	"github.com/matzehuels/streettype/pkg/pipeline"
)

// lookupFlags are the style and city flags of variants and path.
type lookupFlags struct {
	style    string
	location string
	noCache  bool
}

func (f *lookupFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.style, "style", "", "letter style (default from config, sans)")
	cmd.Flags().StringVar(&f.location, "location", "", "city folder (default from config, NYC)")
}

// resolve fills unset flags from the config defaults.
func (f *lookupFlags) resolve(defaults pipeline.Options) (style, location string) {
	style, location = f.style, f.location
	if style == "" {
		style = defaults.Style
	}
	if location == "" {
		location = defaults.Location
	}
	return style, location
}

// parseChar checks that arg is exactly one character.
func parseChar(arg string) (rune, error) {
	if utf8.RuneCountInString(arg) != 1 {
		return 0, errors.New(errors.ErrCodeInvalidCharacter, "expected a single character, got %q", arg)
	}
	r, _ := utf8.DecodeRuneInString(arg)
	return r, nil
}

// variantsCommand lists the variants that exist for one character.
func (c *CLI) variantsCommand() *cobra.Command {
	var flags lookupFlags

	cmd := &cobra.Command{
		Use:   "variants <char>",
		Short: "List the photographed variants of a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := parseChar(args[0])
			if err != nil {
				return err
			}
			return c.runVariants(cmd.Context(), ch, &flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "probe the asset source without the cache")

	return cmd
}

func (c *CLI) runVariants(ctx context.Context, ch rune, flags *lookupFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	var defaults pipeline.Options
	cfg.Defaults.Apply(&defaults)
	style, location := flags.resolve(defaults)

	env, err := c.newAssetEnv(ctx, cfg, flags.noCache)
	if err != nil {
		return err
	}
	defer env.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Probing %d variants...", alphabet.MaxVariants))
	spinner.Start()
	paths, err := env.resolver.ListVariants(ctx, ch, style, location)
	spinner.Stop()
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		printWarning("No variants of %q in %s (%s)", ch, location, style)
		printDetail("The character is drawn as plain text.")
		return nil
	}

	printSuccess("%d variants of %q in %s (%s)", len(paths), ch, location, style)
	fmt.Println(variantsTable(paths))
	return nil
}

// variantsTable renders paths with their variant numbers.
func variantsTable(paths []alphabet.AssetPath) string {
	rows := make([][]string, len(paths))
	for i, p := range paths {
		rows[i] = []string{strconv.Itoa(i + 1), p.String()}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Path").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleNumber
			}
			return StyleValue
		}).
		Render()
}

// pathCommand prints the asset path for one variant without probing it.
func (c *CLI) pathCommand() *cobra.Command {
	var (
		flags   lookupFlags
		variant int
	)

	cmd := &cobra.Command{
		Use:   "path <char>",
		Short: "Print the asset path of a character variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := parseChar(args[0])
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			var defaults pipeline.Options
			cfg.Defaults.Apply(&defaults)
			style, location := flags.resolve(defaults)

			p, err := alphabet.ResolvePath(ch, style, location, variant)
			if err != nil {
				return err
			}

			if cfg.Assets.BaseURL != "" {
				src, err := alphabet.NewHTTPSource(cfg.Assets.BaseURL, nil)
				if err != nil {
					return err
				}
				fmt.Println(src.URL(p))
				return nil
			}
			fmt.Println(p)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&variant, "variant", "n", 1, fmt.Sprintf("variant number (1-%d)", alphabet.MaxVariants))

	return cmd
}
