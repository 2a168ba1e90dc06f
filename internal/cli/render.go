package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/streettype/internal/config"
	"github.com/matzehuels/streettype/pkg/alphabet"
	"github.com/matzehuels/streettype/pkg/gallery"
	"github.com/matzehuels/streettype/pkg/pipeline"
)

// renderFlags holds the command-line flags shared by render and compose.
type renderFlags struct {
	style        string
	location     string
	caseOpt      string
	width        int
	height       int
	letterHeight int
	seed         uint64
	output       string // PNG path; defaults to streettype.png
	dataURL      bool   // print a data URL instead of writing a file
	share        bool   // store the render in the gallery
	noCache      bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.style, "style", "", "letter style: "+strings.Join(alphabet.Styles(), ", "))
	flags.StringVar(&f.location, "location", "", "city folder to take letters from (default from config, NYC)")
	flags.StringVar(&f.caseOpt, "case", "", "case option: as-is, upper, lower")
	flags.IntVar(&f.width, "width", 0, "canvas width in pixels (default 800)")
	flags.IntVar(&f.height, "height", 0, "initial canvas height in pixels (default 400)")
	flags.IntVar(&f.letterHeight, "letter-height", 0, "scale letters to this height (0 keeps photo size)")
	flags.Uint64Var(&f.seed, "seed", 0, "random seed for reproducible variant picks (0 = random)")
	flags.StringVarP(&f.output, "output", "o", "", "output PNG file (default "+defaultOutput+")")
	flags.BoolVar(&f.dataURL, "data-url", false, "print a PNG data URL to stdout instead of writing a file")
	flags.BoolVar(&f.share, "share", false, "store the render in the gallery")
	flags.BoolVar(&f.noCache, "no-cache", false, "disable probe and artifact caching")
}

// options builds pipeline options from the flags, filling anything left
// unset from the config defaults.
func (f *renderFlags) options(text string, defaults config.Defaults) pipeline.Options {
	opts := pipeline.Options{
		Text:         text,
		Style:        f.style,
		Location:     f.location,
		Case:         f.caseOpt,
		Seed:         f.seed,
		Width:        f.width,
		Height:       f.height,
		LetterHeight: f.letterHeight,
		Refresh:      f.noCache,
		Formats:      []string{pipeline.FormatPNG},
	}
	if f.dataURL {
		opts.Formats = []string{pipeline.FormatDataURL}
	}
	defaults.Apply(&opts)
	return opts
}

// outputPath returns the PNG path to write, adding the extension when the
// user left it off.
func (f *renderFlags) outputPath() string {
	if f.output == "" {
		return defaultOutput
	}
	if filepath.Ext(f.output) == "" {
		return f.output + ".png"
	}
	return f.output
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [text...]",
		Short: "Render text as street lettering to a PNG",
		Long: `Render text as street lettering.

Each letter or digit is replaced by a randomly chosen photograph from the
city's alphabet. Characters without a photograph are drawn as plain text.
Arguments are joined with single spaces.`,
		Example: `  streettype render "Hello World" --case upper -o hello.png
  streettype render hi --location LDN --seed 7 --data-url`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.options(strings.Join(args, " "), cfg.Defaults)
			return c.runRender(cmd.Context(), cfg, opts, &flags)
		},
	}
	flags.register(cmd)

	return cmd
}

// runRender executes the pipeline and writes or prints the result.
func (c *CLI) runRender(ctx context.Context, cfg config.Config, opts pipeline.Options, flags *renderFlags) error {
	logger := loggerFromContext(ctx)

	env, err := c.newAssetEnv(ctx, cfg, flags.noCache)
	if err != nil {
		return err
	}
	defer env.Close()

	if flags.share && !slices.Contains(opts.Formats, pipeline.FormatPNG) {
		opts.Formats = append(opts.Formats, pipeline.FormatPNG)
	}

	prog := newProgress(logger)
	spinner := newSpinner(ctx, "Composing...")
	spinner.Start()
	result, err := env.runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d characters", len(result.Entries)))

	if flags.dataURL {
		fmt.Println(string(result.Artifacts[pipeline.FormatDataURL]))
	} else {
		path := flags.outputPath()
		if err := writeFile(path, result.Artifacts[pipeline.FormatPNG]); err != nil {
			return err
		}
		printSuccess("Rendered %s", StyleHighlight.Render(fmt.Sprintf("%q", result.Text)))
		printFile(path)
		printStats(result.Stats.Counts, result.CacheHit)
	}

	if flags.share {
		return c.share(ctx, cfg, result, opts)
	}
	return nil
}

// share stores a rendered PNG in the configured gallery.
func (c *CLI) share(ctx context.Context, cfg config.Config, result *pipeline.Result, opts pipeline.Options) error {
	store, err := newGallery(ctx, cfg.Gallery)
	if err != nil {
		return fmt.Errorf("open gallery: %w", err)
	}
	defer store.Close()

	a, err := gallery.New(result.Text, opts.Style, opts.Location, result.Artifacts[pipeline.FormatPNG])
	if err != nil {
		return err
	}
	if err := store.Put(ctx, a); err != nil {
		return fmt.Errorf("share: %w", err)
	}

	printSuccess("Shared as %s", StyleValue.Render(a.ID))
	if fs, ok := store.(*gallery.FileStore); ok {
		printFile(fs.ImagePath(a.ID))
	}
	if cfg.Server.PublicURL != "" {
		printKeyValue("url", StyleLink.Render(strings.TrimSuffix(cfg.Server.PublicURL, "/")+"/shared/"+a.ID))
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
