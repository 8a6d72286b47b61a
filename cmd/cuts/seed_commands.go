package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/cuts/internal/media"
	"github.com/ivlev/cuts/internal/preview"
	"github.com/ivlev/cuts/internal/source"
	"github.com/ivlev/cuts/internal/storyboard"
	"github.com/ivlev/cuts/internal/system"
	"github.com/ivlev/cuts/internal/timeline"
)

const defaultPDFDir = "input/pdf"

type seedFlags struct {
	title    string
	duration string
	dpi      int
}

func (f *seedFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Project title (default: source name)")
	cmd.Flags().StringVar(&f.duration, "duration", "", "Duration of every cut in seconds")
	cmd.Flags().IntVar(&f.dpi, "dpi", 0, "PDF render DPI (default from config)")
}

func newFromPDFCommand(ctx *commandContext) *cobra.Command {
	var flags seedFlags

	cmd := &cobra.Command{
		Use:   "from-pdf <project> [pdf]",
		Short: "Create a storyboard with one image cut per PDF page",
		Long:  "Create a storyboard with one image cut per PDF page. Without a PDF argument the newest file in input/pdf is used.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 2 {
				input = args[1]
			} else {
				latest, err := system.FindLatest(defaultPDFDir, media.KindNone)
				if err != nil {
					return fmt.Errorf("%w (put a PDF into %s)", err, defaultPDFDir)
				}
				input = latest
				infof(cmd.OutOrStdout(), "Selected file: %s", input)
			}
			src, err := source.NewFitzPDFSource(input)
			if err != nil {
				return fmt.Errorf("open pdf: %w", err)
			}
			return seed(cmd, ctx, src, input, args[0], flags)
		},
	}
	flags.bind(cmd)
	return cmd
}

func newFromImagesCommand(ctx *commandContext) *cobra.Command {
	var flags seedFlags

	cmd := &cobra.Command{
		Use:   "from-images <project> <dir|image>",
		Short: "Create a storyboard with one cut per image, sorted by name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := source.NewImageSource(args[1])
			if err != nil {
				return err
			}
			return seed(cmd, ctx, src, args[1], args[0], flags)
		},
	}
	flags.bind(cmd)
	return cmd
}

func seed(cmd *cobra.Command, ctx *commandContext, src source.Source, input, target string, flags seedFlags) error {
	defer src.Close()
	out := cmd.OutOrStdout()

	if _, err := formatOf(target); err != nil {
		return err
	}
	cfg := ctx.config

	defaults := cfg.Defaults.StoryboardDefaults()
	defaults.Rows = 0
	p := storyboard.NewWithDefaults(defaults, time.Now())
	p.Header.Title = flags.title
	if p.Header.Title == "" {
		base := filepath.Base(input)
		p.Header.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	dpi := flags.dpi
	if dpi <= 0 {
		dpi = cfg.Render.DPI
	}
	workers := system.ProbeResources().Workers(cfg.Render.Workers)

	infof(out, "Source: %s | Pages: %d | Workers: %d", input, src.PageCount(), workers)
	cuts, err := source.Seed(cmd.Context(), p, src, source.SeedOptions{
		DPI:      dpi,
		Duration: flags.duration,
		Workers:  workers,
		Thumbs:   preview.NewImageThumbnailer(cfg.Preview.MaxWidth, cfg.Preview.Quality),
	}, ctx.logger())
	if err != nil {
		return err
	}
	stepf(out, "%d cuts, running time %s", len(cuts), timeline.FormatSeconds(p.Duration()))
	return ctx.saveProject(out, p, target)
}
