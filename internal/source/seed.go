package source

import (
	"context"
	"fmt"
	"image"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/cuts/internal/media"
	"github.com/ivlev/cuts/internal/preview"
	"github.com/ivlev/cuts/internal/storyboard"
)

type SeedOptions struct {
	DPI      int
	Duration string
	Workers  int
	Thumbs   *preview.ImageThumbnailer
}

type page struct {
	file    media.File
	preview *media.Preview
}

// Seed appends one image cut per page of src. Pages are rendered in
// parallel and inserted in page order; a failing page aborts the whole
// seed before anything is inserted.
func Seed(ctx context.Context, p *storyboard.Project, src Source, opts SeedOptions, log *zap.Logger) ([]*storyboard.Cut, error) {
	const op = "source.Seed"

	if log == nil {
		log = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.DPI <= 0 {
		opts.DPI = 150
	}
	if opts.Thumbs == nil {
		opts.Thumbs = preview.NewImageThumbnailer(0, 0)
	}

	n := src.PageCount()
	pages := make([]page, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, img, err := src.PageFile(i, opts.DPI)
			if err != nil {
				return err
			}
			pages[i] = page{file: f, preview: thumbnail(opts.Thumbs, img, log)}
			log.Debug("page rendered", zap.Int("page", i+1), zap.String("name", f.Name))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cuts := make([]*storyboard.Cut, 0, n)
	for _, pg := range pages {
		data := &storyboard.RowData{}
		if opts.Duration != "" {
			d := opts.Duration
			data.Duration = &d
		}
		c := p.Insert(data)
		if _, err := p.BindMedia(c, pg.file); err != nil {
			return cuts, fmt.Errorf("%s: %w", op, err)
		}
		p.SetPreview(c, pg.preview)
		cuts = append(cuts, c)
	}

	log.Info("storyboard seeded", zap.Int("cuts", len(cuts)))
	return cuts, nil
}

func thumbnail(t *preview.ImageThumbnailer, img image.Image, log *zap.Logger) *media.Preview {
	if img == nil {
		return nil
	}
	pv, err := t.FromImage(img)
	if err != nil {
		log.Warn("thumbnail failed", zap.Error(err))
		return nil
	}
	return pv
}
