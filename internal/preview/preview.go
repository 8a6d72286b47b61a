// Package preview derives still thumbnails from attached media.
package preview

import (
	"context"

	"go.uber.org/zap"

	"github.com/ivlev/cuts/internal/media"
)

// Generator produces zero or one preview for a file. A nil preview with a
// nil error means the file has no preview.
type Generator interface {
	Generate(ctx context.Context, f media.File) (*media.Preview, error)
}

// Dispatcher routes files to the generator for their kind. Failures are
// logged and reported as "no preview" so callers fall back to a label.
type Dispatcher struct {
	Images Generator
	Videos Generator
	log    *zap.Logger
}

func NewDispatcher(images, videos Generator, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{Images: images, Videos: videos, log: log.Named("preview")}
}

func (d *Dispatcher) Generate(ctx context.Context, f media.File) (*media.Preview, error) {
	kind, _ := media.Classify(f)

	var g Generator
	switch kind {
	case media.KindImage:
		g = d.Images
	case media.KindVideo:
		g = d.Videos
	case media.KindAudio, media.KindNone:
		return nil, nil
	}
	if g == nil {
		return nil, nil
	}

	p, err := g.Generate(ctx, f)
	if err != nil {
		d.log.Warn("preview generation failed",
			zap.String("file", f.Name),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
		return nil, nil
	}
	return p, nil
}
