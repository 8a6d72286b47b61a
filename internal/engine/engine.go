package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/ivlev/cuts/internal/asset"
	"github.com/ivlev/cuts/internal/caption"
	"github.com/ivlev/cuts/internal/config"
	"github.com/ivlev/cuts/internal/effects"
	"github.com/ivlev/cuts/internal/media"
	"github.com/ivlev/cuts/internal/plan"
	"github.com/ivlev/cuts/internal/storyboard"
	"github.com/ivlev/cuts/internal/system"
	"github.com/ivlev/cuts/internal/timeline"
	"github.com/ivlev/cuts/internal/video"
)

var ErrNoSegments = errors.New("no segments rendered")

type Options struct {
	Output  string
	WithBGM bool
	// Session tags the temp directory of this run.
	Session string
}

// Stats describe a finished render.
type Stats struct {
	Segments int
	Skipped  int
	Duration float64
	Workers  int
	Total    time.Duration
	Render   time.Duration
	Concat   time.Duration
}

type VideoProject struct {
	Config    config.Render
	Project   *storyboard.Project
	Plan      *plan.Plan
	Encoder   video.VideoEncoder
	Effect    effects.Effect
	Painter   *caption.Painter
	Pool      *system.FramePool
	Resources system.Resources
	Out       io.Writer

	log     *zap.Logger
	tempDir string
	fade    float64
	outMu   sync.Mutex
}

func NewVideoProject(cfg config.Render, p *storyboard.Project, ve video.VideoEncoder, painter *caption.Painter, log *zap.Logger) *VideoProject {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Encoder == "" {
		cfg.Encoder = "libx264"
	}
	return &VideoProject{
		Config:    cfg,
		Project:   p,
		Encoder:   ve,
		Effect:    effects.New(cfg.ZoomMode),
		Painter:   painter,
		Pool:      system.NewFramePool(),
		Resources: system.ProbeResources(),
		Out:       io.Discard,
		log:       log.Named("engine"),
	}
}

func (p *VideoProject) Run(ctx context.Context, opts Options) (*Stats, error) {
	const op = "engine.Run"

	startTime := time.Now()

	pl := p.Plan
	if pl == nil {
		pl = plan.FromProject(p.Project, p.Config)
	}
	if len(pl.Slides) == 0 {
		return nil, fmt.Errorf("%s: %w: storyboard has no cuts", op, ErrNoSegments)
	}

	var err error
	p.tempDir, err = os.MkdirTemp("", "cuts_"+opts.Session+"_")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer os.RemoveAll(p.tempDir)

	durations := make([]float64, len(pl.Slides))
	for i, s := range pl.Slides {
		durations[i] = s.Duration
	}
	p.fade = p.Config.FadeDuration
	if p.crossfades() {
		if fitted := FitFade(p.fade, durations); fitted != p.fade {
			p.printf("[!] Transition shortened to %.2fs for a short cut\n", fitted)
			p.fade = fitted
		}
	}

	workers := p.Resources.Workers(p.Config.Workers)
	if workers > len(pl.Slides) {
		workers = len(pl.Slides)
	}

	p.printf("--- [RENDER] ---\n")
	p.printf("[*] Cuts: %d | Running time: %s | %dx%d @ %d FPS | Workers: %d\n",
		len(pl.Slides), timeline.FormatSeconds(pl.Total()), pl.Width, pl.Height, pl.FPS, workers)

	results := make([]video.Segment, len(pl.Slides))
	var ready, skipped int
	var mu sync.Mutex

	renderStart := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range pl.Slides {
		g.Go(func() error {
			seg, err := p.renderSlide(gctx, pl, i, s)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				skipped++
				p.log.Warn("segment skipped", zap.Int("cut", s.ID), zap.String("kind", s.Kind), zap.Error(err))
				p.printf("[!] Cut %d skipped: %v\n", s.ID, err)
				return nil
			}
			results[i] = seg
			ready++
			p.printf("[>] Ready: %d/%d\n", ready, len(pl.Slides))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	renderTime := time.Since(renderStart)

	segments := make([]video.Segment, 0, len(results))
	for _, r := range results {
		if r.Path != "" {
			segments = append(segments, r)
		}
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSegments)
	}

	concatStart := time.Now()
	target := opts.Output
	var bgmPath string
	if opts.WithBGM && pl.BGM != "" {
		bgmPath, err = p.writeAsset(asset.ID(pl.BGM), "bgm")
		if err != nil {
			p.log.Warn("bgm unavailable", zap.String("asset_id", pl.BGM), zap.Error(err))
			p.printf("[!] BGM skipped: %v\n", err)
		} else {
			target = filepath.Join(p.tempDir, "joined.mp4")
		}
	}

	p.printf("[*] Joining %d segments...\n", len(segments))
	if err := p.Encoder.Concatenate(ctx, segments, target, p.tempDir, p.concatOptions()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if bgmPath != "" {
		if err := p.Encoder.MuxAudio(ctx, target, bgmPath, opts.Output); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	stats := &Stats{
		Segments: len(segments),
		Skipped:  skipped,
		Duration: pl.Total(),
		Workers:  workers,
		Total:    time.Since(startTime),
		Render:   renderTime,
		Concat:   time.Since(concatStart),
	}
	p.log.Info("render finished",
		zap.String("output", opts.Output),
		zap.Int("segments", stats.Segments),
		zap.Int("skipped", stats.Skipped),
		zap.Duration("took", stats.Total),
	)
	if p.Config.ShowStats {
		p.printf("%s", p.Report(stats))
	}
	return stats, nil
}

// Report formats stats with the host snapshot taken at start.
func (p *VideoProject) Report(s *Stats) string {
	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Total Time: %.2fs\n"+
			"Rendering: %.2fs (%d workers)\n"+
			"Concatenation: %.2fs\n"+
			"Segments: %d (skipped %d)\n"+
			"Host: %d CPUs, memory used %.1f%%\n"+
			"----------------------------\n",
		s.Total.Seconds(), s.Render.Seconds(), s.Workers, s.Concat.Seconds(),
		s.Segments, s.Skipped, p.Resources.CPUs, p.Resources.MemUsedPc,
	)
}

func (p *VideoProject) renderSlide(ctx context.Context, pl *plan.Plan, i int, s plan.Slide) (video.Segment, error) {
	params := config.SegmentParams{
		Width:        pl.Width,
		Height:       pl.Height,
		FPS:          pl.FPS,
		Duration:     s.Duration,
		ZoomMode:     p.Config.ZoomMode,
		ZoomSpeed:    p.Config.ZoomSpeed,
		FadeDuration: p.fade,
		CutIndex:     i,
		Encoder:      p.Config.Encoder,
		Quality:      p.Config.Quality,
		Preset:       p.Config.Preset,
	}
	seg := video.Segment{Path: filepath.Join(p.tempDir, fmt.Sprintf("s%03d.mp4", i)), Duration: s.Duration}

	frame := p.Pool.Get(p.Painter.Bounds())
	defer p.Pool.Put(frame)

	static := &effects.StaticEffect{}
	switch s.MediaKind() {
	case media.KindImage:
		img, err := p.decodeImage(s.AssetID())
		if err != nil {
			return video.Segment{}, err
		}
		if _, ok := p.Effect.(*effects.StaticEffect); ok {
			p.Painter.Compose(frame, img, s.Caption)
			params.Filter = p.Effect.GenerateFilter(params)
			return seg, p.Encoder.EncodeSegment(ctx, frame, seg.Path, params, "")
		}
		p.Painter.Compose(frame, img, "")
		overlay, err := p.writeOverlay(i, s.Caption)
		if err != nil {
			return video.Segment{}, err
		}
		params.Filter = p.Effect.GenerateFilter(params)
		return seg, p.Encoder.EncodeSegment(ctx, frame, seg.Path, params, overlay)

	case media.KindVideo:
		clip, err := p.writeAsset(s.AssetID(), fmt.Sprintf("clip%03d", i))
		if err != nil {
			return video.Segment{}, err
		}
		overlay, err := p.writeOverlay(i, s.Caption)
		if err != nil {
			return video.Segment{}, err
		}
		params.Filter = effects.ClipFilter(params)
		return seg, p.Encoder.EncodeClip(ctx, clip, seg.Path, params, overlay)
	}

	if s.Kind == plan.KindSlate {
		if err := p.Painter.Slate(frame, pl.Title, pl.Release, pl.Date); err != nil {
			return video.Segment{}, err
		}
	} else {
		p.Painter.Placeholder(frame, s.Caption)
	}
	params.Filter = static.GenerateFilter(params)
	return seg, p.Encoder.EncodeSegment(ctx, frame, seg.Path, params, "")
}

func (p *VideoProject) decodeImage(id asset.ID) (image.Image, error) {
	a, ok := p.Project.Registry().Get(id)
	if !ok {
		return nil, fmt.Errorf("asset %s is not in the project", id)
	}
	img, _, err := image.Decode(bytes.NewReader(a.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", a.Name, err)
	}
	return img, nil
}

// writeAsset copies the asset bytes to the temp dir for ffmpeg.
func (p *VideoProject) writeAsset(id asset.ID, base string) (string, error) {
	a, ok := p.Project.Registry().Get(id)
	if !ok {
		return "", fmt.Errorf("asset %s is not in the project", id)
	}
	ext := filepath.Ext(a.Name)
	if ext == "" {
		ext = ".bin"
	}
	path := filepath.Join(p.tempDir, base+ext)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// writeOverlay stores the caption bar as a transparent PNG. Blank
// captions need no overlay.
func (p *VideoProject) writeOverlay(i int, text string) (string, error) {
	if text == "" {
		return "", nil
	}
	path := filepath.Join(p.tempDir, fmt.Sprintf("caption%03d.png", i))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := png.Encode(f, p.Painter.Overlay(text)); err != nil {
		return "", err
	}
	return path, nil
}

func (p *VideoProject) crossfades() bool {
	return p.concatOptions().Crossfades()
}

func (p *VideoProject) concatOptions() video.ConcatOptions {
	return video.ConcatOptions{
		TransitionType: p.Config.TransitionType,
		FadeDuration:   p.fade,
		Encoder:        p.Config.Encoder,
		Quality:        p.Config.Quality,
		Preset:         p.Config.Preset,
	}
}

func (p *VideoProject) printf(format string, args ...any) {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintf(p.Out, format, args...)
}

// FitFade halves the transition when it would not fit into the shortest
// cut.
func FitFade(fade float64, durations []float64) float64 {
	if len(durations) < 2 || fade <= 0 {
		return fade
	}
	minDur := durations[0]
	for _, d := range durations {
		if d < minDur {
			minDur = d
		}
	}
	if fade >= minDur {
		return minDur / 2.0
	}
	return fade
}
