package plan

import (
	"strings"

	"github.com/ivlev/cuts/internal/asset"
	"github.com/ivlev/cuts/internal/config"
	"github.com/ivlev/cuts/internal/media"
	"github.com/ivlev/cuts/internal/storyboard"
	"github.com/ivlev/cuts/internal/timeline"
)

const FormatVersion = "1.0"

// Slide kinds besides the media kinds.
const (
	KindSlate = "slate"
	KindBlank = "none"
)

// Plan is the render recipe derived from a project: one slide per cut,
// optionally preceded by a slate.
type Plan struct {
	Version string  `yaml:"version"`
	Title   string  `yaml:"title"`
	Release string  `yaml:"release"`
	Date    string  `yaml:"date"`
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
	FPS     int     `yaml:"fps"`
	BGM     string  `yaml:"bgm,omitempty"`
	Slides  []Slide `yaml:"slides"`
}

// Slide is one segment of the output video.
type Slide struct {
	ID       int     `yaml:"id"`
	Kind     string  `yaml:"kind"`
	Asset    string  `yaml:"asset,omitempty"`
	Input    string  `yaml:"input,omitempty"`
	Caption  string  `yaml:"caption,omitempty"`
	Start    float64 `yaml:"start"`
	Duration float64 `yaml:"duration"` // seconds
}

// FromProject lays the cuts of p out on the render timeline. Cuts whose
// duration parses to zero get cfg.DefaultSeconds.
func FromProject(p *storyboard.Project, cfg config.Render) *Plan {
	pl := &Plan{
		Version: FormatVersion,
		Title:   p.Header.Title,
		Release: p.Header.Version,
		Date:    p.Header.Date,
		Width:   cfg.Width,
		Height:  cfg.Height,
		FPS:     cfg.FPS,
	}
	if bgm := p.BGM(); bgm.Live() {
		pl.BGM = string(bgm.AssetID)
	}

	start := 0.0
	if cfg.Slate {
		d := cfg.SlateSeconds
		if d <= 0 {
			d = cfg.DefaultSeconds
		}
		pl.Slides = append(pl.Slides, Slide{ID: 0, Kind: KindSlate, Caption: p.Header.Title, Duration: d})
		start += d
	}

	for _, c := range p.Cuts() {
		d := timeline.ParseSeconds(c.Duration())
		if d <= 0 {
			d = cfg.DefaultSeconds
		}
		s := Slide{
			ID:       c.No(),
			Kind:     KindBlank,
			Caption:  TrimCaption(c.Caption(), cfg.CaptionMaxRunes),
			Start:    start,
			Duration: d,
		}
		if v := c.Visual(); v.Live() {
			s.Kind = v.Kind.String()
			s.Asset = string(v.AssetID)
			s.Input = v.DisplayName()
		}
		pl.Slides = append(pl.Slides, s)
		start += d
	}
	return pl
}

// Total is the summed running time of all slides.
func (pl *Plan) Total() float64 {
	var t float64
	for _, s := range pl.Slides {
		t += s.Duration
	}
	return t
}

// AssetID returns the slide's asset key in the project registry.
func (s Slide) AssetID() asset.ID { return asset.ID(s.Asset) }

// MediaKind maps the slide kind back to a media kind; slates and blanks
// are KindNone.
func (s Slide) MediaKind() media.Kind {
	k, ok := media.ParseKind(s.Kind)
	if !ok {
		return media.KindNone
	}
	return k
}

// TrimCaption trims surrounding space and cuts the caption to max runes.
func TrimCaption(caption string, max int) string {
	caption = strings.TrimSpace(caption)
	if max <= 0 {
		return caption
	}
	r := []rune(caption)
	if len(r) <= max {
		return caption
	}
	return strings.TrimSpace(string(r[:max]))
}
