// Package storyboard holds the editable project: header, BGM slot, the
// ordered cuts and the asset registry their bindings point into.
package storyboard

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/ivlev/cuts/internal/asset"
	"github.com/ivlev/cuts/internal/media"
	"github.com/ivlev/cuts/internal/timeline"
)

var (
	ErrUnsupportedMedia = errors.New("unsupported media for slot")
	ErrCutNotFound      = errors.New("cut not found")
	ErrInconsistent     = errors.New("project state is inconsistent")
)

const (
	visualPrefix = "v"
	audioPrefix  = "m"
	fallbackName = "clipboard-file"
)

// Side is where a dropped cut lands relative to its target.
type Side int

const (
	Before Side = iota
	After
)

// SideAt resolves a drop position: strictly above the target's vertical
// midpoint is Before, anything else is After.
func SideAt(pointerY, top, height float64) Side {
	if pointerY < top+height/2 {
		return Before
	}
	return After
}

// Project is the single editing session. Import replaces its contents
// wholesale; every mutation leaves ordinals and start times recomputed.
type Project struct {
	Header Header

	bgm      Binding
	cuts     []*Cut
	registry *asset.Registry
}

func New() *Project {
	return &Project{registry: asset.NewRegistry()}
}

// NewWithDefaults creates a project with the default header and d.Rows
// blank cuts.
func NewWithDefaults(d Defaults, now time.Time) *Project {
	p := New()
	p.Header = DefaultHeader(d, now)
	for i := 0; i < d.Rows; i++ {
		p.Insert(nil)
	}
	return p
}

func (p *Project) Registry() *asset.Registry { return p.registry }

func (p *Project) BGM() Binding { return p.bgm }

func (p *Project) Len() int { return len(p.cuts) }

// Cuts returns the cuts in order. The slice is a copy.
func (p *Project) Cuts() []*Cut {
	return slices.Clone(p.cuts)
}

// Cut returns the cut with the 1-based ordinal no.
func (p *Project) Cut(no int) (*Cut, error) {
	if no < 1 || no > len(p.cuts) {
		return nil, fmt.Errorf("%w: %d", ErrCutNotFound, no)
	}
	return p.cuts[no-1], nil
}

// Duration is the summed running time in seconds.
func (p *Project) Duration() float64 {
	return timeline.Total(p.slots())
}

// Insert appends a cut initialized from data, or a blank one when data is
// nil. A supplied duration is sanitized like SetDuration input.
func (p *Project) Insert(data *RowData) *Cut {
	c := &Cut{duration: DefaultDuration}
	if data != nil {
		c.caption = data.Caption
		if data.Duration != nil {
			c.duration = timeline.SanitizeDuration(*data.Duration)
		}
		c.setVisual(p.adopt(data.Visual, data.Payload))
		if data.Markup != "" {
			c.markup = data.Markup
		}
	}
	p.cuts = append(p.cuts, c)
	p.refresh()
	return c
}

// Remove deletes c and releases the asset it owns. It reports whether c
// belonged to the project.
func (p *Project) Remove(c *Cut) bool {
	i := p.index(c)
	if i < 0 {
		return false
	}
	p.registry.Release(c.visual.AssetID)
	p.cuts = slices.Delete(p.cuts, i, i+1)
	p.refresh()
	return true
}

// Reorder moves moved to the given side of target.
func (p *Project) Reorder(moved, target *Cut, side Side) {
	if moved == target {
		return
	}
	from := p.index(moved)
	if from < 0 || p.index(target) < 0 {
		return
	}
	p.cuts = slices.Delete(p.cuts, from, from+1)
	to := p.index(target)
	if side == After {
		to++
	}
	p.cuts = slices.Insert(p.cuts, to, moved)
	p.refresh()
}

// Move relocates the cut at ordinal from onto the position of ordinal to.
// Moving down lands after the target, moving up lands before it.
func (p *Project) Move(from, to int) error {
	moved, err := p.Cut(from)
	if err != nil {
		return err
	}
	target, err := p.Cut(to)
	if err != nil {
		return err
	}
	side := Before
	if from < to {
		side = After
	}
	p.Reorder(moved, target, side)
	return nil
}

func (p *Project) SetCaption(c *Cut, text string) {
	c.caption = text
}

// SetDuration stores the sanitized text and returns it.
func (p *Project) SetDuration(c *Cut, text string) string {
	c.duration = timeline.SanitizeDuration(text)
	p.refresh()
	return c.duration
}

// BindMedia attaches f to c's visual slot, replacing and releasing any
// previous asset. Only images and videos are accepted.
func (p *Project) BindMedia(c *Cut, f media.File) (asset.ID, error) {
	kind, mediaType := media.Classify(f)
	if kind != media.KindImage && kind != media.KindVideo {
		return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedMedia, f.Name, kind)
	}
	if p.index(c) < 0 {
		return "", ErrCutNotFound
	}
	p.registry.Release(c.visual.AssetID)
	b, id := p.attach(f, kind, mediaType, visualPrefix)
	c.setVisual(b)
	return id, nil
}

// ClearVisual empties c's visual slot and releases its asset.
func (p *Project) ClearVisual(c *Cut) {
	p.registry.Release(c.visual.AssetID)
	c.setVisual(Binding{})
}

// SetPreview stores a derived preview on c's binding and re-renders its
// markup. Empty slots ignore it.
func (p *Project) SetPreview(c *Cut, preview *media.Preview) {
	if c.visual.Empty() {
		return
	}
	b := c.visual
	b.Preview = preview
	c.setVisual(b)
}

// BindBGM attaches audio to the BGM slot.
func (p *Project) BindBGM(f media.File) (asset.ID, error) {
	kind, mediaType := media.Classify(f)
	if kind != media.KindAudio {
		return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedMedia, f.Name, kind)
	}
	p.registry.Release(p.bgm.AssetID)
	b, id := p.attach(f, kind, mediaType, audioPrefix)
	p.bgm = b
	return id, nil
}

func (p *Project) ClearBGM() {
	p.registry.Release(p.bgm.AssetID)
	p.bgm = Binding{}
}

// Reset drops every cut, the BGM binding and all registered assets. The
// header is left for the caller to overwrite.
func (p *Project) Reset() {
	p.cuts = nil
	p.bgm = Binding{}
	p.registry.Reset()
}

// Snapshot is the full restorable state of a project.
type Snapshot struct {
	Header     Header
	BGM        Binding
	BGMPayload *asset.Asset
	Rows       []RowData
}

// Replace resets the project and rebuilds it from s.
func (p *Project) Replace(s Snapshot) {
	p.Reset()
	p.Header = s.Header
	p.bgm = p.adopt(s.BGM, s.BGMPayload)
	for i := range s.Rows {
		p.Insert(&s.Rows[i])
	}
	p.refresh()
}

// Find ranks cuts by a fuzzy, case-insensitive caption match.
func (p *Project) Find(query string) []*Cut {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	captions := make([]string, len(p.cuts))
	for i, c := range p.cuts {
		captions[i] = c.caption
	}
	ranks := fuzzy.RankFindNormalizedFold(query, captions)
	slices.SortStableFunc(ranks, func(a, b fuzzy.Rank) int {
		if a.Distance != b.Distance {
			return a.Distance - b.Distance
		}
		return a.OriginalIndex - b.OriginalIndex
	})
	out := make([]*Cut, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, p.cuts[r.OriginalIndex])
	}
	return out
}

// Validate checks the derived columns and that every live binding points
// at its own registered asset.
func (p *Project) Validate() error {
	var errs []error
	var acc float64
	owners := make(map[asset.ID]string)
	check := func(owner string, b Binding) {
		if !b.Live() {
			return
		}
		if !p.registry.Has(b.AssetID) {
			errs = append(errs, fmt.Errorf("%s: asset %s is not registered", owner, b.AssetID))
		}
		if prev, ok := owners[b.AssetID]; ok {
			errs = append(errs, fmt.Errorf("%s: asset %s is shared with %s", owner, b.AssetID, prev))
		}
		owners[b.AssetID] = owner
	}

	for i, c := range p.cuts {
		owner := fmt.Sprintf("cut %d", i+1)
		if c.no != i+1 {
			errs = append(errs, fmt.Errorf("%s: ordinal is %d", owner, c.no))
		}
		if want := timeline.FormatSeconds(acc); c.start != want {
			errs = append(errs, fmt.Errorf("%s: start time is %q, want %q", owner, c.start, want))
		}
		acc += timeline.ParseSeconds(c.duration)
		check(owner, c.visual)
	}
	check("bgm", p.bgm)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInconsistent, errors.Join(errs...))
	}
	return nil
}

// attach registers the payload of f and returns the new binding.
func (p *Project) attach(f media.File, kind media.Kind, mediaType, prefix string) (Binding, asset.ID) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		name = fallbackName
	}
	id := p.registry.Attach(asset.Asset{Name: name, MediaType: mediaType, Data: f.Data}, prefix)
	return Binding{
		Kind:      kind,
		Filename:  name,
		MediaType: mediaType,
		AssetName: name,
		AssetID:   id,
	}, id
}

// adopt turns a restored binding into one that satisfies the registry
// invariant: with a payload the id is registered and live, without one it
// is kept as a recorded id and only advances the counter.
func (p *Project) adopt(b Binding, payload *asset.Asset) Binding {
	id := b.Ref()
	b.AssetID, b.RecordedID = "", ""
	if id == "" {
		return b
	}
	if payload != nil {
		p.registry.Register(id, *payload)
		b.AssetID = id
		return b
	}
	p.registry.Observe(id)
	b.RecordedID = id
	return b
}

func (p *Project) index(c *Cut) int {
	if c == nil {
		return -1
	}
	return slices.Index(p.cuts, c)
}

func (p *Project) slots() []slot {
	out := make([]slot, len(p.cuts))
	for i, c := range p.cuts {
		out[i] = slot{c}
	}
	return out
}

func (p *Project) refresh() {
	timeline.Refresh(p.slots())
}
