package storyboard

import "github.com/ivlev/cuts/internal/asset"

// Cut is one storyboard row. The ordinal and start time are derived by
// the owning project and only readable from outside.
type Cut struct {
	no       int
	caption  string
	duration string
	start    string
	visual   Binding
	markup   string
}

func (c *Cut) No() int           { return c.no }
func (c *Cut) Caption() string   { return c.caption }
func (c *Cut) Duration() string  { return c.duration }
func (c *Cut) StartTime() string { return c.start }
func (c *Cut) Visual() Binding   { return c.visual }

// Markup is the rendered visual cell. Markup restored from a document is
// kept verbatim until the binding changes.
func (c *Cut) Markup() string { return c.markup }

func (c *Cut) setVisual(b Binding) {
	c.visual = b
	c.markup = RenderMarkup(b)
}

// RowData initializes a cut on insert. A nil Duration means the default.
// Payload, when set, is registered under the binding's id.
type RowData struct {
	Caption  string
	Duration *string
	Markup   string
	Visual   Binding
	Payload  *asset.Asset
}

// slot exposes a cut to the timeline without exporting its setters.
type slot struct{ c *Cut }

func (s slot) SetOrdinal(n int)      { s.c.no = n }
func (s slot) DurationText() string  { return s.c.duration }
func (s slot) SetStartTime(v string) { s.c.start = v }
