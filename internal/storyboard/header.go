package storyboard

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultVersion  = "1.00"
	DefaultDuration = "5"
	DateLayout      = "2006-01-02"
)

var ErrUnknownField = errors.New("unknown header field")

// Header is the project level metadata.
type Header struct {
	Title    string
	Date     string
	Version  string
	Format   string
	FPS      string
	Delivery string
	Loudness string
	Platform string
}

// Defaults are applied to empty header fields of a new project.
type Defaults struct {
	Format   string
	FPS      string
	Delivery string
	Loudness string
	Platform string
	Version  string
	Rows     int
}

func StandardDefaults() Defaults {
	return Defaults{
		Format:   "1920x1080 / 16:9",
		FPS:      "30",
		Delivery: "H.264 / mp4 / AAC",
		Loudness: "-14 LUFS / -1 dBTP",
		Platform: "Signage",
		Version:  DefaultVersion,
		Rows:     3,
	}
}

// DefaultHeader returns a header with the defaults and today's date.
func DefaultHeader(d Defaults, now time.Time) Header {
	h := Header{}
	h.ApplyDefaults(d, now)
	return h
}

// ApplyDefaults fills only the fields that are empty.
func (h *Header) ApplyDefaults(d Defaults, now time.Time) {
	setIfEmpty := func(field *string, value string) {
		if *field == "" {
			*field = value
		}
	}
	setIfEmpty(&h.Format, d.Format)
	setIfEmpty(&h.FPS, d.FPS)
	setIfEmpty(&h.Delivery, d.Delivery)
	setIfEmpty(&h.Loudness, d.Loudness)
	setIfEmpty(&h.Platform, d.Platform)
	setIfEmpty(&h.Version, d.Version)
	setIfEmpty(&h.Version, DefaultVersion)
	setIfEmpty(&h.Date, now.Format(DateLayout))
}

// Fields lists the header in display order.
func (h Header) Fields() [][2]string {
	return [][2]string{
		{"title", h.Title},
		{"date", h.Date},
		{"version", h.Version},
		{"format", h.Format},
		{"fps", h.FPS},
		{"delivery", h.Delivery},
		{"loudness", h.Loudness},
		{"platform", h.Platform},
	}
}

// Set assigns one field by its lowercase name.
func (h *Header) Set(name, value string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "title":
		h.Title = value
	case "date":
		h.Date = value
	case "version":
		h.Version = value
	case "format":
		h.Format = value
	case "fps":
		h.FPS = value
	case "delivery":
		h.Delivery = value
	case "loudness":
		h.Loudness = value
	case "platform":
		h.Platform = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// NextVersion adds 0.01 to v and rounds to the nearest hundredth.
// Unparsable versions count as 1.00.
func NextVersion(v string) string {
	base, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(base) || math.IsInf(base, 0) {
		base = 1.0
	}
	next := math.Round((base+0.01)*100) / 100
	return strconv.FormatFloat(next, 'f', 2, 64)
}
