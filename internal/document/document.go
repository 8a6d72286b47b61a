// Package document reads and writes the data-only project format: header,
// rows and media metadata without any media bytes.
package document

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ivlev/cuts/internal/asset"
	"github.com/ivlev/cuts/internal/media"
	"github.com/ivlev/cuts/internal/storyboard"
	"github.com/ivlev/cuts/internal/textutil"
)

var ErrMalformed = errors.New("malformed project document")

// Meta mirrors a binding without its payload.
type Meta struct {
	Filename  string `json:"filename"`
	Filetype  string `json:"filetype"`
	Kind      string `json:"kind"`
	AssetID   string `json:"assetId"`
	AssetName string `json:"assetName"`
}

// Header fields accept numbers as well as strings ("fps": 30).
type Header struct {
	Title    textutil.LooseString `json:"title"`
	Date     textutil.LooseString `json:"date"`
	Version  textutil.LooseString `json:"version"`
	Format   textutil.LooseString `json:"format"`
	FPS      textutil.LooseString `json:"fps"`
	Delivery textutil.LooseString `json:"delivery"`
	Loudness textutil.LooseString `json:"loudness"`
	Platform textutil.LooseString `json:"platform"`
	BGMMeta  *Meta                `json:"bgmMeta,omitempty"`
}

// Row carries the legacy keys caption and time as fallbacks for audio and
// duration.
type Row struct {
	Visual     string                `json:"visual"`
	Audio      *textutil.LooseString `json:"audio,omitempty"`
	Caption    *textutil.LooseString `json:"caption,omitempty"`
	Duration   *textutil.LooseString `json:"duration,omitempty"`
	Time       *textutil.LooseString `json:"time,omitempty"`
	StartTime  string                `json:"startTime"`
	VisualMeta *Meta                 `json:"visualMeta,omitempty"`
}

type Document struct {
	Header *Header `json:"header"`
	Rows   *[]Row  `json:"rows"`
}

// Serializer converts projects to and from documents.
type Serializer struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Serializer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Serializer{log: log.Named("document")}
}

// Export encodes p with its version incremented and returns the bytes and
// the suggested file name. The project's version is only updated when
// encoding succeeds.
func (s *Serializer) Export(p *storyboard.Project) ([]byte, string, error) {
	const op = "document.Export"

	next := storyboard.NextVersion(p.Header.Version)
	doc := Build(p, next)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	p.Header.Version = next

	s.log.Info("project exported",
		zap.String("op", op),
		zap.Int("rows", len(*doc.Rows)),
		zap.String("version", next),
	)
	return data, FileName(p.Header), nil
}

// Import decodes data and replaces the contents of p. Nothing is changed
// when the document is malformed.
func (s *Serializer) Import(p *storyboard.Project, data []byte) error {
	const op = "document.Import"

	doc, err := Decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	p.Replace(Snapshot(doc))

	s.log.Info("project imported",
		zap.String("op", op),
		zap.Int("rows", p.Len()),
		zap.String("version", p.Header.Version),
	)
	if err := p.Validate(); err != nil {
		s.log.Warn("imported project is inconsistent", zap.String("op", op), zap.Error(err))
	}
	return nil
}

// Decode parses data and requires both top level keys.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if doc.Header == nil {
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}
	if doc.Rows == nil {
		return nil, fmt.Errorf("%w: missing rows", ErrMalformed)
	}
	return &doc, nil
}

// FileName is the download name for a data-only export.
func FileName(h storyboard.Header) string {
	return textutil.DownloadName(h.Title, "storyboard", h.Version, "json")
}

// Build converts p into a document stamped with version.
func Build(p *storyboard.Project, version string) Document {
	h := p.Header
	bgm := MetaOf(p.BGM())
	header := &Header{
		Title:    textutil.LooseString(h.Title),
		Date:     textutil.LooseString(h.Date),
		Version:  textutil.LooseString(version),
		Format:   textutil.LooseString(h.Format),
		FPS:      textutil.LooseString(h.FPS),
		Delivery: textutil.LooseString(h.Delivery),
		Loudness: textutil.LooseString(h.Loudness),
		Platform: textutil.LooseString(h.Platform),
		BGMMeta:  &bgm,
	}

	rows := make([]Row, 0, p.Len())
	for _, c := range p.Cuts() {
		caption := textutil.LooseString(c.Caption())
		duration := textutil.LooseString(c.Duration())
		meta := MetaOf(c.Visual())
		rows = append(rows, Row{
			Visual:     c.Markup(),
			Audio:      &caption,
			Duration:   &duration,
			StartTime:  c.StartTime(),
			VisualMeta: &meta,
		})
	}
	return Document{Header: header, Rows: &rows}
}

// Snapshot converts a decoded document into restorable project state.
// Documents carry no media, so every binding comes back display-only.
func Snapshot(doc *Document) storyboard.Snapshot {
	h := doc.Header
	snap := storyboard.Snapshot{
		Header: storyboard.Header{
			Title:    h.Title.String(),
			Date:     h.Date.String(),
			Version:  h.Version.String(),
			Format:   h.Format.String(),
			FPS:      h.FPS.String(),
			Delivery: h.Delivery.String(),
			Loudness: h.Loudness.String(),
			Platform: h.Platform.String(),
		},
	}
	if snap.Header.Version == "" {
		snap.Header.Version = storyboard.DefaultVersion
	}
	if m := h.BGMMeta; m != nil && m.Filename != "" {
		b := m.Binding()
		if b.Kind == media.KindNone {
			b.Kind = media.KindAudio
		}
		snap.BGM = b
	}

	for _, r := range *doc.Rows {
		data := storyboard.RowData{Markup: r.Visual}
		switch {
		case r.Audio != nil:
			data.Caption = r.Audio.String()
		case r.Caption != nil:
			data.Caption = r.Caption.String()
		}
		switch {
		case r.Duration != nil:
			d := r.Duration.String()
			data.Duration = &d
		case r.Time != nil:
			d := r.Time.String()
			data.Duration = &d
		}
		if r.VisualMeta != nil {
			data.Visual = r.VisualMeta.Binding()
		}
		snap.Rows = append(snap.Rows, data)
	}
	return snap
}

func MetaOf(b storyboard.Binding) Meta {
	return Meta{
		Filename:  b.Filename,
		Filetype:  b.MediaType,
		Kind:      b.Kind.Tag(),
		AssetID:   string(b.Ref()),
		AssetName: b.AssetName,
	}
}

// Binding turns the metadata into a display-only binding.
func (m Meta) Binding() storyboard.Binding {
	kind, _ := media.ParseKind(m.Kind)
	return storyboard.Binding{
		Kind:       kind,
		Filename:   m.Filename,
		MediaType:  m.Filetype,
		AssetName:  m.AssetName,
		RecordedID: asset.ID(m.AssetID),
	}
}
