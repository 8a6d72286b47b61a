// Package archive packs a project with its media into a single container:
// manifest.json, the referenced assets and their preview images.
package archive

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ivlev/cuts/internal/asset"
	"github.com/ivlev/cuts/internal/media"
	"github.com/ivlev/cuts/internal/storyboard"
	"github.com/ivlev/cuts/internal/textutil"
)

var (
	ErrManifestMissing  = errors.New("manifest.json not found in archive")
	ErrMalformed        = errors.New("malformed archive")
	ErrCodecUnavailable = errors.New("archive codec is not available")
)

// Report summarizes an import.
type Report struct {
	Rows    int
	Assets  int
	Thumbs  int
	Missing []asset.ID
}

type Packager struct {
	codec Codec
	log   *zap.Logger
	now   func() time.Time
}

func NewPackager(codec Codec, log *zap.Logger) *Packager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Packager{
		codec: codec,
		log:   log.Named("archive"),
		now:   time.Now,
	}
}

// WithClock replaces the clock used for the default date on import.
func (pk *Packager) WithClock(now func() time.Time) *Packager {
	pk.now = now
	return pk
}

// FileName is the download name for an archive export.
func FileName(h storyboard.Header) string {
	return textutil.DownloadName(h.Title, "project", h.Version, "zip")
}

// Export packs p with its version incremented. The project is only
// updated when packing succeeds.
func (pk *Packager) Export(p *storyboard.Project) ([]byte, string, error) {
	const op = "archive.Export"
	log := pk.log.With(zap.String("op", op))

	if pk.codec == nil {
		return nil, "", fmt.Errorf("%s: %w", op, ErrCodecUnavailable)
	}

	next := storyboard.NextVersion(p.Header.Version)
	h := p.Header
	m := Manifest{
		Header: &ManifestHeader{
			Title:    textutil.LooseString(h.Title),
			Date:     textutil.LooseString(h.Date),
			Version:  textutil.LooseString(next),
			Format:   textutil.LooseString(h.Format),
			FPS:      textutil.LooseString(h.FPS),
			Delivery: textutil.LooseString(h.Delivery),
			Loudness: textutil.LooseString(h.Loudness),
			Platform: textutil.LooseString(h.Platform),
		},
	}

	var payloads, thumbs []Entry
	packed := make(map[asset.ID]bool)
	reg := p.Registry()
	bundle := func(b storyboard.Binding, ref *AssetRef) {
		switch {
		case !b.Live():
			log.Warn("binding has no media, exporting reference only", zap.String("asset_id", ref.AssetID))
		case packed[b.AssetID]:
		default:
			a, ok := reg.Get(b.AssetID)
			if !ok {
				log.Warn("asset missing from registry", zap.String("asset_id", ref.AssetID))
				return
			}
			packed[b.AssetID] = true
			payloads = append(payloads, Entry{Name: ref.File, Data: a.Data})
		}
	}

	if bgm := p.BGM(); bgm.Ref() != "" {
		m.BGM = refOf(bgm, "bgm")
		m.BGM.Kind = media.KindAudio.Tag()
		bundle(bgm, m.BGM)
	}

	rows := make([]ManifestRow, 0, p.Len())
	for _, c := range p.Cuts() {
		row := ManifestRow{
			No:        c.No(),
			Caption:   textutil.LooseString(c.Caption()),
			Duration:  textutil.LooseString(c.Duration()),
			StartTime: c.StartTime(),
		}
		b := c.Visual()
		if b.Ref() != "" {
			row.Visual = refOf(b, fmt.Sprintf("cut_%d", c.No()))
			bundle(b, row.Visual)
			if b.Preview != nil && len(b.Preview.Data) > 0 {
				thumbs = append(thumbs, Entry{
					Name: ThumbPath(b.Ref(), media.Extension(b.Preview.MediaType)),
					Data: b.Preview.Data,
				})
			}
		}
		rows = append(rows, row)
	}
	m.Rows = &rows

	manifest, err := encodeManifest(&m)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	entries := append([]Entry{{Name: ManifestName, Data: manifest}}, payloads...)
	entries = append(entries, thumbs...)

	data, err := pk.codec.Pack(entries)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	p.Header.Version = next

	log.Info("project exported",
		zap.Int("rows", len(rows)),
		zap.Int("assets", len(payloads)),
		zap.Int("thumbs", len(thumbs)),
		zap.String("version", next),
		zap.Int("bytes", len(data)),
	)
	return data, FileName(p.Header), nil
}

// Import replaces the contents of p with the archived project. The archive
// is fully decoded before p is touched; referenced assets that are absent
// come back as metadata-only bindings and are listed in the report.
func (pk *Packager) Import(p *storyboard.Project, data []byte) (Report, error) {
	const op = "archive.Import"
	log := pk.log.With(zap.String("op", op))

	if pk.codec == nil {
		return Report{}, fmt.Errorf("%s: %w", op, ErrCodecUnavailable)
	}

	entries, err := pk.codec.Unpack(data)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w: %w", op, ErrMalformed, err)
	}
	files := make(map[string][]byte, len(entries))
	for _, e := range entries {
		files[e.Name] = e.Data
	}

	raw, ok := files[ManifestName]
	if !ok {
		return Report{}, fmt.Errorf("%s: %w", op, ErrManifestMissing)
	}
	m, err := decodeManifest(raw)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", op, err)
	}

	r := &restorer{
		entries: entries,
		files:   files,
		thumbs:  collectThumbs(entries),
		claimed: make(map[asset.ID]bool),
		log:     log,
	}

	h := m.Header
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
	if snap.Header.Date == "" {
		snap.Header.Date = pk.now().Format(storyboard.DateLayout)
	}
	if snap.Header.Version == "" {
		snap.Header.Version = storyboard.DefaultVersion
	}

	if m.BGM != nil && m.BGM.AssetID != "" {
		b, payload := r.resolve(m.BGM)
		b.Kind = media.KindAudio
		snap.BGM, snap.BGMPayload = b, payload
	}

	thumbsUsed := 0
	for _, row := range *m.Rows {
		duration := row.Duration.String()
		data := storyboard.RowData{
			Caption:  row.Caption.String(),
			Duration: &duration,
		}
		if row.Visual != nil && row.Visual.AssetID != "" {
			data.Visual, data.Payload = r.resolve(row.Visual)
			// archived previews belong to row visuals only
			if thumb, ok := r.thumbs[asset.ID(row.Visual.AssetID)]; ok {
				data.Visual.Preview = thumb
				thumbsUsed++
			}
		}
		snap.Rows = append(snap.Rows, data)
	}

	p.Replace(snap)

	report := Report{
		Rows:    p.Len(),
		Assets:  p.Registry().Len(),
		Thumbs:  thumbsUsed,
		Missing: r.missing,
	}
	log.Info("project imported",
		zap.Int("rows", report.Rows),
		zap.Int("assets", report.Assets),
		zap.Int("thumbs", report.Thumbs),
		zap.Int("missing", len(report.Missing)),
		zap.String("version", p.Header.Version),
	)
	if err := p.Validate(); err != nil {
		log.Warn("imported project is inconsistent", zap.Error(err))
	}
	return report, nil
}

// refOf builds the manifest reference for a binding. The asset path is
// derived once here and used for both the manifest and the entry name.
func refOf(b storyboard.Binding, fallback string) *AssetRef {
	name := b.AssetName
	if name == "" {
		name = b.Filename
	}
	if name == "" {
		name = fallback
	}
	return &AssetRef{
		AssetID:  string(b.Ref()),
		File:     AssetPath(b.Ref(), textutil.SanitizeFileName(name)),
		Kind:     b.Kind.Tag(),
		Filetype: b.MediaType,
		Name:     name,
	}
}

func collectThumbs(entries []Entry) map[asset.ID]*media.Preview {
	thumbs := make(map[asset.ID]*media.Preview)
	for _, e := range entries {
		if !strings.HasPrefix(e.Name, thumbsDir) || len(e.Data) == 0 {
			continue
		}
		base := path.Base(e.Name)
		ext := path.Ext(base)
		id := asset.ID(strings.TrimSuffix(base, ext))
		if id == "" {
			continue
		}
		thumbs[id] = &media.Preview{
			MediaType: media.TypeByExtension(base),
			Data:      e.Data,
		}
	}
	return thumbs
}

type restorer struct {
	entries []Entry
	files   map[string][]byte
	thumbs  map[asset.ID]*media.Preview
	claimed map[asset.ID]bool
	missing []asset.ID
	log     *zap.Logger
}

// resolve turns a manifest reference into a binding and, when the archive
// holds the payload, the asset to register.
func (r *restorer) resolve(ref *AssetRef) (storyboard.Binding, *asset.Asset) {
	id := asset.ID(ref.AssetID)
	name := fileNameOf(ref)

	data, found := r.files[ref.File]
	if !found {
		for _, e := range r.entries {
			if !strings.HasPrefix(e.Name, assetsDir) {
				continue
			}
			if eid, ename, ok := ParseAssetEntry(e.Name); ok && eid == id {
				data, found = e.Data, true
				if name == "" {
					name = ename
				}
				break
			}
		}
	}

	kind, _ := media.ParseKind(ref.Kind)
	b := storyboard.Binding{
		Kind:      kind,
		Filename:  name,
		AssetName: name,
		AssetID:   id,
	}
	if !found || r.claimed[id] {
		b.MediaType = ref.Filetype
		if b.MediaType == "" {
			b.MediaType = media.TypeByExtension(name)
		}
		if b.Kind == media.KindNone {
			b.Kind = media.KindOf(b.MediaType)
		}
		r.missing = append(r.missing, id)
		r.log.Warn("referenced asset not in archive, restoring metadata only",
			zap.String("asset_id", string(id)),
			zap.String("path", ref.File),
		)
		return b, nil
	}
	r.claimed[id] = true

	b.MediaType = media.ResolveType(media.File{Name: name, Type: ref.Filetype, Data: data})
	if b.Kind == media.KindNone {
		b.Kind = media.KindOf(b.MediaType)
	}
	return b, &asset.Asset{Name: name, MediaType: b.MediaType, Data: data}
}
