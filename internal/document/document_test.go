package document

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ivlev/cuts/internal/asset"
	"github.com/ivlev/cuts/internal/media"
	"github.com/ivlev/cuts/internal/storyboard"
)

func sampleProject(t *testing.T) *storyboard.Project {
	t.Helper()
	p := storyboard.NewWithDefaults(storyboard.StandardDefaults(), time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	p.Header.Title = "Launch / teaser"

	cuts := p.Cuts()
	p.SetCaption(cuts[0], "Opening shot")
	p.SetDuration(cuts[1], "12.5")
	_, err := p.BindMedia(cuts[0], media.File{Name: "open.png", Type: "image/png", Data: []byte("png")})
	require.NoError(t, err)
	p.SetPreview(cuts[0], &media.Preview{MediaType: "image/jpeg", Data: []byte("thumb")})
	_, err = p.BindMedia(cuts[2], media.File{Name: "walk.mp4", Data: []byte("mp4")})
	require.NoError(t, err)
	_, err = p.BindBGM(media.File{Name: "theme.mp3", Data: []byte("mp3")})
	require.NoError(t, err)
	return p
}

func TestRoundTrip(t *testing.T) {
	s := New(zaptest.NewLogger(t))
	src := sampleProject(t)

	data, name, err := s.Export(src)
	require.NoError(t, err)
	assert.Equal(t, "1.01", src.Header.Version)
	assert.Equal(t, "Launch _ teaser_v1.01.json", name)

	dst := storyboard.New()
	require.NoError(t, s.Import(dst, data))

	assert.Equal(t, src.Header, dst.Header)
	require.Equal(t, src.Len(), dst.Len())
	for i, want := range src.Cuts() {
		got := dst.Cuts()[i]
		assert.Equal(t, want.Caption(), got.Caption())
		assert.Equal(t, want.Duration(), got.Duration())
		assert.Equal(t, want.StartTime(), got.StartTime())
		assert.Equal(t, want.Markup(), got.Markup())
		assert.Equal(t, MetaOf(want.Visual()), MetaOf(got.Visual()))
		assert.False(t, got.Visual().Live())
	}
	assert.Equal(t, MetaOf(src.BGM()), MetaOf(dst.BGM()))

	// no media comes back
	assert.Zero(t, dst.Registry().Len())
	require.NoError(t, dst.Validate())

	// new media never reuses a recorded id
	id, err := dst.BindMedia(dst.Cuts()[1], media.File{Name: "x.png", Data: []byte{1}, Type: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, asset.ID("v0004"), id)
}

func TestExportShape(t *testing.T) {
	s := New(nil)
	data, _, err := s.Export(sampleProject(t))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	header := raw["header"].(map[string]any)
	assert.Equal(t, "1.01", header["version"])
	bgm := header["bgmMeta"].(map[string]any)
	assert.Equal(t, "theme.mp3", bgm["filename"])
	assert.Equal(t, "audio", bgm["kind"])
	assert.Equal(t, "m0003", bgm["assetId"])

	rows := raw["rows"].([]any)
	require.Len(t, rows, 3)
	first := rows[0].(map[string]any)
	assert.Equal(t, "Opening shot", first["audio"])
	assert.Equal(t, "0:00", first["startTime"])
	assert.Contains(t, first["visual"], `class="kind-badge">IMG<`)
	assert.Equal(t, "v0001", first["visualMeta"].(map[string]any)["assetId"])
	assert.NotContains(t, first, "caption")
}

func TestImportLegacyKeys(t *testing.T) {
	doc := `{
		"header": {"title": "Old", "version": ""},
		"rows": [
			{"caption": "legacy caption", "time": "4"},
			{"audio": "new", "caption": "ignored"},
			{}
		]
	}`
	p := storyboard.New()
	require.NoError(t, New(nil).Import(p, []byte(doc)))

	cuts := p.Cuts()
	require.Len(t, cuts, 3)
	assert.Equal(t, "legacy caption", cuts[0].Caption())
	assert.Equal(t, "4", cuts[0].Duration())
	assert.Equal(t, "new", cuts[1].Caption())
	assert.Equal(t, "5", cuts[1].Duration())
	assert.Equal(t, []string{"0:00", "0:04", "0:09"}, []string{cuts[0].StartTime(), cuts[1].StartTime(), cuts[2].StartTime()})
	assert.Equal(t, "1.00", p.Header.Version)
	assert.True(t, p.BGM().Empty())
}

func TestImportNumericFields(t *testing.T) {
	testCases := []struct {
		desc     string
		row      string
		duration string
		caption  string
	}{
		{desc: "numeric duration", row: `{"audio": "a", "duration": 5}`, duration: "5", caption: "a"},
		{desc: "fractional duration", row: `{"audio": "a", "duration": 12.5}`, duration: "12.5", caption: "a"},
		{desc: "numeric time", row: `{"caption": "b", "time": 7}`, duration: "7", caption: "b"},
		{desc: "null duration falls back to time", row: `{"duration": null, "time": "3"}`, duration: "3"},
		{desc: "unit suffix", row: `{"duration": "4s"}`, duration: "4"},
		{desc: "numeric caption", row: `{"audio": 42}`, duration: "5", caption: "42"},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			doc := `{"header": {"title": "Nums", "fps": 30, "version": 1.01}, "rows": [` + tC.row + `, {"duration": "1"}]}`
			p := storyboard.New()
			require.NoError(t, New(nil).Import(p, []byte(doc)))

			assert.Equal(t, "30", p.Header.FPS)
			assert.Equal(t, "1.01", p.Header.Version)

			cuts := p.Cuts()
			require.Len(t, cuts, 2)
			assert.Equal(t, tC.duration, cuts[0].Duration())
			assert.Equal(t, tC.caption, cuts[0].Caption())
			require.NoError(t, p.Validate())
		})
	}
}

func TestImportBGMDefaultsToAudio(t *testing.T) {
	doc := `{"header": {"bgmMeta": {"filename": "a.mp3", "assetId": "m0012"}}, "rows": []}`
	p := storyboard.New()
	require.NoError(t, New(nil).Import(p, []byte(doc)))

	assert.Equal(t, media.KindAudio, p.BGM().Kind)
	assert.Equal(t, asset.ID("m0012"), p.BGM().RecordedID)
	assert.Equal(t, asset.ID("v0013"), p.Registry().GenerateID("v"))
}

func TestImportMalformed(t *testing.T) {
	testCases := []struct {
		desc string
		data string
	}{
		{desc: "not json", data: "{"},
		{desc: "missing header", data: `{"rows": []}`},
		{desc: "missing rows", data: `{"header": {}}`},
		{desc: "null rows", data: `{"header": {}, "rows": null}`},
		{desc: "wrong type", data: `{"header": [], "rows": []}`},
		{desc: "bool duration", data: `{"header": {}, "rows": [{"duration": true}]}`},
		{desc: "object version", data: `{"header": {"version": {}}, "rows": []}`},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			p := sampleProject(t)
			before := p.Header

			err := New(nil).Import(p, []byte(tC.data))
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Equal(t, before, p.Header)
			assert.Equal(t, 3, p.Len())
			assert.Equal(t, 3, p.Registry().Len())
		})
	}
}
