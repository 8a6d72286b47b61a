package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/cuts/internal/archive"
	"github.com/ivlev/cuts/internal/config"
	"github.com/ivlev/cuts/internal/document"
	"github.com/ivlev/cuts/internal/plan"
	"github.com/ivlev/cuts/internal/storyboard"
)

func setupCLI(t *testing.T) string {
	t.Helper()
	t.Setenv(config.PathEnv, "")
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, "", args...)
	require.NoError(t, err, out)
	return out
}

func writeImage(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 36))
	for x := 0; x < 64; x++ {
		for y := 0; y < 36; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func loadArchive(t *testing.T, path string) *storyboard.Project {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	p := storyboard.New()
	_, err = archive.NewPackager(archive.ZipCodec{}, nil).Import(p, data)
	require.NoError(t, err)
	return p
}

func TestNewAndShow(t *testing.T) {
	setupCLI(t)

	out := mustRun(t, "new", "promo.json", "--title", "Promo")
	assert.Contains(t, out, "[+++] Saved promo.json (v1.01)")

	data, err := os.ReadFile("promo.json")
	require.NoError(t, err)
	doc, err := document.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "Promo", doc.Header.Title.String())
	assert.Equal(t, "1.01", doc.Header.Version.String())
	assert.Len(t, *doc.Rows, 3)

	out = mustRun(t, "show", "promo.json")
	assert.Contains(t, out, "Promo")
	assert.Contains(t, out, "Signage")
	assert.Contains(t, out, "0:10")
	assert.Contains(t, out, "Running time 0:15")
}

func TestNewRefusesOverwrite(t *testing.T) {
	setupCLI(t)
	mustRun(t, "new", "p.zip")

	_, err := runCLI(t, "", "new", "p.zip")
	assert.Error(t, err)

	mustRun(t, "new", "p.zip", "--force", "--rows", "1")
	assert.Equal(t, 1, loadArchive(t, "p.zip").Len())
}

func TestUnsupportedFormat(t *testing.T) {
	setupCLI(t)
	_, err := runCLI(t, "", "new", "p.txt")
	assert.ErrorIs(t, err, errUnsupportedFormat)
}

func TestEditFlow(t *testing.T) {
	setupCLI(t)
	writeImage(t, "shot.png")

	mustRun(t, "new", "p.zip", "--title", "Launch")
	mustRun(t, "add", "p.zip", "--caption", "Logo reveal", "--duration", "7s")
	out := mustRun(t, "attach", "p.zip", "1", "shot.png")
	assert.Contains(t, out, "attached as v0001")
	mustRun(t, "set", "p.zip", "2", "--caption", "Outro")
	mustRun(t, "move", "p.zip", "4", "1")
	mustRun(t, "header", "p.zip", "platform", "Web")

	p := loadArchive(t, "p.zip")
	require.Equal(t, 4, p.Len())
	cuts := p.Cuts()

	assert.Equal(t, "Logo reveal", cuts[0].Caption())
	assert.Equal(t, "7", cuts[0].Duration())
	assert.Equal(t, "0:07", cuts[1].StartTime())

	v := cuts[1].Visual()
	assert.Equal(t, "shot.png", v.Filename)
	assert.True(t, v.Live())
	require.NotNil(t, v.Preview)
	assert.Equal(t, "Outro", cuts[2].Caption())

	assert.Equal(t, "Web", p.Header.Platform)
	assert.Equal(t, "1.06", p.Header.Version)
	assert.NoError(t, p.Validate())

	out = mustRun(t, "assets", "p.zip")
	assert.Contains(t, out, "v0001")
	assert.Contains(t, out, "shot.png")
	assert.Contains(t, out, "image/png")

	out = mustRun(t, "find", "p.zip", "logo")
	assert.Contains(t, out, "Logo reveal")

	mustRun(t, "clear", "p.zip", "2")
	assert.Equal(t, 0, loadArchive(t, "p.zip").Registry().Len())
}

func TestAttachRejectsAudio(t *testing.T) {
	setupCLI(t)
	require.NoError(t, os.WriteFile("bed.mp3", []byte("ID3"), 0o644))
	mustRun(t, "new", "p.zip")

	_, err := runCLI(t, "", "attach", "p.zip", "1", "bed.mp3")
	assert.ErrorIs(t, err, storyboard.ErrUnsupportedMedia)

	out := mustRun(t, "bgm", "p.zip", "bed.mp3")
	assert.Contains(t, out, "attached as m0001")
	assert.Equal(t, "bed.mp3", loadArchive(t, "p.zip").BGM().Filename)

	_, err = runCLI(t, "", "bgm", "p.zip")
	assert.Error(t, err)

	mustRun(t, "bgm", "p.zip", "--clear")
	assert.True(t, loadArchive(t, "p.zip").BGM().Empty())
}

func TestRemoveAsksForConfirmation(t *testing.T) {
	setupCLI(t)
	mustRun(t, "new", "p.zip")

	out, err := runCLI(t, "n\n", "rm", "p.zip", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Delete cut 2? [y/N]")
	assert.Equal(t, 3, loadArchive(t, "p.zip").Len())

	_, err = runCLI(t, "y\n", "rm", "p.zip", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, loadArchive(t, "p.zip").Len())

	mustRun(t, "rm", "p.zip", "1", "--yes")
	assert.Equal(t, 1, loadArchive(t, "p.zip").Len())

	_, err = runCLI(t, "", "rm", "p.zip", "9", "--yes")
	assert.ErrorIs(t, err, storyboard.ErrCutNotFound)
}

func TestConvert(t *testing.T) {
	setupCLI(t)
	writeImage(t, "shot.png")
	mustRun(t, "new", "p.zip", "--title", "Launch")
	mustRun(t, "attach", "p.zip", "1", "shot.png")

	out := mustRun(t, "convert", "p.zip", "p.json")
	assert.Contains(t, out, "[!] Media bytes are not kept in p.json")

	data, err := os.ReadFile("p.json")
	require.NoError(t, err)
	doc, err := document.Decode(data)
	require.NoError(t, err)
	rows := *doc.Rows
	require.NotNil(t, rows[0].VisualMeta)
	assert.Equal(t, "v0001", rows[0].VisualMeta.AssetID)
	assert.Equal(t, "shot.png", rows[0].VisualMeta.Filename)
}

func TestRenderPlanOnly(t *testing.T) {
	dir := setupCLI(t)
	mustRun(t, "new", "p.zip", "--title", "Launch")
	mustRun(t, "set", "p.zip", "2", "--duration", "0")

	target := filepath.Join(dir, "plan.yaml")
	out := mustRun(t, "render", "p.zip", "--plan-only", "--slate", "-o", target)
	assert.Contains(t, out, "Plan saved")

	pl, err := plan.Read(target)
	require.NoError(t, err)
	require.Len(t, pl.Slides, 4)
	assert.Equal(t, plan.KindSlate, pl.Slides[0].Kind)
	assert.InDelta(t, 3.0, pl.Slides[2].Duration, 1e-9)
	assert.Equal(t, "Launch", pl.Title)
}

func TestFromImages(t *testing.T) {
	setupCLI(t)
	require.NoError(t, os.Mkdir("frames", 0o755))
	writeImage(t, filepath.Join("frames", "02.png"))
	writeImage(t, filepath.Join("frames", "01.png"))

	out := mustRun(t, "from-images", "seeded.zip", "frames", "--duration", "2")
	assert.Contains(t, out, "2 cuts, running time 0:04")

	p := loadArchive(t, "seeded.zip")
	require.Equal(t, 2, p.Len())
	assert.Equal(t, "frames", p.Header.Title)
	assert.Equal(t, "01.png", p.Cuts()[0].Visual().Filename)
	assert.Equal(t, 2, p.Registry().Len())
}
