package system

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/cuts/internal/media"
)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	touch(t, filepath.Join(dir, "old.mp3"), base)
	touch(t, filepath.Join(dir, "new.wav"), base.Add(time.Hour))
	touch(t, filepath.Join(dir, "deck.pdf"), base.Add(2*time.Hour))
	touch(t, filepath.Join(dir, "shot.png"), base.Add(3*time.Hour))

	got, err := FindLatest(dir, media.KindAudio)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "new.wav"), got)

	got, err = FindLatest(dir, media.KindNone)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "deck.pdf"), got)

	_, err = FindLatest(dir, media.KindVideo)
	assert.Error(t, err)
}

func TestListMedia(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.jpg", "a.PNG", "notes.txt", "c.webp"} {
		touch(t, filepath.Join(dir, n), time.Now())
	}

	got, err := ListMedia(dir, media.KindImage)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.PNG"),
		filepath.Join(dir, "b.jpg"),
		filepath.Join(dir, "c.webp"),
	}, got)
}

func TestWorkers(t *testing.T) {
	testCases := []struct {
		desc      string
		res       Resources
		requested int
		expect    int
	}{
		{desc: "explicit", res: Resources{CPUs: 8}, requested: 3, expect: 3},
		{desc: "cpu bound", res: Resources{CPUs: 4, AvailMem: 8 << 30}, expect: 4},
		{desc: "memory bound", res: Resources{CPUs: 16, AvailMem: 512 << 20}, expect: 2},
		{desc: "never zero", res: Resources{CPUs: 4, AvailMem: 1 << 20}, expect: 1},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.expect, tC.res.Workers(tC.requested))
		})
	}
}

func TestFramePool(t *testing.T) {
	pool := NewFramePool()
	rect := image.Rect(0, 0, 4, 2)

	img := pool.Get(rect)
	require.Equal(t, rect, img.Rect)
	img.Pix[0] = 255
	pool.Put(img)

	again := pool.Get(rect)
	assert.Zero(t, again.Pix[0])
	pool.Put(image.NewRGBA(image.Rect(0, 0, 1, 1)))
}
