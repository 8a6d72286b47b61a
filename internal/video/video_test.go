package video

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/cuts/internal/config"
)

func segParams() config.SegmentParams {
	return config.SegmentParams{
		Width:    1280,
		Height:   720,
		FPS:      25,
		Duration: 3,
		Filter:   "scale=1280:720",
		Encoder:  "libx264",
		Quality:  23,
		Preset:   "fast",
	}
}

func TestSegmentArgs(t *testing.T) {
	args := segmentArgs(1280, 720, "s0.mp4", segParams(), "")
	assert.Equal(t, []string{
		"-y", "-f", "rawvideo", "-pixel_format", "rgba", "-video_size", "1280x720", "-i", "-",
		"-vf", "scale=1280:720",
		"-t", "3.000000", "-r", "25", "-pix_fmt", "yuv420p", "-c:v", "libx264",
		"-crf", "23", "-preset", "fast",
		"s0.mp4",
	}, args)
}

func TestSegmentArgsWithOverlay(t *testing.T) {
	args := segmentArgs(1280, 720, "s0.mp4", segParams(), "cap.png")
	assert.Contains(t, args, "cap.png")
	assert.Contains(t, args, "[0:v]scale=1280:720[bg];[bg][1:v]overlay=0:0:format=auto[v]")
	assert.NotContains(t, args, "-vf")
}

func TestClipArgs(t *testing.T) {
	args := clipArgs("in.mov", "s1.mp4", segParams(), "")
	assert.Equal(t, []string{"-y", "-i", "in.mov"}, args[:3])
	assert.Contains(t, args, "-an")
	assert.Equal(t, "s1.mp4", args[len(args)-1])
}

func TestQualityArgs(t *testing.T) {
	testCases := []struct {
		desc    string
		encoder string
		preset  string
		expect  []string
	}{
		{desc: "videotoolbox", encoder: "h264_videotoolbox", expect: []string{"-b:v", "2300k"}},
		{desc: "nvenc", encoder: "h264_nvenc", expect: []string{"-cq", "23"}},
		{desc: "x264", encoder: "libx264", preset: "slow", expect: []string{"-crf", "23", "-preset", "slow"}},
		{desc: "x264 default preset", encoder: "libx264", expect: []string{"-crf", "23", "-preset", "medium"}},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.expect, qualityArgs(tC.encoder, 23, tC.preset))
		})
	}
}

func TestXfadeArgs(t *testing.T) {
	segs := []Segment{{Path: "a.mp4", Duration: 3}, {Path: "b.mp4", Duration: 4}, {Path: "c.mp4", Duration: 2}}
	args := xfadeArgs(segs, "out.mp4", ConcatOptions{TransitionType: "fade", FadeDuration: 0.5, Encoder: "libx264", Quality: 20})

	graph := "[0:v][1:v]xfade=transition=fade:duration=0.500000:offset=2.500000[v1];" +
		"[v1][2:v]xfade=transition=fade:duration=0.500000:offset=6.000000[v2]"
	assert.Contains(t, args, graph)
	assert.Contains(t, args, "[v2]")
	assert.Equal(t, "out.mp4", args[len(args)-1])
}

func TestMuxArgs(t *testing.T) {
	assert.Equal(t, []string{
		"-y", "-i", "v.mp4", "-i", "bgm.mp3",
		"-map", "0:v", "-map", "1:a", "-c:v", "copy", "-c:a", "aac", "-shortest",
		"final.mp4",
	}, muxArgs("v.mp4", "bgm.mp3", "final.mp4"))
}

func TestCrossfades(t *testing.T) {
	assert.False(t, ConcatOptions{}.Crossfades())
	assert.False(t, ConcatOptions{TransitionType: "none"}.Crossfades())
	assert.True(t, ConcatOptions{TransitionType: "fade"}.Crossfades())
}

func TestWriteConcatList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inputs.txt")
	a := filepath.Join(dir, "a.mp4")
	require.NoError(t, writeConcatList(path, []Segment{{Path: a}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "file '"+a+"'\n", string(data))
}

func TestWriteRawRGBA(t *testing.T) {
	img := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	img.Set(5, 5, color.NRGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, writeRawRGBA(&buf, img))
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 0, 0}, buf.Bytes())
}
