package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/ivlev/cuts/internal/media"
	"github.com/ivlev/cuts/internal/system"
)

var ErrNoFrame = errors.New("no usable frame")

// FrameGrabber captures a video thumbnail with ffmpeg. Candidate times are
// tried in order and frames that are nearly black are skipped.
type FrameGrabber struct {
	FFmpeg  string
	FFprobe string
	Timeout time.Duration
	Thumbs  *ImageThumbnailer
}

func NewFrameGrabber(ffmpeg, ffprobe string, timeout time.Duration, thumbs *ImageThumbnailer) *FrameGrabber {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	if thumbs == nil {
		thumbs = NewImageThumbnailer(0, 0)
	}
	return &FrameGrabber{FFmpeg: ffmpeg, FFprobe: ffprobe, Timeout: timeout, Thumbs: thumbs}
}

// CandidateTimes lists the seek positions for a clip of duration d seconds.
func CandidateTimes(d float64) []float64 {
	if d <= 0 {
		return []float64{1, 2}
	}
	return []float64{min(1, d*0.1), min(2, d*0.2), d * 0.5, d * 0.8}
}

func (g *FrameGrabber) Generate(ctx context.Context, f media.File) (*media.Preview, error) {
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	tmpDir, err := os.MkdirTemp("", "cuts-frame-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	src := filepath.Join(tmpDir, "clip"+filepath.Ext(f.Name))
	if err := os.WriteFile(src, f.Data, 0o600); err != nil {
		return nil, err
	}

	d, err := system.GetMediaDuration(ctx, g.FFprobe, src)
	if err != nil {
		d = 0
	}

	var lastErr error
	for _, t := range CandidateTimes(d) {
		p, err := g.captureAt(ctx, src, t)
		if err == nil {
			return p, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%s: %w: %v", f.Name, ErrNoFrame, lastErr)
}

func (g *FrameGrabber) captureAt(ctx context.Context, src string, t float64) (*media.Preview, error) {
	cmd := exec.CommandContext(ctx, g.FFmpeg,
		"-hide_banner", "-loglevel", "error",
		"-ss", fmt.Sprintf("%.3f", t),
		"-i", src,
		"-frames:v", "1",
		"-f", "image2pipe", "-vcodec", "png", "-",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg at %.2fs: %w: %s", t, err, stderr.String())
	}

	frame, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("frame at %.2fs: %w", t, err)
	}
	if TooDark(frame) {
		return nil, fmt.Errorf("frame at %.2fs is too dark", t)
	}
	return g.Thumbs.FromImage(frame)
}
