package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ivlev/cuts/internal/config"
)

type VideoEncoder interface {
	// EncodeSegment turns one still frame into a segment using params.Filter.
	// A non-empty overlay is a PNG composited over the whole segment.
	EncodeSegment(ctx context.Context, img image.Image, videoPath string, params config.SegmentParams, overlay string) error
	// EncodeClip re-encodes a video cut to the segment format, dropping its
	// audio.
	EncodeClip(ctx context.Context, clipPath, videoPath string, params config.SegmentParams, overlay string) error
	Concatenate(ctx context.Context, segments []Segment, finalPath, tmpDir string, opts ConcatOptions) error
	MuxAudio(ctx context.Context, videoPath, audioPath, finalPath string) error
}

// Segment is an encoded piece of the final video.
type Segment struct {
	Path     string
	Duration float64
}

type ConcatOptions struct {
	TransitionType string
	FadeDuration   float64
	Encoder        string
	Quality        int
	Preset         string
}

// Crossfades reports whether the options ask for xfade transitions.
func (o ConcatOptions) Crossfades() bool {
	return o.TransitionType != "" && o.TransitionType != "none"
}

type FFmpegEncoder struct {
	Binary string
	log    *zap.Logger
}

func NewFFmpegEncoder(binary string, log *zap.Logger) *FFmpegEncoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FFmpegEncoder{Binary: binary, log: log.Named("video")}
}

func (e *FFmpegEncoder) EncodeSegment(
	ctx context.Context,
	img image.Image,
	videoPath string,
	params config.SegmentParams,
	overlay string,
) error {
	inputW, inputH := img.Bounds().Dx(), img.Bounds().Dy()

	args := segmentArgs(inputW, inputH, videoPath, params, overlay)

	cmd := exec.CommandContext(ctx, e.Binary, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	// one raw RGBA frame; the filter repeats it
	if err := writeRawRGBA(stdin, img); err != nil {
		stdin.Close()
		_ = cmd.Wait()
		return fmt.Errorf("write raw error: %w", err)
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, tail(out.String()))
	}
	return nil
}

func (e *FFmpegEncoder) EncodeClip(ctx context.Context, clipPath, videoPath string, params config.SegmentParams, overlay string) error {
	cmd := exec.CommandContext(ctx, e.Binary, clipArgs(clipPath, videoPath, params, overlay)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg clip error: %w, output: %s", err, tail(string(out)))
	}
	return nil
}

func (e *FFmpegEncoder) Concatenate(ctx context.Context, segments []Segment, finalPath, tmpDir string, opts ConcatOptions) error {
	if len(segments) == 0 {
		return fmt.Errorf("nothing to concatenate")
	}

	if !opts.Crossfades() || len(segments) == 1 {
		concatFilePath := filepath.Join(tmpDir, "inputs.txt")
		if err := writeConcatList(concatFilePath, segments); err != nil {
			return err
		}

		cmd := exec.CommandContext(ctx, e.Binary, "-y",
			"-f", "concat", "-safe", "0", "-i", concatFilePath,
			"-c", "copy", finalPath,
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("ffmpeg concat error: %w, output: %s", err, tail(string(out)))
		}
		return nil
	}

	cmd := exec.CommandContext(ctx, e.Binary, xfadeArgs(segments, finalPath, opts)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg xfade error: %w, output: %s", err, tail(string(out)))
	}
	return nil
}

// MuxAudio lays audioPath under the video, cut to the shorter stream.
func (e *FFmpegEncoder) MuxAudio(ctx context.Context, videoPath, audioPath, finalPath string) error {
	cmd := exec.CommandContext(ctx, e.Binary, muxArgs(videoPath, audioPath, finalPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg mux error: %w, output: %s", err, tail(string(out)))
	}
	e.log.Debug("audio muxed", zap.String("audio", filepath.Base(audioPath)))
	return nil
}

func segmentArgs(inputW, inputH int, videoPath string, params config.SegmentParams, overlay string) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", inputW, inputH),
		"-i", "-",
	}
	args = append(args, filterArgs(params.Filter, overlay)...)
	args = append(args,
		"-t", fmt.Sprintf("%f", params.Duration),
		"-r", fmt.Sprintf("%d", params.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", params.Encoder,
	)
	args = append(args, qualityArgs(params.Encoder, params.Quality, params.Preset)...)
	return append(args, videoPath)
}

func clipArgs(clipPath, videoPath string, params config.SegmentParams, overlay string) []string {
	args := []string{"-y", "-i", clipPath}
	args = append(args, filterArgs(params.Filter, overlay)...)
	args = append(args,
		"-t", fmt.Sprintf("%f", params.Duration),
		"-r", fmt.Sprintf("%d", params.FPS),
		"-an",
		"-pix_fmt", "yuv420p",
		"-c:v", params.Encoder,
	)
	args = append(args, qualityArgs(params.Encoder, params.Quality, params.Preset)...)
	return append(args, videoPath)
}

// filterArgs applies filter to input 0 and, with an overlay, composites
// input 1 on top.
func filterArgs(filter, overlay string) []string {
	if overlay == "" {
		return []string{"-vf", filter}
	}
	graph := fmt.Sprintf("[0:v]%s[bg];[bg][1:v]overlay=0:0:format=auto[v]", filter)
	return []string{"-i", overlay, "-filter_complex", graph, "-map", "[v]"}
}

func xfadeArgs(segments []Segment, finalPath string, opts ConcatOptions) []string {
	args := []string{"-y"}
	for _, s := range segments {
		args = append(args, "-i", s.Path)
	}

	var graph strings.Builder
	lastOut := "[0:v]"
	offset := 0.0
	for i := 1; i < len(segments); i++ {
		offset += segments[i-1].Duration - opts.FadeDuration
		outName := fmt.Sprintf("[v%d]", i)
		fmt.Fprintf(&graph, "%s[%d:v]xfade=transition=%s:duration=%f:offset=%f%s;",
			lastOut, i, opts.TransitionType, opts.FadeDuration, offset, outName)
		lastOut = outName
	}

	args = append(args, "-filter_complex", strings.TrimSuffix(graph.String(), ";"), "-map", lastOut)
	args = append(args, "-c:v", opts.Encoder, "-pix_fmt", "yuv420p")
	args = append(args, qualityArgs(opts.Encoder, opts.Quality, opts.Preset)...)
	return append(args, finalPath)
}

func muxArgs(videoPath, audioPath, finalPath string) []string {
	return []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v", "-map", "1:a",
		"-c:v", "copy", "-c:a", "aac",
		"-shortest",
		finalPath,
	}
}

func qualityArgs(encoder string, quality int, preset string) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox часто не поддерживает -q:v напрямую на всех версиях. Используем битрейт.
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		if preset == "" {
			preset = "medium"
		}
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", preset}
	}
}

func writeConcatList(path string, segments []Segment) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, s := range segments {
		absPath, err := filepath.Abs(s.Path)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(f, "file '%s'\n", absPath); err != nil {
			return err
		}
	}
	return nil
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

// tail keeps the end of ffmpeg output, where the error is.
func tail(s string) string {
	const max = 800
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
