package effects

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/ivlev/cuts/internal/config"
)

// Effect builds the ffmpeg filter chain applied to one still frame fed on
// stdin. The chain must produce Duration seconds of video.
type Effect interface {
	GenerateFilter(params config.SegmentParams) string
}

// New picks the effect for a zoom mode. "static" and "" hold the frame.
func New(zoomMode string) Effect {
	switch strings.ToLower(strings.TrimSpace(zoomMode)) {
	case "", "static", "none":
		return &StaticEffect{}
	default:
		return &ZoomEffect{}
	}
}

// StaticEffect repeats the single input frame.
type StaticEffect struct{}

func (e *StaticEffect) GenerateFilter(p config.SegmentParams) string {
	return fmt.Sprintf("loop=loop=-1:size=1:start=0,setpts=N/(%d*TB),scale=%d:%d,setsar=1", p.FPS, p.Width, p.Height)
}

// ZoomEffect slowly pushes in towards an anchor and eases back to 1:1
// before the transition starts.
type ZoomEffect struct {
	Seed int64
}

func (e *ZoomEffect) GenerateFilter(p config.SegmentParams) string {
	mode := strings.ToLower(p.ZoomMode)
	if mode == "random" || mode == "zoom" {
		modes := []string{"center", "top-left", "top-right", "bottom-left", "bottom-right"}
		r := rand.New(rand.NewSource(e.Seed + int64(p.CutIndex*99)))
		mode = modes[r.Intn(len(modes))]
	}

	var zoomX, zoomY string
	switch mode {
	case "top-left":
		zoomX, zoomY = "0", "0"
	case "top-right":
		zoomX, zoomY = "iw-(iw/zoom)", "0"
	case "bottom-left":
		zoomX, zoomY = "0", "ih-(ih/zoom)"
	case "bottom-right":
		zoomX, zoomY = "iw-(iw/zoom)", "ih-(ih/zoom)"
	default: // center
		zoomX, zoomY = "iw/2-(iw/zoom/2)", "ih/2-(ih/zoom/2)"
	}

	fFPS := float64(p.FPS)
	fTotal := p.Duration * fFPS
	fFade := p.FadeDuration * fFPS
	fActive := fTotal - fFade
	if fActive <= 0 {
		fActive = fTotal
	}

	zSpeed := p.ZoomSpeed
	if zSpeed <= 0 {
		zSpeed = 0.001
	}

	// peak at half the active frames unless the speed gets there sooner
	onPeak := 0.5 / zSpeed
	if onPeak > fActive/2 {
		onPeak = fActive / 2
	}
	actualPeak := 1.0 + zSpeed*onPeak
	if actualPeak > 1.5 {
		actualPeak = 1.5
	}
	outroStart := fActive - onPeak
	if outroStart < onPeak {
		outroStart = onPeak
	}

	zFormula := fmt.Sprintf("if(lte(on,%f), 1.0+(%f*on), if(lte(on,%f), %f, if(lte(on,%f), %f-(%f-1.0)*(on-%f)/(%f-%f), 1.0)))",
		onPeak, zSpeed, outroStart, actualPeak, fActive, actualPeak, actualPeak, outroStart, fActive, outroStart)

	aspectFilter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		p.Width*2, p.Height*2, p.Width*2, p.Height*2,
	)

	zoomFilter := fmt.Sprintf(
		"zoompan=z='%s':d=%d:s=%dx%d:x='%s':y='%s':fps=%d",
		zFormula, int(fTotal), p.Width, p.Height, zoomX, zoomY, p.FPS,
	)

	return fmt.Sprintf("%s,%s,scale=%d:%d,setsar=1", aspectFilter, zoomFilter, p.Width, p.Height)
}

// ClipFilter fits a video cut into the output frame on black and holds its
// last frame when the clip is shorter than the cut.
func ClipFilter(p config.SegmentParams) string {
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black,setsar=1,fps=%d,tpad=stop_mode=clone:stop_duration=%f",
		p.Width, p.Height, p.Width, p.Height, p.FPS, p.Duration,
	)
}
