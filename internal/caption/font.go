package caption

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Fonts tried when no font path is configured.
var fontCandidates = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
	`C:\Windows\Fonts\arial.ttf`,
}

// faceSource hands out a fresh face per drawing call; truetype faces
// keep a glyph cache and are not safe for concurrent use.
type faceSource func(size float64) font.Face

func loadFont(path string) (*truetype.Font, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return parsed, nil
}

// resolveFont returns a face source for path, or for the first candidate
// that parses. Without any it falls back to the fixed 7x13 bitmap face.
func resolveFont(path string) (faceSource, string, error) {
	if path != "" {
		f, err := loadFont(path)
		if err != nil {
			return nil, "", err
		}
		return truetypeFaces(f), path, nil
	}
	for _, c := range fontCandidates {
		if _, err := os.Stat(c); err != nil {
			continue
		}
		if f, err := loadFont(c); err == nil {
			return truetypeFaces(f), c, nil
		}
	}
	return func(float64) font.Face { return basicfont.Face7x13 }, "basicfont", nil
}

func truetypeFaces(f *truetype.Font) faceSource {
	return func(size float64) font.Face {
		return truetype.NewFace(f, &truetype.Options{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingNone,
		})
	}
}
