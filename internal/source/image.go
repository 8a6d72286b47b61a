package source

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/webp"

	"github.com/ivlev/cuts/internal/media"
	"github.com/ivlev/cuts/internal/system"
)

// ImageSource serves one image file or every image in a folder, sorted
// by name.
type ImageSource struct {
	paths []string
}

func NewImageSource(path string) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		paths, err = system.ListMedia(path, media.KindImage)
		if err != nil {
			return nil, err
		}
	} else {
		paths = []string{path}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no images found in %s", path)
	}

	return &ImageSource{paths: paths}, nil
}

func (s *ImageSource) PageCount() int {
	return len(s.paths)
}

func (s *ImageSource) GetPageDimensions(index int) (float64, float64, error) {
	f, err := os.Open(s.paths[index])
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	img, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return float64(img.Width), float64(img.Height), nil
}

func (s *ImageSource) RenderPage(index int, dpi int) (image.Image, error) {
	_, img, err := s.PageFile(index, dpi)
	return img, err
}

// PageFile keeps the original bytes; the decoded image is only used for
// the thumbnail.
func (s *ImageSource) PageFile(index int, _ int) (media.File, image.Image, error) {
	path := s.paths[index]
	data, err := os.ReadFile(path)
	if err != nil {
		return media.File{}, nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return media.File{}, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	name := filepath.Base(path)
	return media.File{Name: name, Type: media.TypeByExtension(name), Data: data}, img, nil
}

func (s *ImageSource) Close() error {
	return nil
}
