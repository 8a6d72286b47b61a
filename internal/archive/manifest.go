package archive

import (
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/ivlev/cuts/internal/asset"
	"github.com/ivlev/cuts/internal/textutil"
)

const (
	ManifestName = "manifest.json"
	assetsDir    = "assets/"
	thumbsDir    = "thumbs/"
)

// assetEntryPattern splits "v0001_name.png" into id and name.
var assetEntryPattern = regexp.MustCompile(`^([A-Za-z]+\d+)_(.+)$`)

type ManifestHeader struct {
	Title    textutil.LooseString `json:"title"`
	Date     textutil.LooseString `json:"date"`
	Version  textutil.LooseString `json:"version"`
	Format   textutil.LooseString `json:"format"`
	FPS      textutil.LooseString `json:"fps"`
	Delivery textutil.LooseString `json:"delivery"`
	Loudness textutil.LooseString `json:"loudness"`
	Platform textutil.LooseString `json:"platform"`
}

// AssetRef points from the manifest at a file under assets/. Name keeps the
// original file name, which the sanitized path may not.
type AssetRef struct {
	AssetID  string `json:"assetId"`
	File     string `json:"file"`
	Kind     string `json:"kind"`
	Filetype string `json:"filetype"`
	Name     string `json:"name,omitempty"`
}

type ManifestRow struct {
	No        int                  `json:"no"`
	Caption   textutil.LooseString `json:"caption"`
	Duration  textutil.LooseString `json:"duration"`
	StartTime string               `json:"startTime"`
	Visual    *AssetRef            `json:"visual"`
}

type Manifest struct {
	Header *ManifestHeader `json:"header"`
	BGM    *AssetRef       `json:"bgm"`
	Rows   *[]ManifestRow  `json:"rows"`
}

func decodeManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if m.Header == nil {
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}
	if m.Rows == nil {
		return nil, fmt.Errorf("%w: missing rows", ErrMalformed)
	}
	return &m, nil
}

func encodeManifest(m *Manifest) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// AssetPath is the archive path of an asset payload.
func AssetPath(id asset.ID, sanitizedName string) string {
	return assetsDir + string(id) + "_" + sanitizedName
}

// ThumbPath is the archive path of a preview image.
func ThumbPath(id asset.ID, ext string) string {
	return thumbsDir + string(id) + "." + ext
}

// ParseAssetEntry splits the base name of an assets/ entry into its id and
// file name.
func ParseAssetEntry(name string) (asset.ID, string, bool) {
	m := assetEntryPattern.FindStringSubmatch(path.Base(name))
	if m == nil {
		return "", "", false
	}
	return asset.ID(m[1]), m[2], true
}

// fileNameOf recovers the original file name, falling back to the one
// stored in the manifest path.
func fileNameOf(ref *AssetRef) string {
	if ref.Name != "" {
		return ref.Name
	}
	base := path.Base(ref.File)
	if ref.File == "" || base == "." || base == "/" {
		return ""
	}
	return strings.TrimPrefix(base, ref.AssetID+"_")
}
