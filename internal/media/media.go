// Package media classifies user supplied files into the kinds a storyboard
// slot can hold.
package media

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type Kind int

const (
	KindNone Kind = iota
	KindImage
	KindVideo
	KindAudio
)

// Tag is the persisted form of the kind. KindNone persists as "".
func (k Kind) Tag() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	default:
		return ""
	}
}

func (k Kind) String() string {
	if k == KindNone {
		return "none"
	}
	return k.Tag()
}

// ParseKind accepts the persisted tags plus "none".
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return KindNone, true
	case "image":
		return KindImage, true
	case "video":
		return KindVideo, true
	case "audio":
		return KindAudio, true
	}
	return KindNone, false
}

// KindOf maps a media type to its kind by major type.
func KindOf(mediaType string) Kind {
	major, _, _ := strings.Cut(strings.ToLower(mediaType), "/")
	switch major {
	case "image":
		return KindImage
	case "video":
		return KindVideo
	case "audio":
		return KindAudio
	}
	return KindNone
}

// File is media as supplied by the user: a name, an optional declared type
// and the raw bytes.
type File struct {
	Name string
	Type string
	Data []byte
}

// Preview is a derived still image shown in place of the media.
type Preview struct {
	MediaType string
	Data      []byte
}

var extensionTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"m4v":  "video/x-m4v",
	"webm": "video/webm",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"m4a":  "audio/mp4",
	"aac":  "audio/aac",
	"ogg":  "audio/ogg",
}

// TypeByExtension looks up the media type for name's extension.
func TypeByExtension(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return extensionTypes[ext]
}

// Extension returns the preferred file extension for a preview media type.
func Extension(mediaType string) string {
	switch strings.ToLower(mediaType) {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "jpg"
	}
}

// ResolveType picks the media type of f: the declared type first, then the
// extension table, then content sniffing.
func ResolveType(f File) string {
	if t := strings.TrimSpace(f.Type); t != "" {
		return t
	}
	if t := TypeByExtension(f.Name); t != "" {
		return t
	}
	if len(f.Data) == 0 {
		return ""
	}
	sniffed := mimetype.Detect(f.Data).String()
	t, _, _ := strings.Cut(sniffed, ";")
	return t
}

// Classify returns the kind and media type of f.
func Classify(f File) (Kind, string) {
	t := ResolveType(f)
	return KindOf(t), t
}
