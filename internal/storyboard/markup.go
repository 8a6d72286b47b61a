package storyboard

import (
	"encoding/base64"
	"html"
	"strings"

	"github.com/ivlev/cuts/internal/media"
)

func badge(k media.Kind) string {
	switch k {
	case media.KindImage:
		return "IMG"
	case media.KindVideo:
		return "VID"
	case media.KindAudio:
		return "BGM"
	default:
		return ""
	}
}

// RenderMarkup renders the visual cell for b: a kind badge, the preview as
// a data URL when present, and the file name label.
func RenderMarkup(b Binding) string {
	if b.Empty() {
		return ""
	}
	name := html.EscapeString(b.DisplayName())

	var sb strings.Builder
	if label := badge(b.Kind); label != "" {
		sb.WriteString(`<div class="kind-badge">` + label + `</div>`)
	}
	if b.Preview != nil && len(b.Preview.Data) > 0 {
		mt := b.Preview.MediaType
		if mt == "" {
			mt = "image/jpeg"
		}
		sb.WriteString(`<img src="data:` + html.EscapeString(mt) + `;base64,`)
		sb.WriteString(base64.StdEncoding.EncodeToString(b.Preview.Data))
		sb.WriteString(`" alt="` + name + `">`)
	}
	sb.WriteString(`<div class="file-name" title="` + name + `">` + name + `</div>`)
	return sb.String()
}
