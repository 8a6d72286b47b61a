package storyboard

import (
	"github.com/ivlev/cuts/internal/asset"
	"github.com/ivlev/cuts/internal/media"
)

// Binding describes the media held by a cut or the BGM slot.
//
// AssetID is the live reference: when set, the registry holds the payload.
// RecordedID is an id read from a document that carried no media; it is
// kept for display and re-export only.
type Binding struct {
	Kind       media.Kind
	Filename   string
	MediaType  string
	AssetName  string
	AssetID    asset.ID
	RecordedID asset.ID
	Preview    *media.Preview
}

// Empty reports whether the slot holds nothing at all.
func (b Binding) Empty() bool {
	return b.Kind == media.KindNone && b.Filename == "" && b.MediaType == "" &&
		b.AssetID == "" && b.RecordedID == ""
}

// Ref is the id that gets persisted: the live id when there is one.
func (b Binding) Ref() asset.ID {
	if b.AssetID != "" {
		return b.AssetID
	}
	return b.RecordedID
}

// Live reports whether the binding owns a registered asset.
func (b Binding) Live() bool {
	return b.AssetID != ""
}

// DisplayName is the label shown when no preview is available.
func (b Binding) DisplayName() string {
	if b.Filename != "" {
		return b.Filename
	}
	return b.AssetName
}
