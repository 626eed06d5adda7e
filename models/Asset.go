package models

import (
	"errors"

	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// Asset kinds. "message" carries inline text; every other kind carries a URL.
const (
	AssetKindMessage    = "message"
	AssetKindImage      = "image"
	AssetKindVideo      = "video"
	AssetKindModel3D    = "model3d"
	AssetKindWebContent = "webcontent"
)

var AssetKinds = []string{
	AssetKindMessage,
	AssetKindImage,
	AssetKindVideo,
	AssetKindModel3D,
	AssetKindWebContent,
}

var (
	ErrUnknownAssetKind   = errors.New("unknown asset kind")
	ErrMessageNeedsText   = errors.New("message asset requires non-empty text and no url")
	ErrMediaNeedsURL      = errors.New("media asset requires url and no text")
	ErrAssetWithoutParent = errors.New("asset requires a parent experience")
)

type Asset struct {
	gorm.Model
	ExperienceID uint `json:"experienceID" gorm:"not null;index"`

	Name string `json:"name" gorm:"not null"`
	Kind string `json:"kind" gorm:"type:varchar(20);not null;index"`

	URL           string `json:"url"`
	MimeType      string `json:"mimeType"`
	FileSizeBytes int64  `json:"fileSizeBytes"`
	Text          string `json:"text" gorm:"type:text"`

	// Navigation order within the parent experience.
	Position int `json:"position" gorm:"not null;default:0;index"`
}

// Validate enforces the kind invariant: message assets carry text and no
// URL, all other kinds carry a URL (or a pending upload ref) and no text.
func (a *Asset) Validate() error {
	if !slices.Contains(AssetKinds, a.Kind) {
		return ErrUnknownAssetKind
	}
	if a.Kind == AssetKindMessage {
		if a.Text == "" || a.URL != "" {
			return ErrMessageNeedsText
		}
		return nil
	}
	if a.URL == "" || a.Text != "" {
		return ErrMediaNeedsURL
	}
	return nil
}

func (a *Asset) BeforeSave(tx *gorm.DB) error {
	return a.Validate()
}
