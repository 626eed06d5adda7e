package dto

import (
	"github.com/JuanPabloTorres/QuickAR-sub005/models"

	"github.com/google/uuid"
)

// Kind-label bijection between the legacy enum and model kinds. "text" on
// the wire is "message" in the model; everything else keeps its label.
var kindByType = map[int]string{
	AssetTypeText:       models.AssetKindMessage,
	AssetTypeImage:      models.AssetKindImage,
	AssetTypeVideo:      models.AssetKindVideo,
	AssetTypeModel3D:    models.AssetKindModel3D,
	AssetTypeWebContent: models.AssetKindWebContent,
}

var typeByKind = map[string]int{
	models.AssetKindMessage:    AssetTypeText,
	models.AssetKindImage:      AssetTypeImage,
	models.AssetKindVideo:      AssetTypeVideo,
	models.AssetKindModel3D:    AssetTypeModel3D,
	models.AssetKindWebContent: AssetTypeWebContent,
}

func MapAssetFromDTO(d AssetDto) models.Asset {
	a := models.Asset{
		Name:     d.Name,
		Kind:     kindByType[d.AssetType],
		Position: d.Order,
	}
	a.ID = d.ID
	if d.Url != nil {
		a.URL = *d.Url
	}
	if d.MimeType != nil {
		a.MimeType = *d.MimeType
	}
	if d.FileSizeBytes != nil {
		a.FileSizeBytes = *d.FileSizeBytes
	}
	if d.TextContent != nil {
		a.Text = *d.TextContent
	}
	return a
}

func MapAssetToDTO(a models.Asset) AssetDto {
	d := AssetDto{
		ID:        a.ID,
		Name:      a.Name,
		AssetType: typeByKind[a.Kind],
		Order:     a.Position,
	}
	if a.URL != "" {
		d.Url = &a.URL
	}
	if a.MimeType != "" {
		d.MimeType = &a.MimeType
	}
	if a.FileSizeBytes != 0 {
		d.FileSizeBytes = &a.FileSizeBytes
	}
	if a.Text != "" {
		d.TextContent = &a.Text
	}
	return d
}

func MapExperienceFromDTO(d ExperienceDto) models.Experience {
	e := models.Experience{
		Title:    d.Title,
		Slug:     d.Slug,
		IsActive: d.IsActive,
	}
	e.ID = d.ID
	e.CreatedAt = d.CreatedAt
	e.UpdatedAt = d.UpdatedAt
	if d.PublicID != "" {
		if id, err := uuid.Parse(d.PublicID); err == nil {
			e.PublicID = id
		}
	}
	if d.Description != nil {
		e.Description = *d.Description
	}
	e.Assets = make([]models.Asset, 0, len(d.Assets))
	for _, a := range d.Assets {
		asset := MapAssetFromDTO(a)
		asset.ExperienceID = e.ID
		e.Assets = append(e.Assets, asset)
	}
	return e
}

func MapExperienceToDTO(e models.Experience) ExperienceDto {
	d := ExperienceDto{
		ID:        e.ID,
		PublicID:  e.PublicID.String(),
		Title:     e.Title,
		Slug:      e.Slug,
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
		Assets:    make([]AssetDto, 0, len(e.Assets)),
	}
	if e.Description != "" {
		d.Description = &e.Description
	}
	for _, a := range e.Assets {
		d.Assets = append(d.Assets, MapAssetToDTO(a))
	}
	return d
}
