// Package dto mirrors the wire shapes of the original .NET management API
// so existing admin clients keep working against /api/v1. Kinds travel as an
// int enum with nullable payload fields; models use string kinds.
package dto

import "time"

// AssetType enum as the legacy backend serialized it.
const (
	AssetTypeText       = 0
	AssetTypeImage      = 1
	AssetTypeVideo      = 2
	AssetTypeModel3D    = 3
	AssetTypeWebContent = 4
)

type AssetDto struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	AssetType     int     `json:"assetType"`
	Url           *string `json:"url"`
	MimeType      *string `json:"mimeType"`
	FileSizeBytes *int64  `json:"fileSizeBytes"`
	TextContent   *string `json:"textContent"`
	Order         int     `json:"order"`
}

type ExperienceDto struct {
	ID          uint       `json:"id"`
	PublicID    string     `json:"publicId"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description"`
	IsActive    bool       `json:"isActive"`
	Assets      []AssetDto `json:"assets"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
