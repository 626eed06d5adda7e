package routes

import (
	"github.com/JuanPabloTorres/QuickAR-sub005/dto"
	"github.com/JuanPabloTorres/QuickAR-sub005/models"
	"github.com/JuanPabloTorres/QuickAR-sub005/storage"
	"github.com/JuanPabloTorres/QuickAR-sub005/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

// CreateAsset appends an asset to an experience. Position defaults to the
// end of the sequence (insertion order is navigation order).
func CreateAsset(ctx iris.Context) {
	experienceID := ctx.Params().Get("id")

	var experience models.Experience
	if err := storage.DB.First(&experience, "id = ?", experienceID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var input dto.AssetDto
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	asset := dto.MapAssetFromDTO(input)
	asset.ID = 0
	asset.ExperienceID = experience.ID

	var count int64
	storage.DB.Model(&models.Asset{}).Where("experience_id = ?", experience.ID).Count(&count)
	asset.Position = int(count)

	if err := asset.Validate(); err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Invalid asset", err.Error())
		return
	}
	if err := storage.DB.Create(&asset).Error; err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Failed to create asset", err.Error())
		return
	}

	utils.Audit(ctx, "create", "asset", asset.ID, nil, asset)
	ctx.StatusCode(iris.StatusCreated)
	utils.JSONSuccess(ctx, dto.MapAssetToDTO(asset))
}

// UpdateAsset patches an asset; the kind invariant is re-validated.
func UpdateAsset(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var asset models.Asset
	if err := storage.DB.First(&asset, "id = ?", id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	before := asset

	var input struct {
		Name          *string `json:"name"`
		Kind          *string `json:"kind"`
		URL           *string `json:"url"`
		MimeType      *string `json:"mimeType"`
		FileSizeBytes *int64  `json:"fileSizeBytes"`
		Text          *string `json:"text"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Name != nil {
		asset.Name = *input.Name
	}
	if input.Kind != nil {
		asset.Kind = *input.Kind
	}
	if input.URL != nil {
		asset.URL = *input.URL
	}
	if input.MimeType != nil {
		asset.MimeType = *input.MimeType
	}
	if input.FileSizeBytes != nil {
		asset.FileSizeBytes = *input.FileSizeBytes
	}
	if input.Text != nil {
		asset.Text = *input.Text
	}

	if err := asset.Validate(); err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Invalid asset", err.Error())
		return
	}
	if err := storage.DB.Save(&asset).Error; err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Failed to update asset", err.Error())
		return
	}

	utils.Audit(ctx, "update", "asset", asset.ID, before, asset)
	utils.JSONSuccess(ctx, dto.MapAssetToDTO(asset))
}

// DeleteAsset removes an asset and compacts the positions behind it.
func DeleteAsset(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var asset models.Asset
	if err := storage.DB.First(&asset, "id = ?", id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&asset).Error; err != nil {
			return err
		}
		return tx.Model(&models.Asset{}).
			Where("experience_id = ? AND position > ?", asset.ExperienceID, asset.Position).
			UpdateColumn("position", gorm.Expr("position - 1")).Error
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "delete", "asset", asset.ID, asset, nil)
	utils.JSONMessage(ctx, nil, "Asset deleted")
}

// ReorderAssets rewrites the positions of an experience's assets from an
// ordered list of asset IDs.
func ReorderAssets(ctx iris.Context) {
	experienceID := ctx.Params().Get("id")

	var experience models.Experience
	if err := storage.DB.Preload("Assets").First(&experience, "id = ?", experienceID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var input struct {
		AssetIDs []uint `json:"assetIDs" validate:"required"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if len(input.AssetIDs) != len(experience.Assets) {
		utils.JSONError(ctx, iris.StatusBadRequest, "Order must include every asset exactly once")
		return
	}

	owned := make(map[uint]bool, len(experience.Assets))
	for _, a := range experience.Assets {
		owned[a.ID] = true
	}
	for _, id := range input.AssetIDs {
		if !owned[id] {
			utils.JSONError(ctx, iris.StatusBadRequest, "Asset does not belong to this experience")
			return
		}
		delete(owned, id)
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		for position, id := range input.AssetIDs {
			if err := tx.Model(&models.Asset{}).Where("id = ?", id).
				UpdateColumn("position", position).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "reorder", "asset", experience.ID, nil, input.AssetIDs)
	utils.JSONMessage(ctx, nil, "Assets reordered")
}
