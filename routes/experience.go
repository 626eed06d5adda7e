package routes

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/JuanPabloTorres/QuickAR-sub005/dto"
	"github.com/JuanPabloTorres/QuickAR-sub005/models"
	"github.com/JuanPabloTorres/QuickAR-sub005/storage"
	"github.com/JuanPabloTorres/QuickAR-sub005/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// findExperienceByRef resolves a public identifier: UUID lookup first when
// it matches the UUID pattern, else slug lookup with numeric-ID fallback.
func findExperienceByRef(ref string) (*models.Experience, error) {
	var exp models.Experience
	q := storage.DB.Preload("Assets", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	})

	if uuidPattern.MatchString(ref) {
		err := q.Where("public_id = ?", ref).First(&exp).Error
		if err == nil {
			return &exp, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, nil
	}

	err := q.Where("slug = ?", ref).First(&exp).Error
	if err == nil {
		return &exp, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// slug miss: legacy QR codes encode the numeric ID. Only query the
	// integer column when the ref actually is one, otherwise postgres
	// rejects the cast and the miss would surface as a 500.
	if id, ok := parseNumericRef(ref); ok {
		err = q.Where("id = ?", id).First(&exp).Error
		if err == nil {
			return &exp, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

func parseNumericRef(ref string) (uint, bool) {
	id, err := strconv.ParseUint(ref, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// GetAllExperiences lists experiences, newest first.
func GetAllExperiences(ctx iris.Context) {
	var experiences []models.Experience
	if err := storage.DB.Preload("Assets", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).Order("created_at DESC").Find(&experiences).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	out := make([]dto.ExperienceDto, 0, len(experiences))
	for _, e := range experiences {
		out = append(out, dto.MapExperienceToDTO(e))
	}
	utils.JSONSuccess(ctx, out)
}

// GetExperience returns one experience by numeric ID, public UUID or slug.
func GetExperience(ctx iris.Context) {
	exp, err := findExperienceByRef(ctx.Params().Get("id"))
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if exp == nil {
		utils.CreateNotFound(ctx)
		return
	}
	utils.JSONSuccess(ctx, dto.MapExperienceToDTO(*exp))
}

// GetExperienceBySlug keeps the legacy slug route alive.
func GetExperienceBySlug(ctx iris.Context) {
	slug := ctx.Params().Get("slug")
	var exp models.Experience
	err := storage.DB.Preload("Assets", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).Where("slug = ?", slug).First(&exp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.CreateNotFound(ctx)
		return
	}
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.JSONSuccess(ctx, dto.MapExperienceToDTO(exp))
}

// CreateExperience creates an experience; slug derives from the title when
// the input leaves it empty.
func CreateExperience(ctx iris.Context) {
	var input struct {
		Title       string `json:"title" validate:"required"`
		Slug        string `json:"slug"`
		Description string `json:"description"`
		IsActive    *bool  `json:"isActive"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	experience := models.Experience{
		Title:       input.Title,
		Slug:        models.Slugify(input.Slug),
		Description: input.Description,
		IsActive:    true,
	}
	if input.IsActive != nil {
		experience.IsActive = *input.IsActive
	}

	if err := storage.DB.Create(&experience).Error; err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Failed to create experience", err.Error())
		return
	}

	utils.Audit(ctx, "create", "experience", experience.ID, nil, experience)
	ctx.StatusCode(iris.StatusCreated)
	utils.JSONSuccess(ctx, dto.MapExperienceToDTO(experience))
}

// UpdateExperience patches title/slug/description/isActive.
func UpdateExperience(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var experience models.Experience
	if err := storage.DB.Preload("Assets").First(&experience, "id = ?", id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	before := experience

	var input struct {
		Title       *string `json:"title"`
		Slug        *string `json:"slug"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"isActive"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Title != nil {
		experience.Title = *input.Title
	}
	if input.Slug != nil && *input.Slug != "" {
		experience.Slug = models.Slugify(*input.Slug)
	}
	if input.Description != nil {
		experience.Description = *input.Description
	}
	if input.IsActive != nil {
		experience.IsActive = *input.IsActive
	}

	if err := storage.DB.Save(&experience).Error; err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Failed to update experience", err.Error())
		return
	}

	utils.Audit(ctx, "update", "experience", experience.ID, before, experience)
	utils.JSONSuccess(ctx, dto.MapExperienceToDTO(experience))
}

// ToggleExperienceActive flips the published state.
func ToggleExperienceActive(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var experience models.Experience
	if err := storage.DB.First(&experience, "id = ?", id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	before := experience

	experience.IsActive = !experience.IsActive
	if err := storage.DB.Save(&experience).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "toggle_active", "experience", experience.ID, before, experience)
	utils.JSONSuccess(ctx, dto.MapExperienceToDTO(experience))
}

// DeleteExperience removes the experience and its assets.
func DeleteExperience(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var experience models.Experience
	if err := storage.DB.First(&experience, "id = ?", id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if err := storage.DB.Select("Assets").Delete(&experience).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "delete", "experience", experience.ID, experience, nil)
	utils.JSONMessage(ctx, nil, "Experience deleted")
}
