package routes

import (
	"github.com/JuanPabloTorres/QuickAR-sub005/models"
	"github.com/JuanPabloTorres/QuickAR-sub005/storage"
	"github.com/JuanPabloTorres/QuickAR-sub005/utils"

	"github.com/kataras/iris/v12"
	qrcode "github.com/skip2/go-qrcode"
)

// ExperienceQR renders the PNG QR code pointing at the public viewer URL
// for an experience. Size is in pixels, clamped to something printable.
func ExperienceQR(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var experience models.Experience
	if err := storage.DB.First(&experience, "id = ?", id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	size := ctx.URLParamIntDefault("size", 512)
	if size < 128 {
		size = 128
	}
	if size > 2048 {
		size = 2048
	}

	target := utils.BaseURL(ctx) + "/x/" + experience.Slug
	png, err := qrcode.Encode(target, qrcode.Medium, size)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.ContentType("image/png")
	ctx.Header("Cache-Control", "public, max-age=3600")
	ctx.Write(png)
}
