package routes

import (
	"fmt"

	"github.com/JuanPabloTorres/QuickAR-sub005/storage"
	"github.com/JuanPabloTorres/QuickAR-sub005/utils"

	"github.com/kataras/iris/v12"
)

// UploadFile handles a multipart asset upload. Category selects the
// destination and the allow-list: models, images or videos. Returns
// {url, mimeType, sizeBytes} for the admin form to attach to an asset.
func UploadFile(ctx iris.Context) {
	category := ctx.FormValue("category")
	if !storage.ValidUploadCategory(category) {
		utils.JSONError(ctx, iris.StatusBadRequest, fmt.Sprintf("Unknown upload category %q", category))
		return
	}

	file, header, err := ctx.FormFile("file")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	result, err := storage.SaveUploadedFile(file, header, category)
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Upload rejected", err.Error())
		return
	}

	utils.JSONSuccess(ctx, result)
}

type uploadInput struct {
	Data     string `json:"data"`      // base64 data URL or raw base64
	PublicID string `json:"public_id"` // optional
}

// UploadImageBase64 keeps the legacy base64 Cloudinary path for admin
// clients that have not moved to multipart yet.
func UploadImageBase64(ctx iris.Context) {
	var in uploadInput
	if err := ctx.ReadJSON(&in); err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Invalid payload")
		return
	}
	res := storage.UploadBase64Image(in.Data, in.PublicID)
	url := res["url"]
	if url == "" {
		utils.JSONError(ctx, iris.StatusBadRequest, "Upload failed")
		return
	}
	utils.JSONSuccess(ctx, iris.Map{"url": url})
}
