package routes

import (
	"errors"

	"github.com/JuanPabloTorres/QuickAR-sub005/models"
	"github.com/JuanPabloTorres/QuickAR-sub005/storage"
	"github.com/JuanPabloTorres/QuickAR-sub005/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Login exchanges admin credentials for a token pair.
func Login(ctx iris.Context) {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	err := storage.DB.Where("email = ?", input.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.JSONError(ctx, iris.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		utils.JSONError(ctx, iris.StatusUnauthorized, "Invalid credentials")
		return
	}

	tokenPair, err := utils.CreateTokenPair(user.ID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONSuccess(ctx, iris.Map{
		"user":   user,
		"tokens": tokenPair,
	})
}
