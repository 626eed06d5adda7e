package main

import (
	"log"
	"os"

	"github.com/JuanPabloTorres/QuickAR-sub005/routes"
	"github.com/JuanPabloTorres/QuickAR-sub005/storage"
	"github.com/JuanPabloTorres/QuickAR-sub005/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	godotenv.Load()
	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS for the admin dashboard (http://localhost:3000) and LAN phones
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)
	app.RegisterView(iris.HTML("./views", ".html"))

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	user := app.Party("/api/user")
	{
		user.Post("/login", routes.Login)
		user.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
	}

	experiences := app.Party("/api/experiences")
	{
		experiences.Get("/", routes.GetAllExperiences)
		experiences.Get("/{id}", routes.GetExperience)
		experiences.Get("/slug/{slug}", routes.GetExperienceBySlug)
		experiences.Get("/{id}/qr", routes.ExperienceQR)

		experiences.Post("/", accessTokenVerifierMiddleware, routes.CreateExperience)
		experiences.Put("/{id}", accessTokenVerifierMiddleware, routes.UpdateExperience)
		experiences.Patch("/{id}/active", accessTokenVerifierMiddleware, routes.ToggleExperienceActive)
		experiences.Delete("/{id}", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.DeleteExperience)

		experiences.Post("/{id}/assets", accessTokenVerifierMiddleware, routes.CreateAsset)
		experiences.Put("/{id}/assets/order", accessTokenVerifierMiddleware, routes.ReorderAssets)
	}

	assets := app.Party("/api/assets")
	{
		assets.Put("/{id}", accessTokenVerifierMiddleware, routes.UpdateAsset)
		assets.Delete("/{id}", accessTokenVerifierMiddleware, routes.DeleteAsset)
	}

	upload := app.Party("/api/upload", accessTokenVerifierMiddleware)
	{
		upload.Post("/", routes.UploadFile)
		upload.Post("/image", routes.UploadImageBase64)
	}

	analytics := app.Party("/api/analytics")
	{
		analytics.Post("/events", routes.TrackEvent)
		analytics.Get("/stats", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.AnalyticsStats)
		analytics.Get("/experiences/{id}", accessTokenVerifierMiddleware, routes.ExperienceStats)
	}

	// Viewer session API, anonymous: the public shell drives it.
	sessions := app.Party("/api/sessions")
	{
		sessions.Post("/", routes.CreateSession)
		sessions.Post("/{id}/capabilities", routes.ReportCapabilities)
		sessions.Post("/{id}/start", routes.StartAR)
		sessions.Post("/{id}/exit", routes.ExitAR)
		sessions.Post("/{id}/navigate", routes.Navigate)
		sessions.Delete("/{id}", routes.DeleteSession)
	}

	// Public AR viewer pages a QR code resolves to.
	app.Get("/x/{ref}", routes.ViewerPage)
	app.Get("/ar/{ref}", routes.ViewerPage)

	app.HandleDir("/uploads", iris.Dir(storage.UploadDir()))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("QuickAR server listening on :" + port)
	app.Listen(":" + port)
}
