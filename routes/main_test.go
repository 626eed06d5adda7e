package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/JuanPabloTorres/QuickAR-sub005/models"
	"github.com/JuanPabloTorres/QuickAR-sub005/storage"
	"github.com/JuanPabloTorres/QuickAR-sub005/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB swaps storage.DB for an in-memory sqlite database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Experience{},
		&models.Asset{},
		&models.AnalyticsEvent{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	storage.DB = db
	return db
}

// buildTestApp wires the public surface without JWT so handlers can be
// exercised directly.
func buildTestApp(t *testing.T) *iris.Application {
	t.Helper()
	openTestDB(t)

	app := iris.New()
	app.RegisterView(iris.HTML("../views", ".html"))

	experiences := app.Party("/api/experiences")
	{
		experiences.Get("/", GetAllExperiences)
		experiences.Get("/{id}", GetExperience)
		experiences.Get("/slug/{slug}", GetExperienceBySlug)
		experiences.Get("/{id}/qr", ExperienceQR)
		experiences.Post("/", CreateExperience)
		experiences.Put("/{id}", UpdateExperience)
		experiences.Patch("/{id}/active", ToggleExperienceActive)
		experiences.Delete("/{id}", DeleteExperience)
		experiences.Post("/{id}/assets", CreateAsset)
		experiences.Put("/{id}/assets/order", ReorderAssets)
	}

	assets := app.Party("/api/assets")
	{
		assets.Put("/{id}", UpdateAsset)
		assets.Delete("/{id}", DeleteAsset)
	}

	app.Post("/api/upload", UploadFile)
	app.Post("/api/analytics/events", TrackEvent)

	sessions := app.Party("/api/sessions")
	{
		sessions.Post("/", CreateSession)
		sessions.Post("/{id}/capabilities", ReportCapabilities)
		sessions.Post("/{id}/start", StartAR)
		sessions.Post("/{id}/exit", ExitAR)
		sessions.Post("/{id}/navigate", Navigate)
		sessions.Delete("/{id}", DeleteSession)
	}

	app.Get("/x/{ref}", ViewerPage)
	app.Get("/ar/{ref}", ViewerPage)

	if err := app.Build(); err != nil {
		t.Fatalf("build app: %v", err)
	}
	return app
}

func doJSON(app *iris.Application, method, path string, body interface{}) (*httptest.ResponseRecorder, utils.Envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Host = "localhost:8080"
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	var env utils.Envelope
	json.Unmarshal(resp.Body.Bytes(), &env)
	return resp, env
}

func createTestExperience(t *testing.T, title string, active bool, assets ...models.Asset) *models.Experience {
	t.Helper()
	exp := models.Experience{Title: title, IsActive: active, Assets: assets}
	if err := storage.DB.Create(&exp).Error; err != nil {
		t.Fatalf("create experience: %v", err)
	}
	return &exp
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// waitForEvents polls for fire-and-forget analytics rows.
func waitForEvents(n int64) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var count int64
		storage.DB.Model(&models.AnalyticsEvent{}).Count(&count)
		if count >= n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func storageFirstEvent(ev *models.AnalyticsEvent) error {
	return storage.DB.Order("id ASC").First(ev).Error
}

func getPage(app *iris.Application, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Host = "localhost:8080"
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}
