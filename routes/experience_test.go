package routes

import (
	"net/http"
	"testing"

	"github.com/JuanPabloTorres/QuickAR-sub005/models"
	"github.com/JuanPabloTorres/QuickAR-sub005/storage"
)

func TestCreateExperienceDerivesSlug(t *testing.T) {
	app := buildTestApp(t)

	resp, env := doJSON(app, http.MethodPost, "/api/experiences", map[string]interface{}{
		"title":       "Exposición de Arte",
		"description": "Recorrido AR por la galería",
	})
	if resp.Code != http.StatusCreated || !env.Success {
		t.Fatalf("create failed: %d %+v", resp.Code, env)
	}
	data := env.Data.(map[string]interface{})
	if data["slug"] != "exposicion-de-arte" {
		t.Fatalf("slug not derived from title: %v", data["slug"])
	}
	if data["isActive"] != true {
		t.Fatal("experiences default to active")
	}
	if data["publicId"] == "" {
		t.Fatal("missing public UUID")
	}
}

func TestCreateExperienceNormalizesCallerSlug(t *testing.T) {
	app := buildTestApp(t)

	resp, env := doJSON(app, http.MethodPost, "/api/experiences", map[string]interface{}{
		"title": "Sala VIP",
		"slug":  "Sala VIP / 2024",
	})
	if resp.Code != http.StatusCreated || !env.Success {
		t.Fatalf("create failed: %d %+v", resp.Code, env)
	}
	if slug := env.Data.(map[string]interface{})["slug"]; slug != "sala-vip-2024" {
		t.Fatalf("caller slug not normalized: %v", slug)
	}
}

func TestParseNumericRef(t *testing.T) {
	// gates the integer-column fallback in findExperienceByRef: a
	// non-numeric ref must never reach the id query, postgres rejects
	// the cast with a query error instead of a record miss
	for _, ref := range []string{"no-such-experience", "exposicion-de-arte", "12abc", "-3", "1e9", ""} {
		if _, ok := parseNumericRef(ref); ok {
			t.Fatalf("ref %q must not parse as a numeric id", ref)
		}
	}
	id, ok := parseNumericRef("42")
	if !ok || id != 42 {
		t.Fatalf("numeric ref: got (%d, %v)", id, ok)
	}
}

func TestToggleExperienceActive(t *testing.T) {
	app := buildTestApp(t)
	exp := createTestExperience(t, "Interruptor", true)

	_, env := doJSON(app, http.MethodPatch, "/api/experiences/"+itoa(exp.ID)+"/active", nil)
	if env.Data.(map[string]interface{})["isActive"] != false {
		t.Fatal("toggle did not deactivate")
	}
	_, env = doJSON(app, http.MethodPatch, "/api/experiences/"+itoa(exp.ID)+"/active", nil)
	if env.Data.(map[string]interface{})["isActive"] != true {
		t.Fatal("toggle did not reactivate")
	}
}

func TestCreateAssetAppendsPosition(t *testing.T) {
	app := buildTestApp(t)
	exp := createTestExperience(t, "Orden", true)

	for i, name := range []string{"uno", "dos", "tres"} {
		_, env := doJSON(app, http.MethodPost, "/api/experiences/"+itoa(exp.ID)+"/assets", map[string]interface{}{
			"name":      name,
			"assetType": 1,
			"url":       "/uploads/images/" + name + ".jpg",
		})
		if !env.Success {
			t.Fatalf("asset create failed: %+v", env)
		}
		if order := env.Data.(map[string]interface{})["order"].(float64); int(order) != i {
			t.Fatalf("asset %q: position %v, want %d", name, order, i)
		}
	}
}

func TestCreateAssetEnforcesKindInvariant(t *testing.T) {
	app := buildTestApp(t)
	exp := createTestExperience(t, "Inválida", true)

	// message without text
	resp, _ := doJSON(app, http.MethodPost, "/api/experiences/"+itoa(exp.ID)+"/assets", map[string]interface{}{
		"name":      "vacío",
		"assetType": 0,
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for message without text, got %d", resp.Code)
	}

	// image without url
	resp, _ = doJSON(app, http.MethodPost, "/api/experiences/"+itoa(exp.ID)+"/assets", map[string]interface{}{
		"name":      "sincontenido",
		"assetType": 1,
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for image without url, got %d", resp.Code)
	}
}

func TestReorderAssets(t *testing.T) {
	app := buildTestApp(t)
	exp := createTestExperience(t, "Reordenar", true,
		models.Asset{Name: "a", Kind: models.AssetKindImage, URL: "/uploads/images/a.jpg", Position: 0},
		models.Asset{Name: "b", Kind: models.AssetKindImage, URL: "/uploads/images/b.jpg", Position: 1},
	)

	ids := []uint{exp.Assets[1].ID, exp.Assets[0].ID}
	_, env := doJSON(app, http.MethodPut, "/api/experiences/"+itoa(exp.ID)+"/assets/order", map[string]interface{}{
		"assetIDs": ids,
	})
	if !env.Success {
		t.Fatalf("reorder failed: %+v", env)
	}

	var first models.Asset
	storage.DB.Where("experience_id = ? AND position = 0", exp.ID).First(&first)
	if first.Name != "b" {
		t.Fatalf("expected b first after reorder, got %q", first.Name)
	}

	// partial orders are rejected
	resp, _ := doJSON(app, http.MethodPut, "/api/experiences/"+itoa(exp.ID)+"/assets/order", map[string]interface{}{
		"assetIDs": []uint{exp.Assets[0].ID},
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("partial reorder must 400, got %d", resp.Code)
	}
}

func TestTrackEventAlwaysAccepted(t *testing.T) {
	app := buildTestApp(t)

	resp, _ := doJSON(app, http.MethodPost, "/api/analytics/events", map[string]interface{}{
		"type":     "scan",
		"metadata": map[string]interface{}{"ref": "demo"},
	})
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}

	// malformed payloads are acknowledged too, never an error for the viewer
	resp, _ = doJSON(app, http.MethodPost, "/api/analytics/events", map[string]interface{}{})
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202 for malformed event, got %d", resp.Code)
	}
}

func TestExperienceQRPNG(t *testing.T) {
	app := buildTestApp(t)
	exp := createTestExperience(t, "Código", true)

	resp := getPage(app, "/api/experiences/"+itoa(exp.ID)+"/qr")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
	// PNG magic bytes
	body := resp.Body.Bytes()
	if len(body) < 8 || body[1] != 'P' || body[2] != 'N' || body[3] != 'G' {
		t.Fatal("response is not a PNG")
	}
}
