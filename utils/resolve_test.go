package utils

import (
	"testing"

	"github.com/JuanPabloTorres/QuickAR-sub005/models"
)

func TestResolveAssetURL(t *testing.T) {
	base := "http://192.168.1.40:8080"

	cases := []struct {
		name string
		raw  string
		kind string
		want string
	}{
		{"absolute untouched", "https://cdn.example.com/model.glb", models.AssetKindModel3D, "https://cdn.example.com/model.glb"},
		{"data url untouched", "data:image/png;base64,AAAA", models.AssetKindImage, "data:image/png;base64,AAAA"},
		{"root relative", "/uploads/images/foto.jpg", models.AssetKindImage, base + "/uploads/images/foto.jpg"},
		{"bare model ref", "pieza.glb", models.AssetKindModel3D, base + "/uploads/models/pieza.glb"},
		{"bare video ref", "clip.mp4", models.AssetKindVideo, base + "/uploads/videos/clip.mp4"},
		{"empty unresolvable", "", models.AssetKindImage, ""},
		{"bare ref without category", "algo", models.AssetKindMessage, ""},
	}

	for _, tc := range cases {
		if got := ResolveAssetURL(tc.raw, tc.kind, base); got != tc.want {
			t.Errorf("%s: ResolveAssetURL(%q) = %q, want %q", tc.name, tc.raw, got, tc.want)
		}
	}
}

func TestResolveAssetURLIdempotent(t *testing.T) {
	base := "http://localhost:8080"
	once := ResolveAssetURL("foto.jpg", models.AssetKindImage, base)
	twice := ResolveAssetURL(once, models.AssetKindImage, base)
	if once != twice {
		t.Fatalf("resolution not idempotent: %q vs %q", once, twice)
	}
}
