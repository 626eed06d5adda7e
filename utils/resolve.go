package utils

import (
	"os"
	"strings"

	"github.com/JuanPabloTorres/QuickAR-sub005/models"

	"github.com/kataras/iris/v12"
)

// Upload category an asset kind stores its files under.
func uploadCategoryForKind(kind string) string {
	switch kind {
	case models.AssetKindModel3D:
		return "models"
	case models.AssetKindImage:
		return "images"
	case models.AssetKindVideo:
		return "videos"
	default:
		return ""
	}
}

// ResolveAssetURL turns a stored asset reference into an absolute fetchable
// URL. Already-absolute URLs pass through untouched (idempotent);
// root-relative paths are prefixed with the base origin; bare identifiers
// are placed under the kind's upload category. Returns "" when the
// reference cannot be resolved, so the caller renders an unavailable state
// instead of crashing.
func ResolveAssetURL(raw, kind, base string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "://") || strings.HasPrefix(raw, "data:") {
		return raw
	}
	base = strings.TrimSuffix(base, "/")
	if strings.HasPrefix(raw, "/") {
		return base + raw
	}
	category := uploadCategoryForKind(kind)
	if category == "" {
		return ""
	}
	return base + "/uploads/" + category + "/" + raw
}

// BaseURL resolves the public origin for the current request. The admin app
// may be opened from a phone on the same LAN as the dev machine, so the
// origin follows the request Host unless PUBLIC_BASE_URL pins it.
func BaseURL(ctx iris.Context) string {
	if env := os.Getenv("PUBLIC_BASE_URL"); env != "" {
		return strings.TrimSuffix(env, "/")
	}
	scheme := "http"
	if proto := ctx.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if ctx.Request().TLS != nil {
		scheme = "https"
	}
	host := ctx.Host()
	if host == "" {
		host = "localhost:8080"
	}
	return scheme + "://" + host
}
