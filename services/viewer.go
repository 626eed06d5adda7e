package services

import (
	"github.com/JuanPabloTorres/QuickAR-sub005/models"
	"github.com/JuanPabloTorres/QuickAR-sub005/utils"
)

// Per-asset load states. The browser element moves loading → loaded on its
// native load event and → error on its error event; resolution failures are
// decided here and never reach the browser.
const (
	AssetStatePending = "pending"
	AssetStateLoading = "loading"
	AssetStateLoaded  = "loaded"
	AssetStateError   = "error"
)

// How long the shell waits for a webcontent iframe before assuming the
// remote blocked embedding (CSP / X-Frame-Options fire no error event).
const WebContentWatchdogMillis = 3000

const msgAssetUnavailable = "Contenido no disponible"

// AssetView is the render-ready projection of one asset: kind dispatch
// resolved, URL absolute, initial load state decided.
type AssetView struct {
	ID       uint   `json:"id"`
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
	Text     string `json:"text,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	State    string `json:"state"`
	Error    string `json:"error,omitempty"`

	// model3d: AR attributes are only set while the session is in AR;
	// outside AR the element auto-rotates with camera controls.
	ARActive bool `json:"arActive,omitempty"`

	// webcontent: watchdog budget before the open-in-new-tab fallback.
	WatchdogMillis int `json:"watchdogMillis,omitempty"`
}

// BuildAssetView dispatches on asset kind. Message assets carry their text
// verbatim as plain text, escaped at the template and never interpreted as
// markup. Every other kind needs a resolvable URL; an unresolvable
// reference yields a distinct error view instead of a broken element.
func BuildAssetView(a models.Asset, base string, arActive bool) AssetView {
	v := AssetView{
		ID:       a.ID,
		Kind:     a.Kind,
		Name:     a.Name,
		MimeType: a.MimeType,
	}

	if a.Kind == models.AssetKindMessage {
		v.Text = a.Text
		v.State = AssetStateLoaded
		return v
	}

	v.URL = utils.ResolveAssetURL(a.URL, a.Kind, base)
	if v.URL == "" {
		v.State = AssetStateError
		v.Error = msgAssetUnavailable
		return v
	}
	v.State = AssetStateLoading

	switch a.Kind {
	case models.AssetKindModel3D:
		v.ARActive = arActive
	case models.AssetKindWebContent:
		v.WatchdogMillis = WebContentWatchdogMillis
	}
	return v
}

// BuildAssetViews projects a whole experience in navigation order.
func BuildAssetViews(exp *models.Experience, base string, arActive bool) []AssetView {
	views := make([]AssetView, 0, len(exp.Assets))
	for _, a := range exp.Assets {
		views = append(views, BuildAssetView(a, base, arActive))
	}
	return views
}
