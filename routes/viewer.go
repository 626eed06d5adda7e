package routes

import (
	"github.com/JuanPabloTorres/QuickAR-sub005/models"
	"github.com/JuanPabloTorres/QuickAR-sub005/services"
	"github.com/JuanPabloTorres/QuickAR-sub005/storage"
	"github.com/JuanPabloTorres/QuickAR-sub005/utils"

	"github.com/kataras/iris/v12"
)

// ViewerPage handles /x/{slug} and /ar/{id}: resolves the experience by
// UUID, slug or numeric ID and renders the AR shell. Inactive or empty
// experiences get the unavailable page, unknown references the not-found
// page. Every hit logs a scan event (fire-and-forget).
func ViewerPage(ctx iris.Context) {
	ref := ctx.Params().Get("ref")

	exp, err := findExperienceByRef(ref)
	if err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.View("error.html", iris.Map{
			"Message": "Algo salió mal. Inténtalo de nuevo.",
			"Retry":   true,
		})
		return
	}
	if exp == nil {
		ctx.StatusCode(iris.StatusNotFound)
		ctx.View("notfound.html", iris.Map{})
		return
	}
	if !exp.IsActive || len(exp.Assets) == 0 {
		ctx.StatusCode(iris.StatusGone)
		ctx.View("error.html", iris.Map{
			"Message": services.MsgUnavailable,
			"Retry":   false,
		})
		return
	}

	expID := exp.ID
	storage.IncrementScanCount(ctx.Request().Context(), expID)
	go RecordEvent(models.EventScan, &expID, map[string]interface{}{"ref": ref})

	base := utils.BaseURL(ctx)
	ctx.View("viewer.html", iris.Map{
		"Experience":     exp,
		"Assets":         services.BuildAssetViews(exp, base, false),
		"Base":           base,
		"WatchdogMillis": services.WebContentWatchdogMillis,
	})
}
