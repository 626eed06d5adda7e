package routes

import (
	"encoding/json"
	"log"
	"time"

	"github.com/JuanPabloTorres/QuickAR-sub005/models"
	"github.com/JuanPabloTorres/QuickAR-sub005/storage"
	"github.com/JuanPabloTorres/QuickAR-sub005/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
)

// RecordEvent persists an analytics event. Failures are logged and
// swallowed: analytics must never interrupt the primary flow. Safe to call
// from fire-and-forget goroutines; it satisfies services.AnalyticsSink.
func RecordEvent(eventType string, experienceID *uint, metadata map[string]interface{}) {
	event := models.AnalyticsEvent{
		Type:         eventType,
		ExperienceID: experienceID,
	}
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			event.Metadata = datatypes.JSON(raw)
		}
	}
	if err := storage.DB.Create(&event).Error; err != nil {
		log.Printf("analytics event %q dropped: %v", eventType, err)
	}
}

// TrackEvent ingests a viewer analytics event. Always 202: the viewer
// fires and forgets, persistence problems stay server-side.
func TrackEvent(ctx iris.Context) {
	var input struct {
		Type         string                 `json:"type" validate:"required"`
		ExperienceID *uint                  `json:"experienceID"`
		Metadata     map[string]interface{} `json:"metadata"`
	}
	if err := ctx.ReadJSON(&input); err != nil || input.Type == "" {
		// even malformed events are acknowledged; nothing to retry
		ctx.StatusCode(iris.StatusAccepted)
		ctx.JSON(utils.Envelope{Success: true, Message: "ignored"})
		return
	}

	go RecordEvent(input.Type, input.ExperienceID, input.Metadata)

	ctx.StatusCode(iris.StatusAccepted)
	ctx.JSON(utils.Envelope{Success: true})
}

// GET /api/analytics/stats
func AnalyticsStats(ctx iris.Context) {
	var total int64
	storage.DB.Model(&models.AnalyticsEvent{}).Count(&total)

	since7 := time.Now().AddDate(0, 0, -7)
	since30 := time.Now().AddDate(0, 0, -30)
	var events7, events30 int64
	storage.DB.Model(&models.AnalyticsEvent{}).Where("created_at >= ?", since7).Count(&events7)
	storage.DB.Model(&models.AnalyticsEvent{}).Where("created_at >= ?", since30).Count(&events30)

	type typeCount struct {
		Type  string `json:"type"`
		Count int64  `json:"count"`
	}
	var byType []typeCount
	storage.DB.Model(&models.AnalyticsEvent{}).
		Select("type, count(*) as count").
		Group("type").
		Order("count DESC").
		Scan(&byType)

	var activeExperiences int64
	storage.DB.Model(&models.Experience{}).Where("is_active = ?", true).Count(&activeExperiences)

	utils.JSONSuccess(ctx, iris.Map{
		"total_events":       total,
		"events_7d":          events7,
		"events_30d":         events30,
		"by_type":            byType,
		"active_experiences": activeExperiences,
	})
}

// GET /api/analytics/experiences/{id}
func ExperienceStats(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Invalid experience id")
		return
	}

	var exp models.Experience
	if err := storage.DB.First(&exp, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var scans, arStarts, navigations int64
	storage.DB.Model(&models.AnalyticsEvent{}).Where("experience_id = ? AND type = ?", id, models.EventScan).Count(&scans)
	storage.DB.Model(&models.AnalyticsEvent{}).Where("experience_id = ? AND type = ?", id, models.EventARStart).Count(&arStarts)
	storage.DB.Model(&models.AnalyticsEvent{}).Where("experience_id = ? AND type = ?", id, models.EventAssetNav).Count(&navigations)

	utils.JSONSuccess(ctx, iris.Map{
		"experienceID": id,
		"scans":        scans,
		"scan_counter": storage.GetScanCount(ctx.Request().Context(), id),
		"ar_starts":    arStarts,
		"navigations":  navigations,
	})
}
