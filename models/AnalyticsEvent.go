package models

import (
	"time"

	"gorm.io/datatypes"
)

// Analytics event types emitted by the viewer shell and admin app.
const (
	EventScan         = "scan"
	EventViewStart    = "view_start"
	EventARStart      = "ar_start"
	EventARExit       = "ar_exit"
	EventAssetNav     = "asset_navigation"
	EventAssetError   = "asset_error"
	EventCapabilities = "capabilities"
)

type AnalyticsEvent struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Type         string         `json:"type" gorm:"type:varchar(40);not null;index"`
	ExperienceID *uint          `json:"experienceID" gorm:"index"`
	Metadata     datatypes.JSON `json:"metadata"`
	CreatedAt    time.Time      `json:"createdAt" gorm:"index"`
}
