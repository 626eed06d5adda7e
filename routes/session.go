package routes

import (
	"errors"

	"github.com/JuanPabloTorres/QuickAR-sub005/services"
	"github.com/JuanPabloTorres/QuickAR-sub005/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
)

// Sessions holds the live AR viewer sessions. The shell creates one per
// page load and deletes it on navigation away (mandatory resource release).
var Sessions = services.NewSessionRegistry()

func sessionFromParams(ctx iris.Context) *services.ARSession {
	id, err := uuid.Parse(ctx.Params().Get("id"))
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Invalid session id")
		return nil
	}
	s := Sessions.Get(id)
	if s == nil {
		utils.CreateNotFound(ctx)
		return nil
	}
	return s
}

type sessionView struct {
	SessionID  string               `json:"sessionID"`
	State      string               `json:"state"`
	AssetIndex int                  `json:"assetIndex"`
	Strategy   services.Strategy    `json:"strategy,omitempty"`
	Error      string               `json:"error,omitempty"`
	Assets     []services.AssetView `json:"assets,omitempty"`
}

func viewOf(ctx iris.Context, s *services.ARSession) sessionView {
	v := sessionView{
		SessionID:  s.ID.String(),
		State:      s.State(),
		AssetIndex: s.AssetIndex(),
		Strategy:   s.Strategy(),
		Error:      s.LastError(),
	}
	if exp := s.Experience(); exp != nil {
		v.Assets = services.BuildAssetViews(exp, utils.BaseURL(ctx), s.State() == services.StateARActive)
	}
	return v
}

// CreateSession opens a viewer session for an experience reference and
// settles the loading state immediately from the lookup outcome.
func CreateSession(ctx iris.Context) {
	var input struct {
		Ref string `json:"ref" validate:"required"`
	}
	if err := ctx.ReadJSON(&input); err != nil || input.Ref == "" {
		utils.JSONError(ctx, iris.StatusBadRequest, "Missing experience reference")
		return
	}

	s := Sessions.Create(RecordEvent)
	exp, err := findExperienceByRef(input.Ref)
	s.ResolveExperience(exp, err)

	ctx.StatusCode(iris.StatusCreated)
	utils.JSONSuccess(ctx, viewOf(ctx, s))
}

// ReportCapabilities stores the browser probe result for the session.
func ReportCapabilities(ctx iris.Context) {
	s := sessionFromParams(ctx)
	if s == nil {
		return
	}

	var rec services.CapabilityRecord
	if err := ctx.ReadJSON(&rec); err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Invalid capability record")
		return
	}
	services.ApplyDeviceHints(&rec, ctx.GetHeader("User-Agent"), ctx.Host(), ctx.Request().TLS != nil || ctx.GetHeader("X-Forwarded-Proto") == "https")
	s.SetCapabilities(rec)

	utils.JSONSuccess(ctx, iris.Map{
		"strategy": s.Strategy(),
		"canStart": services.CanStartAR(rec),
	})
}

// StartAR moves the session into AR.
func StartAR(ctx iris.Context) {
	s := sessionFromParams(ctx)
	if s == nil {
		return
	}

	if err := s.StartAR(); err != nil {
		switch {
		case errors.Is(err, services.ErrNoCapability):
			utils.JSONError(ctx, iris.StatusConflict, "AR is not available on this device")
		case errors.Is(err, services.ErrSessionClosed):
			utils.JSONError(ctx, iris.StatusGone, "Session is closed")
		default:
			utils.JSONError(ctx, iris.StatusConflict, err.Error())
		}
		return
	}
	utils.JSONSuccess(ctx, viewOf(ctx, s))
}

// ExitAR reverts to the intro screen, optionally carrying an AR runtime
// error message to surface inline.
func ExitAR(ctx iris.Context) {
	s := sessionFromParams(ctx)
	if s == nil {
		return
	}

	var input struct {
		Error string `json:"error"`
	}
	ctx.ReadJSON(&input) // empty body is fine

	s.ExitAR(input.Error)
	utils.JSONSuccess(ctx, viewOf(ctx, s))
}

// Navigate steps the asset index forward or back with circular wrap.
func Navigate(ctx iris.Context) {
	s := sessionFromParams(ctx)
	if s == nil {
		return
	}

	var input struct {
		Direction string `json:"direction" validate:"required,oneof=next previous"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var (
		index int
		err   error
	)
	switch input.Direction {
	case "next":
		index, err = s.Next()
	case "previous":
		index, err = s.Previous()
	default:
		utils.JSONError(ctx, iris.StatusBadRequest, "Direction must be next or previous")
		return
	}
	if err != nil {
		utils.JSONError(ctx, iris.StatusConflict, err.Error())
		return
	}

	utils.JSONSuccess(ctx, iris.Map{"assetIndex": index})
}

// DeleteSession tears the session down and releases camera/XR resources.
func DeleteSession(ctx iris.Context) {
	id, err := uuid.Parse(ctx.Params().Get("id"))
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Invalid session id")
		return
	}
	Sessions.Delete(id)
	utils.JSONMessage(ctx, nil, "Session closed")
}
