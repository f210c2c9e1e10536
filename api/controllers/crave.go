package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/cravecart/cravecart-backend/api/middleware"
	"github.com/cravecart/cravecart-backend/api/responses"
	"github.com/cravecart/cravecart-backend/api/validators"
	"github.com/cravecart/cravecart-backend/internal/crave"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
	"github.com/cravecart/cravecart-backend/pkg/logger"
	"github.com/cravecart/cravecart-backend/pkg/pagination"
)

// CraveFeed is the public short-video feed. Anonymous callers get no
// per-viewer like state.
func CraveFeed(svc crave.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "crave service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		viewerID := middleware.UserIDFromContext(r.Context())
		page := pagination.Params{Limit: limit, Cursor: r.URL.Query().Get("cursor")}
		result, err := svc.Feed(r.Context(), viewerID, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CraveVideoDetail(svc crave.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "crave service unavailable"))
			return
		}

		videoID, err := validators.ParseUUIDParam(r, "videoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		video, err := svc.GetVideo(r.Context(), middleware.UserIDFromContext(r.Context()), videoID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, video)
	}
}

func CraveLike(svc crave.Service, logg *logger.Logger) http.HandlerFunc {
	return craveVideoAction(svc, logg, func(svc crave.Service, r *http.Request, userID, videoID uuid.UUID) error {
		return svc.Like(r.Context(), userID, videoID)
	})
}

func CraveUnlike(svc crave.Service, logg *logger.Logger) http.HandlerFunc {
	return craveVideoAction(svc, logg, func(svc crave.Service, r *http.Request, userID, videoID uuid.UUID) error {
		return svc.Unlike(r.Context(), userID, videoID)
	})
}

func CraveReport(svc crave.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "crave service unavailable"))
			return
		}

		videoID, err := validators.ParseUUIDParam(r, "videoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body crave.ReportVideoRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Report(r.Context(), middleware.UserIDFromContext(r.Context()), videoID, body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, nil)
	}
}

// SellerVideoList returns the caller's videos including hidden ones.
func SellerVideoList(svc crave.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "crave service unavailable"))
			return
		}

		videos, err := svc.ListMyVideos(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"videos": videos})
	}
}

func SellerVideoCreate(svc crave.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "crave service unavailable"))
			return
		}

		var body crave.CreateVideoRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		video, err := svc.CreateVideo(r.Context(), middleware.UserIDFromContext(r.Context()), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, video)
	}
}

func SellerVideoUpdate(svc crave.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "crave service unavailable"))
			return
		}

		videoID, err := validators.ParseUUIDParam(r, "videoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body crave.UpdateVideoRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		video, err := svc.UpdateVideo(r.Context(), middleware.UserIDFromContext(r.Context()), videoID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, video)
	}
}

func SellerVideoDelete(svc crave.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "crave service unavailable"))
			return
		}

		videoID, err := validators.ParseUUIDParam(r, "videoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteVideo(r.Context(), middleware.UserIDFromContext(r.Context()), videoID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

func craveVideoAction(svc crave.Service, logg *logger.Logger, action func(crave.Service, *http.Request, uuid.UUID, uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "crave service unavailable"))
			return
		}

		videoID, err := validators.ParseUUIDParam(r, "videoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := action(svc, r, middleware.UserIDFromContext(r.Context()), videoID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}
