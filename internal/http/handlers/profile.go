package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/familyauth/internal/config"
	"github.com/geocoder89/familyauth/internal/domain/family"
	"github.com/geocoder89/familyauth/internal/domain/profile"
	"github.com/geocoder89/familyauth/internal/http/middlewares"
	"github.com/geocoder89/familyauth/internal/observability"
	"github.com/gin-gonic/gin"
)

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (profile.Profile, error)
	Create(ctx context.Context, p profile.Profile) (profile.Profile, error)
	Update(ctx context.Context, p profile.Profile) (profile.Profile, error)
	List(ctx context.Context) ([]profile.Profile, error)
}

type FamilyStore interface {
	ListByUser(ctx context.Context, userID int64) ([]family.Member, error)
	GetByID(ctx context.Context, id int64) (family.Member, error)
	Create(ctx context.Context, m family.Member) (family.Member, error)
	Update(ctx context.Context, m family.Member) (family.Member, error)
	Delete(ctx context.Context, id, userID int64) error
}

type ProfileHandler struct {
	profiles ProfileStore
	family   FamilyStore
}

func NewProfileHandler(profiles ProfileStore, family FamilyStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, family: family}
}

func (h *ProfileHandler) GetProfile(ctx *gin.Context) {
	caller, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthenticated", msgAuthRequired)
		return
	}

	h.respondProfile(ctx, caller.ID)
}

// GetProfileForAdmin is mounted behind RequireRole(admin).
func (h *ProfileHandler) GetProfileForAdmin(ctx *gin.Context) {
	userID, err := strconv.ParseInt(ctx.Param("userId"), 10, 64)
	if err != nil {
		RespondBadRequest(ctx, "invalid user id", gin.H{"field": "userId"})
		return
	}

	h.respondProfile(ctx, userID)
}

func (h *ProfileHandler) respondProfile(ctx *gin.Context, userID int64) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	p, err := h.profiles.GetByUserID(cctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			RespondNotFound(ctx, "profile not found")
			return
		}

		slog.Default().ErrorContext(cctx, "get profile failed", "user_id", userID, observability.Err(err))
		RespondInternal(ctx, msgInternal)
		return
	}

	members, err := h.family.ListByUser(cctx, userID)
	if err != nil {
		slog.Default().ErrorContext(cctx, "list family members failed", "user_id", userID, observability.Err(err))
		RespondInternal(ctx, msgInternal)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"profile":       p,
		"familyMembers": members,
	})
}

// UpsertProfile creates the caller's profile (201) or replaces it (200).
func (h *ProfileHandler) UpsertProfile(ctx *gin.Context) {
	caller, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthenticated", msgAuthRequired)
		return
	}

	var req profile.UpsertRequest

	if !BindJSON(ctx, &req) {
		return
	}

	p, err := req.Build(caller.ID, profile.UpsertDefaultMaternalCapital)
	if err != nil {
		RespondBadRequest(ctx, "invalid birth_date", gin.H{"field": "birth_date"})
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	_, err = h.profiles.GetByUserID(cctx, caller.ID)
	switch {
	case err == nil:
		h.updateProfile(ctx, cctx, p)
		return
	case !errors.Is(err, profile.ErrNotFound):
		slog.Default().ErrorContext(cctx, "get profile failed", "user_id", caller.ID, observability.Err(err))
		RespondInternal(ctx, msgInternal)
		return
	}

	created, err := h.profiles.Create(cctx, p)
	if err != nil {
		// a concurrent request created it first
		if errors.Is(err, profile.ErrAlreadyExists) {
			h.updateProfile(ctx, cctx, p)
			return
		}

		slog.Default().ErrorContext(cctx, "create profile failed", "user_id", caller.ID, observability.Err(err))
		RespondInternal(ctx, "could not create profile")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "profile created",
		"profile": created,
	})
}

func (h *ProfileHandler) updateProfile(ctx *gin.Context, cctx context.Context, p profile.Profile) {
	updated, err := h.profiles.Update(cctx, p)
	if err != nil {
		// ErrNotFound here means zero rows were written
		slog.Default().ErrorContext(cctx, "update profile failed", "user_id", p.UserID, observability.Err(err))
		RespondInternal(ctx, "could not update profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "profile updated",
		"profile": updated,
	})
}
