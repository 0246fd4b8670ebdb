package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/familyauth/internal/config"
	"github.com/geocoder89/familyauth/internal/domain/profile"
	"github.com/geocoder89/familyauth/internal/domain/user"
	"github.com/geocoder89/familyauth/internal/observability"
	"github.com/gin-gonic/gin"
)

type UsersLister interface {
	ListWithProfiles(ctx context.Context) ([]user.WithProfile, error)
}

type ProfilesLister interface {
	List(ctx context.Context) ([]profile.Profile, error)
}

// AdminHandler serves the admin-only listings. Routes mount it behind
// RequireRole(admin).
type AdminHandler struct {
	users    UsersLister
	profiles ProfilesLister
}

func NewAdminHandler(users UsersLister, profiles ProfilesLister) *AdminHandler {
	return &AdminHandler{users: users, profiles: profiles}
}

func (h *AdminHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	users, err := h.users.ListWithProfiles(cctx)
	if err != nil {
		slog.Default().ErrorContext(cctx, "list users failed", observability.Err(err))
		RespondInternal(ctx, "could not list users")
		return
	}

	for i := range users {
		users[i].Password = ""
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"users": users})
}

func (h *AdminHandler) ListProfiles(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	profiles, err := h.profiles.List(cctx)
	if err != nil {
		slog.Default().ErrorContext(cctx, "list profiles failed", observability.Err(err))
		RespondInternal(ctx, "could not list profiles")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"profiles": profiles})
}
