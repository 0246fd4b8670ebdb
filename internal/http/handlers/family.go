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
	"github.com/geocoder89/familyauth/internal/domain/user"
	"github.com/geocoder89/familyauth/internal/http/middlewares"
	"github.com/geocoder89/familyauth/internal/observability"
	"github.com/gin-gonic/gin"
)

type FamilyHandler struct {
	members FamilyStore
}

func NewFamilyHandler(members FamilyStore) *FamilyHandler {
	return &FamilyHandler{members: members}
}

func (h *FamilyHandler) Add(ctx *gin.Context) {
	caller, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthenticated", msgAuthRequired)
		return
	}

	var req family.Request

	if !BindJSON(ctx, &req) {
		return
	}

	m, err := req.Build(caller.ID)
	if err != nil {
		RespondBadRequest(ctx, "invalid birth_date", gin.H{"field": "birth_date"})
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	created, err := h.members.Create(cctx, m)
	if err != nil {
		slog.Default().ErrorContext(cctx, "create family member failed", "user_id", caller.ID, observability.Err(err))
		RespondInternal(ctx, "could not add family member")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":      "family member added",
		"familyMember": created,
	})
}

func (h *FamilyHandler) Update(ctx *gin.Context) {
	caller, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthenticated", msgAuthRequired)
		return
	}

	id, ok := parseMemberID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	// 404 and 403 take precedence over body validation
	if !h.authorizeOwner(ctx, cctx, caller, id) {
		return
	}

	var req family.Request

	if !BindJSON(ctx, &req) {
		return
	}

	m, err := req.Build(caller.ID)
	if err != nil {
		RespondBadRequest(ctx, "invalid birth_date", gin.H{"field": "birth_date"})
		return
	}
	m.ID = id

	updated, err := h.members.Update(cctx, m)
	if err != nil {
		// ErrNotFound after the ownership check means the row vanished in between
		slog.Default().ErrorContext(cctx, "update family member failed", "id", id, observability.Err(err))
		RespondInternal(ctx, "could not update family member")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":      "family member updated",
		"familyMember": updated,
	})
}

func (h *FamilyHandler) Delete(ctx *gin.Context) {
	caller, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthenticated", msgAuthRequired)
		return
	}

	id, ok := parseMemberID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if !h.authorizeOwner(ctx, cctx, caller, id) {
		return
	}

	if err := h.members.Delete(cctx, id, caller.ID); err != nil {
		slog.Default().ErrorContext(cctx, "delete family member failed", "id", id, observability.Err(err))
		RespondInternal(ctx, "could not delete family member")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "family member deleted"})
}

// authorizeOwner answers 404 or 403 itself and reports whether to continue.
// Admins get no override here.
func (h *FamilyHandler) authorizeOwner(ctx *gin.Context, cctx context.Context, caller user.Identity, id int64) bool {
	existing, err := h.members.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, family.ErrNotFound) {
			RespondNotFound(ctx, "family member not found")
			return false
		}

		slog.Default().ErrorContext(cctx, "get family member failed", "id", id, observability.Err(err))
		RespondInternal(ctx, msgInternal)
		return false
	}

	if !existing.OwnedBy(caller.ID) {
		slog.Default().WarnContext(cctx, "family member ownership mismatch", "id", id, "user_id", caller.ID)
		RespondForbidden(ctx, msgAccessDenied)
		return false
	}

	return true
}

func parseMemberID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "invalid family member id", gin.H{"field": "id"})
		return 0, false
	}

	return id, true
}
