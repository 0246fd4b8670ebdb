package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/familyauth/internal/config"
	"github.com/geocoder89/familyauth/internal/domain/family"
	"github.com/geocoder89/familyauth/internal/domain/profile"
	"github.com/geocoder89/familyauth/internal/domain/user"
	"github.com/geocoder89/familyauth/internal/http/middlewares"
	"github.com/geocoder89/familyauth/internal/observability"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

type AccountCreator interface {
	CreateAccount(ctx context.Context, acc user.NewAccount) (user.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

type TokenIssuer interface {
	Issue(identity user.Identity) (string, error)
}

const (
	msgInvalidCredentials = "invalid email or password"
	msgAuthRequired       = "authentication required"
	msgAccessDenied       = "access denied"
	msgInternal           = "internal server error"
)

type AuthHandler struct {
	users     UserStore
	accounts  AccountCreator
	hasher    PasswordHasher
	tokens    TokenIssuer
	prom      *observability.Prom
	decoyHash string
}

func NewAuthHandler(users UserStore, accounts AccountCreator, hasher PasswordHasher, tokens TokenIssuer, prom *observability.Prom) *AuthHandler {
	// compared against on unknown emails so both login failures cost one hash check
	decoy, err := hasher.Hash("decoy-password-never-matches")
	if err != nil {
		slog.Default().Warn("decoy hash unavailable, unknown-email logins will answer faster", observability.Err(err))
	}

	return &AuthHandler{
		users:     users,
		accounts:  accounts,
		hasher:    hasher,
		tokens:    tokens,
		prom:      prom,
		decoyHash: decoy,
	}
}

type RegisterRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
	// bcrypt ignores input past 72 bytes
	Password      string                 `json:"password" binding:"required,max=72"`
	Profile       *profile.UpsertRequest `json:"profile" binding:"omitempty"`
	FamilyMembers []family.Request       `json:"familyMembers" binding:"omitempty,dive"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	// not validated: an absent or foreign email is answered with 403
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,max=72"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	acc := user.NewAccount{Email: req.Email, Role: user.RoleUser}

	if req.Profile != nil {
		p, err := req.Profile.Build(0, profile.RegisterDefaultMaternalCapital)
		if err != nil {
			RespondBadRequest(ctx, "invalid profile", gin.H{"field": "profile.birth_date"})
			return
		}
		acc.Profile = &p
	}

	for i, fm := range req.FamilyMembers {
		m, err := fm.Build(0)
		if err != nil {
			RespondBadRequest(ctx, "invalid family member", gin.H{"index": i, "field": "birth_date"})
			return
		}
		acc.FamilyMembers = append(acc.FamilyMembers, m)
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	// fast path only; the unique index decides under concurrency
	_, err := h.users.GetByEmail(cctx, req.Email)
	if err == nil {
		h.prom.RecordAuth("register", "email_taken")
		RespondConflict(ctx, "email_taken", "a user with this email already exists")
		return
	}
	if !errors.Is(err, user.ErrNotFound) {
		slog.Default().ErrorContext(cctx, "register lookup failed", observability.Err(err))
		RespondInternal(ctx, msgInternal)
		return
	}

	acc.PasswordHash, err = h.hasher.Hash(req.Password)
	if err != nil {
		slog.Default().ErrorContext(cctx, "hash password failed", observability.Err(err))
		RespondInternal(ctx, "could not create user")
		return
	}

	created, err := h.accounts.CreateAccount(cctx, acc)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			h.prom.RecordAuth("register", "email_taken")
			RespondConflict(ctx, "email_taken", "a user with this email already exists")
			return
		}

		slog.Default().ErrorContext(cctx, "create account failed", observability.Err(err))
		RespondInternal(ctx, "could not create user")
		return
	}

	identity := created.Identity()

	token, err := h.tokens.Issue(identity)
	if err != nil {
		slog.Default().ErrorContext(cctx, "issue token failed", observability.Err(err))
		RespondInternal(ctx, "could not issue token")
		return
	}

	h.prom.RecordAuth("register", "success")
	slog.Default().InfoContext(cctx, "user registered", "user_id", identity.ID)

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "user registered",
		"token":   token,
		"user":    identity,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	found, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			h.hasher.Verify(req.Password, h.decoyHash)
			h.prom.RecordAuth("login", "invalid_credentials")
			RespondUnauthorized(ctx, "invalid_credentials", msgInvalidCredentials)
			return
		}

		slog.Default().ErrorContext(cctx, "login lookup failed", observability.Err(err))
		RespondInternal(ctx, msgInternal)
		return
	}

	if !h.hasher.Verify(req.Password, found.PasswordHash) {
		h.prom.RecordAuth("login", "invalid_credentials")
		RespondUnauthorized(ctx, "invalid_credentials", msgInvalidCredentials)
		return
	}

	identity := found.Identity()

	token, err := h.tokens.Issue(identity)
	if err != nil {
		slog.Default().ErrorContext(cctx, "issue token failed", observability.Err(err))
		RespondInternal(ctx, "could not issue token")
		return
	}

	h.prom.RecordAuth("login", "success")

	ctx.JSON(http.StatusOK, gin.H{
		"message": "login successful",
		"token":   token,
		"user":    identity,
	})
}

// ChangePassword only lets callers rotate their own password. The email in
// the body must resolve to the same account as the token.
func (h *AuthHandler) ChangePassword(ctx *gin.Context) {
	caller, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthenticated", msgAuthRequired)
		return
	}

	var req ChangePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	found, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		slog.Default().ErrorContext(cctx, "change password lookup failed", observability.Err(err))
		RespondInternal(ctx, msgInternal)
		return
	}

	if err != nil || found.ID != caller.ID {
		h.prom.RecordAuth("change_password", "forbidden")
		RespondForbidden(ctx, msgAccessDenied)
		return
	}

	if !h.hasher.Verify(req.CurrentPassword, found.PasswordHash) {
		h.prom.RecordAuth("change_password", "invalid_credentials")
		RespondUnauthorized(ctx, "invalid_credentials", "current password is incorrect")
		return
	}

	hash, err := h.hasher.Hash(req.NewPassword)
	if err != nil {
		slog.Default().ErrorContext(cctx, "hash password failed", observability.Err(err))
		RespondInternal(ctx, msgInternal)
		return
	}

	if err := h.users.UpdatePassword(cctx, found.ID, hash); err != nil {
		slog.Default().ErrorContext(cctx, "update password failed", observability.Err(err))
		RespondInternal(ctx, msgInternal)
		return
	}

	h.prom.RecordAuth("change_password", "success")

	ctx.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

func (h *AuthHandler) Verify(ctx *gin.Context) {
	caller, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthenticated", msgAuthRequired)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "token is valid", "user": caller})
}

func (h *AuthHandler) AdminCheck(ctx *gin.Context) {
	caller, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthenticated", msgAuthRequired)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "access granted", "user": caller})
}
