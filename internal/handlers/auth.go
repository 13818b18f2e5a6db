package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/bugtrack/internal/apperr"
	"github.com/monocle-dev/bugtrack/internal/auth"
	"github.com/monocle-dev/bugtrack/internal/models"
	"github.com/monocle-dev/bugtrack/internal/store"
	"github.com/monocle-dev/bugtrack/internal/types"
)

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,max=50"`
	LastName  string `json:"last_name" binding:"required,max=50"`
	Username  string `json:"username" binding:"required,min=3,max=30"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=50"`
	LastName  *string `json:"last_name" binding:"omitempty,max=50"`
	Username  *string `json:"username" binding:"omitempty,min=3,max=30"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Avatar    *string `json:"avatar"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a regular user account and signs it in.
func (h *Handler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !h.bindJSON(ctx, &req) {
		return
	}

	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	if err := h.ensureUnique(ctx, 0, email, username); err != nil {
		h.respondError(ctx, err)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	user := models.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
		IsActive:     true,
	}

	if err := h.store.CreateUser(ctx.Request.Context(), &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			h.respondError(ctx, apperr.Conflict("User already exists"))
			return
		}
		h.respondError(ctx, err)
		return
	}

	h.respondWithToken(ctx, http.StatusCreated, &user)
}

func (h *Handler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !h.bindJSON(ctx, &req) {
		return
	}

	user, err := h.store.UserByEmail(ctx.Request.Context(), normalizeEmail(req.Email))

	if errors.Is(err, store.ErrNotFound) {
		h.respondError(ctx, apperr.Validation("Invalid credentials"))
		return
	}

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	if !user.IsActive {
		h.respondError(ctx, apperr.Validation("Account is deactivated"))
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		h.respondError(ctx, apperr.Validation("Invalid credentials"))
		return
	}

	h.respondWithToken(ctx, http.StatusOK, user)
}

func (h *Handler) Me(ctx *gin.Context) {
	user, ok := h.currentUser(ctx)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": types.NewUserResponse(user)})
}

func (h *Handler) UpdateProfile(ctx *gin.Context) {
	user, ok := h.currentUser(ctx)

	if !ok {
		return
	}

	var req UpdateProfileRequest

	if !h.bindJSON(ctx, &req) {
		return
	}

	updates := make(map[string]interface{})
	var email, username string

	if req.FirstName != nil && strings.TrimSpace(*req.FirstName) != "" {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}

	if req.LastName != nil && strings.TrimSpace(*req.LastName) != "" {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}

	if req.Username != nil {
		if v := strings.TrimSpace(*req.Username); v != "" && v != user.Username {
			username = v
			updates["username"] = username
		}
	}

	if req.Email != nil {
		if v := normalizeEmail(*req.Email); v != "" && v != user.Email {
			email = v
			updates["email"] = email
		}
	}

	if req.Avatar != nil {
		updates["avatar"] = strings.TrimSpace(*req.Avatar)
	}

	if err := h.ensureUnique(ctx, user.ID, email, username); err != nil {
		h.respondError(ctx, err)
		return
	}

	if len(updates) > 0 {
		if err := h.store.UpdateUser(ctx.Request.Context(), user, updates); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				h.respondError(ctx, apperr.Conflict("Username or email already in use"))
				return
			}
			h.respondError(ctx, err)
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"user": types.NewUserResponse(user)})
}

func (h *Handler) ChangePassword(ctx *gin.Context) {
	user, ok := h.currentUser(ctx)

	if !ok {
		return
	}

	var req ChangePasswordRequest

	if !h.bindJSON(ctx, &req) {
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		h.respondError(ctx, apperr.Validation("Current password is incorrect"))
		return
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	if err := h.store.UpdateUser(ctx.Request.Context(), user, map[string]interface{}{"password_hash": passwordHash}); err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Password updated successfully"})
}

// ensureUnique checks that the email and username (when non-empty) are not
// taken by a user other than selfID.
func (h *Handler) ensureUnique(ctx *gin.Context, selfID uint, email, username string) error {
	if email != "" {
		existing, err := h.store.UserByEmail(ctx.Request.Context(), email)

		if err == nil && existing.ID != selfID {
			return apperr.Conflict("Email already registered")
		}

		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}

	if username != "" {
		existing, err := h.store.UserByUsername(ctx.Request.Context(), username)

		if err == nil && existing.ID != selfID {
			return apperr.Conflict("Username already taken")
		}

		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}

	return nil
}

func (h *Handler) respondWithToken(ctx *gin.Context, status int, user *models.User) {
	token, err := h.tokens.Generate(user.ID)

	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(status, types.AuthResponse{
		Token: token,
		User:  types.NewUserResponse(user),
	})
}
