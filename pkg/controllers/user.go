package controllers

import (
	"context"
	"net/http"

	"cultureshare-api-io/api/internal/auth"
	"cultureshare-api-io/api/internal/common"
	"cultureshare-api-io/api/pkg/models"
	"cultureshare-api-io/api/pkg/services"
	"cultureshare-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserController struct {
	userService services.UserService
}

func InitUserController(userService services.UserService) *UserController {
	return &UserController{userService: userService}
}

func (uc *UserController) Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		var req models.CreateUserRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}
		if err := common.Validate.Struct(req); err != nil {
			HandleDomainError(c, err)
			return
		}

		id, err := uc.userService.CreateUser(ctx, req)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusCreated, "User created successfully", gin.H{"userId": id})
	}
}

func (uc *UserController) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		var req models.LoginRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}
		if err := common.Validate.Struct(req); err != nil {
			HandleDomainError(c, err)
			return
		}

		user, token, expiresAt, err := uc.userService.AuthenticateUser(ctx, req)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Login successful", gin.H{
			"user":      user,
			"token":     token,
			"expiresAt": expiresAt,
		})
	}
}

// GoogleLogin exchanges a Google ID token for a session.
func (uc *UserController) GoogleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		var req models.GoogleAuthRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}
		if err := common.Validate.Struct(req); err != nil {
			HandleDomainError(c, err)
			return
		}

		user, token, expiresAt, err := uc.userService.AuthenticateGoogleUser(ctx, req.IDToken)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Login successful", gin.H{
			"user":      user,
			"token":     token,
			"expiresAt": expiresAt,
		})
	}
}

func (uc *UserController) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		token := auth.ExtractToken(c)
		if token == "" {
			util.HandleError(c, http.StatusUnauthorized, models.ErrUnauthorized)
			return
		}

		if err := uc.userService.Logout(ctx, token); err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Logged out successfully", nil)
	}
}

// GetUser returns a profile. The owner (and admins) see the full record;
// everyone else gets the public projection.
func (uc *UserController) GetUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		id, err := primitive.ObjectIDFromHex(c.Param("userid"))
		if err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}

		user, err := uc.userService.GetUserByID(ctx, id)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		if principal, err := auth.CurrentPrincipal(c); err == nil {
			if principal.UserID == id || principal.IsAdmin() {
				util.HandleSuccess(c, http.StatusOK, "success", user)
				return
			}
		}

		util.HandleSuccess(c, http.StatusOK, "success", user.Public())
	}
}

func (uc *UserController) UpdateProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		id, ok := uc.ownerOnly(c)
		if !ok {
			return
		}

		var req models.UpdateProfileRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}
		if err := common.Validate.Struct(req); err != nil {
			HandleDomainError(c, err)
			return
		}

		if err := uc.userService.UpdateProfile(ctx, id, req); err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Profile updated successfully", nil)
	}
}

// UploadAvatar accepts a multipart image, pushes it to media storage, and
// saves the returned URL on the profile.
func (uc *UserController) UploadAvatar() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		id, ok := uc.ownerOnly(c)
		if !ok {
			return
		}

		fileHeader, err := c.FormFile("thumbnail")
		if err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}
		defer file.Close()

		uploadRes, err := util.ImageUploadHelper(file)
		if err != nil {
			util.HandleError(c, http.StatusInternalServerError, err)
			return
		}

		if err := uc.userService.UpdateAvatar(ctx, id, uploadRes.SecureURL); err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Avatar updated successfully", gin.H{"avatarUrl": uploadRes.SecureURL})
	}
}

// ownerOnly resolves the :userid param and rejects requests from anyone but
// the account owner.
func (uc *UserController) ownerOnly(c *gin.Context) (primitive.ObjectID, bool) {
	principal, err := auth.CurrentPrincipal(c)
	if err != nil {
		util.HandleError(c, http.StatusUnauthorized, err)
		return primitive.NilObjectID, false
	}

	id, err := primitive.ObjectIDFromHex(c.Param("userid"))
	if err != nil {
		util.HandleError(c, http.StatusBadRequest, err)
		return primitive.NilObjectID, false
	}

	if principal.UserID != id {
		util.HandleError(c, http.StatusForbidden, errors.Wrap(models.ErrForbidden, "you can only modify your own account"))
		return primitive.NilObjectID, false
	}

	return id, true
}
