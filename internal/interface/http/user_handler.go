package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/studypal/internal/application"
	"github.com/oksasatya/studypal/internal/domain/entity"
	"github.com/oksasatya/studypal/internal/interface/middleware"
	"github.com/oksasatya/studypal/pkg/response"
	"github.com/oksasatya/studypal/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type userResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type updateProfileRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,max=100"`
	Email     *string `json:"email" binding:"omitempty,email"`
}

type changePasswordRequest struct {
	Password string `json:"password" binding:"required,pwd"`
}

func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.Svc.Me(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "profile", nil)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	u, err := h.Svc.GetProfile(c.Request.Context(), middleware.IdentityFrom(c), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "profile", nil)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), middleware.IdentityFrom(c), id, application.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "profile updated", nil)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), middleware.IdentityFrom(c), id, req.Password); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password changed", nil)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), middleware.IdentityFrom(c), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "user deleted", nil)
}

// UploadAvatar expects a multipart form with an "avatar" file part.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, application.MaxAvatarBytes+(64<<10))
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "cannot read avatar", nil)
		return
	}
	defer func() { _ = f.Close() }()

	u, err := h.Svc.UploadAvatar(c.Request.Context(), middleware.IdentityFrom(c), id, f, fh.Size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "avatar updated", nil)
}
