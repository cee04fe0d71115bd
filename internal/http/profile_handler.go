package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"edunextgen-api/internal/domain"
	"edunextgen-api/internal/service"
)

// ProfileHandler mantiene dependencias para perfiles y directorio de tutores.
type ProfileHandler struct {
	logger   *zap.Logger
	profiles *service.ProfileService
	tutors   *service.TutorDirectory
}

func NewProfileHandler(logger *zap.Logger, profiles *service.ProfileService, tutors *service.TutorDirectory) *ProfileHandler {
	return &ProfileHandler{
		logger:   logger,
		profiles: profiles,
		tutors:   tutors,
	}
}

// UpdateProfile maneja PUT /users/profile.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Email   string               `json:"email"`
		Profile *domain.ProfileInput `json:"profile"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update profile request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	var in domain.ProfileInput
	if req.Profile != nil {
		in = *req.Profile
	}
	res, err := h.profiles.MergeProfile(c.Request.Context(), req.Email, in)
	if err != nil {
		respondError(c, h.logger, err, "update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"result":  res,
	})
}

// GetProfile maneja GET /users/profile/:email.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	view, err := h.profiles.GetProfile(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, h.logger, err, "fetch profile")
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListTutors maneja GET /users/tutors.
func (h *ProfileHandler) ListTutors(c *gin.Context) {
	tutors, err := h.tutors.ListTutors(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "fetch tutors")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tutors": tutors})
}
