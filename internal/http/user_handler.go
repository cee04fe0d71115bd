package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"edunextgen-api/internal/domain"
	"edunextgen-api/internal/service"
)

// UserHandler mantiene dependencias para endpoints de usuarios.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
	}
}

// CreateUser maneja POST /users: alta en el primer login, refresco en los siguientes.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req struct {
		Email   string               `json:"email"`
		Name    string               `json:"name"`
		Image   string               `json:"image"`
		Role    domain.Role          `json:"role"`
		Profile *domain.ProfileInput `json:"profile"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	res, err := h.userServ.LoginOrCreate(c.Request.Context(), service.CandidateUser{
		Email:   req.Email,
		Name:    req.Name,
		Image:   req.Image,
		Role:    req.Role,
		Profile: req.Profile,
	})
	if err != nil {
		respondError(c, h.logger, err, "save user")
		return
	}

	c.JSON(http.StatusOK, res)
}

// GetUserByEmail maneja GET /users/email/:email.
func (h *UserHandler) GetUserByEmail(c *gin.Context) {
	user, err := h.userServ.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, h.logger, err, "fetch user")
		return
	}
	c.JSON(http.StatusOK, user)
}
