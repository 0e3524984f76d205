package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medivault/api/internal/handler"
	"github.com/medivault/api/internal/model"
	authsvc "github.com/medivault/api/internal/service/auth"
	"github.com/medivault/api/pkg/auth"
)

type Handler struct {
	svc authsvc.AuthService
}

func NewHandler(svc authsvc.AuthService) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the two registration and two login endpoints.
// Patients and labs are separate namespaces; a login against the wrong
// one fails even with a valid email and password.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		patient := authGroup.Group("/patient")
		{
			patient.POST("/register", h.RegisterPatient)
			patient.POST("/login", h.LoginPatient)
		}
		lab := authGroup.Group("/lab")
		{
			lab.POST("/register", h.RegisterLab)
			lab.POST("/login", h.LoginLab)
		}
	}
}

func (h *Handler) RegisterPatient(c *gin.Context) {
	var req model.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(handler.BindErrorMessage(err)))
		return
	}

	patient, err := h.svc.RegisterPatient(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(patient))
}

func (h *Handler) RegisterLab(c *gin.Context) {
	var req model.RegisterLabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(handler.BindErrorMessage(err)))
		return
	}

	lab, err := h.svc.RegisterLab(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(lab))
}

func (h *Handler) LoginPatient(c *gin.Context) {
	h.login(c, auth.RolePatient)
}

func (h *Handler) LoginLab(c *gin.Context) {
	h.login(c, auth.RolePathLab)
}

func (h *Handler) login(c *gin.Context, role auth.Role) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(handler.BindErrorMessage(err)))
		return
	}

	session, err := h.svc.Authenticate(c.Request.Context(), role, req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(session))
}
