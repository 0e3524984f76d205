package profile

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medivault/api/internal/handler"
	"github.com/medivault/api/internal/middleware"
	"github.com/medivault/api/internal/model"
	profilesvc "github.com/medivault/api/internal/service/profile"
	"github.com/medivault/api/pkg/auth"
)

// Handler serves the caller's own profile. The principal id always
// comes from the token, never from the path, so there is no
// cross-principal profile read to guard.
type Handler struct {
	svc profilesvc.ProfileService
}

func NewHandler(svc profilesvc.ProfileService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("/profile", h.GetPatient)
		patients.PUT("/profile", h.UpdatePatient)
	}
	labs := r.Group("/labs")
	{
		labs.GET("/profile", h.GetLab)
		labs.PUT("/profile", h.UpdateLab)
	}
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := h.principal(c, auth.RolePatient)
	if !ok {
		return
	}

	patient, err := h.svc.GetPatient(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patient))
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := h.principal(c, auth.RolePatient)
	if !ok {
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(handler.BindErrorMessage(err)))
		return
	}

	patient, err := h.svc.UpdatePatient(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patient))
}

func (h *Handler) GetLab(c *gin.Context) {
	id, ok := h.principal(c, auth.RolePathLab)
	if !ok {
		return
	}

	lab, err := h.svc.GetLab(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(lab))
}

func (h *Handler) UpdateLab(c *gin.Context) {
	id, ok := h.principal(c, auth.RolePathLab)
	if !ok {
		return
	}

	var req model.UpdateLabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(handler.BindErrorMessage(err)))
		return
	}

	lab, err := h.svc.UpdateLab(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(lab))
}

// principal resolves the caller's own id and rejects calls against the
// wrong namespace.
func (h *Handler) principal(c *gin.Context, role auth.Role) (uuid.UUID, bool) {
	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return uuid.Nil, false
	}
	if identity.Role != role {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("profile access is limited to the owner"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(identity.PrincipalID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid principal id"))
		return uuid.Nil, false
	}
	return id, true
}
