package record

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medivault/api/internal/handler"
	"github.com/medivault/api/internal/middleware"
	"github.com/medivault/api/internal/model"
	"github.com/medivault/api/internal/service/attachment"
	recordsvc "github.com/medivault/api/internal/service/record"
	"github.com/medivault/api/pkg/auth"
	apperrors "github.com/medivault/api/pkg/errors"
)

const fileFormField = "file"

type Handler struct {
	records     recordsvc.RecordService
	attachments attachment.AttachmentService
}

func NewHandler(records recordsvc.RecordService, attachments attachment.AttachmentService) *Handler {
	return &Handler{records: records, attachments: attachments}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	records := r.Group("/records")
	{
		records.POST("", h.Create)
		records.GET("", h.List)
		records.GET("/:id", h.Get)
	}
	r.GET("/patients/verify/:patientId", h.VerifyPatient)
}

// Create accepts the multipart creation form. The owner field must name
// the caller's own side; the scope key from the token overrides whatever
// the form claims for that side, so a caller can never author a record
// as someone else.
func (h *Handler) Create(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	var req model.CreateRecordRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(handler.BindErrorMessage(err)))
		return
	}

	input, err := h.buildInput(identity, &req)
	if err != nil {
		c.Error(err)
		return
	}

	ref, err := h.storeUpload(c)
	if err != nil {
		c.Error(err)
		return
	}

	record, err := h.records.Create(c.Request.Context(), input, ref)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(record))
}

func (h *Handler) buildInput(identity *auth.Identity, req *model.CreateRecordRequest) (*recordsvc.CreateInput, error) {
	owner := model.RecordOwner(req.Owner)

	input := &recordsvc.CreateInput{
		Title:    req.Title,
		Provider: req.Provider,
		Doctor:   req.Doctor,
		Type:     req.Type,
		Category: req.Category,
		Notes:    req.Notes,
		Owner:    owner,
	}

	date, err := parseRecordDate(req.Date)
	if err != nil {
		return nil, apperrors.Validation("date must be YYYY-MM-DD or RFC 3339")
	}
	input.Date = date

	switch identity.Role {
	case auth.RolePatient:
		if owner != model.OwnerPatient {
			return nil, apperrors.Validation("patients may only create patient-owned records")
		}
		input.PatientIdentifier = identity.ScopeKey
	case auth.RolePathLab:
		if owner != model.OwnerLab {
			return nil, apperrors.Validation("labs may only create lab-owned records")
		}
		labID, err := uuid.Parse(identity.ScopeKey)
		if err != nil {
			return nil, apperrors.Validation("invalid lab scope key")
		}
		input.LabID = &labID
		input.PatientIdentifier = req.PatientID
	default:
		return nil, apperrors.Validation("unknown role")
	}

	return input, nil
}

func (h *Handler) storeUpload(c *gin.Context) (*model.AttachmentRef, error) {
	fileHeader, err := c.FormFile(fileFormField)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Validation("malformed file upload")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, apperrors.Storage("open upload", err)
	}
	defer f.Close()

	return h.attachments.Store(c.Request.Context(), fileHeader.Filename, fileHeader.Size, f)
}

// List returns the caller's records: the lab's issued records or the
// patient's own pool, depending on the token role. With ?patient_id=
// the listing narrows to that patient, still inside the caller's scope.
func (h *Handler) List(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	var records []*model.Record
	var err error
	if patientID := c.Query("patient_id"); patientID != "" {
		records, err = h.records.ListByPatient(c.Request.Context(), identity, patientID)
	} else {
		records, err = h.records.ListForIdentity(c.Request.Context(), identity)
	}
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func (h *Handler) Get(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid record id"))
		return
	}

	record, err := h.records.Get(c.Request.Context(), id, identity)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

// VerifyPatient is the lab-side identity confirmation before attaching
// a record.
func (h *Handler) VerifyPatient(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if identity == nil || identity.Role != auth.RolePathLab {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("verification is a lab operation"))
		return
	}

	verification, err := h.records.VerifyPatient(c.Request.Context(), c.Param("patientId"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(verification))
}

func parseRecordDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
