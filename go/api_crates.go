package crateserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	cratehttpmapper "github.com/Apurer/pet-crate-sizer/internal/domains/crates/adapters/http/mapper"
	cratesapp "github.com/Apurer/pet-crate-sizer/internal/domains/crates/application"
	cratestypes "github.com/Apurer/pet-crate-sizer/internal/domains/crates/application/types"
	cratesports "github.com/Apurer/pet-crate-sizer/internal/domains/crates/ports"
	apierrors "github.com/Apurer/pet-crate-sizer/internal/shared/errors"
	"github.com/Apurer/pet-crate-sizer/internal/shared/units"
)

// IdempotencyKeyHeader carries the client's retry key for assessment creation.
const IdempotencyKeyHeader = "Idempotency-Key"

// CrateAPI wires HTTP transport with the crates bounded context service and workflows.
type CrateAPI struct {
	service   cratesports.Service
	workflows cratesports.WorkflowOrchestrator
}

// NewCrateAPI creates a CrateAPI backed by the provided service.
func NewCrateAPI(service cratesports.Service, workflows cratesports.WorkflowOrchestrator) CrateAPI {
	return CrateAPI{service: service, workflows: workflows}
}

// Get /healthz
func (api *CrateAPI) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Post /v1/crates/calculate
// Sizes a crate for one pet. With strict=true unusable measurements are rejected.
func (api *CrateAPI) CalculateCrate(c *gin.Context) {
	var strict *bool
	if err := runtime.BindQueryParameter("form", true, false, "strict", c.Request.URL.Query(), &strict); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("invalid format for parameter strict: %w", err))
		return
	}
	var payload cratehttpmapper.CalculateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	input, unit, err := cratehttpmapper.ToCalculateInput(payload, strict != nil && *strict)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if input.Strict {
		if fields := cratehttpmapper.MeasurementFieldErrors(input.Measurements); fields != nil {
			respondProblem(c, apierrors.NewValidationProblem(fields).WithDetail("measurements are incomplete or invalid"))
			return
		}
	}
	result, err := api.service.Calculate(c.Request.Context(), input)
	if err != nil {
		respondCrateServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cratehttpmapper.FromCalculateResult(result, unit))
}

// Post /v1/crates/calculate/batch
// Sizes several pets; item failures are reported in place.
func (api *CrateAPI) CalculateCrateBatch(c *gin.Context) {
	var payload cratehttpmapper.BatchRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	input, unit, err := cratehttpmapper.ToBatchInput(payload)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	results, err := api.service.CalculateBatch(c.Request.Context(), input)
	if err != nil {
		respondCrateServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cratehttpmapper.FromBatchResults(results, unit))
}

// Get /v1/crates/catalog
// Lists catalog crates, optionally converted to inches.
func (api *CrateAPI) GetCatalog(c *gin.Context) {
	unit, ok := bindUnit(c)
	if !ok {
		return
	}
	catalog, err := api.service.Catalog(c.Request.Context())
	if err != nil {
		respondCrateServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cratehttpmapper.FromCatalog(catalog, unit))
}

// Post /v1/crates/assessments
// Records a strict calculation against a booking reference.
func (api *CrateAPI) CreateAssessment(c *gin.Context) {
	var payload cratehttpmapper.AssessmentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	input, err := cratehttpmapper.ToCreateAssessmentInput(payload, strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)))
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if fields := cratehttpmapper.MeasurementFieldErrors(input.Measurements); fields != nil {
		respondProblem(c, apierrors.NewValidationProblem(fields).WithDetail("measurements are incomplete or invalid"))
		return
	}
	if err := cratesapp.ValidateAssessmentInput(input); err != nil {
		respondCrateServiceError(c, err)
		return
	}
	saved, err := api.recordAssessment(c.Request.Context(), input)
	if err != nil {
		respondCrateServiceError(c, err)
		return
	}
	response := cratehttpmapper.FromProjection(saved)
	c.Header("Location", fmt.Sprintf("/v1/crates/assessments/%d", response.ID))
	c.JSON(http.StatusCreated, response)
}

func (api *CrateAPI) recordAssessment(ctx context.Context, input cratestypes.CreateAssessmentInput) (*cratestypes.AssessmentProjection, error) {
	if api.workflows != nil {
		return api.workflows.RecordAssessment(ctx, input)
	}
	return api.service.CreateAssessment(ctx, input)
}

// Get /v1/crates/assessments
// Lists assessments for a booking reference.
func (api *CrateAPI) ListAssessments(c *gin.Context) {
	var bookingRef string
	if err := runtime.BindQueryParameter("form", true, true, "bookingRef", c.Request.URL.Query(), &bookingRef); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("invalid format for parameter bookingRef: %w", err))
		return
	}
	result, err := api.service.ListAssessments(c.Request.Context(), cratestypes.ListAssessmentsInput{BookingRef: bookingRef})
	if err != nil {
		respondCrateServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cratehttpmapper.FromProjectionList(result))
}

// Get /v1/crates/assessments/:assessmentId
func (api *CrateAPI) GetAssessment(c *gin.Context) {
	id, ok := parseIDParam(c, "assessmentId")
	if !ok {
		return
	}
	result, err := api.service.GetAssessment(c.Request.Context(), cratestypes.AssessmentIdentifier{ID: id})
	if err != nil {
		if errors.Is(err, cratesports.ErrNotFound) {
			respondProblem(c, apierrors.NewNotFoundProblem("assessment", id))
			return
		}
		respondCrateServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cratehttpmapper.FromProjection(result))
}

// Post /v1/crates/assessments/:assessmentId/audit
// Attaches an advisory audit to a stored assessment.
func (api *CrateAPI) AuditAssessment(c *gin.Context) {
	id, ok := parseIDParam(c, "assessmentId")
	if !ok {
		return
	}
	result, err := api.service.AuditAssessment(c.Request.Context(), cratestypes.AssessmentIdentifier{ID: id})
	if err != nil {
		if errors.Is(err, cratesports.ErrNotFound) {
			respondProblem(c, apierrors.NewNotFoundProblem("assessment", id))
			return
		}
		respondCrateServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cratehttpmapper.FromProjection(result))
}

// Post /v1/crates/audit
// Computes a recommendation and asks the advisory auditor to review it.
func (api *CrateAPI) AuditCalculation(c *gin.Context) {
	var payload cratehttpmapper.AuditRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	input, unit, err := cratehttpmapper.ToAuditInput(payload)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if fields := cratehttpmapper.MeasurementFieldErrors(input.Measurements); fields != nil {
		respondProblem(c, apierrors.NewValidationProblem(fields).WithDetail("measurements are incomplete or invalid"))
		return
	}
	result, err := api.service.AuditCalculation(c.Request.Context(), input)
	if err != nil {
		respondCrateServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cratehttpmapper.FromAuditResult(result, unit))
}

func bindUnit(c *gin.Context) (units.Unit, bool) {
	var raw *string
	if err := runtime.BindQueryParameter("form", true, false, "unit", c.Request.URL.Query(), &raw); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("invalid format for parameter unit: %w", err))
		return "", false
	}
	value := ""
	if raw != nil {
		value = *raw
	}
	unit, err := units.Parse(value)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return "", false
	}
	return unit, true
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	value := c.Param(name)
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, fmt.Errorf("%s must be a positive integer", name))
		return 0, false
	}
	return id, true
}
