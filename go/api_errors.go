package crateserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	cratehttpmapper "github.com/Apurer/pet-crate-sizer/internal/domains/crates/adapters/http/mapper"
	cratesapp "github.com/Apurer/pet-crate-sizer/internal/domains/crates/application"
	cratesports "github.com/Apurer/pet-crate-sizer/internal/domains/crates/ports"
	apierrors "github.com/Apurer/pet-crate-sizer/internal/shared/errors"
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
}

// respondError returns RFC 7807 responses for transport-level failures.
func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		return
	}
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest.WithDetail(err.Error())
	case http.StatusNotFound:
		problem = apierrors.ErrNotFound.WithDetail(err.Error())
	case http.StatusConflict:
		problem = apierrors.ErrConflict.WithDetail(err.Error())
	case http.StatusServiceUnavailable:
		problem = apierrors.ErrServiceUnavailable.WithDetail(err.Error())
	default:
		problem = apierrors.ErrInternal.WithDetail(err.Error())
	}
	respondProblem(c, problem)
}

// crateErrorMapper maps crates application errors to problem details.
func crateErrorMapper(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, cratesapp.ErrInvalidInput):
		if fields := cratehttpmapper.FieldErrors(err); fields != nil {
			return apierrors.NewValidationProblem(fields).WithDetail(err.Error()), true
		}
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, cratesports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, cratesports.ErrIdempotencyConflict):
		return apierrors.ErrConflict.WithDetail("Idempotency-Key was already used with a different request"), true
	case errors.Is(err, cratesports.ErrAuditUnavailable), errors.Is(err, cratesports.ErrCatalogNotFound):
		return apierrors.ErrServiceUnavailable.WithDetail(err.Error()), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}

var crateResponder = apierrors.NewResponder("", crateErrorMapper)

func respondCrateServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	crateResponder.RespondError(c, err)
}
