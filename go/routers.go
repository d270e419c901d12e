package crateserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Middleware runs before HandlerFunc for this route only.
	Middleware []gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := append(append([]gin.HandlerFunc{}, route.Middleware...), route.HandlerFunc)
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, handlers...)
		case http.MethodPost:
			router.POST(route.Pattern, handlers...)
		case http.MethodPut:
			router.PUT(route.Pattern, handlers...)
		case http.MethodPatch:
			router.PATCH(route.Pattern, handlers...)
		case http.MethodDelete:
			router.DELETE(route.Pattern, handlers...)
		}
	}
	return router
}

// DefaultHandleFunc answers routes that have no handler yet.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// ApiHandleFunctions groups the handlers the router serves.
type ApiHandleFunctions struct {
	// Routes for the CrateAPI part of the API
	CrateAPI CrateAPI
	// AuditLimiter throttles the audit endpoint; nil disables throttling.
	AuditLimiter *RateLimiter
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	var auditMiddleware []gin.HandlerFunc
	if handleFunctions.AuditLimiter != nil {
		auditMiddleware = append(auditMiddleware, handleFunctions.AuditLimiter.Handler())
	}
	return []Route{
		{
			Name:        "Healthz",
			Method:      http.MethodGet,
			Pattern:     "/healthz",
			HandlerFunc: handleFunctions.CrateAPI.Healthz,
		},
		{
			Name:        "CalculateCrate",
			Method:      http.MethodPost,
			Pattern:     "/v1/crates/calculate",
			HandlerFunc: handleFunctions.CrateAPI.CalculateCrate,
		},
		{
			Name:        "CalculateCrateBatch",
			Method:      http.MethodPost,
			Pattern:     "/v1/crates/calculate/batch",
			HandlerFunc: handleFunctions.CrateAPI.CalculateCrateBatch,
		},
		{
			Name:        "GetCatalog",
			Method:      http.MethodGet,
			Pattern:     "/v1/crates/catalog",
			HandlerFunc: handleFunctions.CrateAPI.GetCatalog,
		},
		{
			Name:        "CreateAssessment",
			Method:      http.MethodPost,
			Pattern:     "/v1/crates/assessments",
			HandlerFunc: handleFunctions.CrateAPI.CreateAssessment,
		},
		{
			Name:        "ListAssessments",
			Method:      http.MethodGet,
			Pattern:     "/v1/crates/assessments",
			HandlerFunc: handleFunctions.CrateAPI.ListAssessments,
		},
		{
			Name:        "GetAssessment",
			Method:      http.MethodGet,
			Pattern:     "/v1/crates/assessments/:assessmentId",
			HandlerFunc: handleFunctions.CrateAPI.GetAssessment,
		},
		{
			Name:        "AuditAssessment",
			Method:      http.MethodPost,
			Pattern:     "/v1/crates/assessments/:assessmentId/audit",
			HandlerFunc: handleFunctions.CrateAPI.AuditAssessment,
			Middleware:  auditMiddleware,
		},
		{
			Name:        "AuditCalculation",
			Method:      http.MethodPost,
			Pattern:     "/v1/crates/audit",
			HandlerFunc: handleFunctions.CrateAPI.AuditCalculation,
			Middleware:  auditMiddleware,
		},
	}
}
