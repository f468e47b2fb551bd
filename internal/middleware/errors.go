package middleware

import (
	"net/http"

	"github.com/go-chi/render"

	apierrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
)

// ProblemFromStatus creates problem details for a status the middleware
// chain produces on its own, before any handler runs.
func ProblemFromStatus(status int, detail, instance string) *apierrors.ProblemDetails {
	var title, problemType string

	switch status {
	case http.StatusBadRequest:
		title = "Bad Request"
		problemType = apierrors.TypeValidation
	case http.StatusRequestEntityTooLarge:
		title = "Request Entity Too Large"
		problemType = apierrors.TypeValidation
	case http.StatusUnsupportedMediaType:
		title = "Unsupported Media Type"
		problemType = apierrors.TypeValidation
	case http.StatusNotFound:
		title = "Not Found"
		problemType = apierrors.TypeNotFound
	case http.StatusTooManyRequests:
		title = "Too Many Requests"
		problemType = apierrors.TypeRateLimit
	case http.StatusServiceUnavailable:
		title = "Service Unavailable"
		problemType = apierrors.TypeServiceDown
	case http.StatusGatewayTimeout:
		title = "Request Timeout"
		problemType = apierrors.TypeTimeout
	case http.StatusInternalServerError:
		title = "Internal Server Error"
		problemType = apierrors.TypeInternal
	default:
		title = http.StatusText(status)
		problemType = "/errors/unknown"
	}

	return apierrors.NewProblemDetails(status, problemType, title, detail, instance)
}

// writeProblem renders a problem response tagged with the request trace ID
func writeProblem(w http.ResponseWriter, r *http.Request, problem *apierrors.ProblemDetails) {
	if traceID := infrastructure.GetTraceID(r.Context()); traceID != "" {
		problem.WithExtension("trace_id", traceID)
	}
	_ = render.Render(w, r, problem)
}
