package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"salespulse/internal/config"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/middleware"
	"salespulse/internal/services"
	"salespulse/pkg/contracts/domain"
)

// ExportRequest is the body of POST /api/sales/exports
type ExportRequest struct {
	Format string `json:"format" validate:"required,reportformat"`
	Top    int    `json:"top,omitempty" validate:"omitempty,min=1"`
	Name   string `json:"name,omitempty" validate:"omitempty,filename"`
}

// SalesHandler handles sales analytics HTTP requests with RFC 7807 errors
type SalesHandler struct {
	service      SalesServiceInterface
	topN         int
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validation   *middleware.ValidationMiddleware
	query        *middleware.QueryParamValidator
}

// NewSalesHandler creates a sales handler. topN is the product count used when
// the request does not name one.
func NewSalesHandler(service SalesServiceInterface, topN int, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SalesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	if topN <= 0 {
		topN = 5
	}

	return &SalesHandler{
		service:      service,
		topN:         topN,
		logger:       logger.With(slog.String("component", "sales_handler")),
		errorHandler: errorHandler,
		validation:   middleware.NewValidationMiddleware(logger, errorHandler),
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the sales routes, mounted under /api/sales
func (h *SalesHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/report", h.GetReport)
	r.Get("/kpis", h.GetKPIs)
	r.Get("/regions", h.GetRegions)
	r.Get("/products", h.GetProducts)
	r.Get("/trend", h.GetTrend)
	r.Get("/preview", h.GetPreview)
	r.Get("/describe", h.GetDescribe)
	r.Get("/stats", h.GetStats)

	r.Route("/exports", func(r chi.Router) {
		r.Get("/", h.ListExports)
		r.With(
			middleware.ContentTypeValidator("application/json"),
			h.validation.ValidateRequest,
		).Post("/", h.CreateExport)
	})
	r.Get("/formats", h.GetFormats)
	r.Get("/sources", h.GetSources)

	r.Delete("/cache", h.InvalidateCache)

	return r
}

// GetReport handles GET /api/sales/report?top=N
func (h *SalesHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	top, ok := h.query.ValidatePositiveInt(w, r, "top", 0)
	if !ok {
		return
	}

	report, err := h.service.Report(r.Context(), top)
	if err != nil {
		h.fail(w, r, "report", err)
		return
	}
	h.success(w, r, report)
}

// GetKPIs handles GET /api/sales/kpis
func (h *SalesHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.service.KPIs(r.Context())
	if err != nil {
		h.fail(w, r, "kpis", err)
		return
	}
	h.success(w, r, kpis)
}

// GetRegions handles GET /api/sales/regions
func (h *SalesHandler) GetRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.service.Regions(r.Context())
	if err != nil {
		h.fail(w, r, "regions", err)
		return
	}
	h.series(w, r, regions)
}

// GetProducts handles GET /api/sales/products?n=N
func (h *SalesHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	n, ok := h.query.ValidatePositiveInt(w, r, "n", h.topN)
	if !ok {
		return
	}

	products, err := h.service.Products(r.Context(), n)
	if err != nil {
		h.fail(w, r, "products", err)
		return
	}
	h.series(w, r, products)
}

// GetTrend handles GET /api/sales/trend
func (h *SalesHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.service.Trend(r.Context())
	if err != nil {
		h.fail(w, r, "trend", err)
		return
	}
	h.series(w, r, trend)
}

// GetPreview handles GET /api/sales/preview?rows=N
func (h *SalesHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.query.ValidateInt(w, r, "rows", 1, config.MaxPreviewRows, 0)
	if !ok {
		return
	}

	preview, err := h.service.Preview(r.Context(), rows)
	if err != nil {
		h.fail(w, r, "preview", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   preview,
		"count":  len(preview.Rows),
	})
}

// GetDescribe handles GET /api/sales/describe
func (h *SalesHandler) GetDescribe(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Describe(r.Context())
	if err != nil {
		h.fail(w, r, "describe", err)
		return
	}
	h.success(w, r, stats)
}

// GetStats handles GET /api/sales/stats
func (h *SalesHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.fail(w, r, "stats", err)
		return
	}
	h.success(w, r, stats)
}

// CreateExport handles POST /api/sales/exports
func (h *SalesHandler) CreateExport(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format, err := domain.ParseReportFormat(req.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		return
	}

	h.logger.InfoContext(r.Context(), "creating export",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("format", string(format)),
		slog.Int("top", req.Top),
	)

	result, err := h.service.Export(r.Context(), format, req.Top, req.Name)
	if err != nil {
		h.fail(w, r, "export", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status":     "success",
		"data":       result,
		"size_human": humanize.Bytes(uint64(result.Size)),
	})
}

// ListExports handles GET /api/sales/exports
func (h *SalesHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	exports, err := h.service.ListExports(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoExportsFound) {
			h.errorHandler.HandleError(w, r, apierrors.ErrNoExports)
			return
		}
		h.fail(w, r, "list exports", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   exports,
		"count":  len(exports),
	})
}

// GetFormats handles GET /api/sales/formats
func (h *SalesHandler) GetFormats(w http.ResponseWriter, r *http.Request) {
	formats := h.service.Formats()
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   formats,
		"count":  len(formats),
	})
}

// GetSources handles GET /api/sales/sources
func (h *SalesHandler) GetSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.service.Sources(r.Context())
	if err != nil {
		h.fail(w, r, "sources", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   sources,
		"count":  len(sources),
	})
}

// InvalidateCache handles DELETE /api/sales/cache
func (h *SalesHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	invalidated := h.service.InvalidateCache()

	h.logger.InfoContext(r.Context(), "dataset cache invalidated",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.Bool("invalidated", invalidated),
	)

	h.success(w, r, map[string]interface{}{
		"invalidated": invalidated,
		"cache":       h.service.CacheStats(),
	})
}

func (h *SalesHandler) success(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

func (h *SalesHandler) series(w http.ResponseWriter, r *http.Request, s domain.Series) {
	if s == nil {
		s = domain.Series{}
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   s,
		"count":  len(s),
	})
}

func (h *SalesHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), "sales request failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	h.errorHandler.HandleError(w, r, err)
}
