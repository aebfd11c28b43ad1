// Package http exposes the pricing queries over a JSON API built on echo.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"shipcalc/internal/core/application/usecases/queries"
	"shipcalc/internal/core/domain/model/quote"
	"shipcalc/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server binds HTTP requests to query handlers.
type Server struct {
	calculatePriceHandler  *queries.CalculatePriceQueryHandler
	compareCarriersHandler *queries.CompareCarriersQueryHandler
	getBestPriceHandler    *queries.GetBestPriceQueryHandler
	calculateBulkHandler   *queries.CalculateBulkQueryHandler
	resolveZoneHandler     *queries.ResolveZoneQueryHandler
	metricsHandler         http.Handler
	logger                 *slog.Logger
}

func NewServer(
	calculatePriceHandler *queries.CalculatePriceQueryHandler,
	compareCarriersHandler *queries.CompareCarriersQueryHandler,
	getBestPriceHandler *queries.GetBestPriceQueryHandler,
	calculateBulkHandler *queries.CalculateBulkQueryHandler,
	resolveZoneHandler *queries.ResolveZoneQueryHandler,
	metricsHandler http.Handler,
	logger *slog.Logger,
) *Server {
	return &Server{
		calculatePriceHandler:  calculatePriceHandler,
		compareCarriersHandler: compareCarriersHandler,
		getBestPriceHandler:    getBestPriceHandler,
		calculateBulkHandler:   calculateBulkHandler,
		resolveZoneHandler:     resolveZoneHandler,
		metricsHandler:         metricsHandler,
		logger:                 logger.With("component", "http"),
	}
}

// Register mounts all routes on e and installs the request validator.
func (s *Server) Register(e *echo.Echo) {
	e.Validator = NewRequestValidator()

	e.GET("/health", s.Health)
	if s.metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(s.metricsHandler))
	}

	v1 := e.Group("/api/v1")
	v1.POST("/quotes", s.CalculatePrice)
	v1.POST("/quotes/compare", s.CompareCarriers)
	v1.POST("/quotes/best", s.GetBestPrice)
	v1.POST("/quotes/bulk", s.CalculateBulk)
	v1.GET("/zones/resolve", s.ResolveZone)
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.String(http.StatusOK, "Healthy")
}

// CalculatePrice handles POST /api/v1/quotes.
func (s *Server) CalculatePrice(c echo.Context) error {
	var body PriceRequestDTO
	if err := s.bind(c, &body); err != nil {
		return s.fail(c, queries.OperationCalculatePrice, err)
	}
	req, err := body.toDomain()
	if err != nil {
		return s.fail(c, queries.OperationCalculatePrice, err)
	}

	query, err := queries.NewCalculatePriceQuery(req, body.asOf())
	if err != nil {
		return s.fail(c, queries.OperationCalculatePrice, err)
	}
	result, err := s.calculatePriceHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, queries.OperationCalculatePrice, err)
	}
	return c.JSON(http.StatusOK, toQuoteDTO(result))
}

// CompareCarriers handles POST /api/v1/quotes/compare. carrier_code is ignored.
func (s *Server) CompareCarriers(c echo.Context) error {
	var body PriceRequestDTO
	if err := s.bind(c, &body); err != nil {
		return s.fail(c, queries.OperationCompareCarriers, err)
	}
	req, err := body.toDomain()
	if err != nil {
		return s.fail(c, queries.OperationCompareCarriers, err)
	}

	query, err := queries.NewCompareCarriersQuery(req, body.asOf())
	if err != nil {
		return s.fail(c, queries.OperationCompareCarriers, err)
	}
	comparison, err := s.compareCarriersHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, queries.OperationCompareCarriers, err)
	}
	return c.JSON(http.StatusOK, toComparisonDTO(comparison))
}

// GetBestPrice handles POST /api/v1/quotes/best.
func (s *Server) GetBestPrice(c echo.Context) error {
	const operation = "get_best_price"

	var body PriceRequestDTO
	if err := s.bind(c, &body); err != nil {
		return s.fail(c, operation, err)
	}
	req, err := body.toDomain()
	if err != nil {
		return s.fail(c, operation, err)
	}

	query, err := queries.NewGetBestPriceQuery(req, body.asOf())
	if err != nil {
		return s.fail(c, operation, err)
	}
	best, failures, err := s.getBestPriceHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, operation, err)
	}
	return c.JSON(http.StatusOK, BestPriceDTO{Best: toQuoteDTO(best), Failures: toFailureDTOs(failures)})
}

// CalculateBulk handles POST /api/v1/quotes/bulk. A batch with at least one
// priced item answers 200 even if others failed; an aborted or fully failed
// batch answers 422 with the per-item report in the body.
func (s *Server) CalculateBulk(c echo.Context) error {
	var body BulkRequestDTO
	if err := s.bind(c, &body); err != nil {
		return s.fail(c, queries.OperationCalculateBulk, err)
	}

	requests := make([]quote.PriceRequest, len(body.Items))
	for i, item := range body.Items {
		requests[i] = item.toBulkItem()
	}

	var asOf time.Time
	if body.AsOf != nil {
		asOf = *body.AsOf
	}
	query, err := queries.NewCalculateBulkQuery(requests, body.options(), asOf)
	if err != nil {
		return s.fail(c, queries.OperationCalculateBulk, err)
	}

	result, err := s.calculateBulkHandler.Handle(c.Request().Context(), query)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, toBulkResultDTO(result, nil))
	case len(result.Items) > 0:
		code := statusOf(err)
		s.logger.WarnContext(c.Request().Context(), "bulk calculation incomplete",
			"status", code, "failed", result.Failed, "skipped", result.Skipped, "error", err)
		return c.JSON(code, toBulkResultDTO(result, err))
	default:
		return s.fail(c, queries.OperationCalculateBulk, err)
	}
}

// ResolveZone handles GET /api/v1/zones/resolve.
func (s *Server) ResolveZone(c echo.Context) error {
	const operation = "resolve_zone"

	params, err := s.bindResolveZone(c)
	if err != nil {
		return s.fail(c, operation, err)
	}

	var query queries.ResolveZoneQuery
	switch {
	case params.Lat != nil && params.Lng != nil:
		query, err = queries.NewResolveZoneByCoordinatesQuery(*params.Lat, *params.Lng)
	case params.PostalCode != "":
		query, err = queries.NewResolveZoneByPostalCodeQuery(params.PostalCode, params.Country)
	default:
		query, err = queries.NewResolveZoneByCountryQuery(params.Country)
	}
	if err != nil {
		return s.fail(c, operation, err)
	}

	z, err := s.resolveZoneHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, operation, err)
	}
	return c.JSON(http.StatusOK, toZoneDTO(z))
}

func (s *Server) bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}
	return c.Validate(dst)
}

func (s *Server) bindResolveZone(c echo.Context) (ResolveZoneParams, error) {
	params := ResolveZoneParams{
		PostalCode: c.QueryParam("postal_code"),
		Country:    c.QueryParam("country"),
	}

	var lat, lng float64
	binder := echo.QueryParamsBinder(c)
	if c.QueryParam("lat") != "" {
		binder = binder.Float64("lat", &lat)
		params.Lat = &lat
	}
	if c.QueryParam("lng") != "" {
		binder = binder.Float64("lng", &lng)
		params.Lng = &lng
	}
	if err := binder.BindError(); err != nil {
		return ResolveZoneParams{}, errs.NewValueIsInvalidErrorWithCause("coordinates", err)
	}
	return params, c.Validate(params)
}
