package http_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpin "shipcalc/internal/adapters/in/http"
	"shipcalc/internal/adapters/out/memory"
	"shipcalc/internal/adapters/out/metrics"
	"shipcalc/internal/core/application/usecases/queries"
	"shipcalc/internal/core/domain/model/catalog/catalogtest"
	"shipcalc/internal/pkg/workpool"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ServerTestSuite struct {
	suite.Suite
	store *memory.CatalogStore
	e     *echo.Echo
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)

	s.store = memory.NewCatalogStore()
	s.store.Replace(catalogtest.Snapshot(s.T()))

	pool, err := workpool.New(4, time.Second, 5*time.Second)
	s.Require().NoError(err)

	reg := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(reg)

	compare := queries.NewCompareCarriersQueryHandler(s.store, pool, recorder, logger)
	server := httpin.NewServer(
		queries.NewCalculatePriceQueryHandler(s.store, pool, recorder, logger),
		compare,
		queries.NewGetBestPriceQueryHandler(compare),
		queries.NewCalculateBulkQueryHandler(s.store, pool, recorder, 5, logger),
		queries.NewResolveZoneQueryHandler(s.store),
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		logger,
	)

	s.e = echo.New()
	server.Register(s.e)
}

func (s *ServerTestSuite) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *ServerTestSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Healthy", rec.Body.String())
}

func (s *ServerTestSuite) TestCalculatePrice() {
	rec := s.do(http.MethodPost, "/api/v1/quotes", `{
		"carrier_code": "INPOST",
		"postal_code": "00-950",
		"country": "PL",
		"weight_kg": 0.5
	}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	got := decode[httpin.QuoteDTO](s.T(), rec)
	s.Equal("INPOST", got.CarrierCode)
	s.Equal("LOCAL", got.ZoneCode)
	s.Equal(2, got.TableVersion)
	s.Equal("8.5", got.NetPrice)
	s.Equal("1.96", got.Tax)
	s.Equal("10.46", got.TotalPrice)
	s.Equal("PLN", got.Currency)
	s.Contains(got.AppliedRules, "inpost-l-01")
}

func (s *ServerTestSuite) TestCalculatePrice_AcceptsDecimalStrings() {
	rec := s.do(http.MethodPost, "/api/v1/quotes", `{
		"carrier_code": "INPOST",
		"zone_code": "LOCAL",
		"weight_kg": "12",
		"dimensions_cm": {"length": "10", "width": "10", "height": "10"}
	}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("26", decode[httpin.QuoteDTO](s.T(), rec).NetPrice)
}

func (s *ServerTestSuite) TestCalculatePrice_Errors() {
	tests := map[string]struct {
		body string
		want int
	}{
		"malformed json":         {`{"weight_kg": `, http.StatusBadRequest},
		"zero weight":            {`{"carrier_code": "INPOST", "zone_code": "LOCAL", "weight_kg": 0}`, http.StatusBadRequest},
		"no destination":         {`{"carrier_code": "INPOST", "weight_kg": 1}`, http.StatusBadRequest},
		"three letter country":   {`{"carrier_code": "INPOST", "country": "POL", "weight_kg": 1}`, http.StatusBadRequest},
		"negative dimension":     {`{"carrier_code": "INPOST", "zone_code": "LOCAL", "weight_kg": 1, "dimensions_cm": {"length": -1}}`, http.StatusBadRequest},
		"unknown zone":           {`{"carrier_code": "INPOST", "zone_code": "MARS", "weight_kg": 1}`, http.StatusUnprocessableEntity},
		"unknown carrier":        {`{"carrier_code": "ACME", "zone_code": "LOCAL", "weight_kg": 1}`, http.StatusUnprocessableEntity},
		"over carrier max":       {`{"carrier_code": "INPOST", "zone_code": "LOCAL", "weight_kg": 40}`, http.StatusUnprocessableEntity},
		"carrier not in zone":    {`{"carrier_code": "INPOST", "zone_code": "EU", "weight_kg": 1}`, http.StatusUnprocessableEntity},
		"missing carrier code":   {`{"zone_code": "LOCAL", "weight_kg": 1}`, http.StatusBadRequest},
		"blank additional entry": {`{"carrier_code": "INPOST", "zone_code": "LOCAL", "weight_kg": 1, "additional_services": [""]}`, http.StatusBadRequest},
	}
	for name, tt := range tests {
		s.Run(name, func() {
			rec := s.do(http.MethodPost, "/api/v1/quotes", tt.body)
			s.Equal(tt.want, rec.Code, rec.Body.String())

			got := decode[httpin.ErrorDTO](s.T(), rec)
			s.Equal(tt.want, got.Code)
			s.NotEmpty(got.Message)
		})
	}
}

func (s *ServerTestSuite) TestCalculatePrice_CatalogNotLoaded() {
	pool, err := workpool.New(1, time.Second, time.Second)
	s.Require().NoError(err)
	logger := slog.New(slog.DiscardHandler)
	empty := memory.NewCatalogStore()
	recorder := metrics.NewRecorder(prometheus.NewRegistry())
	compare := queries.NewCompareCarriersQueryHandler(empty, pool, recorder, logger)

	e := echo.New()
	httpin.NewServer(
		queries.NewCalculatePriceQueryHandler(empty, pool, recorder, logger),
		compare,
		queries.NewGetBestPriceQueryHandler(compare),
		queries.NewCalculateBulkQueryHandler(empty, pool, recorder, 0, logger),
		queries.NewResolveZoneQueryHandler(empty),
		nil,
		logger,
	).Register(e)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes",
		strings.NewReader(`{"carrier_code": "INPOST", "zone_code": "LOCAL", "weight_kg": 1}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	s.Equal(http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerTestSuite) TestCompareCarriers() {
	rec := s.do(http.MethodPost, "/api/v1/quotes/compare", `{
		"carrier_code": "IGNORED",
		"postal_code": "00-950",
		"country": "PL",
		"weight_kg": 0.5
	}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	got := decode[httpin.ComparisonDTO](s.T(), rec)
	s.Equal("LOCAL", got.ZoneCode)
	s.Require().Len(got.Results, 2)
	s.Equal("DPD", got.Results[0].CarrierCode)
	s.Equal("11.07", got.Results[0].TotalPrice)
	s.Equal("INPOST", got.Results[1].CarrierCode)
	s.Equal("10.46", got.Results[1].TotalPrice)
	s.Empty(got.Failures)
}

func (s *ServerTestSuite) TestCompareCarriers_PartialAndAllFailed() {
	rec := s.do(http.MethodPost, "/api/v1/quotes/compare", `{"country": "DE", "weight_kg": 40}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	got := decode[httpin.ComparisonDTO](s.T(), rec)
	s.Require().Len(got.Results, 1)
	s.Equal("DHL", got.Results[0].CarrierCode)
	s.Require().Len(got.Failures, 1)
	s.Equal("DPD", got.Failures[0].CarrierCode)
	s.Contains(got.Failures[0].Error, "carrier cannot handle shipment")

	rec = s.do(http.MethodPost, "/api/v1/quotes/compare", `{"country": "DE", "weight_kg": 80}`)
	s.Equal(http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func (s *ServerTestSuite) TestGetBestPrice() {
	rec := s.do(http.MethodPost, "/api/v1/quotes/best", `{"postal_code": "00-950", "country": "PL", "weight_kg": 0.5}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	got := decode[httpin.BestPriceDTO](s.T(), rec)
	s.Equal("INPOST", got.Best.CarrierCode)
	s.Equal("10.46", got.Best.TotalPrice)
}

func (s *ServerTestSuite) TestCalculateBulk() {
	rec := s.do(http.MethodPost, "/api/v1/quotes/bulk", `{
		"items": [
			{"carrier_code": "INPOST", "zone_code": "LOCAL", "weight_kg": 0.5},
			{"carrier_code": "ACME",   "zone_code": "LOCAL", "weight_kg": 0.5},
			{"carrier_code": "DPD",    "zone_code": "LOCAL", "weight_kg": 0.5}
		]
	}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	got := decode[httpin.BulkResultDTO](s.T(), rec)
	s.Equal(2, got.Successful)
	s.Equal(1, got.Failed)
	s.Require().Len(got.Items, 3)
	s.Equal("failed", got.Items[1].Status)
	s.Contains(got.Items[1].Error, "unknown carrier")
	s.Nil(got.Items[1].Quote)
	s.Require().Len(got.Totals, 1)
	s.Equal("21.53", got.Totals[0].Gross)
	s.Empty(got.Error)
}

func (s *ServerTestSuite) TestCalculateBulk_Discount() {
	rec := s.do(http.MethodPost, "/api/v1/quotes/bulk", `{
		"items": [
			{"carrier_code": "INPOST", "zone_code": "LOCAL", "weight_kg": 0.5},
			{"carrier_code": "DPD",    "zone_code": "LOCAL", "weight_kg": 0.5}
		],
		"discount": {"min_items": 2, "percent": 10}
	}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	got := decode[httpin.BulkResultDTO](s.T(), rec)
	s.Require().Len(got.Totals, 1)
	s.Equal("2.15", got.Totals[0].Discount)
	s.Equal("19.38", got.Totals[0].Net)
	s.NotEmpty(got.Warnings)
}

func (s *ServerTestSuite) TestCalculateBulk_InvalidItemFailsAlone() {
	tests := map[string]struct {
		item string
		want string
	}{
		"zero weight": {
			`{"carrier_code": "DPD", "zone_code": "LOCAL", "weight_kg": "0"}`,
			"weight_kg",
		},
		"negative dimensions": {
			`{"carrier_code": "DPD", "zone_code": "LOCAL", "weight_kg": 1, "dimensions_cm": {"length": -1, "width": 10, "height": 10}}`,
			"dimensions_cm",
		},
	}

	for name, tt := range tests {
		s.Run(name, func() {
			rec := s.do(http.MethodPost, "/api/v1/quotes/bulk", `{
				"items": [
					{"carrier_code": "INPOST", "zone_code": "LOCAL", "weight_kg": 0.5},
					`+tt.item+`,
					{"carrier_code": "DPD",    "zone_code": "LOCAL", "weight_kg": 0.5}
				]
			}`)
			s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

			got := decode[httpin.BulkResultDTO](s.T(), rec)
			s.Equal(2, got.Successful)
			s.Equal(1, got.Failed)
			s.Require().Len(got.Items, 3)
			s.Equal("failed", got.Items[1].Status)
			s.Contains(got.Items[1].Error, tt.want)
			s.Equal("succeeded", got.Items[2].Status)
		})
	}
}

func (s *ServerTestSuite) TestCalculateBulk_Errors() {
	s.Run("every item failed keeps the report", func() {
		rec := s.do(http.MethodPost, "/api/v1/quotes/bulk", `{
			"items": [
				{"carrier_code": "ACME", "zone_code": "LOCAL", "weight_kg": 1},
				{"carrier_code": "INPOST", "zone_code": "MARS", "weight_kg": 1}
			]
		}`)
		s.Require().Equal(http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

		got := decode[httpin.BulkResultDTO](s.T(), rec)
		s.Equal(2, got.Failed)
		s.Contains(got.Error, "bulk calculation failed")
	})

	s.Run("empty batch", func() {
		rec := s.do(http.MethodPost, "/api/v1/quotes/bulk", `{"items": []}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("too many items", func() {
		item := `{"carrier_code": "INPOST", "zone_code": "LOCAL", "weight_kg": 1}`
		items := strings.TrimSuffix(strings.Repeat(item+",", 6), ",")
		rec := s.do(http.MethodPost, "/api/v1/quotes/bulk", `{"items": [`+items+`]}`)
		s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	s.Run("invalid discount", func() {
		rec := s.do(http.MethodPost, "/api/v1/quotes/bulk", `{
			"items": [{"carrier_code": "INPOST", "zone_code": "LOCAL", "weight_kg": 1}],
			"discount": {"min_items": 1, "percent": 150}
		}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *ServerTestSuite) TestResolveZone() {
	tests := map[string]struct {
		query string
		want  string
	}{
		"postal code":  {"postal_code=02-495&country=PL", "LOCAL"},
		"country only": {"country=FR", "EU"},
		"coordinates":  {"lat=52.23&lng=21.01", "LOCAL"},
		"fallback":     {"country=US", "WORLD"},
	}
	for name, tt := range tests {
		s.Run(name, func() {
			rec := s.do(http.MethodGet, "/api/v1/zones/resolve?"+tt.query, "")
			s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
			s.Equal(tt.want, decode[httpin.ZoneDTO](s.T(), rec).Code)
		})
	}

	for name, query := range map[string]string{
		"nothing":          "",
		"lat without lng":  "lat=52.2",
		"lat not number":   "lat=north&lng=21",
		"lat out of range": "lat=95&lng=21",
	} {
		s.Run(name, func() {
			rec := s.do(http.MethodGet, "/api/v1/zones/resolve?"+query, "")
			s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func (s *ServerTestSuite) TestMetricsEndpoint() {
	s.do(http.MethodPost, "/api/v1/quotes", `{"carrier_code": "INPOST", "zone_code": "LOCAL", "weight_kg": 1}`)

	rec := s.do(http.MethodGet, "/metrics", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `shipcalc_calculations_total{operation="calculate_price",outcome="success"} 1`)
}

func TestRequestValidator_Decimals(t *testing.T) {
	v := httpin.NewRequestValidator()

	var ok httpin.PriceRequestDTO
	require.NoError(t, json.Unmarshal([]byte(`{"zone_code": "LOCAL", "weight_kg": "0.01"}`), &ok))
	require.NoError(t, v.Validate(ok))

	var zero httpin.PriceRequestDTO
	require.NoError(t, json.Unmarshal([]byte(`{"zone_code": "LOCAL", "weight_kg": "0"}`), &zero))
	assert.Error(t, v.Validate(zero))
}
