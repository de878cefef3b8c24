package city

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/notion-city-proxy/app/notion"
	"github.com/FACorreiaa/notion-city-proxy/internal/api"
)

const (
	msgUpstreamTimeout = "Notion API request timed out"
	msgUpstreamFailed  = "Notion API request failed"
	msgInternalError   = "Internal server error"
)

type Handler struct {
	logger  *slog.Logger
	service Service
}

func NewCityHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// GetAllCities handles GET /api/get-cities and returns a JSON array of names.
func (h *Handler) GetAllCities(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CityHandler").Start(r.Context(), "GetAllCities")
	defer span.End()

	l := h.logger.With(slog.String("method", "GetAllCities"))
	l.InfoContext(ctx, "Retrieving all cities")

	cities, err := h.service.GetAllCities(ctx)
	if err != nil {
		status, message := errorStatus(err)
		l.ErrorContext(ctx, "Failed to retrieve cities",
			slog.Any("error", err),
			slog.Int("status", status),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, message)
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		api.ErrorResponse(w, r, status, message)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, cities)
	l.InfoContext(ctx, "Successfully returned cities", slog.Int("count", len(cities)))
	span.SetStatus(codes.Ok, "Cities returned successfully")
}

// errorStatus maps a service error to the response status and a message that
// is never empty.
func errorStatus(err error) (int, string) {
	var he *notion.HTTPError
	var te *notion.TransportError
	// Transport causes carry the upstream URL, so they are only logged.
	switch {
	case errors.Is(err, notion.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout, msgUpstreamTimeout
	case errors.As(err, &he):
		if he.Message != "" {
			return he.Status(), he.Message
		}
		return he.Status(), fmt.Sprintf("%s (status %d)", msgUpstreamFailed, he.StatusCode)
	case errors.As(err, &te):
		return http.StatusInternalServerError, msgUpstreamFailed
	default:
		return http.StatusInternalServerError, msgInternalError
	}
}
