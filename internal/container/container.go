package container

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/notion-city-proxy/app/notion"
	"github.com/FACorreiaa/notion-city-proxy/app/observability/metrics"
	"github.com/FACorreiaa/notion-city-proxy/config"
	"github.com/FACorreiaa/notion-city-proxy/internal/api/city"
	"github.com/FACorreiaa/notion-city-proxy/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *slog.Logger
	Metrics      *metrics.AppMetrics
	NotionClient *notion.Client
	CityHandler  *city.Handler
}

// NewContainer wires the Notion client, city repository, service and
// handler from an already validated configuration.
func NewContainer(cfg *config.Config, logger *slog.Logger, opts ...notion.Option) (*Container, error) {
	m, err := metrics.InitAppMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	notionClient := notion.NewClient(&cfg.Notion, logger, opts...)

	cityRepo := city.NewCityRepository(notionClient, cfg.Notion.DatabaseID, m, logger)
	cityService := city.NewCityService(cityRepo, cfg.Notion.CityProperty, m, logger)
	cityHandler := city.NewCityHandler(cityService, logger)

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Metrics:      m,
		NotionClient: notionClient,
		CityHandler:  cityHandler,
	}, nil
}

// Router returns the fully wired HTTP handler.
func (c *Container) Router() http.Handler {
	return router.SetupRouter(&router.Config{
		Logger:         c.Logger,
		Metrics:        c.Metrics,
		CityHandler:    c.CityHandler,
		AllowedOrigins: c.Config.AllowedOrigins(),
		RequestTimeout: c.Config.Server.Timeout,
	})
}
