package app

import (
	"fmt"
	"strings"

	"talent-match/internal/config"
	"talent-match/internal/delivery/http/middleware"
	"talent-match/internal/delivery/http/routes"
	"talent-match/internal/logger"
	"talent-match/internal/ws"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
	Logger    *zap.Logger
}

func Bootstrap(cfg config.Config) (*App, func() error, error) {
	log, err := logger.New(cfg.App.LogJSON, cfg.App.LogDebug)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	container, err := NewContainer(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	f := fiber.New(fiber.Config{
		AppName: cfg.App.AppName,
	})

	registerGlobalMiddleware(f, log)

	registry := routes.NewRegistry(
		container.Matching,
		container.Dispatch,
		container.Stats,
		container.Engagement,
		ws.NewHandler(container.Hub, log),
	)
	registry.Register(f)

	cleanup := func() error {
		err := container.Close()
		_ = log.Sync()
		return err
	}
	return &App{Fiber: f, Container: container, Logger: log}, cleanup, nil
}

func registerGlobalMiddleware(app *fiber.App, log *zap.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(log).Middleware())
	app.Use(middleware.NewErrorMiddleware(log).Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
