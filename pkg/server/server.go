package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"golang.org/x/sync/errgroup"

	"github.com/fastship/fastship/pkg/config"
	"github.com/fastship/fastship/pkg/infra/prometheus"
	"github.com/fastship/fastship/pkg/server/router"
)

type Server interface {
	Run() error
	Shutdown() error
}

type BaseServer struct {
	Config *config.Config
	Logger *logrus.Logger
	Router *fiber.App
}

func NewBaseServer(cfg *config.Config, logger *logrus.Logger) *BaseServer {
	r := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Network:               fiber.NetworkTCP,
		BodyLimit:             4 * 1024 * 1024,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	r.Server().NoDefaultServerHeader = true
	r.Server().NoDefaultDate = true

	return &BaseServer{
		Config: cfg,
		Logger: logger,
		Router: r,
	}
}

func (s *BaseServer) WithRouters(routers ...router.ServerRouter) *BaseServer {
	for _, r := range routers {
		if err := r.BuildRoutes(s.Router); err != nil {
			s.Logger.WithError(err).Error("failed to build routes")
		}
	}
	return s
}

func newMetricsApp() *fiber.App {
	metricsApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	metricsApp.Use(recover.New())
	metricsApp.Get("/metrics", func(c *fiber.Ctx) error {
		handler := fasthttpadaptor.NewFastHTTPHandler(prometheus.Handler())
		handler(c.Context())
		return nil
	})
	return metricsApp
}

// APIServer is the public listener carrying the admission pipeline and the
// business routes, plus the metrics side listener.
type APIServer struct {
	*BaseServer
	metricsApp *fiber.App
}

func NewAPIServer(cfg *config.Config, logger *logrus.Logger, routers ...router.ServerRouter) *APIServer {
	base := NewBaseServer(cfg, logger).WithRouters(routers...)
	return &APIServer{
		BaseServer: base,
		metricsApp: newMetricsApp(),
	}
}

func (s *APIServer) Run() error {
	g := new(errgroup.Group)

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", s.Config.Server.MetricsPort)
		s.Logger.WithField("addr", addr).Info("starting metrics server")
		if err := s.metricsApp.Listen(addr); err != nil {
			if strings.Contains(err.Error(), "address already in use") {
				s.Logger.WithError(err).Warn("metrics port busy, metrics disabled")
				return nil
			}
			return err
		}
		return nil
	})

	g.Go(func() error {
		addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
		s.Logger.WithField("addr", addr).Info("starting api server")
		return s.Router.Listen(addr)
	})

	return g.Wait()
}

func (s *APIServer) Shutdown() error {
	if err := s.metricsApp.ShutdownWithTimeout(5 * time.Second); err != nil {
		s.Logger.WithError(err).Warn("metrics server shutdown failed")
	}
	return s.Router.ShutdownWithTimeout(10 * time.Second)
}
