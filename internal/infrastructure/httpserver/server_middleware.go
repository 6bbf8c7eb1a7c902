package httpserver

import (
	"crypto/rand"

	"github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
)

func (s *Server) setupMiddleware() {
	if s.config.Environment == "development" {
		s.echo.Use(middleware.Logger())
	}
	s.echo.Use(middleware.Recover())

	cors := middleware.DefaultCORSConfig
	if len(s.config.AllowedOrigins) > 0 {
		cors.AllowOrigins = s.config.AllowedOrigins
	}
	s.echo.Use(middleware.CORSWithConfig(cors))

	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return ulid.MustNew(ulid.Now(), rand.Reader).String()
		},
	}))

	s.echo.Use(s.middleware.Metrics.CollectHTTPMetrics())
	s.echo.Use(s.middleware.Logging.RequestLogging())
}
