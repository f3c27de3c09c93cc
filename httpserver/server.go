package httpserver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	"moviecatalog/errs"
	"moviecatalog/movie"
	"moviecatalog/pkg/config"
	"moviecatalog/pkg/logger"
	"moviecatalog/pkg/sentry"

	sentryecho "github.com/getsentry/sentry-go/echo"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const internalErrorMessage = "Internal server error"

type Server struct {
	// Router is the Echo router instance
	Router *echo.Echo

	// Addr represents the address the server will listen on
	Addr string

	// Allowed origins for CORS
	AllowOrigins []string

	Config *config.Config
	Logger *zap.SugaredLogger

	MovieService movie.Service

	metrics *metrics
}

func New(options ...Options) (*Server, error) {
	s := Server{
		Router: echo.New(),
		Config: config.Empty,
		Logger: logger.NOOPLogger,
	}

	for _, fn := range options {
		if err := fn(&s); err != nil {
			return nil, err
		}
	}

	port := s.Config.Port
	if port == 0 {
		port = 8080
	}
	s.Addr = fmt.Sprintf(":%d", port)
	s.AllowOrigins = s.Config.Origins()
	if len(s.AllowOrigins) == 0 {
		s.AllowOrigins = []string{"*"}
	}

	s.Router.HideBanner = true
	s.Router.Validator = NewValidator()
	s.Router.HTTPErrorHandler = s.handleHTTPError
	s.metrics = newMetrics()

	s.RegisterGlobalMiddlewares()
	s.RegisterHealthRoutes()
	s.RegisterMetricsRoutes()
	s.RegisterSwaggerRoutes()
	s.RegisterMovieRoutes(s.Router.Group("/movies"))
	return &s, nil
}

// Default builds a server from cfg with the no-op logger and no movie service.
func Default(cfg *config.Config) *Server {
	s, err := New(WithConfig(cfg))
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Server) RegisterGlobalMiddlewares() {
	s.Router.Use(middleware.Recover())
	s.Router.Use(middleware.Secure())
	s.Router.Use(middleware.RequestID())
	s.Router.Use(middleware.Gzip())
	s.Router.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	s.Router.Use(s.metrics.middleware)

	if s.Config.RateLimit > 0 {
		// A fractional rate still admits one request per window.
		store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(s.Config.RateLimit),
			Burst: max(1, int(math.Ceil(s.Config.RateLimit))),
		})
		s.Router.Use(middleware.RateLimiter(store))
	}

	// CORS
	if len(s.AllowOrigins) > 0 {
		s.Router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.AllowOrigins,
		}))
	}
}

// writeGuard returns the middlewares protecting mutating routes: an HS256
// bearer token check when a JWT secret is configured, nothing otherwise.
func (s *Server) writeGuard() []echo.MiddlewareFunc {
	if s.Config.Auth.JWTSecret == "" {
		return nil
	}
	return []echo.MiddlewareFunc{
		echojwt.WithConfig(echojwt.Config{
			SigningKey:    []byte(s.Config.Auth.JWTSecret),
			SigningMethod: "HS256",
		}),
	}
}

func (s *Server) Start() error {
	return s.Router.Start(s.Addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Router.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// handleHTTPError writes the error envelope. Server faults are logged and
// reported to Sentry; their details never reach the client.
func (s *Server) handleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Errorw(err.Error(),
			"request_id", requestID(c),
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
		)
		sentry.WithContext(c).Error(err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = writeError(c, status, errorMessage(err, status), err)
	}
	if werr != nil {
		s.Logger.Errorw("write error response", "error", werr, "request_id", requestID(c))
	}
}

// httpStatus maps application error codes to HTTP status codes. Echo
// HTTPErrors keep their own status.
func httpStatus(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}

	switch errs.ErrorCode(err) {
	case errs.EINVALID:
		return http.StatusBadRequest
	case errs.ENOTFOUND:
		return http.StatusNotFound
	case errs.ECONFLICT:
		return http.StatusConflict
	case errs.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case errs.ENOTIMPLEMENTED:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error, status int) string {
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		return internalErrorMessage
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fmt.Sprint(he.Message)
	}
	return errs.ErrorMessage(err)
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
