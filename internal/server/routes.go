package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Jimmy200504/CalH2O/internal/database"
	"github.com/Jimmy200504/CalH2O/internal/ml"
	"github.com/Jimmy200504/CalH2O/internal/models"
	"github.com/Jimmy200504/CalH2O/internal/pipeline"
	"github.com/Jimmy200504/CalH2O/internal/schema"
)

// Request schemas are built once; schemas are read-only after construction.
var (
	dailyNeedsSchema = models.DailyNeedsRequestSchema()
	chatSchema       = models.ChatRequestSchema()
	foodPhotoSchema  = models.FoodPhotoRequestSchema()
	statusSchema     = models.StatusSchema()
)

func (s *Server) RegisterRoutes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(s.LoggerMiddleware)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger := zerolog.Ctx(c.Request().Context())
			var event *zerolog.Event
			if v.Error != nil {
				event = logger.Warn().Err(v.Error)
			} else {
				event = logger.Info()
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	}))

	origins := s.cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
		MaxAge:       300,
		// An OPTIONS request without an Origin is not a preflight; let the
		// route answer it.
		Skipper: func(c echo.Context) bool {
			req := c.Request()
			return req.Method == http.MethodOptions && req.Header.Get(echo.HeaderOrigin) == ""
		},
	}))

	if s.cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(s.cfg.RateLimit))))
	}

	e.GET("/health", s.healthHandler)
	e.GET("/users/:userId", s.getUserHandler)
	e.GET("/ws", s.handleWebSocket)

	// Capability endpoints. Route middleware runs after routing, so other
	// methods are rejected with 405 before the content type is checked.
	guards := []echo.MiddlewareFunc{requireJSON}
	if timeout := s.cfg.RequestTimeout(); timeout > 0 {
		guards = append(guards, middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Timeout: timeout,
			ErrorHandler: func(err error, c echo.Context) error {
				return err
			},
		}))
	}
	capabilities := map[string]echo.HandlerFunc{
		"/dailyNeeds":         s.dailyNeedsHandler,
		"/textToNutrition":    s.textToNutritionHandler,
		"/foodPhotoNutrition": s.foodPhotoHandler,
		"/emotionalBlackmail": s.emotionalBlackmailHandler,
	}
	for path, handler := range capabilities {
		e.POST(path, handler, guards...)
		// Without this the router answers OPTIONS itself with 204.
		e.OPTIONS(path, methodNotAllowed)
	}

	return e
}

func methodNotAllowed(echo.Context) error {
	return echo.ErrMethodNotAllowed
}

// LoggerMiddleware tags each request with an id and stores a child logger in
// the request context.
func (s *Server) LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(echo.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set(echo.HeaderXRequestID, requestID)

		logger := s.log.With().Str("request_id", requestID).Logger()
		req := c.Request()
		c.SetRequest(req.WithContext(logger.WithContext(req.Context())))

		return next(c)
	}
}

func requireJSON(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		mediaType, _, err := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType))
		if err != nil || mediaType != echo.MIMEApplicationJSON {
			return echo.NewHTTPError(http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		}
		return next(c)
	}
}

// httpErrorHandler renders every error as {"error": message}.
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}

	if code >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Int("status", code).Msg("request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, map[string]string{"error": msg})
	}
	if err != nil {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("failed to write error response")
	}
}

// decodeRequest checks that body is a JSON object matching s and decodes it
// into out.
func decodeRequest(body []byte, s *schema.Schema, out any) error {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if _, ok := raw.(map[string]any); !ok {
		return errors.New("request body must be a JSON object")
	}
	if err := s.Validate(raw); err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func bind(c echo.Context, s *schema.Schema, out any) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body").SetInternal(err)
	}
	if err := decodeRequest(body, s, out); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// validateDailyNeeds applies the checks a schema cannot express.
func validateDailyNeeds(req *models.DailyNeedsRequest, now time.Time) error {
	if req.UserID == "" {
		return &schema.Violation{Field: "userId", Reason: "must not be empty"}
	}
	if _, err := pipeline.ParseBirthday(req.Birthday, now); err != nil {
		return &schema.Violation{Field: "birthday", Reason: err.Error()}
	}
	return nil
}

func (s *Server) dailyNeedsHandler(c echo.Context) error {
	var req models.DailyNeedsRequest
	if err := bind(c, dailyNeedsSchema, &req); err != nil {
		return err
	}
	if err := validateDailyNeeds(&req, time.Now()); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	needs, err := s.pipelines.DailyNeeds.Run(ctx, req.UserProfile)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute daily needs").SetInternal(err)
	}

	if err := database.MergeUserDocument(ctx, s.store, req.UserID, needs); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save daily needs").SetInternal(err)
	}
	zerolog.Ctx(ctx).Info().Str("user_id", req.UserID).Float64("calories", needs.Calories).Msg("daily needs saved")

	return c.JSON(http.StatusOK, needs)
}

func (s *Server) textToNutritionHandler(c echo.Context) error {
	var req models.ChatRequest
	if err := bind(c, chatSchema, &req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.pipelines.TextToNutrition.Run(c.Request().Context(), req))
}

type foodPhotoRequest struct {
	Image string `json:"image"`
}

func (s *Server) foodPhotoHandler(c echo.Context) error {
	var req foodPhotoRequest
	if err := bind(c, foodPhotoSchema, &req); err != nil {
		return err
	}
	image, err := ml.DecodeImage(req.Image)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := s.pipelines.FoodPhoto.Run(c.Request().Context(), image)
	if errors.Is(err, pipeline.ErrNoFoodRecognized) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to analyze food photo").SetInternal(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) emotionalBlackmailHandler(c echo.Context) error {
	var req models.Status
	if err := bind(c, statusSchema, &req); err != nil {
		return err
	}
	out, err := s.pipelines.EmotionalBlackmail.Run(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate messages").SetInternal(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) healthHandler(c echo.Context) error {
	if err := s.store.Health(c.Request().Context()); err != nil {
		zerolog.Ctx(c.Request().Context()).Warn().Err(err).Msg("store health check failed")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "down", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "up"})
}

func (s *Server) getUserHandler(c echo.Context) error {
	doc, err := s.store.GetDocument(c.Request().Context(), database.UsersCollection, c.Param("userId"))
	if errors.Is(err, database.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read user").SetInternal(err)
	}
	return c.JSON(http.StatusOK, doc)
}
