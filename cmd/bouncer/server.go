package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"
	"gorm.io/gorm"

	"github.com/quillfeed/gatekeeper/govern"
	"github.com/quillfeed/gatekeeper/govern/countstore"
	"github.com/quillfeed/gatekeeper/govern/moderation"
	"github.com/quillfeed/gatekeeper/govern/moderation/keyword"
	"github.com/quillfeed/gatekeeper/govern/moderation/remote"
	"github.com/quillfeed/gatekeeper/govern/ratelimit"
	"github.com/quillfeed/gatekeeper/govern/reports"
	"github.com/quillfeed/gatekeeper/govern/validate"
	"github.com/quillfeed/gatekeeper/util/cliutil"
)

type Server struct {
	echo         *echo.Echo
	logger       *slog.Logger
	engine       *govern.Engine
	ledger       *reports.Ledger
	db           *gorm.DB
	contentField string
	jwtSecret    string
}

type Config struct {
	Logger           *slog.Logger
	DatabaseURL      string
	MaxDBConnections int
	RedisURL         string
	ContentField     string
	MaxPostLength    int
	HourlyPostLimit  int
	FlagThreshold    float64
	ScorerHost       string
	ScorerAPIToken   string
	ScorerRateLimit  int
	WordSetsJSONFile string
	JWTSecret        string
}

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	var counters countstore.CountStore
	if config.RedisURL != "" {
		cnt, err := countstore.NewRedisCountStore(config.RedisURL, ratelimit.DefaultWindow)
		if err != nil {
			return nil, err
		}
		counters = cnt
		logger.Info("using redis rate counters")
	} else {
		counters = countstore.NewMemCountStore(ratelimit.DefaultWindow)
	}

	var scorer moderation.Scorer
	if config.ScorerHost != "" {
		logger.Info("using remote moderation scorer", "host", config.ScorerHost)
		scorer = remote.NewClient(config.ScorerHost, config.ScorerAPIToken, config.ScorerRateLimit)
	} else {
		ks := keyword.NewScorer()
		if config.WordSetsJSONFile != "" {
			if err := ks.LoadFromFileJSON(config.WordSetsJSONFile); err != nil {
				return nil, err
			}
			logger.Info("loaded word sets from JSON", "path", config.WordSetsJSONFile)
		}
		scorer = ks
	}

	var store reports.ReportStore
	var db *gorm.DB
	if config.DatabaseURL != "" {
		var err error
		db, err = cliutil.SetupDatabase(config.DatabaseURL, config.MaxDBConnections)
		if err != nil {
			return nil, err
		}
		store, err = reports.NewGormReportStore(db)
		if err != nil {
			return nil, err
		}
	} else {
		store = reports.NewMemReportStore()
	}

	engine := &govern.Engine{
		Logger:    logger,
		MaxLength: config.MaxPostLength,
		Governor:  ratelimit.NewGovernor(counters, ratelimit.DefaultWindow, config.HourlyPostLimit, logger),
		Evaluator: moderation.NewEvaluator(scorer, config.FlagThreshold, logger),
		Counters:  counters,
	}

	contentField := config.ContentField
	if contentField == "" {
		contentField = "content"
	}

	return &Server{
		logger:       logger,
		engine:       engine,
		ledger:       reports.NewLedger(store, logger),
		db:           db,
		contentField: contentField,
		jwtSecret:    config.JWTSecret,
	}, nil
}

func (s *Server) buildEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(s.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64K"))
	e.Use(s.actorMiddleware)
	e.HTTPErrorHandler = s.errorHandler

	e.POST("/api/v1/posts", s.handleCreatePost)
	e.POST("/api/v1/reports", s.handleCreateReport)
	e.GET("/_health", s.HandleHealthCheck)
	return e
}

func (s *Server) RunAPI(bind string) error {
	e := s.buildEcho()
	s.echo = e

	srv := &http.Server{
		Addr:         bind,
		Handler:      e,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return e.StartServer(srv)
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.echo != nil {
		return s.echo.Shutdown(ctx)
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Data  any    `json:"data"`
}

// Maps the governance error taxonomy to HTTP statuses. Policy rejections are
// 4xx; 500 stays reserved for genuinely unexpected defects.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var ve *validate.ValidationError
	var rle *ratelimit.Exceeded
	var mbe *moderation.BlockedError
	var rpe *reports.ReportError
	var he *echo.HTTPError

	switch {
	case errors.As(err, &ve):
		var data any
		if ve.Kind == validate.KindTooLong {
			data = map[string]int{
				"currentLength": ve.CurrentLength,
				"maxLength":     ve.MaxLength,
			}
		}
		c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Message, Kind: string(ve.Kind), Data: data})
	case errors.As(err, &rle):
		c.JSON(http.StatusTooManyRequests, errorResponse{
			Error: "rate limit exceeded",
			Kind:  "rate_limit_exceeded",
			Data: map[string]any{
				"limit":     rle.Limit,
				"current":   rle.Current,
				"resetTime": rle.ResetTime.UTC().Format(time.RFC3339),
			},
		})
	case errors.As(err, &mbe):
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: "content blocked by moderation policy",
			Kind:  "moderation_blocked",
			Data: map[string]any{
				"reasons":    mbe.Reasons,
				"categories": mbe.Categories,
				"severity":   mbe.Severity,
			},
		})
	case errors.As(err, &rpe):
		status := http.StatusBadRequest
		if rpe.Kind == reports.KindUnauthenticated {
			status = http.StatusUnauthorized
		}
		c.JSON(status, errorResponse{Error: rpe.Message, Kind: string(rpe.Kind), Data: nil})
	case errors.As(err, &he):
		c.JSON(he.Code, errorResponse{Error: http.StatusText(he.Code), Data: nil})
	default:
		s.logger.Error("unexpected handler error", "err", err, "path", c.Path())
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error", Data: nil})
	}
}

func (s *Server) handleCreatePost(c echo.Context) error {
	ctx := c.Request().Context()
	requestsReceived.WithLabelValues("post").Inc()

	// free-form body; only the configured content field is interpreted here,
	// everything else passes through as scorer metadata
	var body map[string]any
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var content *string
	if raw, ok := body[s.contentField]; ok {
		if str, ok := raw.(string); ok {
			content = &str
		}
	}

	meta := make(map[string]string)
	for k, v := range body {
		if k == s.contentField {
			continue
		}
		if str, ok := v.(string); ok {
			meta[k] = str
		}
	}

	sub := govern.Submission{
		AuthorID:    actorID(c),
		RawText:     content,
		SubmittedAt: time.Now().UTC(),
		Metadata:    meta,
	}
	ctx, span := tracer.Start(ctx, "processSubmission")
	defer span.End()
	verdict, err := s.engine.ProcessSubmission(ctx, sub)
	if err != nil {
		return err
	}

	resp := map[string]any{
		"allowed": true,
		"content": verdict.Text,
	}
	if verdict.State == govern.StateFlagged {
		resp["moderationFlag"] = verdict.Moderation
	}
	return c.JSON(http.StatusOK, resp)
}

type createReportRequest struct {
	ContentID string `json:"contentId"`
	Reason    string `json:"reason"`
	Category  string `json:"category"`
}

func (s *Server) handleCreateReport(c echo.Context) error {
	ctx := c.Request().Context()
	requestsReceived.WithLabelValues("report").Inc()

	var body createReportRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	report, err := s.ledger.Submit(ctx, body.ContentID, actorID(c), body.Reason, body.Category)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"reportId": report.ID,
		"status":   string(report.Status),
	})
}

type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"msg,omitempty"`
}

func (s *Server) HandleHealthCheck(c echo.Context) error {
	if s.db != nil {
		if err := s.db.Exec("SELECT 1").Error; err != nil {
			s.logger.Error("healthcheck can't connect to database", "err", err)
			return c.JSON(500, HealthStatus{Status: "error", Message: "can't connect to database"})
		}
	}
	return c.JSON(200, HealthStatus{Status: "ok"})
}
