package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/itstheanurag/codejudge/internal/api"
	"github.com/itstheanurag/codejudge/internal/config"
	"github.com/itstheanurag/codejudge/internal/database"
	"github.com/itstheanurag/codejudge/internal/executor"
	"github.com/itstheanurag/codejudge/internal/jobs"
	"github.com/itstheanurag/codejudge/internal/judge"
	"github.com/itstheanurag/codejudge/internal/languages"
	"github.com/itstheanurag/codejudge/internal/limiter"
	"github.com/itstheanurag/codejudge/internal/oracle"
	"github.com/itstheanurag/codejudge/internal/preprocess"
	"github.com/itstheanurag/codejudge/internal/problem"
	"github.com/itstheanurag/codejudge/internal/sandbox"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// nobody is used when the server itself runs as root.
const nobody = "65534:65534"

type Server struct {
	conf         *config.Config
	logger       *zerolog.Logger
	httpServer   *http.Server
	db           *database.Database
	redis        *redis.Client
	registry     *languages.Registry
	engine       *sandbox.DockerEngine
	executor     *executor.Executor
	jobs         *jobs.Registry
	orchestrator *jobs.Orchestrator
	rateLimiter  *limiter.RateLimiter
	ctx          context.Context
	cancelFunc   context.CancelFunc
}

func New(
	conf *config.Config,
	logger *zerolog.Logger,
) (_ *Server, err error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{conf: conf, logger: logger, ctx: ctx, cancelFunc: cancel}
	defer func() {
		if err != nil {
			err = multierr.Append(err, s.close())
		}
	}()

	// Initialize components
	s.registry = languages.NewRegistry()
	if conf.Sandbox.LanguagesFile != "" {
		if err := s.registry.LoadOverrides(conf.Sandbox.LanguagesFile); err != nil {
			return nil, fmt.Errorf("failed to load language overrides: %w", err)
		}
	}

	s.engine, err = sandbox.NewDockerEngine(sandbox.Options{
		MemoryBytes: conf.Sandbox.MemoryLimitMb << 20,
		PidsLimit:   conf.Sandbox.PidsLimit,
		NanoCPUs:    int64(conf.Sandbox.CPUs * 1e9),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sandbox: %w", err)
	}

	user, mode := workspaceUser(conf.Sandbox.RunAsHostUser, os.Getuid(), os.Getgid())
	s.executor = executor.NewExecutor(s.registry, s.engine, executor.Options{
		WorkRoot:      conf.Sandbox.WorkRoot,
		WorkspaceMode: mode,
		User:          user,
		WaitGrace:     conf.Sandbox.WaitGrace,
	}, logger)

	store, err := s.problemStore()
	if err != nil {
		return nil, err
	}

	var mirror jobs.Mirror
	if conf.Redis.Addr != "" {
		s.redis, err = jobs.DialRedis(ctx, conf.Redis.Addr, conf.Redis.Password, conf.Redis.DB)
		if err != nil {
			return nil, err
		}
		mirror = jobs.NewRedisMirror(s.redis)
	}

	evaluator := preprocess.NewEvaluator(preprocess.Options{
		Timeout:     conf.Preprocess.Timeout,
		MaxExprSize: conf.Preprocess.MaxExprSize,
	}, logger)
	service := judge.NewService(store, s.executor, oracle.NewGrader(s.executor, logger), evaluator, logger)

	s.jobs = jobs.NewRegistry(conf.Jobs.TTL)
	s.orchestrator = jobs.NewOrchestrator(ctx, s.jobs, service, mirror, logger)

	s.rateLimiter = limiter.NewRateLimiter(
		conf.Limiter.GlobalRPS,
		conf.Limiter.PerIPRPS,
		conf.Limiter.PerIPBurst,
		conf.Limiter.MaxConcurrent,
	)

	handler := api.NewHandler(s.orchestrator, s.executor, logger)

	mux := http.NewServeMux()

	// health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Prometheus metrics endpoint
	mux.Handle("GET /metrics", promhttp.Handler())

	handler.Routes(mux, s.rateLimiter.Middleware)

	s.httpServer = &http.Server{
		Addr:         ":" + conf.Server.Port,
		Handler:      mux,
		ReadTimeout:  time.Duration(conf.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(conf.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(conf.Server.IdleTimeout) * time.Second,
	}

	return s, nil
}

func (s *Server) problemStore() (problem.Store, error) {
	if !s.conf.UsesDatabase() {
		return problem.NewFileStore(s.conf.Problems.Dir), nil
	}

	db, err := database.New(s.conf.Db, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	s.db = db

	store := problem.NewPostgresStore(db.Pool)
	ctx, cancel := context.WithTimeout(s.ctx, database.DatabasePingTimeout*time.Second)
	defer cancel()
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// workspaceUser picks the uid:gid containers run as and the mode of the
// workspaces they must read and write.
func workspaceUser(runAsHost bool, uid, gid int) (string, os.FileMode) {
	if !runAsHost {
		return "", 0o777
	}
	if uid <= 0 {
		return nobody, 0o777
	}
	return strconv.Itoa(uid) + ":" + strconv.Itoa(gid), 0o755
}

func (s *Server) Start() error {
	s.logger.Info().
		Str("port", s.conf.Server.Port).
		Msg("starting HTTP server")

	// Image pulls can take minutes; serve meanwhile and pull on demand.
	if s.conf.Sandbox.PullOnStart {
		go func() {
			if err := ensureImages(s.ctx, s.engine, s.registry.Images()); err != nil {
				s.logger.Warn().Err(err).Msg("failed to pre-pull sandbox images")
				return
			}
			s.logger.Info().Strs("images", s.registry.Images()).Msg("sandbox images ready")
		}()
	}

	go s.jobs.RunSweeper(s.ctx, s.conf.Jobs.SweepInterval, s.logger)
	s.rateLimiter.StartCleanup(s.ctx, time.Minute, s.conf.Limiter.IdleTTL)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}

	return nil
}

// ensureImages pulls every missing image in parallel.
func ensureImages(ctx context.Context, engine sandbox.Engine, images []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, img := range images {
		g.Go(func() error {
			return engine.EnsureImage(ctx, img)
		})
	}
	return g.Wait()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")

	var err error
	if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
		err = fmt.Errorf("failed to shutdown HTTP server: %w", shutdownErr)
	}

	// In-flight jobs see the cancellation; their containers are still removed.
	s.cancelFunc()
	done := make(chan struct{})
	go func() {
		s.orchestrator.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn().Msg("jobs still running at shutdown")
	}

	return multierr.Append(err, s.close())
}

func (s *Server) close() error {
	s.cancelFunc()

	var err error
	if s.engine != nil {
		err = multierr.Append(err, s.engine.Close())
	}
	if s.redis != nil {
		err = multierr.Append(err, s.redis.Close())
	}
	if s.db != nil {
		err = multierr.Append(err, s.db.Close())
	}
	return err
}
