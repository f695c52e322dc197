package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gatebank/internal/answers"
	"gatebank/internal/bank"
	"gatebank/internal/canon"
	"gatebank/internal/config"
	"gatebank/internal/domain"
	"gatebank/internal/infra/file"
	"gatebank/internal/infra/memory"
	pgloader "gatebank/internal/infra/postgres"
	redisinfra "gatebank/internal/infra/redis"
	"gatebank/internal/progress"
	transport "gatebank/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the question bank server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	bankSvc, store, err := buildBank(ctx, cfg, redisClient, pool)
	if err != nil {
		return err
	}

	tracker, err := buildTracker(ctx, cfg, redisClient)
	if err != nil {
		return err
	}
	tracker.SetTotal(bankSvc.Len())
	validUIDs := make(map[string]struct{}, bankSvc.Len())
	for _, q := range bankSvc.Questions() {
		validUIDs[q.UID] = struct{}{}
	}
	if removed, err := tracker.Prune(ctx, validUIDs); err != nil {
		return err
	} else if removed > 0 {
		log.Printf("pruned %d stale progress flags", removed)
	}

	handler := transport.NewHandler(bankSvc, store, tracker)
	wsHandler := transport.NewWSHandler(handler)

	mux := http.NewServeMux()
	handler.Register(mux)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("serving %d questions on :%s", bankSvc.Len(), finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildBank loads the ranked sources, picks the best-joining one, and
// normalizes it into the serving bank.
func buildBank(ctx context.Context, cfg config.Config, redisClient *redis.Client, pool *pgxpool.Pool) (*bank.Service, *answers.Store, error) {
	if len(cfg.Bank.Sources) == 0 {
		return nil, nil, fmt.Errorf("no bank sources configured")
	}

	var loader bank.Loader = bank.NewFileLoader()
	if pool != nil {
		loader = pgloader.NewSourceLoader(pool)
	}
	ttl := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)
	if redisClient != nil {
		loader = redisinfra.NewSourceCache(redisClient, loader, ttl)
	} else {
		loader = memory.NewSourceCache(loader, ttl)
	}

	store, err := answers.Load(answers.Paths{
		ByQuestionUID: cfg.Answers.ByQuestionUID,
		Master:        cfg.Answers.Master,
		ByExamUID:     cfg.Answers.ByExamUID,
		Unsupported:   cfg.Answers.Unsupported,
	})
	if err != nil {
		return nil, nil, err
	}

	var candidates []bank.Candidate
	for _, name := range cfg.Bank.Sources {
		questions, err := loader.LoadSource(ctx, name)
		if err != nil {
			log.Printf("source %s unavailable: %v", name, err)
			continue
		}
		candidates = append(candidates, bank.Candidate{Name: name, Questions: questions})
	}

	normalizer := canon.NewNormalizer(nil)
	best, scores, err := bank.PickBest(candidates, store, normalizer.Normalize)
	if err != nil {
		return nil, nil, err
	}
	for _, score := range scores {
		log.Printf("source %s: %d/%d answered (%.1f%%)", score.Name, score.Answered, score.Total, score.Coverage*100)
	}
	log.Printf("selected source %s", best.Name)

	canonical := normalizeQuestions(ctx, redisClient, ttl, normalizer, best.Questions)
	bankSvc, err := bank.NewService(canonical)
	if err != nil {
		return nil, nil, err
	}
	return bankSvc, store, nil
}

// normalizeQuestions runs the normalizer, going through the
// content-addressed cache when Redis is available so restarts skip
// re-normalizing an unchanged source.
func normalizeQuestions(ctx context.Context, redisClient *redis.Client, ttl time.Duration, normalizer *canon.Normalizer, raw []domain.RawQuestion) []domain.CanonicalQuestion {
	var cache *redisinfra.CanonCache
	var key string
	if redisClient != nil {
		if data, err := json.Marshal(raw); err == nil {
			cache = redisinfra.NewCanonCache(redisClient, ttl)
			key = redisinfra.Key(data)
			if cached, ok, err := cache.Get(ctx, key); err == nil && ok {
				return cached
			}
		}
	}

	canonical := make([]domain.CanonicalQuestion, 0, len(raw))
	for _, q := range raw {
		canonical = append(canonical, normalizer.Normalize(q))
	}
	if cache != nil {
		if err := cache.Set(ctx, key, canonical); err != nil {
			log.Printf("canon cache store: %v", err)
		}
	}
	return canonical
}

func buildTracker(ctx context.Context, cfg config.Config, redisClient *redis.Client) (*progress.Tracker, error) {
	var store progress.Store
	switch {
	case redisClient != nil:
		user := cfg.Progress.User
		if user == "" {
			user = "default"
		}
		store = redisinfra.NewProgressStore(redisClient, user)
	case cfg.Progress.File != "":
		store = file.NewProgressStore(cfg.Progress.File, cfg.Progress.MaxBytes)
	default:
		store = memory.NewProgressStore(0)
	}
	return progress.NewTracker(ctx, store)
}
