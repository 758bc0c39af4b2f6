package main

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/forum-platform/internal/platform/auth"
	"github.com/example/forum-platform/internal/platform/config"
	"github.com/example/forum-platform/internal/platform/db"
	"github.com/example/forum-platform/internal/platform/events"
	"github.com/example/forum-platform/internal/platform/httpserver"
	"github.com/example/forum-platform/internal/platform/logging"
	"github.com/example/forum-platform/internal/platform/natsconn"
	"github.com/example/forum-platform/internal/platform/run"
	"github.com/example/forum-platform/services/forum/internal/catalog"
	forumconfig "github.com/example/forum-platform/services/forum/internal/config"
	forumhandlers "github.com/example/forum-platform/services/forum/internal/handlers"
	"github.com/example/forum-platform/services/forum/internal/ledger"
	"github.com/example/forum-platform/services/forum/internal/payload"
	"github.com/example/forum-platform/services/forum/internal/replies"
	"github.com/example/forum-platform/services/forum/internal/threads"
	"github.com/example/forum-platform/services/forum/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	newLogger := logging.New
	if cfg.Env == "dev" {
		newLogger = logging.NewDev
	}
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	forumCfg, err := forumconfig.LoadForum()
	if err != nil {
		log.Error("load forum config", zap.Error(err))
		run.Exit(1)
	}

	pool, err := db.Open(context.Background())
	if err != nil {
		log.Error("open db", zap.Error(err))
		run.Exit(1)
	}
	defer pool.Close()

	var pub *events.Publisher
	var js nats.JetStreamContext
	if forumCfg.NATSURL != "" {
		nc, err := natsconn.Connect(natsconn.Options{URL: forumCfg.NATSURL})
		if err != nil {
			log.Error("connect nats", zap.Error(err))
			run.Exit(1)
		}
		defer nc.Close()
		js, err = nc.JetStream()
		if err != nil {
			log.Error("init jetstream", zap.Error(err))
			run.Exit(1)
		}
		pub = events.New(js, log)
	}

	store := catalog.NewPostgresStore(pool)
	ledgerc := ledger.New(forumCfg.LedgerBaseURL, forumCfg.LedgerAuthToken)
	encoder := payload.New(forumCfg.StorageBaseURL)

	tsvc := &threads.Service{
		Catalog: store,
		Ledger:  ledgerc,
		Events:  pub,
		AppID:   forumCfg.AppID,
		Log:     log,
	}
	rsvc := &replies.Service{
		Catalog: store,
		Ledger:  ledgerc,
		Encoder: encoder,
		Events:  pub,
		Log:     log,
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		ReadyFunc: func() error { return pool.Ping(context.Background()) },
	})

	verifier := auth.JWTVerifier{Secret: forumCfg.JWTSecret}

	r.Route("/v1/communities/{community_id}", func(r chi.Router) {
		r.Get("/threads", forumhandlers.ListThreads(tsvc))
		r.Get("/categories", forumhandlers.ListCategories(store))
		r.Get("/tags", forumhandlers.ListTags(store))
	})
	r.Route("/v1/threads/{thread_id}", func(r chi.Router) {
		r.Get("/", forumhandlers.GetThread(tsvc))
		r.Get("/replies", forumhandlers.ListReplies(tsvc))
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser(verifier))
			r.Post("/replies", forumhandlers.CreateReply(tsvc, rsvc))
		})
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Logger: log, Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		if js != nil {
			consumer := &worker.CountersConsumer{Store: store, Ledger: ledgerc, Log: log}
			if err := consumer.Start(ctx, js); err != nil {
				log.Warn("start counters consumer", zap.Error(err))
			}
		}
		go func() {
			<-ctx.Done()
			_ = srv.Shutdown(context.Background())
		}()
		err := srv.Start(log)
		// Let in-flight counter updates finish before the process exits.
		rsvc.Drain()
		return err
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}
