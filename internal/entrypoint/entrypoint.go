package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/auth"
	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/demo"
	http_controllers "github.com/mrlokans/librarian/internal/http"
	"github.com/mrlokans/librarian/internal/recommend"
	"github.com/mrlokans/librarian/internal/scheduler"
	"github.com/mrlokans/librarian/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop taking requests first so the final snapshot sees every write.
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// OpenCatalog builds an empty store and, when snapshots are enabled, opens
// the database and restores the last saved snapshot into it. The returned
// database is nil when snapshots are disabled or in demo mode, where the
// store holds the sample library instead.
func OpenCatalog(ctx context.Context, cfg *config.Config) (*catalog.Store, *database.Database, error) {
	store := catalog.NewStore(catalog.Options{
		MaxActiveLoans: cfg.Catalog.MaxActiveLoans,
		Clock:          time.Now,
	})
	if cfg.Demo.Enabled {
		res, err := demo.Seed(store)
		if err != nil {
			return nil, nil, fmt.Errorf("seed demo library: %w", err)
		}
		log.Printf("Demo mode: serving %s from memory, writes are blocked", res)
		return store, nil, nil
	}
	if !cfg.Snapshot.Enabled {
		return store, nil, nil
	}

	db, err := database.NewDatabase(cfg.Database.Path, cfg.Database.LogSQL)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	snap, err := db.LoadSnapshot(ctx)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("load snapshot: %w", err)
	}
	if err := store.Restore(snap); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("restore snapshot: %w", err)
	}

	stats := store.Stats()
	log.Printf("[SNAPSHOT] Restored %d books, %d members, %d loans (%d active) from %s",
		stats.Books, stats.Members, stats.Loans, stats.ActiveLoans, cfg.Database.Path)
	return store, db, nil
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Librarian v%s", version)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	store, db, err := OpenCatalog(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize catalog: %v", err)
	}
	if db != nil {
		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}()
	} else if !cfg.Demo.Enabled {
		log.Printf("WARNING: snapshots are disabled, the catalog will not survive a restart")
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled && db != nil {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewSaveSnapshotQueue(store, db))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Periodic snapshots
	var snapshotScheduler *scheduler.SnapshotScheduler
	var schedCtxCancel context.CancelFunc
	if db != nil && cfg.Snapshot.Schedule != "" {
		snapshotScheduler = scheduler.NewSnapshotScheduler(store, db, cfg.Snapshot.Schedule)
		var schedCtx context.Context
		schedCtx, schedCtxCancel = context.WithCancel(context.Background())
		if err := snapshotScheduler.Start(schedCtx); err != nil {
			log.Fatalf("Failed to start snapshot scheduler: %v", err)
		}
	}

	var limiter *auth.RateLimiter
	if cfg.Auth.Mode == config.AuthModeToken {
		log.Printf("Authentication mode: token (write requests need a bearer token)")
		limiter = auth.NewRateLimiter(auth.DefaultRateLimitConfig())
		defer limiter.Stop()
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	routerCfg := http_controllers.RouterConfig{
		Catalog:        store,
		Recommender:    recommend.NewEngine(store),
		RecommendLimit: cfg.Recommend.Limit,
		AuthConfig:     cfg.Auth,
		RateLimiter:    limiter,
		DemoMiddleware: demo.NewMiddleware(cfg.Demo.Enabled),
		RequestLogging: true,
		Version:        version,
	}
	// Interface fields stay nil unless the backing value exists.
	if db != nil {
		routerCfg.Database = db
		routerCfg.Snapshots = db
	}
	if taskClient != nil && cfg.Snapshot.OnWrite {
		routerCfg.SnapshotQueue = taskClient
	} else if cfg.Snapshot.OnWrite && db != nil {
		log.Printf("WARNING: SNAPSHOT_ON_WRITE needs TASKS_ENABLED, writes are saved on schedule only")
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if snapshotScheduler != nil {
			schedCtxCancel()
			snapshotScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if db != nil {
			if err := db.SaveSnapshot(ctx, store.Snapshot()); err != nil {
				log.Printf("[SNAPSHOT] Final save failed: %v", err)
			}
		}
	}

	Serve(router, cfg, onShutdown)
}
