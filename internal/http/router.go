package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/auth"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/demo"
)

// RouterConfig holds everything NewRouter wires into the handlers.
type RouterConfig struct {
	Catalog        CatalogStore
	Recommender    Recommender
	RecommendLimit int

	// Database backs /health and /api/snapshot. Both may be nil in tests.
	Database  Pinger
	Snapshots SnapshotStore

	// SnapshotQueue receives a save request after every successful write.
	// Leave nil to disable saving on write.
	SnapshotQueue SnapshotQueue

	AuthConfig  config.Auth
	RateLimiter *auth.RateLimiter

	// DemoMiddleware, when enabled, turns every write into a 403.
	DemoMiddleware *demo.Middleware

	// RequestLogging enables gin's access log.
	RequestLogging bool
	Version        string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	if cfg.RequestLogging {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	router.Use(auth.SecurityHeadersMiddleware())

	if cfg.DemoMiddleware != nil && cfg.DemoMiddleware.IsEnabled() {
		router.Use(cfg.DemoMiddleware.InjectContext())
		router.Use(cfg.DemoMiddleware.Handler())
	}

	health := NewHealthController(cfg.Database, cfg.Catalog, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")
	api.Use(auth.TokenMiddleware(cfg.AuthConfig, cfg.RateLimiter))

	books := NewBooksController(cfg.Catalog, cfg.SnapshotQueue)
	api.GET("/books", books.ListBooks)
	api.POST("/books", books.CreateBook)
	api.GET("/books/search", books.SearchBooks)
	api.GET("/books/:isbn", books.GetBook)
	api.PATCH("/books/:isbn", books.UpdateBook)
	api.DELETE("/books/:isbn", books.DeleteBook)

	members := NewMembersController(cfg.Catalog, cfg.Recommender, cfg.RecommendLimit, cfg.SnapshotQueue)
	api.GET("/members", members.ListMembers)
	api.POST("/members", members.RegisterMember)
	api.GET("/members/search", members.SearchMembers)
	api.GET("/members/:email", members.GetMember)
	api.PATCH("/members/:email", members.UpdateMember)
	api.DELETE("/members/:email", members.DeleteMember)
	api.GET("/members/:email/loans", members.MemberLoans)
	api.GET("/members/:email/recommendations", members.Recommendations)
	api.GET("/members/:email/similar", members.SimilarMembers)

	loans := NewLoansController(cfg.Catalog, cfg.SnapshotQueue)
	api.GET("/loans", loans.ListLoans)
	api.POST("/loans", loans.LendBook)
	api.GET("/loans/:id", loans.GetLoan)
	api.POST("/loans/:id/return", loans.ReturnBook)

	taxonomy := NewTaxonomyController(cfg.Catalog, cfg.SnapshotQueue)
	api.GET("/authors", taxonomy.ListAuthors)
	api.POST("/authors", taxonomy.CreateAuthor)
	api.GET("/authors/search", taxonomy.SearchAuthors)
	api.DELETE("/authors/:id", taxonomy.DeleteAuthor)
	api.GET("/genres", taxonomy.ListGenres)
	api.POST("/genres", taxonomy.CreateGenre)
	api.GET("/genres/search", taxonomy.SearchGenres)
	api.DELETE("/genres/:id", taxonomy.DeleteGenre)

	indexes := NewIndexesController(cfg.Catalog)
	api.GET("/indexes", indexes.ListIndexes)
	api.GET("/indexes/:name", indexes.RenderIndex)

	if cfg.Snapshots != nil {
		snapshots := NewSnapshotController(cfg.Catalog, cfg.Snapshots, cfg.SnapshotQueue)
		api.GET("/snapshot", snapshots.Status)
		api.POST("/snapshot", snapshots.SaveNow)
	}

	return router
}
