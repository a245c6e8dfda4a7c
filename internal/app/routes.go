package app

import (
	"github.com/pearcepallen/virtual-card/internal/auth"
	"github.com/pearcepallen/virtual-card/internal/cache"
	"github.com/pearcepallen/virtual-card/internal/config"
	"github.com/pearcepallen/virtual-card/internal/handlers"
	"github.com/pearcepallen/virtual-card/internal/marqeta"
	"github.com/pearcepallen/virtual-card/internal/repo"
	"github.com/pearcepallen/virtual-card/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	secret := []byte(cfg.Auth.Secret)

	userRepo := repo.NewPGUserRepo(db)
	userCache := cache.NewUserCache(rdb, cfg.Redis.DefaultTTL.Duration())
	userSvc := service.NewUserService(userRepo, userCache)

	authHandler := handlers.NewAuthHandler(userSvc, secret, cfg.Auth.LoginTokenTTL.Duration())
	r.POST("/token", authHandler.Token)
	r.GET("/users/me/", auth.RequireToken(secret), authHandler.Me)

	userHandler := handlers.NewUserHandler(userSvc)
	r.POST("/users", userHandler.Create)
	r.GET("/users", userHandler.List)
	r.GET("/users/:email", userHandler.GetByEmail)
	r.PUT("/users/:email/:field_name", userHandler.UpdateField)
	r.PUT("/users/:email/:field_name/", userHandler.UpdateField)

	marqetaHandler := handlers.NewMarqetaHandler(marqeta.NewClient(cfg.Marqeta))
	registerMarqetaRoutes(r, marqetaHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Virtual Card API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerMarqetaRoutes(r *gin.Engine, h *handlers.MarqetaHandler) {
	m := r.Group("/marqeta")
	m.POST("/users/", h.CreateUser)
	m.GET("/users/:token", h.GetUser)
	m.POST("/cardproducts/", h.CreateCardProduct)
	m.GET("/cardproducts/:token", h.GetCardProduct)
	m.POST("/cards/", h.CreateCard)
	m.GET("/cards/:token", h.GetCard)
}
