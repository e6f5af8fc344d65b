package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"foodhub/internal/service"
)

// RouterOptions agrupa la configuración transversal del router.
type RouterOptions struct {
	CORSOrigins []string
	// UploadDir se sirve en /uploads cuando las imágenes se guardan en disco; vacío lo desactiva.
	UploadDir string
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	opts RouterOptions,
	jwtSvc *service.JWTService,
	userH *UserHandler,
	categoryH *CategoryHandler,
	foodH *FoodHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware(opts.CORSOrigins))

	if opts.UploadDir != "" {
		r.Static("/uploads", opts.UploadDir)
	}

	api := r.Group("")
	api.Use(jsonContentTypeMiddleware())
	api.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := JWTAuthMiddleware(jwtSvc)

	users := api.Group("/user")
	users.POST("/register", userH.Register)
	users.POST("/verify-otp", userH.VerifyOTP)
	users.POST("/signup", userH.Signup)
	users.POST("/login", userH.Login)
	users.POST("/forget", userH.Forget)
	users.PUT("/reset-password/:id/:token", userH.ResetPassword)
	users.GET("/me", auth, userH.Me)
	users.GET("/allusers", auth, userH.ListUsers)
	users.GET("/getuser/:id", userH.GetUser)
	users.DELETE("/remove/:id", auth, userH.RemoveUser)
	users.PUT("/edit/:id", auth, userH.EditUser)

	categories := api.Group("/category")
	categories.POST("/create", auth, categoryH.Create)
	categories.GET("/get", categoryH.List)

	foods := api.Group("/food")
	foods.POST("/create/:id", auth, foodH.Create)
	foods.GET("/getall", foodH.List)
	foods.GET("/getall/:id", foodH.ListByCategory)
	foods.DELETE("/remove/:id", auth, foodH.Remove)
	foods.PUT("/edit/:id", auth, foodH.Edit)
	foods.GET("/search/:keyword", foodH.Search)
	foods.GET("/status", foodH.Status)
	foods.POST("/toggle", foodH.Toggle)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// corsMiddleware responde preflights y agrega headers CORS. "*" permite cualquier origen.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		if o != "" {
			allowed[o] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			_, ok := allowed[origin]
			switch {
			case allowAll:
				c.Header("Access-Control-Allow-Origin", "*")
			case ok:
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, x-auth-token")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
