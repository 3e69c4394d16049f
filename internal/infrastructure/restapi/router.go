package restapi

import (
	"net/http"
	"time"

	"wallet_portfolio/docs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// SwaggerSpecPath is where the OpenAPI description is served.
const SwaggerSpecPath = "/docs/swagger.yaml"

// SetupRouter configures and returns the Gin router.
func SetupRouter(portfolioHandler *PortfolioHandler, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))
	router.Use(ZapLoggerMiddleware(logger))
	router.Use(gin.Recovery())

	router.GET("/health", portfolioHandler.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1", portfolioHandler.requireCoordinator)
	{
		v1.POST("/portfolio/load", portfolioHandler.LoadPortfolioHandler)
		v1.GET("/portfolio", portfolioHandler.GetPortfolioHandler)
		v1.GET("/prices", portfolioHandler.GetPricesHandler)
		v1.GET("/prices/stream", portfolioHandler.StreamHandler)
		v1.DELETE("/prices", portfolioHandler.StopPricesHandler)
	}

	// Swagger UI reads the hand-written description instead of swag-generated docs.
	router.StaticFileFS(SwaggerSpecPath, "swagger.yaml", http.FS(docs.FS))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(SwaggerSpecPath)))

	return router
}

// ZapLoggerMiddleware logs every request with zap.
func ZapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("clientIP", c.ClientIP()),
		)
	}
}
