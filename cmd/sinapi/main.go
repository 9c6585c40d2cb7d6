// cmd/sinapi/main.go
package main

import (
	"log"

	"sinapi-service/internal/api/handlers"
	"sinapi-service/internal/api/responses"
	"sinapi-service/internal/config"
	"sinapi-service/internal/core/sinapi"
	"sinapi-service/internal/core/snapshot"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Falha ao carregar configuração: ", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Falha ao iniciar logger: ", err)
	}
	defer logger.Sync()
	responses.InitLogger(logger)

	parserConfig, err := config.LoadParserConfig(cfg.ParserConfigPath)
	if err != nil {
		logger.Fatal("Falha ao carregar layout do parser", zap.Error(err))
	}

	sinapiService := sinapi.NewService(logger, cfg.EngineOptions())
	sinapiHandler := handlers.NewSinapiHandler(sinapiService, snapshot.NewBuilder(), parserConfig)

	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxUploadMB << 20

	apiV1 := router.Group("/api/v1", handlers.LimitUploadSize(cfg.MaxUploadMB<<20))
	{
		apiV1.POST("/sinapi/import", sinapiHandler.HandleImport)
		apiV1.POST("/sinapi/import/all", sinapiHandler.HandleImportAll)
		apiV1.POST("/sinapi/preview", sinapiHandler.HandlePreview)
		apiV1.POST("/sinapi/export", sinapiHandler.HandleExport)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "service": "sinapi-service"})
	})

	logger.Info("SINAPI Service iniciado", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Falha ao iniciar o servidor SINAPI", zap.Error(err))
	}
}
