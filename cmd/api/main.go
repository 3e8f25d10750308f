package main

import (
	"context"
	"net/http"

	"reverse-geocoding/internal/config"
	"reverse-geocoding/internal/filter"
	"reverse-geocoding/internal/handler"
	"reverse-geocoding/internal/logger"
	"reverse-geocoding/internal/metrics"
	"reverse-geocoding/internal/repository"
	"reverse-geocoding/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	logger.Setup(config.LogLevel, config.LogPretty)

	// The table is read once; an empty or broken dataset stops startup.
	table, err := loadRegionTable(context.Background(), config)
	if err != nil {
		log.Fatal().Err(err).Str("region_source", config.RegionSource).Msg("cannot load region table")
	}
	metrics.RegionTableSize.Set(float64(table.Len()))
	log.Info().
		Str("source", table.Source()).
		Int("regions", table.Len()).
		Int("precision", table.Precision()).
		Msg("region table loaded")

	// Initialize layers
	reverseGeocodeService := service.NewReverseGeoCodeService(table)

	task, err := filter.NewTask(config.Filter, table.Precision())
	if err != nil {
		log.Fatal().Err(err).Msg("invalid filter configuration")
	}

	reverseGeocodeHandler := handler.NewReverseGeocodeHandler(reverseGeocodeService)
	augmentHandler := handler.NewAugmentHandler(task, reverseGeocodeService, config.PageSize)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"regions": table.Len(),
		})
	})

	r.GET("/reverse-geocode", reverseGeocodeHandler.ReverseGeocode)
	r.POST("/augment", augmentHandler.Augment)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if err := r.Run(config.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func loadRegionTable(ctx context.Context, cfg config.Config) (*repository.RegionTable, error) {
	switch cfg.RegionSource {
	case config.RegionSourceFile:
		return repository.LoadRegionTableFile(cfg.ReferencePath)
	case config.RegionSourcePostgres:
		// Database connection
		conn, err := pgxpool.New(ctx, cfg.DBSource)
		if err != nil {
			return nil, err
		}
		defer conn.Close()

		return repository.NewRepository(conn).LoadRegionTable(ctx)
	default:
		return repository.LoadBundledRegionTable()
	}
}
