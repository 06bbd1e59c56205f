package main

import (
	"github.com/fluentpath/roadmap_client/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	ctx, err := context.NewCtx(
		&services.SqliteService{},
		&services.RedisService{},
		&services.JWTService{},
		&services.AuthMiddleware{},

		&services.ApiService{},
		&services.ProgressJournalService{},
		&services.EnrollmentService{},
		&services.SessionService{},
		&services.RateLimitService{},

		&services.MonitoringService{},
		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
