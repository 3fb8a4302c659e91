package main

import (
	"os"

	"clinic-connect/configuration"
	"clinic-connect/routes"
	"clinic-connect/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(".env"); err != nil {
		logger.Warn().Msg("no .env file found, using environment")
	}

	db, err := configuration.ConfigDB()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to the database")
	}
	rdb, err := configuration.InitRedis()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if err := configuration.EnsureAdmin(db, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed admin user")
	}

	mailer := services.NewGomailSender()
	var sms services.SMSNotifier
	if notifier := services.NewTwilioNotifier(); notifier != nil {
		sms = notifier
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))
	routes.ConfigRoutes(r, db, rdb, logger, mailer, sms)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
