package api

import (
	"math/rand"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playrivals/playrivals-backend/internal/api/handlers"
	"github.com/playrivals/playrivals-backend/internal/api/middleware"
	"github.com/playrivals/playrivals-backend/internal/config"
	"github.com/playrivals/playrivals-backend/internal/repository"
	"github.com/playrivals/playrivals-backend/internal/service"
	"github.com/playrivals/playrivals-backend/pkg/database"
	"github.com/playrivals/playrivals-backend/pkg/logger"
	"github.com/playrivals/playrivals-backend/pkg/notify"
	"github.com/redis/go-redis/v9"
)

// SetupRouter wires repositories, services and handlers and returns the HTTP
// engine plus the pairing service so main can manage its lifecycle.
func SetupRouter(cfg *config.Config, db *database.DB) (*gin.Engine, *service.PairingService) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	baseLogger := logger.Base()

	// Notification dispatcher: Redis when configured, log-only otherwise.
	var notifier service.Notifier
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Invalid Redis URL", "error", err)
		}
		notifier = notify.NewRedisDispatcher(redis.NewClient(opts), cfg.NotificationQueue)
		logger.Info("Notification dispatcher using Redis", "queue", cfg.NotificationQueue)
	} else {
		notifier = notify.NewLogDispatcher(baseLogger)
		logger.Warn("REDIS_URL not set, notifications are log-only")
	}

	// Repositories
	ticketRepo := repository.NewTicketRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	tournamentRepo := repository.NewTournamentRepository(db)
	tournamentMatchRepo := repository.NewTournamentMatchRepository(db)
	profileRepo := repository.NewUserProfileRepository(db)

	// Services
	matchService := service.NewMatchService(matchRepo, profileRepo, notifier, baseLogger)
	ticketService := service.NewTicketService(ticketRepo, matchService, cfg.TicketTTL, baseLogger)
	pairingService := service.NewPairingService(ticketRepo, matchService,
		cfg.PairingInterval, cfg.ReaperInterval, baseLogger)
	tournamentService := service.NewTournamentService(tournamentRepo, profileRepo, baseLogger)
	bracketService := service.NewBracketService(tournamentRepo, notifier,
		rand.NewSource(time.Now().UnixNano()), baseLogger)
	tournamentMatchService := service.NewTournamentMatchService(tournamentRepo,
		tournamentMatchRepo, notifier, baseLogger)

	// Handlers
	ticketHandler := handlers.NewTicketHandler(ticketService)
	matchHandler := handlers.NewMatchHandler(matchService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, bracketService, tournamentMatchService)

	// Health check
	router.GET("/health", handlers.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		tickets := v1.Group("/tickets")
		tickets.Use(middleware.Auth(cfg))
		{
			tickets.POST("", middleware.TicketSubmitRateLimit(), ticketHandler.SubmitTicket)
			tickets.GET("/:id", ticketHandler.GetTicket)
			tickets.DELETE("/:id", ticketHandler.CancelTicket)
		}

		matches := v1.Group("/matches")
		{
			matches.GET("/:id", matchHandler.GetMatch)
		}

		tournaments := v1.Group("/tournaments")
		{
			tournaments.GET("", tournamentHandler.ListTournaments)
			tournaments.GET("/:id", tournamentHandler.GetTournament)
			tournaments.GET("/:id/matches", tournamentHandler.ListTournamentMatches)

			authed := tournaments.Group("")
			authed.Use(middleware.Auth(cfg), middleware.TournamentActionRateLimit())
			{
				authed.POST("", tournamentHandler.CreateTournament)
				authed.POST("/:id/join", tournamentHandler.JoinTournament)
				authed.POST("/:id/bracket", tournamentHandler.SeedBracket)
				authed.POST("/:id/matches/:matchId/report", tournamentHandler.ReportMatch)
				authed.POST("/:id/matches/:matchId/verify", tournamentHandler.VerifyMatch)
			}
		}
	}

	return router, pairingService
}
