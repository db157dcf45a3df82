package handlers

import (
	"unity-gaming/middleware"
	"unity-gaming/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	DB            *gorm.DB
	Wallets       *services.WalletService
	Tournaments   *services.TournamentService
	Registrations *services.RegistrationService
	Videos        *services.VideoService
	Social        *services.SocialService
	Matchmaking   *services.MatchmakingService
	Users         *services.UserService
}

// RouteOptions configures Setup.
type RouteOptions struct {
	Auth            middleware.AuthOptions
	SeedTournaments bool
}

// Setup mounts the API under /api. Health, trending videos and public
// profiles need no token; everything else goes through Authenticate.
func Setup(app *fiber.App, svc Services, opts RouteOptions) {
	api := app.Group("/api")

	health := &HealthHandler{DB: svc.DB}
	api.Get("/health", health.Health)

	videos := &VideoHandler{Videos: svc.Videos}
	users := &UserHandler{Users: svc.Users}
	// Public routes must be registered before the auth middleware.
	api.Get("/videos/trending", videos.Trending)
	api.Get("/users/:id/profile", users.Profile)

	private := api.Group("", middleware.Authenticate(opts.Auth))
	private.Get("/auth/verify", health.Verify)

	SetupVideoRoutes(private, videos)
	SetupUserRoutes(private, users)
	SetupWalletRoutes(private, &WalletHandler{Wallets: svc.Wallets})
	SetupTournamentRoutes(private, &TournamentHandler{
		Tournaments:   svc.Tournaments,
		Registrations: svc.Registrations,
		SeedOnEmpty:   opts.SeedTournaments,
	})
	SetupSocialRoutes(private, &SocialHandler{Social: svc.Social})
	SetupMatchmakingRoutes(private, &MatchmakingHandler{Matchmaking: svc.Matchmaking})
}
