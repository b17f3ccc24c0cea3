package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/config"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/handlers"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/middleware"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/repository"
	"github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/services"
	chatws "github.com/th3dixon/MeAndMyDoggyV2-sub002/internal/websocket"
)

// RegisterRoutes wires repositories, services, and handlers onto the app.
// It returns the websocket hub and the scheduled message service so the
// caller can run the hub loop and the dispatch ticker.
func RegisterRoutes(
	app *fiber.App,
	cfg *config.Config,
	db *pgxpool.Pool,
	redisClient *redis.Client,
) (*chatws.Hub, *services.ScheduledMessageService) {
	userRepo := repository.NewUserRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	scheduledRepo := repository.NewScheduledMessageRepository(db)
	petRepo := repository.NewPetRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	encryptor := services.NewAESEncryptor(cfg.EncryptionSecret)
	conversationService := services.NewConversationService(db, conversationRepo, participantRepo, userRepo)
	messagingService := services.NewMessagingService(db, conversationRepo, participantRepo, messageRepo, encryptor)
	scheduledService := services.NewScheduledMessageService(scheduledRepo, participantRepo, messagingService)
	petService := services.NewPetService(db, petRepo, reminderRepo)
	providerService := services.NewProviderService(providerRepo)
	bookingService := services.NewBookingService(db, bookingRepo, providerRepo, conversationService)

	hub := chatws.NewHub()
	go hub.Run()

	authHandler := handlers.NewAuthHandler(db, userRepo, providerRepo, cfg.JWTSecret)
	conversationHandler := handlers.NewConversationHandler(conversationService)
	messageHandler := handlers.NewMessageHandler(messagingService, hub, cfg.JWTSecret)
	scheduledHandler := handlers.NewScheduledMessageHandler(scheduledService)
	petHandler := handlers.NewPetHandler(petService)
	providerHandler := handlers.NewProviderHandler(providerService)
	bookingHandler := handlers.NewBookingHandler(bookingService)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group(
		"/v1",
		middleware.AuthRequired(cfg.JWTSecret),
		middleware.RateLimit(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow),
	)

	conversations := authProtected.Group("/conversations")
	conversations.Post("", conversationHandler.CreateConversation)
	conversations.Get("", conversationHandler.ListConversations)
	conversations.Get("/:id", conversationHandler.GetConversation)
	conversations.Put("/:id", conversationHandler.UpdateConversation)
	conversations.Post("/:id/participants", conversationHandler.AddParticipants)
	conversations.Delete("/:id/participants/:userId", conversationHandler.RemoveParticipant)
	conversations.Put("/:id/archive", conversationHandler.SetArchived)
	conversations.Put("/:id/pin", conversationHandler.SetPinned)
	conversations.Put("/:id/mute", conversationHandler.SetMuted)
	conversations.Post("/:id/read", conversationHandler.MarkRead)
	conversations.Post("/:id/messages", messageHandler.SendMessage)
	conversations.Get("/:id/messages", messageHandler.ListMessages)

	messaging := authProtected.Group("/messaging")
	messaging.Get("/search", messageHandler.SearchMessages)
	messaging.Put("/messages/:messageId", messageHandler.EditMessage)
	messaging.Delete("/messages/:messageId", messageHandler.DeleteMessage)
	messaging.Post("/messages/:messageId/reactions", messageHandler.ToggleReaction)

	scheduled := authProtected.Group("/scheduled-messages")
	scheduled.Post("", scheduledHandler.ScheduleMessage)
	scheduled.Get("", scheduledHandler.ListScheduledMessages)
	scheduled.Get("/:id", scheduledHandler.GetScheduledMessage)
	scheduled.Put("/:id", scheduledHandler.UpdateScheduledMessage)
	scheduled.Delete("/:id", scheduledHandler.CancelScheduledMessage)
	scheduled.Post("/:id/pause", scheduledHandler.PauseScheduledMessage)
	scheduled.Post("/:id/resume", scheduledHandler.ResumeScheduledMessage)

	pets := authProtected.Group("/pets")
	pets.Post("", petHandler.CreatePet)
	pets.Get("", petHandler.ListPets)
	pets.Get("/:id", petHandler.GetPet)
	pets.Put("/:id", petHandler.UpdatePet)
	pets.Delete("/:id", petHandler.DeletePet)
	pets.Post("/:id/reminders", petHandler.CreateReminder)
	pets.Get("/:id/reminders", petHandler.ListReminders)
	pets.Post("/:id/reminders/:reminderId/complete", petHandler.CompleteReminder)
	pets.Delete("/:id/reminders/:reminderId", petHandler.DeleteReminder)

	providers := authProtected.Group("/providers")
	providers.Get("", providerHandler.SearchProviders)
	providers.Get("/:id", providerHandler.GetProvider)

	bookings := authProtected.Group("/bookings")
	bookings.Post("", bookingHandler.CreateBooking)
	bookings.Get("", bookingHandler.ListBookings)
	bookings.Get("/:id", bookingHandler.GetBooking)
	bookings.Put("/:id/status", bookingHandler.UpdateBookingStatus)

	api.Use("/v1/ws", messageHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(messageHandler.HandleWebSocket))

	return hub, scheduledService
}
