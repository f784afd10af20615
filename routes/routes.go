package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/usercreator005/ff-india-tournaments-sub000/handlers"
	"github.com/usercreator005/ff-india-tournaments-sub000/middleware"
	"github.com/usercreator005/ff-india-tournaments-sub000/models"
)

// SetupRoutes собирает дерево маршрутов API. Управляющие операции закрыты
// ролями admin/staff/super_admin; тонкие проверки прав (capabilities,
// тенант) живут в сервисном слое.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	tournamentHandler *handlers.TournamentHandler,
	slotHandler *handlers.SlotHandler,
	resultHandler *handlers.ResultHandler,
	stageHandler *handlers.StageHandler,
	matchRoomHandler *handlers.MatchRoomHandler,
	walletHandler *handlers.WalletHandler,
	paymentHandler *handlers.PaymentHandler,
	reminderHandler *handlers.ReminderHandler,
	teamHandler *handlers.TeamHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	manageOnly := middleware.RequireRole(models.RoleAdmin, models.RoleStaff, models.RoleSuperAdmin)

	// Подписка на события турнира (публикации комнат, лидерборды).
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.ListHandler)
			r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
			r.Get("/{tournamentID}/lobby", slotHandler.ListLobbyHandler)
			r.Get("/{tournamentID}/scoring", tournamentHandler.GetScoringHandler)
			r.Get("/{tournamentID}/match-rooms", matchRoomHandler.ListHandler)
			r.Get("/{tournamentID}/stages/{stageNumber}/leaderboard", stageHandler.LeaderboardHandler)

			// Капитан занимает слот сам.
			r.Post("/{tournamentID}/slots/join", slotHandler.JoinHandler)

			r.Group(func(r chi.Router) {
				r.Use(manageOnly)

				r.Post("/", tournamentHandler.CreateHandler)
				r.Patch("/{tournamentID}", tournamentHandler.UpdateHandler)
				r.Put("/{tournamentID}/status", tournamentHandler.ChangeStatusHandler)
				r.Delete("/{tournamentID}", tournamentHandler.DeleteHandler)
				r.Put("/{tournamentID}/scoring", tournamentHandler.SetScoringHandler)

				r.Post("/{tournamentID}/slots/assign", slotHandler.AssignHandler)
				r.Post("/{tournamentID}/match-rooms", matchRoomHandler.CreateHandler)

				r.Post("/{tournamentID}/stages/{stageNumber}/leaderboard", stageHandler.GenerateHandler)
				r.Post("/{tournamentID}/stages/{stageNumber}/qualify", stageHandler.QualifyHandler)
			})
		})

		r.Route("/lobby", func(r chi.Router) {
			r.Delete("/{lobbyID}", slotHandler.RemoveHandler)
			r.With(manageOnly).Put("/{lobbyID}/status", slotHandler.UpdateStatusHandler)
		})

		r.Route("/match-rooms", func(r chi.Router) {
			r.Get("/{matchRoomID}", matchRoomHandler.GetHandler)
			r.Get("/{matchRoomID}/leaderboard", resultHandler.LeaderboardHandler)
			r.Get("/{matchRoomID}/credentials", matchRoomHandler.CredentialsHandler)

			r.Group(func(r chi.Router) {
				r.Use(manageOnly)

				r.Post("/{matchRoomID}/publish", matchRoomHandler.PublishHandler)
				r.Delete("/{matchRoomID}", matchRoomHandler.DeleteHandler)
				r.Put("/{matchRoomID}/results", resultHandler.UpsertHandler)
				r.Post("/{matchRoomID}/lock", resultHandler.LockHandler)
			})
		})

		r.With(manageOnly).Delete("/results/{resultID}", resultHandler.DeleteHandler)

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", teamHandler.ListHandler)
			r.Get("/{teamID}", teamHandler.GetByIDHandler)
			r.Post("/", teamHandler.CreateHandler)
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Use(manageOnly)

			r.Get("/", walletHandler.BalanceHandler)
			r.Get("/transactions", walletHandler.TransactionsHandler)
			r.Post("/adjustments", walletHandler.AdjustHandler)
			r.Post("/withdrawals", walletHandler.WithdrawHandler)
		})

		r.Route("/payment-proofs", func(r chi.Router) {
			r.Post("/", paymentHandler.SubmitHandler)

			r.Group(func(r chi.Router) {
				r.Use(manageOnly)

				r.Get("/", paymentHandler.ListHandler)
				r.Get("/{proofID}", paymentHandler.GetHandler)
				r.Post("/{proofID}/approve", paymentHandler.ApproveHandler)
				r.Post("/{proofID}/reject", paymentHandler.RejectHandler)
			})
		})

		r.Route("/reminders", func(r chi.Router) {
			r.Use(manageOnly)

			r.Get("/", reminderHandler.ListHandler)
			r.Post("/", reminderHandler.ScheduleHandler)
		})
	})
}
