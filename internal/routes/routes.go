package routes

import (
	"net/http"

	"github.com/bookclubhq/bookclub-backend/internal/auth"
	"github.com/bookclubhq/bookclub-backend/internal/handlers"
	"github.com/bookclubhq/bookclub-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes mounts the full API surface on the router. Public routes come
// first within each resource, then authenticated, then role-gated groups.
func SetupRoutes(r chi.Router, guard *middleware.Guard, tokens *auth.Manager) {
	r.Route("/api/users", func(r chi.Router) {
		r.Post("/register", handlers.Register)
		r.Post("/login", handlers.Login)
		r.Post("/refresh-token", handlers.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(guard.Protect)

			r.Get("/profile", handlers.GetProfile)
			r.Put("/profile", handlers.UpdateProfile)
			r.Post("/profile/picture", handlers.UploadProfilePicture)
			r.Get("/preferences", handlers.GetPreferences)
			r.Put("/preferences", handlers.UpdatePreferences)

			r.Post("/favorites", handlers.AddFavorite)
			r.Delete("/favorites/{bookID}", handlers.RemoveFavorite)

			r.Post("/bookmarks", handlers.AddBookmark)
			r.Put("/bookmarks/{bookmarkID}", handlers.UpdateBookmark)
			r.Delete("/bookmarks/{bookmarkID}", handlers.RemoveBookmark)

			r.Put("/reading-progress", handlers.UpdateReadingProgress)
			r.Get("/recommendations", handlers.GetRecommendations)
		})

		r.Group(func(r chi.Router) {
			r.Use(guard.Protect, guard.RequireAdmin)

			r.Get("/", handlers.GetUsers)
			r.Get("/{userID}", handlers.GetUserByID)
			r.Put("/{userID}", handlers.UpdateUser)
			r.Delete("/{userID}", handlers.DeleteUser)
		})
	})

	r.Route("/api/books", func(r chi.Router) {
		r.Get("/", handlers.GetBooks)
		r.Get("/search", handlers.SearchBooks)
		r.Get("/genres", handlers.GetGenres)
		r.Get("/genre/{genre}", handlers.GetBooksByGenre)
		r.Get("/author/{author}", handlers.GetBooksByAuthor)
		r.Get("/new-releases", handlers.GetNewReleases)
		r.Get("/bestsellers", handlers.GetBestsellers)
		r.Get("/top", handlers.GetTopBooks)
		r.Get("/{bookID}", handlers.GetBookByID)
		r.Get("/{bookID}/reviews", handlers.GetBookReviews)
		r.Get("/{bookID}/comments", handlers.GetBookComments)

		r.Group(func(r chi.Router) {
			r.Use(guard.Protect)

			r.Get("/recommended", handlers.GetRecommendations)
		})

		r.Group(func(r chi.Router) {
			r.Use(guard.Protect, guard.RequireAdmin)

			r.Post("/", handlers.CreateBook)
			r.Put("/{bookID}", handlers.UpdateBook)
			r.Delete("/{bookID}", handlers.DeleteBook)
			r.Post("/{bookID}/cover", handlers.UploadBookCover)
		})
	})

	r.Route("/api/reviews", func(r chi.Router) {
		r.Get("/featured", handlers.GetFeaturedReviews)
		r.Get("/{reviewID}", handlers.GetReviewByID)
		r.Post("/{reviewID}/helpful", handlers.MarkReviewHelpful)

		r.Group(func(r chi.Router) {
			r.Use(guard.Protect)

			r.Post("/", handlers.CreateReview)
			r.Get("/mine", handlers.GetMyReviews)
			r.Put("/{reviewID}", handlers.UpdateReview)
			r.Delete("/{reviewID}", handlers.DeleteReview)
			r.Post("/{reviewID}/like", handlers.ToggleReviewLike)
		})

		r.Group(func(r chi.Router) {
			r.Use(guard.Protect, guard.RequireModerator)

			r.Put("/{reviewID}/featured", handlers.SetReviewFeatured)
		})
	})

	r.Route("/api/comments", func(r chi.Router) {
		r.Use(guard.Protect)

		r.Post("/", handlers.CreateComment)
		r.Put("/{commentID}", handlers.UpdateComment)
		r.Delete("/{commentID}", handlers.DeleteComment)
	})

	r.Route("/api/chat", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(guard.Protect)

			r.Get("/", handlers.GetChat)
			r.Post("/message", handlers.SendChatMessage)
		})

		r.Group(func(r chi.Router) {
			r.Use(guard.Protect, guard.RequireModerator)

			r.Get("/all", handlers.GetChats)
			r.Post("/{userID}/reply", handlers.ModeratorReply)
		})
	})

	// The WebSocket gateway authenticates on its own because browsers cannot
	// set headers on the handshake.
	r.Get("/ws/chat", handlers.ChatStream(tokens))

	r.Group(func(r chi.Router) {
		r.Use(guard.Protect)

		r.Post("/api/upload", handlers.Upload)
	})

	r.Route("/api/notifications", func(r chi.Router) {
		r.Use(guard.Protect)

		r.Get("/", handlers.GetNotifications)
		r.Put("/read-all", handlers.MarkAllNotificationsRead)
		r.Put("/{notificationID}/read", handlers.MarkNotificationRead)
		r.Delete("/{notificationID}", handlers.DeleteNotification)

		r.Group(func(r chi.Router) {
			r.Use(guard.RequireAdmin)

			r.Post("/broadcast", handlers.BroadcastNotification)
		})
	})

	r.Route("/api/moderation", func(r chi.Router) {
		r.Use(guard.Protect)

		r.Post("/reports", handlers.CreateReport)

		r.Group(func(r chi.Router) {
			r.Use(guard.RequireModerator)

			r.Get("/reports", handlers.GetReports)
			r.Get("/reports/{reportID}", handlers.GetReportByID)
			r.Put("/reports/{reportID}", handlers.ResolveReport)
			r.Post("/warnings", handlers.IssueWarning)
			r.Get("/warnings/{userID}", handlers.GetUserWarnings)
			r.Get("/settings", handlers.GetModerationSettings)
			r.Post("/users/{userID}/ban", handlers.BanUser)
			r.Post("/users/{userID}/unban", handlers.UnbanUser)
		})

		r.Group(func(r chi.Router) {
			r.Use(guard.RequireAdmin)

			r.Put("/settings", handlers.UpdateModerationSettings)
		})
	})

	r.Route("/api/analytics", func(r chi.Router) {
		r.Use(guard.Protect, guard.RequireAdmin)

		r.Get("/overview", handlers.GetOverviewStats)
		r.Get("/genres", handlers.GetGenreStats)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}
