package swipe

import (
	"github.com/gorilla/mux"

	"github.com/unimatch/campusmatch-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/swipe").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Recommendation feed
	api.HandleFunc("/recommendations", handler.GetRecommendations).Methods("GET")

	// Swipe actions
	api.HandleFunc("/like", handler.Like).Methods("POST")
	api.HandleFunc("/pass", handler.Pass).Methods("POST")
	api.HandleFunc("/superlike", handler.SuperLike).Methods("POST")
	api.HandleFunc("/undo", handler.Undo).Methods("POST")

	// Quota and stats
	api.HandleFunc("/stats", handler.GetStats).Methods("GET")
	api.HandleFunc("/limit", handler.CheckSwipeLimit).Methods("GET")

	// Premium filters
	api.HandleFunc("/filters", handler.UpdateFilters).Methods("PUT")
}
