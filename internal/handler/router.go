/*
Package handler provides the HTTP handlers and routing setup for the widget API.

This file defines the main Router, applying logging, CORS and panic recovery before
delegating requests to the session handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"anonchat/internal/pkg/logx"
	"anonchat/internal/pkg/resp"
)

// Router sets up the HTTP routing table for the widget API.
func Router(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "Anonymous Chat",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/session", HandleGetSession(deps))

		api.Post("/messages", HandleSendMessage(deps))
		api.Post("/messages/refresh", HandleRefreshMessages(deps))

		api.Route("/payment", func(pay chi.Router) {
			pay.Post("/open", HandleOpenPayment(deps))
			pay.Post("/submit", HandleSubmitPayment(deps))
			pay.Post("/cancel", HandleCancelPayment(deps))
		})
	})

	return r
}
