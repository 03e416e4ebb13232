package controllers

import (
	"net/http"

	"github.com/luisvillanueva/driveshare-backend/api/middleware"
	"github.com/luisvillanueva/driveshare-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func ActorPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "actor", "status": "ok"}
		if actor, ok := middleware.ActorFromContext(r.Context()); ok {
			payload["role"] = actor.Role.String()
		}
		responses.WriteSuccess(w, payload)
	}
}
