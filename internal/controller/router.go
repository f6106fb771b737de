package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (c *Controller) Mux() http.Handler {
	r := chi.NewRouter()

	r.Route("/api/rooms", func(r chi.Router) {
		r.Post("/", c.CreateRoom)
		r.Get("/", c.ListRooms)
		r.Get("/{room-id}", c.GetRoom)
	})

	r.HandleFunc("/ws/rooms/{room-id}", c.ServeRoom)

	return r
}
