package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/rest"
)

type createRoomRequest struct {
	Owner string `json:"owner" validate:"required,max=32"`
	Slug  string `json:"slug" validate:"required,max=32"`
}

// toParams is the explicit projection of the request payload onto the owner
// identity a room is created with.
func (req createRoomRequest) toParams() *room.CreateRoomParams {
	return &room.CreateRoomParams{
		OwnerName: req.Owner,
		OwnerSlug: req.Slug,
	}
}

func (c *Controller) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest

	if err := rest.ReadJSON(r, &req); err != nil {
		c.logger.InfoContext(r.Context(), "CreateRoom", "read json err", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		c.logger.InfoContext(r.Context(), "CreateRoom", "validate err", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	created, err := c.roomService.CreateRoom(r.Context(), req.toParams())
	if err != nil {
		c.logger.InfoContext(r.Context(), "CreateRoom", "err", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": err.Error()})
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": created})
}

func (c *Controller) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := c.roomService.GetRooms(r.Context())
	if err != nil {
		c.logger.InfoContext(r.Context(), "ListRooms", "err", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": err.Error()})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": rooms})
}

func (c *Controller) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	got, err := c.roomService.GetRoom(r.Context(), roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}
		c.logger.InfoContext(r.Context(), "GetRoom", "err", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": err.Error()})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": got})
}
