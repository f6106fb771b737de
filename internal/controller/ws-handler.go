package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/watchroom/server/internal/repository/connection"
	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/ctxlogger"
	"github.com/watchroom/server/pkg/rest"
	"github.com/watchroom/server/pkg/wsrouter"
)

type enterRoomPayload struct {
	User string `json:"user" validate:"required,max=32"`
}

type videoPayload struct {
	Video string `json:"video" validate:"required,url"`
}

type outMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ServeRoom runs a member's websocket session: an enter message joins the
// room under a freshly minted user id, queue mutations arrive as typed
// messages, and dropping the connection leaves the room.
func (c *Controller) ServeRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	if _, err := c.roomService.GetRoom(r.Context(), roomId); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": err.Error()})
		return
	}

	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "ServeRoom", "upgrade err", err)
		return
	}
	conn := connection.NewConn(ws)
	defer conn.Close()

	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("room_id", roomId))

	userId, err := c.enterRoom(ctx, conn, roomId)
	if err != nil {
		conn.WriteJSON(outMessage{Type: "error", Payload: err.Error()})
		return
	}
	ctx = ctxlogger.AppendCtx(ctx, slog.String("user_id", userId))

	router := wsrouter.New()
	router.Handle("add_video", c.handleAddVideo(roomId))
	router.Handle("remove_video", c.handleRemoveVideo(roomId))
	router.Handle("change_current_video", c.handleChangeCurrentVideo(roomId))

	if err := router.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "ServeRoom", "session ended", err)
	}

	c.exitRoom(ctx, conn)
}

// enterRoom waits for the session's first message, which must be an enter
// payload carrying the user's display name.
func (c *Controller) enterRoom(ctx context.Context, conn *connection.Conn, roomId string) (string, error) {
	var msg wsrouter.Message
	if err := conn.ReadJSON(&msg); err != nil {
		return "", err
	}
	if msg.Type != "enter" {
		return "", errors.New("first message must be of type enter")
	}

	var payload enterRoomPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return "", err
	}
	if validationErrors, ok := c.validate.Validate(payload); !ok {
		c.logger.InfoContext(ctx, "enterRoom", "validate err", validationErrors)
		return "", errors.New("invalid enter payload")
	}

	userId := uuid.NewString()
	resp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		RoomId: roomId,
		User:   room.User{Id: userId, Name: payload.User},
	})
	if err != nil {
		return "", err
	}

	if err := c.connRepo.Add(conn, userId); err != nil {
		c.logger.InfoContext(ctx, "enterRoom", "conn add err", err)
		// the join already happened; undo it so the user does not linger
		// in the room with no session behind it
		if _, leaveErr := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{UserId: userId}); leaveErr != nil {
			c.logger.InfoContext(ctx, "enterRoom", "leave err", leaveErr)
		}
		return "", err
	}

	conn.WriteJSON(outMessage{Type: "entered", Payload: rest.Envelope{
		"user_id": userId,
		"room":    resp.Room,
	}})
	c.broadcast(ctx, resp.Room, outMessage{Type: "user_joined", Payload: resp.Room})

	return userId, nil
}

func (c *Controller) exitRoom(ctx context.Context, conn *connection.Conn) {
	userId, err := c.connRepo.RemoveByConn(conn)
	if err != nil {
		if !errors.Is(err, connection.ErrNotFound) {
			c.logger.InfoContext(ctx, "exitRoom", "conn remove err", err)
		}
		return
	}

	resp, err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{UserId: userId})
	if err != nil {
		// the room may already be gone
		if !errors.Is(err, room.ErrUserNotFound) {
			c.logger.InfoContext(ctx, "exitRoom", "leave err", err)
		}
		return
	}

	c.broadcast(ctx, resp.Room, outMessage{Type: "user_left", Payload: resp.Room})
}

func (c *Controller) handleAddVideo(roomId string) wsrouter.HandlerFunc {
	return func(ctx context.Context, conn wsrouter.Conn, raw json.RawMessage) error {
		payload, err := c.parseVideoPayload(ctx, raw)
		if err != nil {
			return err
		}

		resp, err := c.roomService.AddVideo(ctx, &room.AddVideoParams{
			RoomId:   roomId,
			VideoURL: payload.Video,
		})
		if err != nil {
			return err
		}

		c.broadcast(ctx, resp.Room, outMessage{Type: "video_added", Payload: rest.Envelope{
			"video": resp.AddedVideo,
			"room":  resp.Room,
		}})
		return nil
	}
}

func (c *Controller) handleRemoveVideo(roomId string) wsrouter.HandlerFunc {
	return func(ctx context.Context, conn wsrouter.Conn, raw json.RawMessage) error {
		payload, err := c.parseVideoPayload(ctx, raw)
		if err != nil {
			return err
		}

		resp, err := c.roomService.RemoveVideo(ctx, &room.RemoveVideoParams{
			RoomId:   roomId,
			VideoURL: payload.Video,
		})
		if err != nil {
			return err
		}

		c.broadcast(ctx, resp.Room, outMessage{Type: "video_removed", Payload: resp.Room})
		return nil
	}
}

func (c *Controller) handleChangeCurrentVideo(roomId string) wsrouter.HandlerFunc {
	return func(ctx context.Context, conn wsrouter.Conn, raw json.RawMessage) error {
		payload, err := c.parseVideoPayload(ctx, raw)
		if err != nil {
			return err
		}

		resp, err := c.roomService.ChangeCurrentVideo(ctx, &room.ChangeCurrentVideoParams{
			RoomId:   roomId,
			VideoURL: payload.Video,
		})
		if err != nil {
			return err
		}

		c.broadcast(ctx, resp.Room, outMessage{Type: "current_video_changed", Payload: resp.Room})
		return nil
	}
}

func (c *Controller) parseVideoPayload(ctx context.Context, raw json.RawMessage) (videoPayload, error) {
	var payload videoPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return videoPayload{}, err
	}
	if validationErrors, ok := c.validate.Validate(payload); !ok {
		c.logger.InfoContext(ctx, "parseVideoPayload", "validate err", validationErrors)
		return videoPayload{}, errors.New("invalid video payload")
	}
	return payload, nil
}

// broadcast sends msg to every member of the room that has a live
// connection. Members without one are skipped.
func (c *Controller) broadcast(ctx context.Context, r room.Room, msg outMessage) {
	for _, user := range r.Users {
		conn, err := c.connRepo.GetConn(user.Id)
		if err != nil {
			continue
		}
		if err := conn.WriteJSON(msg); err != nil {
			c.logger.DebugContext(ctx, "broadcast", "write err", err, "user_id", user.Id)
		}
	}
}
