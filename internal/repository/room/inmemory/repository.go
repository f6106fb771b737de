package inmemory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/exp/maps"

	"github.com/watchroom/server/internal/repository/room"
)

// roomState is the authoritative copy of a room. currentVideo holds the url
// key of the current entry in videos, empty when no video is current.
type roomState struct {
	owner        room.Owner
	users        map[string]room.User
	videos       map[string]room.Video
	currentVideo string
	lastJoined   time.Time
}

type repo struct {
	rooms  map[string]*roomState
	mu     sync.RWMutex
	logger *slog.Logger
	now    func() time.Time
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		rooms:  make(map[string]*roomState),
		logger: logger,
		now:    time.Now,
	}
}

func (r *repo) snapshot(roomId string, state *roomState) room.Room {
	snap := room.Room{
		Id:     roomId,
		Owner:  state.owner,
		Users:  make(map[string]room.User, len(state.users)),
		Videos: make(map[string]room.Video, len(state.videos)),
	}
	maps.Copy(snap.Users, state.users)
	maps.Copy(snap.Videos, state.videos)
	if state.currentVideo != "" {
		video := state.videos[state.currentVideo]
		snap.CurrentVideo = &video
	}
	if !state.lastJoined.IsZero() {
		lastJoined := state.lastJoined
		snap.LastJoined = &lastJoined
	}
	return snap
}

func (r *repo) CreateRoom(ctx context.Context, params *room.CreateRoomParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[params.RoomId]; ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomAlreadyExists)
		return room.ErrRoomAlreadyExists
	}

	r.rooms[params.RoomId] = &roomState{
		owner:  params.Owner,
		users:  make(map[string]room.User),
		videos: make(map[string]room.Video),
	}

	return nil
}

func (r *repo) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[roomId]
	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.Room{}, room.ErrRoomNotFound
	}

	return r.snapshot(roomId, state), nil
}

func (r *repo) GetRooms(ctx context.Context) ([]room.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]room.Room, 0, len(r.rooms))
	for _, roomId := range maps.Keys(r.rooms) {
		rooms = append(rooms, r.snapshot(roomId, r.rooms[roomId]))
	}

	return rooms, nil
}

// RemoveRoom is a no-op when the room is already gone.
func (r *repo) RemoveRoom(ctx context.Context, roomId string) error {
	r.logger.DebugContext(ctx, "called", "roomId", roomId)
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, roomId)

	return nil
}

// AddUser refreshes lastJoined on every call, including re-joins of an id
// already in the room. The reaper keys off that timestamp.
func (r *repo) AddUser(ctx context.Context, params *room.AddUserParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomId]
	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.ErrRoomNotFound
	}

	state.users[params.User.Id] = params.User
	state.lastJoined = r.now()

	return nil
}

// RemoveUserById scans all rooms for the user id and removes it from the
// first room that has it. User ids are minted as uuids, so the scan order is
// unobservable in practice. lastJoined is left untouched.
func (r *repo) RemoveUserById(ctx context.Context, userId string) (room.Room, room.User, error) {
	r.logger.DebugContext(ctx, "called", "userId", userId)
	r.mu.Lock()
	defer r.mu.Unlock()

	for roomId, state := range r.rooms {
		user, ok := state.users[userId]
		if !ok {
			continue
		}

		delete(state.users, userId)
		return r.snapshot(roomId, state), user, nil
	}

	r.logger.DebugContext(ctx, "returned", "error", room.ErrUserNotFound)
	return room.Room{}, room.User{}, room.ErrUserNotFound
}

// SetVideo inserts the video keyed by its url. The first video into an empty
// collection becomes the current one. Overwriting an existing url keeps the
// current selection on whatever url it already points at.
func (r *repo) SetVideo(ctx context.Context, params *room.SetVideoParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomId]
	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.ErrRoomNotFound
	}

	if len(state.videos) == 0 {
		state.currentVideo = params.Video.URL
	}
	state.videos[params.Video.URL] = params.Video

	return nil
}

// RemoveVideo clears the current selection when it points at the removed url.
// Removing an absent url is a no-op.
func (r *repo) RemoveVideo(ctx context.Context, params *room.RemoveVideoParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomId]
	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.ErrRoomNotFound
	}

	if state.currentVideo == params.VideoURL {
		state.currentVideo = ""
	}
	delete(state.videos, params.VideoURL)

	return nil
}

func (r *repo) SetCurrentVideo(ctx context.Context, params *room.SetCurrentVideoParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomId]
	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.ErrRoomNotFound
	}

	if _, ok := state.videos[params.VideoURL]; !ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrVideoNotFound)
		return room.ErrVideoNotFound
	}
	state.currentVideo = params.VideoURL

	return nil
}

// RemoveRoomIfInactive deletes the room only if, under the write lock, it
// still has no users and its lastJoined is set and older than the cutoff.
// This is the reaper's re-validation step: a join that raced the sweep wins.
func (r *repo) RemoveRoomIfInactive(ctx context.Context, params *room.RemoveRoomIfInactiveParams) (bool, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomId]
	if !ok {
		return false, nil
	}

	if len(state.users) > 0 {
		return false, nil
	}
	if state.lastJoined.IsZero() {
		return false, nil
	}
	if !state.lastJoined.Before(params.LastJoinedBefore) {
		return false, nil
	}

	delete(r.rooms, params.RoomId)

	return true, nil
}

// Clear drops all rooms. Called at shutdown.
func (r *repo) Clear(ctx context.Context) {
	r.logger.DebugContext(ctx, "called")
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms = make(map[string]*roomState)
}
