package inmemory

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchroom/server/internal/repository/room"
)

func newTestRepo(t *testing.T) *repo {
	t.Helper()
	return NewRepo(slog.Default())
}

func createRoom(t *testing.T, r *repo, roomId string) {
	t.Helper()
	err := r.CreateRoom(context.Background(), &room.CreateRoomParams{
		RoomId: roomId,
		Owner:  room.Owner{Name: "alice", Slug: "alice"},
	})
	require.NoError(t, err)
}

func TestCreateRoom(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	createRoom(t, r, "room-1")

	got, err := r.GetRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, "room-1", got.Id)
	assert.Equal(t, "alice", got.Owner.Name)
	assert.Empty(t, got.Users)
	assert.Empty(t, got.Videos)
	assert.Nil(t, got.CurrentVideo)
	assert.Nil(t, got.LastJoined)

	err = r.CreateRoom(ctx, &room.CreateRoomParams{RoomId: "room-1"})
	assert.ErrorIs(t, err, room.ErrRoomAlreadyExists)
}

func TestGetRoomNotFound(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.GetRoom(context.Background(), "missing")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestRemoveRoomIsIdempotent(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	createRoom(t, r, "room-1")

	require.NoError(t, r.RemoveRoom(ctx, "room-1"))
	require.NoError(t, r.RemoveRoom(ctx, "room-1"))

	_, err := r.GetRoom(ctx, "room-1")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestAddUserRefreshesLastJoined(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	createRoom(t, r, "room-1")

	first := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return first }

	err := r.AddUser(ctx, &room.AddUserParams{
		RoomId: "room-1",
		User:   room.User{Id: "u1", Name: "bob"},
	})
	require.NoError(t, err)

	got, err := r.GetRoom(ctx, "room-1")
	require.NoError(t, err)
	require.NotNil(t, got.LastJoined)
	assert.Equal(t, first, *got.LastJoined)
	assert.Equal(t, room.User{Id: "u1", Name: "bob"}, got.Users["u1"])

	// re-joining the same id keeps membership size but moves the timestamp
	second := first.Add(5 * time.Minute)
	r.now = func() time.Time { return second }

	err = r.AddUser(ctx, &room.AddUserParams{
		RoomId: "room-1",
		User:   room.User{Id: "u1", Name: "bob"},
	})
	require.NoError(t, err)

	got, err = r.GetRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Len(t, got.Users, 1)
	assert.Equal(t, second, *got.LastJoined)
}

func TestAddUserRoomNotFound(t *testing.T) {
	r := newTestRepo(t)

	err := r.AddUser(context.Background(), &room.AddUserParams{
		RoomId: "missing",
		User:   room.User{Id: "u1"},
	})
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestRemoveUserById(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	createRoom(t, r, "room-1")

	joined := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return joined }
	require.NoError(t, r.AddUser(ctx, &room.AddUserParams{
		RoomId: "room-1",
		User:   room.User{Id: "u1", Name: "bob"},
	}))

	gotRoom, gotUser, err := r.RemoveUserById(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "room-1", gotRoom.Id)
	assert.Equal(t, room.User{Id: "u1", Name: "bob"}, gotUser)
	assert.Empty(t, gotRoom.Users)
	// leaving does not count as activity
	require.NotNil(t, gotRoom.LastJoined)
	assert.Equal(t, joined, *gotRoom.LastJoined)

	_, _, err = r.RemoveUserById(ctx, "u1")
	assert.ErrorIs(t, err, room.ErrUserNotFound)
}

func TestSetVideoFirstBecomesCurrent(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	createRoom(t, r, "room-1")

	v1 := room.Video{URL: "http://v1", Title: "first"}
	require.NoError(t, r.SetVideo(ctx, &room.SetVideoParams{RoomId: "room-1", Video: v1}))

	got, err := r.GetRoom(ctx, "room-1")
	require.NoError(t, err)
	require.NotNil(t, got.CurrentVideo)
	assert.Equal(t, v1, *got.CurrentVideo)

	v2 := room.Video{URL: "http://v2", Title: "second"}
	require.NoError(t, r.SetVideo(ctx, &room.SetVideoParams{RoomId: "room-1", Video: v2}))

	got, err = r.GetRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Len(t, got.Videos, 2)
	assert.Equal(t, v1, *got.CurrentVideo, "adding a second video must not steal the current slot")
}

func TestSetVideoOverwriteKeepsCurrentFresh(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	createRoom(t, r, "room-1")

	v1 := room.Video{URL: "http://v1", Title: "stale"}
	require.NoError(t, r.SetVideo(ctx, &room.SetVideoParams{RoomId: "room-1", Video: v1}))

	v1Fresh := room.Video{URL: "http://v1", Title: "fresh"}
	require.NoError(t, r.SetVideo(ctx, &room.SetVideoParams{RoomId: "room-1", Video: v1Fresh}))

	got, err := r.GetRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Len(t, got.Videos, 1)
	require.NotNil(t, got.CurrentVideo)
	assert.Equal(t, v1Fresh, *got.CurrentVideo)
}

func TestRemoveVideo(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	createRoom(t, r, "room-1")

	v1 := room.Video{URL: "http://v1"}
	v2 := room.Video{URL: "http://v2"}
	require.NoError(t, r.SetVideo(ctx, &room.SetVideoParams{RoomId: "room-1", Video: v1}))
	require.NoError(t, r.SetVideo(ctx, &room.SetVideoParams{RoomId: "room-1", Video: v2}))

	// removing a non-current url leaves the selection alone
	require.NoError(t, r.RemoveVideo(ctx, &room.RemoveVideoParams{RoomId: "room-1", VideoURL: "http://v2"}))
	got, err := r.GetRoom(ctx, "room-1")
	require.NoError(t, err)
	require.NotNil(t, got.CurrentVideo)
	assert.Equal(t, v1, *got.CurrentVideo)

	// removing an absent url is a no-op
	require.NoError(t, r.RemoveVideo(ctx, &room.RemoveVideoParams{RoomId: "room-1", VideoURL: "http://missing"}))

	// removing the current url clears the selection
	require.NoError(t, r.RemoveVideo(ctx, &room.RemoveVideoParams{RoomId: "room-1", VideoURL: "http://v1"}))
	got, err = r.GetRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Nil(t, got.CurrentVideo)
	assert.Empty(t, got.Videos)
}

func TestSetCurrentVideo(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	createRoom(t, r, "room-1")

	v1 := room.Video{URL: "http://v1"}
	v2 := room.Video{URL: "http://v2"}
	require.NoError(t, r.SetVideo(ctx, &room.SetVideoParams{RoomId: "room-1", Video: v1}))
	require.NoError(t, r.SetVideo(ctx, &room.SetVideoParams{RoomId: "room-1", Video: v2}))

	require.NoError(t, r.SetCurrentVideo(ctx, &room.SetCurrentVideoParams{RoomId: "room-1", VideoURL: "http://v2"}))
	got, err := r.GetRoom(ctx, "room-1")
	require.NoError(t, err)
	require.NotNil(t, got.CurrentVideo)
	assert.Equal(t, v2, *got.CurrentVideo)

	err = r.SetCurrentVideo(ctx, &room.SetCurrentVideoParams{RoomId: "room-1", VideoURL: "http://missing"})
	assert.ErrorIs(t, err, room.ErrVideoNotFound)

	// a failed change must not clear the existing selection
	got, err = r.GetRoom(ctx, "room-1")
	require.NoError(t, err)
	require.NotNil(t, got.CurrentVideo)
	assert.Equal(t, v2, *got.CurrentVideo)
}

func TestRemoveRoomIfInactive(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(-10 * time.Minute)

	// never joined: lastJoined absent, never reaped
	createRoom(t, r, "never-joined")
	deleted, err := r.RemoveRoomIfInactive(ctx, &room.RemoveRoomIfInactiveParams{
		RoomId:           "never-joined",
		LastJoinedBefore: cutoff,
	})
	require.NoError(t, err)
	assert.False(t, deleted)

	// occupied room survives regardless of timestamps
	createRoom(t, r, "occupied")
	r.now = func() time.Time { return now.Add(-time.Hour) }
	require.NoError(t, r.AddUser(ctx, &room.AddUserParams{RoomId: "occupied", User: room.User{Id: "u1"}}))
	deleted, err = r.RemoveRoomIfInactive(ctx, &room.RemoveRoomIfInactiveParams{
		RoomId:           "occupied",
		LastJoinedBefore: cutoff,
	})
	require.NoError(t, err)
	assert.False(t, deleted)

	// empty and idle past the cutoff: reaped
	createRoom(t, r, "idle")
	r.now = func() time.Time { return now.Add(-11 * time.Minute) }
	require.NoError(t, r.AddUser(ctx, &room.AddUserParams{RoomId: "idle", User: room.User{Id: "u2"}}))
	_, _, err = r.RemoveUserById(ctx, "u2")
	require.NoError(t, err)
	deleted, err = r.RemoveRoomIfInactive(ctx, &room.RemoveRoomIfInactiveParams{
		RoomId:           "idle",
		LastJoinedBefore: cutoff,
	})
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = r.GetRoom(ctx, "idle")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)

	// empty but recently joined: survives
	createRoom(t, r, "recent")
	r.now = func() time.Time { return now.Add(-time.Minute) }
	require.NoError(t, r.AddUser(ctx, &room.AddUserParams{RoomId: "recent", User: room.User{Id: "u3"}}))
	_, _, err = r.RemoveUserById(ctx, "u3")
	require.NoError(t, err)
	deleted, err = r.RemoveRoomIfInactive(ctx, &room.RemoveRoomIfInactiveParams{
		RoomId:           "recent",
		LastJoinedBefore: cutoff,
	})
	require.NoError(t, err)
	assert.False(t, deleted)

	// absent room: no-op, no error
	deleted, err = r.RemoveRoomIfInactive(ctx, &room.RemoveRoomIfInactiveParams{
		RoomId:           "gone",
		LastJoinedBefore: cutoff,
	})
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSnapshotsAreCopies(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	createRoom(t, r, "room-1")

	require.NoError(t, r.SetVideo(ctx, &room.SetVideoParams{
		RoomId: "room-1",
		Video:  room.Video{URL: "http://v1"},
	}))

	got, err := r.GetRoom(ctx, "room-1")
	require.NoError(t, err)
	got.Videos["http://injected"] = room.Video{URL: "http://injected"}
	got.Users["ghost"] = room.User{Id: "ghost"}

	fresh, err := r.GetRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Len(t, fresh.Videos, 1)
	assert.Empty(t, fresh.Users)
}

func TestClear(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	createRoom(t, r, "room-1")
	createRoom(t, r, "room-2")

	r.Clear(ctx)

	rooms, err := r.GetRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}
