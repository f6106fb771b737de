package room

import (
	"context"

	repository "github.com/watchroom/server/internal/repository/room"
)

// ReapInactiveRooms deletes every room that has no users and whose last join
// is older than the idle threshold. Rooms that never saw a join are left
// alone: the transport joins a room's creator right after creation, so a
// missing lastJoined only means the creator's handshake is still in flight.
//
// Deletion re-validates the idle conditions under the store's lock, so a
// join racing the sweep keeps its room. Per-room failures are logged and the
// sweep moves on.
func (s *service) ReapInactiveRooms(ctx context.Context) {
	cutoff := s.now().Add(-s.idleThreshold)

	rooms, err := s.roomRepo.GetRooms(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list rooms for reaping", "error", err)
		return
	}

	s.logger.DebugContext(ctx, "reaping inactive rooms", "rooms", len(rooms), "cutoff", cutoff)

	for _, r := range rooms {
		idle := len(r.Users) == 0 && r.LastJoined != nil && r.LastJoined.Before(cutoff)
		s.logger.DebugContext(ctx, "room activity",
			"roomId", r.Id,
			"users", len(r.Users),
			"lastJoined", r.LastJoined,
			"idle", idle,
		)
		if !idle {
			continue
		}

		deleted, err := s.roomRepo.RemoveRoomIfInactive(ctx, &repository.RemoveRoomIfInactiveParams{
			RoomId:           r.Id,
			LastJoinedBefore: cutoff,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to reap room", "roomId", r.Id, "error", err)
			continue
		}
		if deleted {
			s.logger.InfoContext(ctx, "room reaped", "roomId", r.Id, "lastJoined", r.LastJoined)
		}
	}
}
