package room

import (
	"context"
	"errors"

	repository "github.com/watchroom/server/internal/repository/room"
)

type JoinRoomParams struct {
	RoomId string
	User   User
}

type JoinRoomResponse struct {
	Room Room
}

func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	err := s.roomRepo.AddUser(ctx, &repository.AddUserParams{
		RoomId: params.RoomId,
		User: repository.User{
			Id:   params.User.Id,
			Name: params.User.Name,
		},
	})
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return JoinRoomResponse{}, ErrRoomNotFound
		}
		s.logger.InfoContext(ctx, "failed to add user", "error", err)
		return JoinRoomResponse{}, err
	}

	s.logger.InfoContext(ctx, "user joined", "roomId", params.RoomId, "userId", params.User.Id)

	r, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return JoinRoomResponse{}, ErrRoomNotFound
		}
		return JoinRoomResponse{}, err
	}

	return JoinRoomResponse{Room: mapRoom(r)}, nil
}

type LeaveRoomParams struct {
	UserId string
}

type LeaveRoomResponse struct {
	Room Room
	User User
}

// LeaveRoom is keyed by user id alone: user ids are uuids minted at join
// time, so a user id identifies at most one room.
func (s *service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) (LeaveRoomResponse, error) {
	r, user, err := s.roomRepo.RemoveUserById(ctx, params.UserId)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return LeaveRoomResponse{}, ErrUserNotFound
		}
		s.logger.InfoContext(ctx, "failed to remove user", "error", err)
		return LeaveRoomResponse{}, err
	}

	s.logger.InfoContext(ctx, "user left", "roomId", r.Id, "userId", params.UserId)

	return LeaveRoomResponse{
		Room: mapRoom(r),
		User: mapUser(user),
	}, nil
}
