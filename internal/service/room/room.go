package room

import (
	"context"
	"errors"
	"fmt"

	repository "github.com/watchroom/server/internal/repository/room"
)

const createRoomMaxAttempts = 5

type CreateRoomParams struct {
	OwnerName string
	OwnerSlug string
}

func (s *service) CreateRoom(ctx context.Context, params *CreateRoomParams) (Room, error) {
	// uuid collisions are negligible, but the store still enforces
	// uniqueness on insert and we retry rather than trust the generator.
	for attempt := 0; attempt < createRoomMaxAttempts; attempt++ {
		roomId := s.generator.GenerateId()

		err := s.roomRepo.CreateRoom(ctx, &repository.CreateRoomParams{
			RoomId: roomId,
			Owner: repository.Owner{
				Name: params.OwnerName,
				Slug: params.OwnerSlug,
			},
		})
		if err != nil {
			if errors.Is(err, repository.ErrRoomAlreadyExists) {
				s.logger.InfoContext(ctx, "room id collision, retrying", "roomId", roomId)
				continue
			}
			return Room{}, err
		}

		s.logger.InfoContext(ctx, "room created", "roomId", roomId, "owner", params.OwnerName)

		created, err := s.roomRepo.GetRoom(ctx, roomId)
		if err != nil {
			return Room{}, err
		}

		return mapRoom(created), nil
	}

	return Room{}, fmt.Errorf("failed to generate a unique room id after %d attempts", createRoomMaxAttempts)
}

func (s *service) GetRoom(ctx context.Context, roomId string) (Room, error) {
	r, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return Room{}, ErrRoomNotFound
		}
		return Room{}, err
	}

	return mapRoom(r), nil
}

func (s *service) GetRooms(ctx context.Context) ([]Room, error) {
	rooms, err := s.roomRepo.GetRooms(ctx)
	if err != nil {
		return nil, err
	}

	mapped := make([]Room, 0, len(rooms))
	for _, r := range rooms {
		mapped = append(mapped, mapRoom(r))
	}

	return mapped, nil
}
