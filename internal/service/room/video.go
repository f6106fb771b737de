package room

import (
	"context"
	"errors"

	repository "github.com/watchroom/server/internal/repository/room"
)

type AddVideoParams struct {
	RoomId   string
	VideoURL string
}

type AddVideoResponse struct {
	AddedVideo Video
	Room       Room
}

// AddVideo resolves metadata for the url and appends it to the room's
// collection. The metadata lookup can block for a while, so the store is not
// held across it; instead adds are serialized per room, which keeps the
// "first video becomes current" decision race-free when two adds target the
// same empty room. Provider failures surface to the caller untouched.
func (s *service) AddVideo(ctx context.Context, params *AddVideoParams) (AddVideoResponse, error) {
	unlock := s.addVideoLocks.lock(params.RoomId)
	defer unlock()

	if _, err := s.roomRepo.GetRoom(ctx, params.RoomId); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return AddVideoResponse{}, ErrRoomNotFound
		}
		return AddVideoResponse{}, err
	}

	resolveCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	data, err := s.videoProvider.Resolve(resolveCtx, params.VideoURL)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to resolve video", "url", params.VideoURL, "error", err)
		return AddVideoResponse{}, err
	}

	video := repository.Video{
		URL:          params.VideoURL,
		Title:        data.Title,
		AuthorName:   data.AuthorName,
		ThumbnailURL: data.ThumbnailURL,
	}

	// the room may have been reaped while the lookup was in flight
	if err := s.roomRepo.SetVideo(ctx, &repository.SetVideoParams{
		RoomId: params.RoomId,
		Video:  video,
	}); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return AddVideoResponse{}, ErrRoomNotFound
		}
		return AddVideoResponse{}, err
	}

	s.logger.InfoContext(ctx, "video added", "roomId", params.RoomId, "url", params.VideoURL)

	r, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return AddVideoResponse{}, ErrRoomNotFound
		}
		return AddVideoResponse{}, err
	}

	return AddVideoResponse{
		AddedVideo: mapVideo(video),
		Room:       mapRoom(r),
	}, nil
}

type RemoveVideoParams struct {
	RoomId   string
	VideoURL string
}

type RemoveVideoResponse struct {
	Room Room
}

func (s *service) RemoveVideo(ctx context.Context, params *RemoveVideoParams) (RemoveVideoResponse, error) {
	err := s.roomRepo.RemoveVideo(ctx, &repository.RemoveVideoParams{
		RoomId:   params.RoomId,
		VideoURL: params.VideoURL,
	})
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return RemoveVideoResponse{}, ErrRoomNotFound
		}
		s.logger.InfoContext(ctx, "failed to remove video", "error", err)
		return RemoveVideoResponse{}, err
	}

	r, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return RemoveVideoResponse{}, ErrRoomNotFound
		}
		return RemoveVideoResponse{}, err
	}

	return RemoveVideoResponse{Room: mapRoom(r)}, nil
}

type ChangeCurrentVideoParams struct {
	RoomId   string
	VideoURL string
}

type ChangeCurrentVideoResponse struct {
	Room Room
}

// ChangeCurrentVideo fails with ErrVideoNotFound when the url is not in the
// room's collection, rather than clearing the selection.
func (s *service) ChangeCurrentVideo(ctx context.Context, params *ChangeCurrentVideoParams) (ChangeCurrentVideoResponse, error) {
	err := s.roomRepo.SetCurrentVideo(ctx, &repository.SetCurrentVideoParams{
		RoomId:   params.RoomId,
		VideoURL: params.VideoURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomNotFound):
			return ChangeCurrentVideoResponse{}, ErrRoomNotFound
		case errors.Is(err, repository.ErrVideoNotFound):
			return ChangeCurrentVideoResponse{}, ErrVideoNotFound
		}
		s.logger.InfoContext(ctx, "failed to change current video", "error", err)
		return ChangeCurrentVideoResponse{}, err
	}

	r, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return ChangeCurrentVideoResponse{}, ErrRoomNotFound
		}
		return ChangeCurrentVideoResponse{}, err
	}

	return ChangeCurrentVideoResponse{Room: mapRoom(r)}, nil
}
