package room

import (
	repository "github.com/watchroom/server/internal/repository/room"
)

func mapVideo(video repository.Video) Video {
	return Video{
		URL:          video.URL,
		Title:        video.Title,
		AuthorName:   video.AuthorName,
		ThumbnailURL: video.ThumbnailURL,
	}
}

func mapUser(user repository.User) User {
	return User{
		Id:   user.Id,
		Name: user.Name,
	}
}

func mapRoom(r repository.Room) Room {
	users := make([]User, 0, len(r.Users))
	for _, user := range r.Users {
		users = append(users, mapUser(user))
	}

	videos := make([]Video, 0, len(r.Videos))
	for _, video := range r.Videos {
		videos = append(videos, mapVideo(video))
	}

	mapped := Room{
		Id:         r.Id,
		Owner:      Owner{Name: r.Owner.Name, Slug: r.Owner.Slug},
		Users:      users,
		Videos:     videos,
		LastJoined: r.LastJoined,
	}
	if r.CurrentVideo != nil {
		current := mapVideo(*r.CurrentVideo)
		mapped.CurrentVideo = &current
	}

	return mapped
}
