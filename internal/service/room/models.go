package room

import "time"

type Owner struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type User struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type Video struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type Room struct {
	Id           string     `json:"id"`
	Owner        Owner      `json:"owner"`
	Users        []User     `json:"users"`
	Videos       []Video    `json:"videos"`
	CurrentVideo *Video     `json:"current_video"`
	LastJoined   *time.Time `json:"last_joined"`
}
