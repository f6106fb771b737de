package room

import "time"

type Owner struct {
	Name string
	Slug string
}

type User struct {
	Id   string
	Name string
}

type Video struct {
	URL          string
	Title        string
	AuthorName   string
	ThumbnailURL string
}

// Room is a snapshot of a registered room. The maps are copies owned by the
// caller; mutating them does not touch the store.
type Room struct {
	Id           string
	Owner        Owner
	Users        map[string]User
	Videos       map[string]Video
	CurrentVideo *Video
	LastJoined   *time.Time
}
