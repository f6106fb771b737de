package room

import "time"

type CreateRoomParams struct {
	RoomId string
	Owner  Owner
}

type AddUserParams struct {
	RoomId string
	User   User
}

type SetVideoParams struct {
	RoomId string
	Video  Video
}

type RemoveVideoParams struct {
	RoomId   string
	VideoURL string
}

type SetCurrentVideoParams struct {
	RoomId   string
	VideoURL string
}

type RemoveRoomIfInactiveParams struct {
	RoomId           string
	LastJoinedBefore time.Time
}
