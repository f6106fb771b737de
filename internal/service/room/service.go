package room

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/watchroom/server/internal/provider"
	repository "github.com/watchroom/server/internal/repository/room"
)

type iRoomRepo interface {
	CreateRoom(context.Context, *repository.CreateRoomParams) error
	GetRoom(context.Context, string) (repository.Room, error)
	GetRooms(context.Context) ([]repository.Room, error)
	AddUser(context.Context, *repository.AddUserParams) error
	RemoveUserById(context.Context, string) (repository.Room, repository.User, error)
	SetVideo(context.Context, *repository.SetVideoParams) error
	RemoveVideo(context.Context, *repository.RemoveVideoParams) error
	SetCurrentVideo(context.Context, *repository.SetCurrentVideoParams) error
	RemoveRoomIfInactive(context.Context, *repository.RemoveRoomIfInactiveParams) (bool, error)
}

type iVideoProvider interface {
	Resolve(ctx context.Context, videoURL string) (provider.VideoData, error)
}

type iGenerator interface {
	GenerateId() string
}

type uuidGenerator struct{}

func (uuidGenerator) GenerateId() string {
	return uuid.NewString()
}

type Config struct {
	// IdleThreshold is how long an empty room may sit since its last join
	// before the reaper deletes it.
	IdleThreshold time.Duration
	// ProviderTimeout bounds the metadata lookup in AddVideo.
	ProviderTimeout time.Duration
}

type service struct {
	roomRepo        iRoomRepo
	videoProvider   iVideoProvider
	generator       iGenerator
	idleThreshold   time.Duration
	providerTimeout time.Duration
	addVideoLocks   *keyLock
	logger          *slog.Logger
	now             func() time.Time
}

func NewService(roomRepo iRoomRepo, videoProvider iVideoProvider, cfg *Config, logger *slog.Logger) *service {
	return &service{
		roomRepo:        roomRepo,
		videoProvider:   videoProvider,
		generator:       uuidGenerator{},
		idleThreshold:   cfg.IdleThreshold,
		providerTimeout: cfg.ProviderTimeout,
		addVideoLocks:   newKeyLock(),
		logger:          logger,
		now:             time.Now,
	}
}
