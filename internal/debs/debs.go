package deps

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/bwise1/groupsplit_api/config"
	"github.com/bwise1/groupsplit_api/internal/db"
	"github.com/bwise1/groupsplit_api/internal/jobs"
	"github.com/bwise1/groupsplit_api/internal/service"
	"github.com/bwise1/groupsplit_api/internal/store"
	"github.com/bwise1/groupsplit_api/util/websockets"
)

type Dependencies struct {
	DB        *db.DB
	Store     *store.Store
	Groups    *service.GroupService
	WebSocket *websockets.WebSocketManager
	Scheduler *jobs.Scheduler
}

func New(cfg *config.Config) (*Dependencies, error) {
	database, err := db.New(cfg.Dsn, db.Options{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}

	st := store.New()

	// the hub authorizes subscriptions through the service, which publishes to the hub
	var groups *service.GroupService
	websocket := websockets.NewWebSocketManager(func(ctx context.Context, userID, groupID uuid.UUID) error {
		return groups.AuthorizeSubscription(ctx, userID, groupID)
	})
	groups = service.NewGroupService(database, st, websocket)

	scheduler, err := jobs.New(jobs.Config{
		InviteExpiryDays:     cfg.InviteExpiryDays,
		InviteExpirySchedule: cfg.InviteExpirySchedule,
	}, groups)
	if err != nil {
		database.Close()
		return nil, errors.Wrap(err, "configuring scheduler")
	}

	deps := Dependencies{
		DB:        database,
		Store:     st,
		Groups:    groups,
		WebSocket: websocket,
		Scheduler: scheduler,
	}
	return &deps, nil
}

func (d *Dependencies) Close() {
	d.DB.Close()
}
