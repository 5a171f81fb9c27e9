// internal/handlers/club_server.go
package handlers

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/gaolinyi828/mahjong-pro/internal/cache"
	"github.com/gaolinyi828/mahjong-pro/internal/ledger"
	"github.com/gaolinyi828/mahjong-pro/internal/models"
	"github.com/gaolinyi828/mahjong-pro/internal/watch"
)

// Store is everything the HTTP layer needs from persistence: the ledger's
// write surface plus the roster and listing reads.
type Store interface {
	ledger.Store

	CreatePlayer(ctx context.Context, p *models.Player) error
	UpdatePlayer(ctx context.Context, id models.PlayerID, name, avatar string) error
	GetPlayer(ctx context.Context, id models.PlayerID) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	ListSessions(ctx context.Context) ([]models.Session, error)
	ListRounds(ctx context.Context) ([]models.RoundRecord, error)
	ListSessionRounds(ctx context.Context, id models.SessionID) ([]models.RoundRecord, error)
	ClearAll(ctx context.Context) error
}

// ClubServer bundles the collaborators the handlers close over.
type ClubServer struct {
	Store  Store
	Ledger *ledger.Ledger
	Hub    *watch.Hub
	Logger *log.Logger

	// Notify broadcasts a change notice for one collection after a write.
	// Overridable so tests run without Redis.
	Notify func(ctx context.Context, kind string)

	// QueueRoundEvent hands a committed round to the archiver queue.
	QueueRoundEvent func(ctx context.Context, rec cache.RoundEventRecord)
}

func NewClubServer(store Store, hub *watch.Hub, logger *log.Logger) *ClubServer {
	s := &ClubServer{
		Store:  store,
		Ledger: ledger.New(store),
		Hub:    hub,
		Logger: logger,
	}
	s.Notify = func(ctx context.Context, kind string) {
		if err := cache.PublishChange(ctx, kind); err != nil {
			logger.Warnf("change notice for %s not published: %v", kind, err)
		}
	}
	s.QueueRoundEvent = func(ctx context.Context, rec cache.RoundEventRecord) {
		if err := cache.PublishRoundEvent(ctx, rec); err != nil {
			logger.Warnf("round event %s not queued: %v", rec.RoundID, err)
		}
	}
	return s
}

// changed runs the post-write fanout: local watchers refresh immediately,
// remote processes hear about it over Redis.
func (s *ClubServer) changed(ctx context.Context, kinds ...string) {
	for _, kind := range kinds {
		s.Notify(ctx, kind)
	}
	if s.Hub != nil {
		if err := s.Hub.Refresh(ctx); err != nil {
			s.Logger.Warnf("local snapshot refresh failed: %v", err)
		}
	}
}
