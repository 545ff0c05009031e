package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/attendance-backend/internal/config"
	"github.com/stemsi/attendance-backend/internal/repository"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// OpenStore connects the credential store selected by STORE_BACKEND.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repository.Store, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &repository.Store{
			Backend:  cfg.StoreBackend,
			Teachers: repository.NewTeacherRepository(pool),
			Students: repository.NewStudentRepository(pool),
			Ping:     pool.Ping,
			Close:    pool.Close,
		}, nil

	case config.StoreMongo:
		client, err := NewMongoClient(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDB)
		if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return &repository.Store{
			Backend:  cfg.StoreBackend,
			Teachers: repository.NewTeacherMongoRepository(db),
			Students: repository.NewStudentMongoRepository(db),
			Ping: func(ctx context.Context) error {
				return client.Ping(ctx, readpref.Primary())
			},
			Close: func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case config.StoreMemory:
		log.Warn().Msg("Using in-memory store, data is lost on restart")
		mem := repository.NewMemory()
		return &repository.Store{
			Backend:  cfg.StoreBackend,
			Teachers: mem.Teachers(),
			Students: mem.Students(),
			Ping:     func(context.Context) error { return nil },
			Close:    func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}
