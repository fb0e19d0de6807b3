package root

import (
	"context"

	"upvote-club/config"
	"upvote-club/services"
	"upvote-club/store"
)

func openEngine(ctx context.Context) (*services.Engine, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	db, err := store.OpenGorm(pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	engine, err := services.NewEngine(ctx, cfg, store.NewGormStore(db))
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	cleanup := func() {
		_ = engine.Close()
		pool.Close()
	}
	return engine, cleanup, nil
}
