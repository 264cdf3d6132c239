package worker

// lowstock_cron.go
// Background goroutine that periodically sweeps for products at or below
// their minimum stock and enqueues alert jobs. Catches anything the inline
// post-commit checks missed (seeded data, direct SQL fixes, missed jobs).
// A Redis SETNX key per product suppresses duplicate alerts for a cooldown
// window.

import (
	"context"
	"time"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	lowStockAlertCooldown = 6 * time.Hour
	lowStockDedupePrefix  = "lowstock:alerted:"
)

// LowStockCronConfig holds all dependencies for the sweep goroutine.
type LowStockCronConfig struct {
	ProductRepo repository.ProductRepository
	RDB         *redis.Client
	Dispatcher  *Dispatcher
	Interval    time.Duration
}

// StartLowStockCron launches a background goroutine that ticks every
// cfg.Interval and enqueues alerts for products below minimum.
// It respects the context for graceful shutdown.
func StartLowStockCron(ctx context.Context, cfg LowStockCronConfig) {
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("lowstock_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("lowstock_cron: shutting down")
				return
			case <-ticker.C:
				sweep(ctx, cfg)
			}
		}
	}()
}

func sweep(ctx context.Context, cfg LowStockCronConfig) {
	products, err := cfg.ProductRepo.ListBelowMin(ctx)
	if err != nil {
		log.Error().Err(err).Msg("lowstock_cron: sweep query failed")
		return
	}
	if len(products) == 0 {
		return
	}

	for i := range products {
		p := &products[i]

		// SETNX with TTL: first sweep alerts, later sweeps stay quiet until
		// the cooldown expires.
		key := lowStockDedupePrefix + p.ID.String()
		ok, err := cfg.RDB.SetNX(ctx, key, 1, lowStockAlertCooldown).Result()
		if err != nil {
			log.Error().Err(err).Str("product", p.Name).Msg("lowstock_cron: dedupe check failed")
			continue
		}
		if !ok {
			continue
		}

		if err := cfg.Dispatcher.EnqueueLowStockAlert(ctx, LowStockAlertPayload{
			ProductID:    p.ID.String(),
			Name:         p.Name,
			CurrentStock: p.CurrentStock,
			MinStock:     p.MinStock,
		}); err != nil {
			log.Error().Err(err).Str("product", p.Name).Msg("lowstock_cron: enqueue failed")
		}
	}
}
