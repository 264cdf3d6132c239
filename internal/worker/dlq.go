package worker

// Jobs whose handler fails land on a per-queue Redis dead letter list
// ("dlq:" + source queue) for manual inspection and replay. Depths are
// surfaced on the health endpoint so a growing backlog is visible without
// shelling into Redis.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const dlqPrefix = "dlq:"

// deadJob is the envelope stored on the dead letter list — the original job
// plus enough context to diagnose the failure.
type deadJob struct {
	Queue    string          `json:"queue"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	FailedAt time.Time       `json:"failed_at"`
}

// sendToDLQ parks a failed job on its queue's dead letter list. Best effort:
// a Redis error here is logged, not propagated — the job was already popped
// and there is nowhere better to put it.
func sendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string) {
	entry := deadJob{
		Queue:    queue,
		Type:     job.Type,
		Payload:  job.Payload,
		Reason:   reason,
		FailedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal entry")
		return
	}

	key := dlqPrefix + queue
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("dlq: push")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Msg("job moved to dead letter queue")
}

// DLQDepths reports the dead letter list length per source queue.
func DLQDepths(ctx context.Context, rdb *redis.Client) (map[string]int64, error) {
	depths := make(map[string]int64, 2)
	for _, queue := range []string{QueueAlerts, QueueReports} {
		n, err := rdb.LLen(ctx, dlqPrefix+queue).Result()
		if err != nil {
			return nil, err
		}
		depths[queue] = n
	}
	return depths, nil
}
