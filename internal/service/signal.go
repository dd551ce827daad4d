package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/retracehq/retrace"
)

const recordChannel = "retrace:records"

// SignalService fans record-stored events out to realtime subscribers via
// redis pubsub, so every server instance sees every event.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event retrace.RecordEvent) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, recordChannel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Listen forwards events to output until ctx is done. An empty workspaceID
// subscribes to every workspace.
func (s *SignalService) Listen(ctx context.Context, workspaceID string, output chan<- retrace.RecordEvent) {
	pubsub := s.rdb.Subscribe(ctx, recordChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event retrace.RecordEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.WarnContext(ctx, "malformed record event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			if workspaceID != "" && event.WorkspaceID != workspaceID {
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
