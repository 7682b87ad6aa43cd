package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pos_engine/internal/mykafka"
)

// Logger ships order activity to Kafka fire-and-forget. A nil Logger or a
// missing producer records nothing; activity logging is best-effort only.
type Logger struct {
	Producer *mykafka.Producer
	Log      *slog.Logger
}

func (l *Logger) Record(action string, details map[string]any, userID uuid.UUID, userName string) {
	if l == nil || l.Producer == nil {
		return
	}
	log := l.Log
	if log == nil {
		log = slog.Default()
	}
	event := map[string]any{
		"action":    action,
		"details":   details,
		"user_id":   userID.String(),
		"user_name": userName,
		"at":        time.Now().UTC(),
	}
	go func() {
		if err := l.Producer.PublishEvent(context.Background(), action, event); err != nil {
			log.Warn("activity log publish failed", "action", action, "error", err)
		}
	}()
}
