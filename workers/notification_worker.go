// workers/notification_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"upvote-club/services"
)

// NotificationWorker drains the notification outbox on a fixed tick.
type NotificationWorker struct {
	dispatcher *services.Dispatcher
	interval   time.Duration
}

func NewNotificationWorker(d *services.Dispatcher, interval time.Duration) *NotificationWorker {
	return &NotificationWorker{dispatcher: d, interval: interval}
}

func (w *NotificationWorker) Start(ctx context.Context) {
	log.Printf("🔁 Starting Notification Worker (every %v)…", w.interval)
	go w.run(ctx)
}

func (w *NotificationWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.dispatcher.DispatchDue(ctx); err != nil {
				log.Printf("[NOTIFY] ❌ Dispatch pass failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Notification Worker stopped")
			return
		}
	}
}
