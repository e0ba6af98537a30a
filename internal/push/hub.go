// Package push implements the push channel (C14): a websocket hub that
// fans event notifications out to connected dashboards (spec.md §6).
// Grounded on the broadcast-hub pattern, generalized from a single
// unbounded broadcast channel to one bounded, drop-oldest queue per
// subscriber so a slow client can never stall delivery to the rest.
package push

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/clarity-health/claimrisk/internal/logging"
)

// subscriberQueueSize bounds how many undelivered events a slow
// subscriber can accumulate before the oldest is dropped.
const subscriberQueueSize = 64

const writeDeadline = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EventKind enumerates the push event types the dashboard understands.
type EventKind string

const (
	EventFileProgress        EventKind = "file_progress"
	EventRiskScoreCalculated EventKind = "risk_score_calculated"
	EventEpisodeLinked       EventKind = "episode_linked"
)

// Event is the JSON envelope written to every subscriber.
type Event struct {
	Kind    EventKind `json:"kind"`
	Payload any       `json:"payload"`
}

type subscriber struct {
	conn  *websocket.Conn
	queue chan Event
}

// Hub fans events out to subscribed websocket clients.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	logger      *zap.Logger
}

// NewHub builds an empty Hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[*subscriber]struct{})}
}

// Subscribe upgrades an HTTP request to a websocket connection and
// registers it for broadcast delivery.
func (h *Hub) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := &subscriber{conn: conn, queue: make(chan Event, subscriberQueueSize)}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	count := len(h.subscribers)
	h.mu.Unlock()
	h.log().Info("subscriber connected", zap.Int("subscriber_count", count))

	go h.writeLoop(sub)
	go h.readLoop(sub)
}

// writeLoop drains sub's queue to its websocket connection until closed.
func (h *Hub) writeLoop(sub *subscriber) {
	defer h.drop(sub)
	for event := range sub.queue {
		_ = sub.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := sub.conn.WriteJSON(event); err != nil {
			h.log().Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}

// readLoop only exists to notice client disconnects; the channel is
// one-directional from the server's perspective.
func (h *Hub) readLoop(sub *subscriber) {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			h.drop(sub)
			return
		}
	}
}

func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.subscribers[sub]; ok {
		delete(h.subscribers, sub)
		close(sub.queue)
	}
	count := len(h.subscribers)
	h.mu.Unlock()
	_ = sub.conn.Close()
	h.log().Info("subscriber disconnected", zap.Int("subscriber_count", count))
}

// Broadcast enqueues event for every connected subscriber, dropping the
// oldest queued event for any subscriber whose queue is full.
func (h *Hub) Broadcast(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers {
		select {
		case sub.queue <- event:
		default:
			select {
			case <-sub.queue:
			default:
			}
			select {
			case sub.queue <- event:
			default:
			}
		}
	}
}

// SubscriberCount reports how many clients are currently connected, for
// the health-detail endpoint (spec.md §6 supplemental).
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// PublishRiskScoreCalculated implements risk.EventPublisher.
func (h *Hub) PublishRiskScoreCalculated(claimID string, score domain.RiskScore) {
	h.Broadcast(Event{Kind: EventRiskScoreCalculated, Payload: map[string]any{
		"claim_id":      claimID,
		"overall_score": score.OverallScore,
		"level":         score.Level,
	}})
}

// PublishEpisodeLinked notifies subscribers that a remittance claim was
// linked to (or created) an episode.
func (h *Hub) PublishEpisodeLinked(episode domain.Episode) {
	h.Broadcast(Event{Kind: EventEpisodeLinked, Payload: map[string]any{
		"episode_id": episode.ID,
		"claim_id":   episode.ClaimID,
		"status":     episode.Status,
	}})
}

// PublishFileProgress notifies subscribers of ingestion progress for a
// long-running EDI file.
func (h *Hub) PublishFileProgress(fileName string, processed, total int) {
	h.Broadcast(Event{Kind: EventFileProgress, Payload: map[string]any{
		"file":      fileName,
		"processed": processed,
		"total":     total,
	}})
}

func (h *Hub) log() *zap.Logger {
	if l := logging.GetLogger(); l != nil {
		return l
	}
	return zap.NewNop()
}
