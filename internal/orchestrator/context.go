package orchestrator

import (
	"context"
	"dataweave/internal/models"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	historyKeyPrefix = "dataweave:history:"
	historyTTL       = 24 * time.Hour
)

// ContextManager keeps a bounded per-session history of interactions.
// It writes through to Redis when a client is provided and otherwise keeps
// the history in process memory, so sessions work in every deployment.
type ContextManager struct {
	client   *redis.Client
	capacity int

	mu     sync.Mutex
	memory map[string][]models.InteractionRecord
}

// NewContextManager creates a session history store with the given
// capacity. client may be nil to run purely in memory.
func NewContextManager(client *redis.Client, capacity int) *ContextManager {
	if capacity <= 0 {
		capacity = 5
	}
	return &ContextManager{
		client:   client,
		capacity: capacity,
		memory:   make(map[string][]models.InteractionRecord),
	}
}

// Append records an interaction for a session, evicting the oldest record
// once the session is at capacity.
func (m *ContextManager) Append(ctx context.Context, sessionID string, record models.InteractionRecord) {
	if sessionID == "" {
		return
	}

	if m.client != nil {
		err := m.appendRedis(ctx, sessionID, record)
		if err == nil {
			return
		}
		log.Printf("⚠️  [CONTEXT] Redis write failed (%v), falling back to memory", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	history := append(m.memory[sessionID], record)
	if len(history) > m.capacity {
		history = history[len(history)-m.capacity:]
	}
	m.memory[sessionID] = history
}

// Recent returns up to k interactions for a session, oldest first. A cold
// session yields an empty slice.
func (m *ContextManager) Recent(ctx context.Context, sessionID string, k int) []models.InteractionRecord {
	if sessionID == "" || k <= 0 {
		return nil
	}
	if k > m.capacity {
		k = m.capacity
	}

	if m.client != nil {
		history, err := m.recentRedis(ctx, sessionID, k)
		if err == nil {
			return history
		}
		log.Printf("⚠️  [CONTEXT] Redis read failed (%v), falling back to memory", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	history := m.memory[sessionID]
	if len(history) > k {
		history = history[len(history)-k:]
	}
	out := make([]models.InteractionRecord, len(history))
	copy(out, history)
	return out
}

func (m *ContextManager) appendRedis(ctx context.Context, sessionID string, record models.InteractionRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	key := historyKeyPrefix + sessionID
	pipe := m.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, int64(m.capacity-1))
	pipe.Expire(ctx, key, historyTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (m *ContextManager) recentRedis(ctx context.Context, sessionID string, k int) ([]models.InteractionRecord, error) {
	// LPUSH stores newest first; read k entries and reverse to oldest-first.
	raw, err := m.client.LRange(ctx, historyKeyPrefix+sessionID, 0, int64(k-1)).Result()
	if err != nil {
		return nil, err
	}
	history := make([]models.InteractionRecord, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var record models.InteractionRecord
		if err := json.Unmarshal([]byte(raw[i]), &record); err != nil {
			log.Printf("⚠️  [CONTEXT] Skipping corrupt history entry: %v", err)
			continue
		}
		history = append(history, record)
	}
	return history, nil
}
