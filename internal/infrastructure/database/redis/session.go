// Package redis implements conversation memory over Redis with a degraded
// in-process fallback, so a Redis outage costs cross-instance continuity but
// never takes the chat surface down.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mediclic/vademecum-ai/internal/config"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/monitoring/logging"
)

// Turn is one exchange persisted in the session history.
type Turn struct {
	Role    string    `json:"role"` // "user" | "assistant"
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// NewClient builds a go-redis client from configuration.
func NewClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// SessionStore persists per-user conversation state: recent turns and the
// last drug discussed. Every method degrades to an in-process map when Redis
// is unreachable.
type SessionStore struct {
	client *goredis.Client
	ttl    time.Duration
	logger logging.Logger

	// Fallback state, used only while Redis is down.
	mu           sync.Mutex
	localHistory map[string][]Turn
	localDrug    map[string]string
}

const maxHistoryTurns = 20

// NewSessionStore constructs a SessionStore. client may be nil, in which
// case only the in-process fallback is used (tests, single-node demos).
func NewSessionStore(client *goredis.Client, ttl time.Duration, logger logging.Logger) *SessionStore {
	if logger == nil {
		logger = logging.NewNop()
	}
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &SessionStore{
		client:       client,
		ttl:          ttl,
		logger:       logger.Named("session"),
		localHistory: make(map[string][]Turn),
		localDrug:    make(map[string]string),
	}
}

func historyKey(userID string) string { return fmt.Sprintf("session:%s:history", userID) }
func drugKey(userID string) string    { return fmt.Sprintf("session:%s:last_drug", userID) }

// History returns the recent turns for a user, oldest first.
func (s *SessionStore) History(ctx context.Context, userID string) []Turn {
	if s.client != nil {
		raw, err := s.client.LRange(ctx, historyKey(userID), 0, maxHistoryTurns-1).Result()
		if err == nil {
			turns := make([]Turn, 0, len(raw))
			// Stored newest first; reverse on read.
			for i := len(raw) - 1; i >= 0; i-- {
				var t Turn
				if json.Unmarshal([]byte(raw[i]), &t) == nil {
					turns = append(turns, t)
				}
			}
			return turns
		}
		s.logger.Warn("history read failed, using local fallback", logging.Err(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	turns := s.localHistory[userID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// AppendHistory records one turn, trimming the history to its cap and
// refreshing the session TTL.
func (s *SessionStore) AppendHistory(ctx context.Context, userID string, turn Turn) {
	if turn.At.IsZero() {
		turn.At = time.Now().UTC()
	}

	if s.client != nil {
		payload, err := json.Marshal(turn)
		if err == nil {
			key := historyKey(userID)
			pipe := s.client.TxPipeline()
			pipe.LPush(ctx, key, payload)
			pipe.LTrim(ctx, key, 0, maxHistoryTurns-1)
			pipe.Expire(ctx, key, s.ttl)
			if _, err = pipe.Exec(ctx); err == nil {
				return
			}
		}
		s.logger.Warn("history write failed, using local fallback", logging.Err(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	turns := append(s.localHistory[userID], turn)
	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}
	s.localHistory[userID] = turns
}

// LastDrug returns the drug carried over from the previous exchange, empty
// when the session has none.
func (s *SessionStore) LastDrug(ctx context.Context, userID string) string {
	if s.client != nil {
		val, err := s.client.Get(ctx, drugKey(userID)).Result()
		if err == nil {
			return val
		}
		if err != goredis.Nil {
			s.logger.Warn("last drug read failed, using local fallback", logging.Err(err))
		} else {
			return ""
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.localDrug[userID]
}

// SetLastDrug records the drug the conversation is about.
func (s *SessionStore) SetLastDrug(ctx context.Context, userID, drug string) {
	if s.client != nil {
		err := s.client.Set(ctx, drugKey(userID), drug, s.ttl).Err()
		if err == nil {
			return
		}
		s.logger.Warn("last drug write failed, using local fallback", logging.Err(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.localDrug[userID] = drug
}

// Ping reports whether Redis is reachable. Used by the health surface.
func (s *SessionStore) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Ping(ctx).Err()
}
