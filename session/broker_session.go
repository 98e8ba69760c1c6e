// session/broker_session.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSessionExpired = errors.New("broker session expired")

// BrokerSession is the persisted state of a federated principal. Role is kept
// only for UI hints; the proxy path re-reads it from the profile table on
// every dispatch.
type BrokerSession struct {
	ProfileID    string `json:"uid"`
	Subject      string `json:"sub"`
	Role         string `json:"role"`
	AccessToken  string `json:"at"`
	RefreshToken string `json:"rt,omitempty"`
	IssuedAt     int64  `json:"iat"`
	ExpiresAt    int64  `json:"exp"`
}

// BrokerSessionStore is the single place federated sessions are read or
// written. Load checks expiry; nothing else touches the raw keys.
type BrokerSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewBrokerSessionStore(rdb *redis.Client, ttl time.Duration) *BrokerSessionStore {
	return &BrokerSessionStore{rdb: rdb, ttl: ttl}
}

func brokerKey(id string) string { return fmt.Sprintf("frota:broker:sess:%s", id) }

func (s *BrokerSessionStore) Save(ctx context.Context, id string, bs *BrokerSession) error {
	now := time.Now()
	bs.IssuedAt = now.Unix()
	bs.ExpiresAt = now.Add(s.ttl).Unix()
	b, _ := json.Marshal(bs)
	return s.rdb.Set(ctx, brokerKey(id), b, s.ttl).Err()
}

func (s *BrokerSessionStore) Load(ctx context.Context, id string) (*BrokerSession, error) {
	b, err := s.rdb.Get(ctx, brokerKey(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var bs BrokerSession
	if err := json.Unmarshal(b, &bs); err != nil {
		return nil, err
	}
	if bs.ExpiresAt > 0 && time.Now().Unix() > bs.ExpiresAt {
		_ = s.Clear(ctx, id)
		return nil, ErrSessionExpired
	}
	return &bs, nil
}

func (s *BrokerSessionStore) Clear(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, brokerKey(id)).Err()
}
