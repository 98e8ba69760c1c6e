package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AppSessionStore holds the cookie-based sessions of native principals.
type AppSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAppSessionStore(rdb *redis.Client, ttl time.Duration) *AppSessionStore {
	return &AppSessionStore{rdb: rdb, ttl: ttl}
}

type AppSession struct {
	ProfileID string `json:"uid"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func key(id string) string         { return fmt.Sprintf("frota:sess:%s", id) }
func userSetKey(uid string) string { return fmt.Sprintf("frota:user_sessions:%s", uid) }

func (s *AppSessionStore) Create(ctx context.Context, id, profileID string) error {
	now := time.Now()
	b, _ := json.Marshal(AppSession{
		ProfileID: profileID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	})
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(id), b, s.ttl)
	pipe.SAdd(ctx, userSetKey(profileID), id)
	pipe.Expire(ctx, userSetKey(profileID), s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *AppSessionStore) Get(ctx context.Context, id string) (*AppSession, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var as AppSession
	if err := json.Unmarshal(b, &as); err != nil {
		return nil, err
	}
	return &as, nil
}

func (s *AppSessionStore) Delete(ctx context.Context, id string) error {
	as, _ := s.Get(ctx, id)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(id))
	if as != nil {
		pipe.SRem(ctx, userSetKey(as.ProfileID), id)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAllForProfile drops every session of a profile, used when a profile is
// deleted or deactivated.
func (s *AppSessionStore) RevokeAllForProfile(ctx context.Context, profileID string) error {
	ids, err := s.rdb.SMembers(ctx, userSetKey(profileID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	for _, sid := range ids {
		pipe.Del(ctx, key(sid))
	}
	pipe.Del(ctx, userSetKey(profileID))
	_, err = pipe.Exec(ctx)
	return err
}
