// wizard/store.go
package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DraftStore persists wizard drafts in Redis so a reload (or a failed
// submission) never loses entered data. One draft per principal and mode.
type DraftStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDraftStore(rdb *redis.Client, ttl time.Duration) *DraftStore {
	return &DraftStore{rdb: rdb, ttl: ttl}
}

func draftKey(profileID string, mode Mode) string {
	return fmt.Sprintf("frota:wizard:%s:%s", mode, profileID)
}

func (s *DraftStore) Save(ctx context.Context, profileID string, d *Draft) error {
	d.UpdatedAt = time.Now().Unix()
	b, _ := json.Marshal(d)
	return s.rdb.Set(ctx, draftKey(profileID, d.Flow.Mode), b, s.ttl).Err()
}

func (s *DraftStore) Load(ctx context.Context, profileID string, mode Mode) (*Draft, error) {
	b, err := s.rdb.Get(ctx, draftKey(profileID, mode)).Bytes()
	if err != nil {
		return nil, err
	}
	var d Draft
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	if d.Items == nil {
		d.Items = map[string]ItemCheck{}
	}
	if d.Photos == nil {
		d.Photos = map[string]PhotoMeta{}
	}
	return &d, nil
}

func (s *DraftStore) Delete(ctx context.Context, profileID string, mode Mode) error {
	return s.rdb.Del(ctx, draftKey(profileID, mode)).Err()
}
