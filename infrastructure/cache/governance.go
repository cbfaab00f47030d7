package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/usecases/governing"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultSnapshotKey = "adcore:governance:snapshot"
	// snapshots mais velhos que isso já não têm contador útil
	snapshotTTL = 72 * time.Hour
)

// GovernanceStore guarda o snapshot do governador numa única chave JSON
type GovernanceStore struct {
	client *redis.Client
	key    string
}

func NewGovernanceStore(client *redis.Client, key string) *GovernanceStore {
	if key == "" {
		key = defaultSnapshotKey
	}
	return &GovernanceStore{client: client, key: key}
}

func (s *GovernanceStore) Save(ctx context.Context, snapshot governing.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode governance snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("save governance snapshot: %w", err)
	}
	return nil
}

func (s *GovernanceStore) Load(ctx context.Context) (*governing.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load governance snapshot: %w", err)
	}

	var snapshot governing.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode governance snapshot: %w", err)
	}
	return &snapshot, nil
}

var _ governing.SnapshotStore = (*GovernanceStore)(nil)
