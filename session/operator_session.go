package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned when the session id is unknown or expired.
var ErrNoSession = errors.New("session not found")

// OperatorSessionStore reads and writes operator sessions in the key layout
// shared with the authentication service:
//
//	app:sess:<id>                -> {"uid", "iat", "exp"}
//	app:user_sessions:<operator> -> set of session ids
type OperatorSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewOperatorSessionStore(rdb *redis.Client, ttl time.Duration) *OperatorSessionStore {
	return &OperatorSessionStore{rdb: rdb, ttl: ttl}
}

type OperatorSession struct {
	OperatorID string `json:"uid"`
	IssuedAt   int64  `json:"iat"`
	ExpiresAt  int64  `json:"exp"`
}

func key(id string) string             { return fmt.Sprintf("app:sess:%s", id) }
func operatorSetKey(oid string) string { return fmt.Sprintf("app:user_sessions:%s", oid) }

func (s *OperatorSessionStore) TTL() time.Duration { return s.ttl }

func (s *OperatorSessionStore) Create(ctx context.Context, id, operatorID string) (*OperatorSession, error) {
	now := time.Now()
	sess := &OperatorSession{
		OperatorID: operatorID,
		IssuedAt:   now.Unix(),
		ExpiresAt:  now.Add(s.ttl).Unix(),
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(id), b, s.ttl)
	pipe.SAdd(ctx, operatorSetKey(operatorID), id)
	pipe.Expire(ctx, operatorSetKey(operatorID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *OperatorSessionStore) Get(ctx context.Context, id string) (*OperatorSession, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var sess OperatorSession
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, err
	}
	if sess.OperatorID == "" {
		return nil, ErrNoSession
	}
	return &sess, nil
}

func (s *OperatorSessionStore) Delete(ctx context.Context, id string) error {
	sess, _ := s.Get(ctx, id)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(id))
	if sess != nil {
		pipe.SRem(ctx, operatorSetKey(sess.OperatorID), id)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAllForOperator drops every session the operator holds.
func (s *OperatorSessionStore) RevokeAllForOperator(ctx context.Context, operatorID string) error {
	ids, err := s.rdb.SMembers(ctx, operatorSetKey(operatorID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	pipe := s.rdb.TxPipeline()
	for _, sid := range ids {
		pipe.Del(ctx, key(sid))
	}
	pipe.Del(ctx, operatorSetKey(operatorID))
	_, err = pipe.Exec(ctx)
	return err
}
