package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserSession is the redis-stored record backing an issued token. Tokens are
// only honored while their session exists and the token is not blacklisted.
type UserSession struct {
	ExpiresAt time.Time          `json:"expiresAt"`
	UserId    primitive.ObjectID `json:"userId"`
	Email     string             `json:"email"`
	Username  string             `json:"username"`
}

func (s UserSession) MarshalBinary() ([]byte, error) {
	return json.Marshal(s)
}

func (s *UserSession) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, s)
}

// Expired checks if the user session is past its expiry.
func (s UserSession) Expired() bool {
	return s.ExpiresAt.Before(time.Now())
}

// TokenStore keeps issued sessions and the logout blacklist in redis. It is
// constructed once and injected; there is no package-level client.
type TokenStore struct {
	rdb *redis.Client
}

func NewTokenStore(rdb *redis.Client) *TokenStore {
	return &TokenStore{rdb: rdb}
}

const blacklistPrefix = "token:blacklist:"
const sessionPrefix = "token:session:"

// SaveSession records a session for an issued token.
func (t *TokenStore) SaveSession(ctx context.Context, token string, session UserSession, ttl time.Duration) error {
	return t.rdb.Set(ctx, sessionPrefix+token, session, ttl).Err()
}

// Session loads the stored session for a token, or nil when absent.
func (t *TokenStore) Session(ctx context.Context, token string) (*UserSession, error) {
	var session UserSession
	err := t.rdb.Get(ctx, sessionPrefix+token).Scan(&session)
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Invalidate blacklists a token for the remainder of its lifetime and drops
// its session.
func (t *TokenStore) Invalidate(ctx context.Context, token string, ttl time.Duration) error {
	if err := t.rdb.Set(ctx, blacklistPrefix+token, true, ttl).Err(); err != nil {
		return err
	}
	return t.rdb.Del(ctx, sessionPrefix+token).Err()
}

// IsTokenValid reports whether a token has not been blacklisted.
func (t *TokenStore) IsTokenValid(ctx context.Context, token string) bool {
	err := t.rdb.Get(ctx, blacklistPrefix+token).Err()
	return err == redis.Nil
}
