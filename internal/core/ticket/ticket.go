// Package ticket implements the redis-backed store for auth session tickets.
//
// The launcher that hands a client off to this server writes a ticket keyed
// by account ID; the game login handler asserts that the token the client
// presents matches the ticket before the account is allowed in.
package ticket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no ticket exists for an account, which means
// the account either never authenticated or its ticket has expired.
var ErrNotFound = errors.New("no session ticket for account")

const keyPrefix = "slipgate"

// Store is a redis-backed ticket store.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to the redis instance at url and verifies the connection.
func New(url string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Store{client: client, ttl: ttl}, nil
}

// NewWithClient creates a Store with an existing client (for testing).
func NewWithClient(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Close closes the redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func ticketKey(accountID uint64) string {
	return fmt.Sprintf("%s:ticket:%d", keyPrefix, accountID)
}

// Put writes the expected login token for an account.
func (s *Store) Put(ctx context.Context, accountID uint64, token string) error {
	return s.client.Set(ctx, ticketKey(accountID), token, s.ttl).Err()
}

// Get returns the expected login token for an account.
func (s *Store) Get(ctx context.Context, accountID uint64) (string, error) {
	token, err := s.client.Get(ctx, ticketKey(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return token, nil
}

// Delete removes an account's ticket, revoking any login it would allow.
// Tickets are otherwise left to lapse under their TTL so that a client
// reconnecting with kick-existing can present the same hand-off.
func (s *Store) Delete(ctx context.Context, accountID uint64) error {
	return s.client.Del(ctx, ticketKey(accountID)).Err()
}
