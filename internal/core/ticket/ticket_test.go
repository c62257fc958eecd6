package ticket

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type StoreSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.store = NewWithClient(client, time.Hour)
	s.ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StoreSuite) TestPutAndGet() {
	err := s.store.Put(s.ctx, 42, "deadbeef")
	s.Require().NoError(err)

	token, err := s.store.Get(s.ctx, 42)
	s.Require().NoError(err)
	s.Equal("deadbeef", token)
}

func (s *StoreSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, 999)
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreSuite) TestDelete() {
	err := s.store.Put(s.ctx, 42, "deadbeef")
	s.Require().NoError(err)

	err = s.store.Delete(s.ctx, 42)
	s.Require().NoError(err)

	_, err = s.store.Get(s.ctx, 42)
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreSuite) TestTicketExpiry() {
	err := s.store.Put(s.ctx, 42, "deadbeef")
	s.Require().NoError(err)

	s.mini.FastForward(2 * time.Hour)

	_, err = s.store.Get(s.ctx, 42)
	s.ErrorIs(err, ErrNotFound)
}
