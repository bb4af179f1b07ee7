package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/cantorhq/cantor/internal/dependencies/mocks"
	"github.com/cantorhq/cantor/internal/model"
)

type RegistrySuite struct {
	suite.Suite
	random   *mocks.MockRandom
	registry *Registry
}

func TestRoomRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.registry = NewRegistry(s.random)
}

func (s *RegistrySuite) newRoom(key model.RoomKey) *Room {
	r, err := New(key, model.ModeCardCaller, "a", DefaultConfig(), Deps{
		Clock:  mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
		Random: s.random,
	})
	s.Require().NoError(err)
	return r
}

func (s *RegistrySuite) TestPutAndGet() {
	r := s.newRoom("ABCDEF")
	s.Require().NoError(s.registry.Put(r))

	got, err := s.registry.Get("ABCDEF")
	s.Require().NoError(err)
	s.Same(r, got)
	s.Equal(1, s.registry.Len())
}

func (s *RegistrySuite) TestPutDuplicateKeyRejected() {
	s.Require().NoError(s.registry.Put(s.newRoom("ABCDEF")))
	s.ErrorIs(s.registry.Put(s.newRoom("ABCDEF")), model.ErrRoomExists)
}

func (s *RegistrySuite) TestGetUnknownKey() {
	_, err := s.registry.Get("NOSUCH")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestDeleteClosesRoom() {
	r := s.newRoom("ABCDEF")
	s.Require().NoError(s.registry.Put(r))

	s.registry.Delete("ABCDEF")

	s.True(r.Closed())
	s.Equal(0, s.registry.Len())
	_, err := s.registry.Get("ABCDEF")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestNewKeySkipsCollisions() {
	s.random.QueueString("AAAAAA", "AAAAAA", "BBBBBB")
	s.Require().NoError(s.registry.Put(s.newRoom("AAAAAA")))

	s.Equal(model.RoomKey("BBBBBB"), s.registry.NewKey())
}
