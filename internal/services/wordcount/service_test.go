package wordcount

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/omnigram/internal/dependencies/mocks"
	"github.com/mcoot/omnigram/internal/model"
	"github.com/mcoot/omnigram/internal/storage/memory"
	"github.com/mcoot/omnigram/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestFirstUpdate() {
	result, err := s.service.Update(s.ctx, "player-1", 42)
	s.Require().NoError(err)
	s.Equal(42, result.WordCount)
	s.Equal(42, result.HighestWordCount)
	s.True(result.IsNewRecord)
}

func (s *ServiceSuite) TestFirstUpdateOfZeroIsNotARecord() {
	result, err := s.service.Update(s.ctx, "player-1", 0)
	s.Require().NoError(err)
	s.Equal(0, result.HighestWordCount)
	s.False(result.IsNewRecord)

	exists, err := s.storage.PlayerExists(s.ctx, "player-1")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *ServiceSuite) TestLowerCountKeepsHighest() {
	_, err := s.service.Update(s.ctx, "player-1", 10)
	s.Require().NoError(err)

	result, err := s.service.Update(s.ctx, "player-1", 5)
	s.Require().NoError(err)
	s.Equal(5, result.WordCount)
	s.Equal(10, result.HighestWordCount)
	s.False(result.IsNewRecord)

	rec, err := s.storage.GetWordCountRecord(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(5, rec.WordCount)
	s.Equal(10, rec.HighestWordCount)
}

func (s *ServiceSuite) TestEqualCountIsNotARecord() {
	_, err := s.service.Update(s.ctx, "player-1", 10)
	s.Require().NoError(err)

	result, err := s.service.Update(s.ctx, "player-1", 10)
	s.Require().NoError(err)
	s.False(result.IsNewRecord)
}

func (s *ServiceSuite) TestHigherCountIsARecord() {
	_, err := s.service.Update(s.ctx, "player-1", 10)
	s.Require().NoError(err)

	result, err := s.service.Update(s.ctx, "player-1", 11)
	s.Require().NoError(err)
	s.True(result.IsNewRecord)
	s.Equal(11, result.HighestWordCount)
}

func (s *ServiceSuite) TestNegativeCountIsRejected() {
	_, err := s.service.Update(s.ctx, "player-1", -1)
	s.True(model.IsValidationError(err))

	_, err = s.storage.GetWordCountRecord(s.ctx, "player-1")
	s.ErrorIs(err, model.ErrWordCountNotFound)
}

func (s *ServiceSuite) TestGetHighest() {
	highest, err := s.service.GetHighest(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Equal(0, highest)

	_, err = s.service.Update(s.ctx, "player-1", 7)
	s.Require().NoError(err)
	highest, err = s.service.GetHighest(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(7, highest)
}

func (s *ServiceSuite) TestGetTop() {
	for _, c := range []struct {
		player model.PlayerID
		count  int
	}{{"a", 3}, {"b", 30}, {"c", 12}} {
		_, err := s.service.Update(s.ctx, c.player, c.count)
		s.Require().NoError(err)
		s.clock.Advance(time.Minute)
	}

	top, err := s.service.GetTop(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal(model.PlayerID("b"), top[0].PlayerID)
	s.Equal(30, top[0].HighestWordCount)
	s.Equal(model.PlayerID("c"), top[1].PlayerID)
}
