package longestword

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

func (s *ServiceSuite) TestSubmitFirstWordIsLongest() {
	result, err := s.service.Submit(s.ctx, "player-1", "  hello ")
	s.Require().NoError(err)
	s.True(result.IsLongest)
	s.Equal("hello", result.Word)
	s.Equal("hello", result.LongestWord)
	s.Equal(5, result.LongestLength)
}

func (s *ServiceSuite) TestSubmitEmptyWordIsValidationError() {
	for _, word := range []string{"", "   ", "\t\n"} {
		_, err := s.service.Submit(s.ctx, "player-1", word)
		s.True(model.IsValidationError(err), "word %q", word)
	}

	exists, err := s.storage.PlayerExists(s.ctx, "player-1")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *ServiceSuite) TestLongestWinsInEitherOrder() {
	_, err := s.service.Submit(s.ctx, "player-1", "hello")
	s.Require().NoError(err)
	result, err := s.service.Submit(s.ctx, "player-1", "extraordinary")
	s.Require().NoError(err)
	s.True(result.IsLongest)

	_, err = s.service.Submit(s.ctx, "player-2", "extraordinary")
	s.Require().NoError(err)
	result, err = s.service.Submit(s.ctx, "player-2", "hello")
	s.Require().NoError(err)
	s.False(result.IsLongest)
	s.Equal("extraordinary", result.LongestWord)

	for _, p := range []model.PlayerID{"player-1", "player-2"} {
		word, length, err := s.service.GetLongest(s.ctx, p)
		s.Require().NoError(err)
		s.Equal("extraordinary", word)
		s.Equal(13, length)
	}
}

func (s *ServiceSuite) TestEqualLengthDoesNotReplace() {
	_, err := s.service.Submit(s.ctx, "player-1", "stone")
	s.Require().NoError(err)
	result, err := s.service.Submit(s.ctx, "player-1", "tones")
	s.Require().NoError(err)
	s.False(result.IsLongest)

	word, _, err := s.service.GetLongest(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("stone", word)
}

func (s *ServiceSuite) TestGetLongestWithoutRecord() {
	word, length, err := s.service.GetLongest(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Equal("", word)
	s.Equal(0, length)
}

func (s *ServiceSuite) TestSessionTokenReusedWithinWindow() {
	_, err := s.service.Submit(s.ctx, "player-1", "cat")
	s.Require().NoError(err)
	first, err := s.storage.GetLatestLongestWord(s.ctx, "player-1")
	s.Require().NoError(err)
	s.NotEmpty(first.SessionToken)

	s.clock.Advance(23 * time.Hour)
	_, err = s.service.Submit(s.ctx, "player-1", "house")
	s.Require().NoError(err)
	second, err := s.storage.GetLatestLongestWord(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(first.SessionToken, second.SessionToken)

	s.clock.Advance(25 * time.Hour)
	_, err = s.service.Submit(s.ctx, "player-1", "elephant")
	s.Require().NoError(err)
	third, err := s.storage.GetLatestLongestWord(s.ctx, "player-1")
	s.Require().NoError(err)
	s.NotEqual(first.SessionToken, third.SessionToken)
}

func (s *ServiceSuite) TestGetTopOrdersByLength() {
	_, err := s.service.Submit(s.ctx, "player-a", "hello")
	s.Require().NoError(err)
	_, err = s.service.Submit(s.ctx, "player-b", "extraordinary")
	s.Require().NoError(err)
	_, err = s.service.Submit(s.ctx, "player-c", "internationalization")
	s.Require().NoError(err)

	top, err := s.service.GetTop(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 3)
	s.Equal(20, top[0].Length)
	s.Equal(13, top[1].Length)
	s.Equal(5, top[2].Length)
	s.Equal(model.PlayerID("player-c"), top[0].PlayerID)
}

func (s *ServiceSuite) TestGetTopOnePerPlayer() {
	_, err := s.service.Submit(s.ctx, "player-a", "cat")
	s.Require().NoError(err)
	_, err = s.service.Submit(s.ctx, "player-a", "house")
	s.Require().NoError(err)
	_, err = s.service.Submit(s.ctx, "player-b", "dog")
	s.Require().NoError(err)

	top, err := s.service.GetTop(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal("house", top[0].Word)
	s.Equal("dog", top[1].Word)
}

func (s *ServiceSuite) TestGetTopTieRanksEarlierFirst() {
	_, err := s.service.Submit(s.ctx, "player-late", "tones")
	s.Require().NoError(err)
	s.clock.Advance(-time.Hour)
	_, err = s.service.Submit(s.ctx, "player-early", "stone")
	s.Require().NoError(err)

	top, err := s.service.GetTop(s.ctx, 10)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-early"), top[0].PlayerID)
}
