package streak

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/omnigram/internal/dependencies/mocks"
	"github.com/mcoot/omnigram/internal/model"
	"github.com/mcoot/omnigram/internal/storage/memory"
	"github.com/mcoot/omnigram/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	location *time.Location
	service  *Service
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	loc, err := time.LoadLocation("America/New_York")
	s.Require().NoError(err)
	s.location = loc
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 3, 1, 10, 0, 0, 0, loc))
	s.service = New(s.storage, s.clock, loc, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) record() *Info {
	info, err := s.service.Record(s.ctx, "player-1")
	s.Require().NoError(err)
	return info
}

func (s *ServiceSuite) TestDailySequence() {
	expected := []struct {
		day              int
		current, highest int
	}{
		{1, 1, 1},
		{2, 2, 2},
		{3, 3, 3},
		{6, 1, 3},
		{7, 2, 3},
	}

	day := 1
	for _, e := range expected {
		s.clock.AdvanceDays(e.day - day)
		day = e.day

		info := s.record()
		s.Equal(e.current, info.CurrentStreak, "day %d current", e.day)
		s.Equal(e.highest, info.HighestStreak, "day %d highest", e.day)
		s.Require().NotNil(info.LastSessionDate)
		s.Equal(time.Date(2024, 3, e.day, 0, 0, 0, 0, time.UTC), *info.LastSessionDate)
	}
}

func (s *ServiceSuite) TestRecordTwiceSameDayIsIdempotent() {
	first := s.record()
	s.clock.Advance(6 * time.Hour)
	second := s.record()

	s.Equal(first.CurrentStreak, second.CurrentStreak)
	s.Equal(first.HighestStreak, second.HighestStreak)
	s.Equal(*first.LastSessionDate, *second.LastSessionDate)
}

func (s *ServiceSuite) TestHighestNeverDecreases() {
	highest := 0
	for _, gap := range []int{0, 1, 1, 1, 4, 1, 2, 1, 1, 1, 1, 9} {
		s.clock.AdvanceDays(gap)
		info := s.record()
		s.GreaterOrEqual(info.HighestStreak, highest)
		highest = info.HighestStreak
	}
	s.Equal(5, highest)
}

func (s *ServiceSuite) TestDaysFollowReferenceTimezone() {
	// 23:30 and 00:30 New York time are different days though one hour apart
	s.clock.Set(time.Date(2024, 3, 20, 23, 30, 0, 0, s.location))
	s.record()
	s.clock.Advance(time.Hour)

	info := s.record()
	s.Equal(2, info.CurrentStreak)
}

func (s *ServiceSuite) TestDaylightSavingDayStillCountsAsOne() {
	// 10 March 2024 is 23 hours long in New York
	s.clock.Set(time.Date(2024, 3, 10, 0, 30, 0, 0, s.location))
	s.record()
	s.clock.Set(time.Date(2024, 3, 11, 0, 15, 0, 0, s.location))

	info := s.record()
	s.Equal(2, info.CurrentStreak)
}

func (s *ServiceSuite) TestGetStreakInfoWithoutHistory() {
	info, err := s.service.GetStreakInfo(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Equal(0, info.CurrentStreak)
	s.Equal(0, info.HighestStreak)
	s.Nil(info.LastSessionDate)
}

func (s *ServiceSuite) TestGetStreakInfoIsReadOnly() {
	s.record()
	s.clock.AdvanceDays(1)

	info, err := s.service.GetStreakInfo(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(1, info.CurrentStreak)

	latest, err := s.storage.GetLatestStreak(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), latest.SessionDate)
}

func (s *ServiceSuite) TestGetStreakInfoExpired() {
	s.record()
	s.clock.AdvanceDays(1)
	s.record()
	s.clock.AdvanceDays(2)

	info, err := s.service.GetStreakInfo(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(0, info.CurrentStreak)
	s.Equal(2, info.HighestStreak)
}

func (s *ServiceSuite) TestFutureRowCountsAsToday() {
	s.Require().NoError(s.storage.AddStreak(s.ctx, &model.PlayerStreak{
		PlayerID:      "player-1",
		SessionDate:   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		CurrentStreak: 4,
		HighestStreak: 4,
		CreatedAt:     s.clock.Now(),
	}))

	info := s.record()
	s.Equal(4, info.CurrentStreak)
}

// racingStorage inserts a competing row the first time AddStreak is called
type racingStorage struct {
	*memory.Storage
	raced bool
}

func (r *racingStorage) AddStreak(ctx context.Context, st *model.PlayerStreak) error {
	if !r.raced {
		r.raced = true
		winner := *st
		winner.CurrentStreak, winner.HighestStreak = 7, 7
		if err := r.Storage.AddStreak(ctx, &winner); err != nil {
			return err
		}
	}
	return r.Storage.AddStreak(ctx, st)
}

func TestRecordRaceRereadsWinner(t *testing.T) {
	clock := mocks.NewMockClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	store := &racingStorage{Storage: memory.New()}
	svc := New(store, clock, time.UTC, testutil.NopLogger())

	info, err := svc.Record(context.Background(), "player-1")
	require.NoError(t, err)
	assert.Equal(t, 7, info.CurrentStreak)
}

func TestClassify(t *testing.T) {
	today := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	row := func(d int) *model.PlayerStreak {
		return &model.PlayerStreak{SessionDate: time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)}
	}

	assert.Equal(t, NoHistory, Classify(nil, today))
	assert.Equal(t, ActiveToday, Classify(row(20), today))
	assert.Equal(t, ActiveToday, Classify(row(21), today))
	assert.Equal(t, StreakContinues, Classify(row(19), today))
	assert.Equal(t, StreakBroken, Classify(row(18), today))
	assert.Equal(t, "streak_broken", StreakBroken.String())
}
