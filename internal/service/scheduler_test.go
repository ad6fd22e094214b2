package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextTriggerPicksEarliestToday(t *testing.T) {
	s := &Scheduler{times: []string{"15:00", "03:00"}}

	now := time.Date(2026, 8, 27, 10, 0, 0, 0, time.Local)
	next, ok := s.nextTrigger(now)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 27, 15, 0, 0, 0, time.Local), next)
}

func TestNextTriggerRollsOverToTomorrow(t *testing.T) {
	s := &Scheduler{times: []string{"15:00", "03:00"}}

	now := time.Date(2026, 8, 27, 16, 30, 0, 0, time.Local)
	next, ok := s.nextTrigger(now)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 28, 3, 0, 0, 0, time.Local), next)
}

func TestNextTriggerExactMatchMovesToNextDay(t *testing.T) {
	s := &Scheduler{times: []string{"03:00"}}

	// 正好落在触发时刻上算已触发，排到明天
	now := time.Date(2026, 8, 27, 3, 0, 0, 0, time.Local)
	next, ok := s.nextTrigger(now)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 28, 3, 0, 0, 0, time.Local), next)
}

func TestNextTriggerIgnoresInvalidSpecs(t *testing.T) {
	s := &Scheduler{times: []string{"banana", "25:99"}}

	_, ok := s.nextTrigger(time.Now())
	assert.False(t, ok)
}
