package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carefulresume/cr/internal/monotime"
)

func TestMockClock_SatisfiesClockInterface(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMockClock(ctrl)

	want := monotime.Now().Add(5 * time.Second)
	m.EXPECT().Now().Return(want)

	var c Clock = m
	require.Equal(t, want, c.Now())
}

func TestRealClock_AdvancesMonotonically(t *testing.T) {
	var c Clock = RealClock{}
	first := c.Now()
	time.Sleep(time.Millisecond)
	second := c.Now()
	require.True(t, second.Sub(first) > 0)
}
