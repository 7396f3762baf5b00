package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSpecAt(t *testing.T) {
	cases := []struct {
		at   string
		dow  string
		want string
	}{
		{at: "09:00", dow: "1-5", want: "0 9 * * 1-5"},
		{at: "13:30", dow: "1-5", want: "30 13 * * 1-5"},
		{at: "18:30", dow: "*", want: "30 18 * * *"},
		{at: " 07:05 ", dow: "*", want: "5 7 * * *"},
	}
	for _, tc := range cases {
		got, err := specAt(tc.at, tc.dow)
		require.NoError(t, err, "time %q", tc.at)
		assert.Equal(t, tc.want, got)
	}
}

func TestSpecAtRejectsInvalidTimes(t *testing.T) {
	for _, at := range []string{"", "9", "24:00", "12:60", "ab:cd", "12:00:00"} {
		_, err := specAt(at, "*")
		assert.Error(t, err, "time %q", at)
	}
}

func TestCronSchedulerAcceptsJobs(t *testing.T) {
	sched := NewCronScheduler(zap.NewNop())
	defer sched.Stop()

	assert.NoError(t, sched.EveryAt([]string{"09:00", "13:00", "17:00"}, func() {}))
	assert.NoError(t, sched.DailyAt("18:30", func() {}))
	assert.NoError(t, sched.EveryInterval(time.Hour, func() {}))
	assert.Error(t, sched.EveryAt([]string{"25:00"}, func() {}))
}
