package sampler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00:00"},
		{4*time.Hour + 5*time.Minute + 6*time.Second, "4:05:06"},
		{24*time.Hour + 59*time.Second, "1 day, 0:00:59"},
		{3*24*time.Hour + 4*time.Hour + 5*time.Minute + 6*time.Second, "3 days, 4:05:06"},
		{-time.Minute, "0:00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUptime(tt.in), tt.in.String())
	}
}

func TestSensorLabel(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"coretemp_core_0_input", "Core 0"},
		{"coretemp_core_12_input", "Core 12"},
		{"coretemp_package_id_0_input", "Package id 0"},
		{"k10temp_tctl_input", "Tctl"},
		{"cpu_thermal_input", "cpu_thermal"},
		{"nvme_composite_input", "nvme_composite"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sensorLabel(tt.key), tt.key)
	}
}

func TestSnapshotIsStoredAsLatest(t *testing.T) {
	s := New(50 * time.Millisecond)
	ctx := context.Background()

	snap := s.Snapshot(ctx)
	assert.Equal(t, snap.Uptime, s.Latest(ctx).Uptime)
	assert.GreaterOrEqual(t, snap.CPU.Total, 0.0)
}

func TestStreamStopsOnCancel(t *testing.T) {
	s := New(10 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	ch := s.Stream(ctx)
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("no sample received")
	}
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}
