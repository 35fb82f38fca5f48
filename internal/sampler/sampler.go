package sampler

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Dicklesworthstone/sysmoni_widgets/internal/model"
)

// Sampler periodically builds Glances-shaped samples from the local host.
type Sampler struct {
	Interval time.Duration

	prevTotal float64
	prevIdle  float64

	mu     sync.RWMutex
	latest *model.Sample
}

func New(interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Sampler{Interval: interval}
}

// Stream returns a channel that will receive snapshots until ctx is done.
// Every snapshot is also kept as Latest.
func (s *Sampler) Stream(ctx context.Context) <-chan model.Sample {
	ch := make(chan model.Sample)
	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		defer close(ch)
		for {
			select {
			case <-ticker.C:
				samp := s.Snapshot(ctx)
				select {
				case ch <- samp:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// Run keeps Latest fresh until ctx is done.
func (s *Sampler) Run(ctx context.Context) {
	s.Snapshot(ctx)
	for range s.Stream(ctx) {
	}
}

// Latest returns the most recent snapshot, taking one if none exists yet.
func (s *Sampler) Latest(ctx context.Context) model.Sample {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()
	if latest != nil {
		return *latest
	}
	return s.Snapshot(ctx)
}

// Snapshot reads the host once. Individual collectors that fail leave their
// section zero valued.
func (s *Sampler) Snapshot(ctx context.Context) model.Sample {
	samp := model.Sample{
		CPU:     model.CPU{Total: s.cpuPercent(ctx)},
		Load:    loadAvg(ctx),
		Mem:     memory(ctx),
		FS:      filesystems(ctx),
		Sensors: sensors(ctx),
		Uptime:  uptime(ctx),
	}
	s.mu.Lock()
	s.latest = &samp
	s.mu.Unlock()
	return samp
}

// cpuPercent is the busy share since the previous call. The first call
// reports zero.
func (s *Sampler) cpuPercent(ctx context.Context) (total float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil || len(times) == 0 {
		slog.Debug("CPU times", "err", err)
		return 0
	}
	cur := times[0]
	curTotal := cur.Total()
	curIdle := cur.Idle + cur.Iowait
	if s.prevTotal > 0 {
		dt := curTotal - s.prevTotal
		di := curIdle - s.prevIdle
		if dt > 0 {
			total = 100 * (1 - di/dt)
		}
	}
	s.prevTotal, s.prevIdle = curTotal, curIdle
	return total
}

func loadAvg(ctx context.Context) model.Load {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		slog.Debug("Load average", "err", err)
		return model.Load{}
	}
	return model.Load{Min1: avg.Load1, Min5: avg.Load5, Min15: avg.Load15}
}

func memory(ctx context.Context) model.Mem {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		slog.Debug("Memory", "err", err)
		return model.Mem{}
	}
	return model.Mem{
		Available: v.Available,
		Total:     v.Total,
		Used:      v.Used,
		Percent:   v.UsedPercent,
	}
}

func filesystems(ctx context.Context) []model.FS {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		slog.Debug("Disk partitions", "err", err)
		return nil
	}
	seen := make(map[string]bool, len(partitions))
	var out []model.FS
	for _, p := range partitions {
		if seen[p.Mountpoint] {
			continue
		}
		seen[p.Mountpoint] = true
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		out = append(out, model.FS{
			DeviceName: p.Device,
			MountPoint: p.Mountpoint,
			Free:       usage.Free,
			Size:       usage.Total,
			Used:       usage.Used,
			Percent:    usage.UsedPercent,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MountPoint < out[j].MountPoint })
	return out
}

func sensors(ctx context.Context) []model.Sensor {
	// gopsutil returns partial results alongside warnings
	temps, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil {
		slog.Debug("Sensors", "err", err)
	}
	out := make([]model.Sensor, 0, len(temps))
	for _, t := range temps {
		if t.Temperature <= 0 {
			continue
		}
		out = append(out, model.Sensor{
			Label:    sensorLabel(t.SensorKey),
			Type:     model.SensorTypeCore,
			Value:    t.Temperature,
			Warning:  t.High,
			Critical: t.Critical,
			Unit:     "C",
		})
	}
	return out
}

// sensorLabel maps gopsutil sensor keys to the labels Glances reports, e.g.
// "coretemp_core_0_input" to "Core 0" and "k10temp_tctl_input" to "Tctl".
func sensorLabel(key string) string {
	key = strings.TrimSuffix(key, "_input")
	switch {
	case strings.HasPrefix(key, "coretemp_core_"):
		return "Core " + strings.TrimPrefix(key, "coretemp_core_")
	case strings.HasPrefix(key, "coretemp_package_id_"):
		return "Package id " + strings.TrimPrefix(key, "coretemp_package_id_")
	case strings.HasPrefix(key, "k10temp_"):
		label := strings.TrimPrefix(key, "k10temp_")
		if label == "" {
			return key
		}
		return strings.ToUpper(label[:1]) + label[1:]
	}
	return key
}

func uptime(ctx context.Context) string {
	secs, err := host.UptimeWithContext(ctx)
	if err != nil {
		slog.Debug("Uptime", "err", err)
		return ""
	}
	return FormatUptime(time.Duration(secs) * time.Second)
}
