// Package glances turns a polled metrics sample into the resource widget:
// it derives the display values and composes widget Items in a Container.
package glances

import (
	"errors"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/Dicklesworthstone/sysmoni_widgets/internal/config"
	"github.com/Dicklesworthstone/sysmoni_widgets/internal/i18n"
	"github.com/Dicklesworthstone/sysmoni_widgets/internal/model"
)

// DefaultMaxTemp is the floor for the warning temperature, in Celsius.
const DefaultMaxTemp = 80.0

var cpuSensorLabels = []string{"cpu_thermal", "Core", "Tctl"}

var errNoCoreSensors = errors.New("no cpu core sensors")

// Derived holds the values computed from one sample.
type Derived struct {
	MainTemp    float64
	MaxTemp     float64
	TempPercent float64
	TempUnit    string
	Disks       []model.FS
	Uptime      string
	// UptimePercent is cosmetic: it tracks the seconds of the current minute.
	UptimePercent float64
}

func convertToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// coreSensors keeps the sensors that report a CPU core temperature.
func coreSensors(sensors []model.Sensor) []model.Sensor {
	var out []model.Sensor
	for _, s := range sensors {
		if s.Type != model.SensorTypeCore {
			continue
		}
		for _, prefix := range cpuSensorLabels {
			if strings.HasPrefix(s.Label, prefix) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// cpuTemperature averages the core sensors. maxTemp is the mean warning
// threshold, never below DefaultMaxTemp. Both are converted to Fahrenheit
// when imperial is set.
func cpuTemperature(sensors []model.Sensor, imperial bool) (mainTemp, maxTemp float64, err error) {
	cores := coreSensors(sensors)
	if len(cores) == 0 {
		return 0, 0, errNoCoreSensors
	}
	var sum, warnSum float64
	for _, s := range cores {
		sum += s.Value
		warnSum += math.Max(s.Warning, 0)
	}
	n := float64(len(cores))
	mainTemp = sum / n
	maxTemp = math.Max(warnSum/n, DefaultMaxTemp)
	if math.IsNaN(mainTemp) || math.IsInf(mainTemp, 0) || math.IsNaN(maxTemp) || math.IsInf(maxTemp, 0) {
		return 0, 0, errors.New("non-finite sensor reading")
	}
	if imperial {
		mainTemp = convertToFahrenheit(mainTemp)
		maxTemp = convertToFahrenheit(maxTemp)
	}
	return mainTemp, maxTemp, nil
}

// selectDisks resolves the configured mount points in order, dropping the
// ones the sample does not report.
func selectDisks(s *model.Sample, mounts []string) []model.FS {
	disks := make([]model.FS, 0, len(mounts))
	for _, m := range mounts {
		if fs, ok := s.FindFS(m); ok {
			disks = append(disks, fs)
		}
	}
	return disks
}

var uptimeSeconds = regexp.MustCompile(`:\d\d:\d\d$`)

// formatUptime rewrites a Glances uptime like "3 days, 4:05:06" into
// "3d 4h" using the translated unit markers.
func formatUptime(raw string, tr *i18n.Translator) string {
	out := strings.Replace(raw, " days,", tr.T("glances.days"), 1)
	return uptimeSeconds.ReplaceAllString(out, tr.T("glances.hours"))
}

// Derive computes the display values for one sample. Temperature is best
// effort: when it cannot be computed the defaults (0 and DefaultMaxTemp)
// stay in place and the temperature item is hidden.
func Derive(s *model.Sample, w config.Widget, tr *i18n.Translator, now time.Time) Derived {
	d := Derived{
		MaxTemp:  DefaultMaxTemp,
		TempUnit: i18n.Celsius,
	}
	if w.Imperial() {
		d.TempUnit = i18n.Fahrenheit
	}

	if w.CPUTemp {
		if mainTemp, maxTemp, err := cpuTemperature(s.Sensors, w.Imperial()); err != nil {
			slog.Debug("CPU temperature unavailable", "err", err)
		} else {
			d.MainTemp, d.MaxTemp = mainTemp, maxTemp
		}
	}
	d.TempPercent = math.Round(d.MainTemp / d.MaxTemp * 100)

	d.Disks = selectDisks(s, w.Disk)

	if s.Uptime != "" {
		d.Uptime = formatUptime(s.Uptime, tr)
	}
	d.UptimePercent = math.Round(float64(now.Second()) / 60 * 100)
	return d
}
