package model

import (
	"bytes"

	"github.com/goccy/go-json"
)

// SensorTypeCore marks a sensor reading as a CPU core temperature.
const SensorTypeCore = "temperature_core"

// CPU aggregates instantaneous CPU usage.
type CPU struct {
	Total float64 `json:"total"` // percent 0-100
}

// Load holds the load averages as reported by Glances.
type Load struct {
	Min1  float64 `json:"min1"`
	Min5  float64 `json:"min5"`
	Min15 float64 `json:"min15"`
}

// Mem captures RAM usage in bytes.
type Mem struct {
	Available uint64  `json:"available"`
	Total     uint64  `json:"total"`
	Used      uint64  `json:"used"`
	Percent   float64 `json:"percent"`
}

// FS is a single mounted filesystem.
type FS struct {
	DeviceName string  `json:"device_name"`
	MountPoint string  `json:"mnt_point"`
	Free       uint64  `json:"free"`
	Size       uint64  `json:"size"`
	Used       uint64  `json:"used"`
	Percent    float64 `json:"percent"`
}

// Sensor is a thermal or fan reading. Warning and Critical are thresholds in
// the sensor's own unit; zero or negative means unset.
type Sensor struct {
	Label    string  `json:"label"`
	Type     string  `json:"type"`
	Value    float64 `json:"value"`
	Warning  float64 `json:"warning"`
	Critical float64 `json:"critical"`
	Unit     string  `json:"unit,omitempty"`
}

// Sample is the payload exchanged between the API server and the widgets.
// It is replaced wholesale on every poll.
type Sample struct {
	CPU     CPU             `json:"cpu"`
	Load    Load            `json:"load"`
	Mem     Mem             `json:"mem"`
	FS      []FS            `json:"fs"`
	Sensors []Sensor        `json:"sensors"`
	Uptime  string          `json:"uptime"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// HasError reports whether the payload carries an error marker. Anything
// other than an absent field, null or false counts.
func (s *Sample) HasError() bool {
	v := bytes.TrimSpace(s.Error)
	if len(v) == 0 {
		return false
	}
	return !bytes.Equal(v, []byte("null")) && !bytes.Equal(v, []byte("false"))
}

// FindFS returns the filesystem mounted exactly at mount.
func (s *Sample) FindFS(mount string) (FS, bool) {
	for _, fs := range s.FS {
		if fs.MountPoint == mount {
			return fs, true
		}
	}
	return FS{}, false
}

// ErrorPayload builds the error marker used by the API on failure.
func ErrorPayload(message string) json.RawMessage {
	b, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return json.RawMessage(`true`)
	}
	return b
}
