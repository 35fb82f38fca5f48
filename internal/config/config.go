package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DiskUnitsBytes  = "bytes"  // SI, powers of 1000
	DiskUnitsBBytes = "bbytes" // binary, powers of 1024

	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

// Mounts is a list of mount points. In YAML it may be written as a single
// string or as a sequence.
type Mounts []string

func (m *Mounts) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		if s == "" {
			*m = nil
			return nil
		}
		*m = Mounts{s}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*m = list
	return nil
}

// Style controls the widget header.
type Style struct {
	Header         string `yaml:"header"`
	IsRightAligned bool   `yaml:"isRightAligned"`
}

// Widget is the display configuration of one widget instance. It is built
// once and not mutated while the widget runs.
type Widget struct {
	Endpoint        string        `yaml:"endpoint"`
	Provider        string        `yaml:"provider"`
	Index           int           `yaml:"index"`
	Version         int           `yaml:"version"`
	CPU             bool          `yaml:"cpu"`
	Mem             bool          `yaml:"mem"`
	CPUTemp         bool          `yaml:"cputemp"`
	Uptime          bool          `yaml:"uptime"`
	Disk            Mounts        `yaml:"disk"`
	DiskUnits       string        `yaml:"diskUnits"`
	Expanded        bool          `yaml:"expanded"`
	Units           string        `yaml:"units"`
	Label           string        `yaml:"label"`
	Style           Style         `yaml:"style"`
	URL             string        `yaml:"url"`
	Target          string        `yaml:"target"`
	Lang            string        `yaml:"lang"`
	RefreshInterval time.Duration `yaml:"refreshInterval"`
}

// Server carries options for the widget API server.
type Server struct {
	Listen          string        `yaml:"listen"`
	GlancesURL      string        `yaml:"glances_url"`
	GlancesVersion  int           `yaml:"glances_version"`
	GlancesUsername string        `yaml:"glances_username"`
	GlancesPassword string        `yaml:"glances_password"`
	Timeout         time.Duration `yaml:"timeout"`
	SampleInterval  time.Duration `yaml:"sample_interval"`
}

// Config is the whole configuration file.
type Config struct {
	Server   Server   `yaml:"server"`
	Widgets  []Widget `yaml:"-"`
	LogFile  string   `yaml:"log_file"`
	LogLevel string   `yaml:"log_level"`
}

func DefaultWidget() Widget {
	return Widget{
		Endpoint:        "http://localhost:3000",
		Provider:        "glances",
		Index:           2,
		Version:         4,
		CPU:             true,
		Mem:             true,
		CPUTemp:         true,
		Uptime:          true,
		Disk:            Mounts{"/"},
		DiskUnits:       DiskUnitsBytes,
		Expanded:        true,
		Units:           UnitsMetric,
		Style:           Style{Header: "underlined"},
		Target:          "_blank",
		Lang:            "en",
		RefreshInterval: 1500 * time.Millisecond,
	}
}

func DefaultServer() Server {
	return Server{
		Listen:         ":3000",
		GlancesVersion: 4,
		Timeout:        5 * time.Second,
		SampleInterval: time.Second,
	}
}

func Default() *Config {
	return &Config{
		Server:   DefaultServer(),
		Widgets:  []Widget{DefaultWidget()},
		LogLevel: "info",
	}
}

type rawConfig struct {
	Server   Server      `yaml:"server"`
	Widgets  []yaml.Node `yaml:"widgets"`
	LogFile  string      `yaml:"log_file"`
	LogLevel string      `yaml:"log_level"`
}

// Load reads the YAML file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document. Each widget entry is merged over
// DefaultWidget so omitted keys keep their defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	raw := rawConfig{Server: cfg.Server, LogLevel: cfg.LogLevel}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Server = raw.Server
	cfg.LogFile = raw.LogFile
	cfg.LogLevel = raw.LogLevel

	if len(raw.Widgets) > 0 {
		cfg.Widgets = make([]Widget, 0, len(raw.Widgets))
		for i := range raw.Widgets {
			w := DefaultWidget()
			if err := raw.Widgets[i].Decode(&w); err != nil {
				return nil, fmt.Errorf("parsing widget %d: %w", i, err)
			}
			cfg.Widgets = append(cfg.Widgets, w)
		}
	}
	return cfg, cfg.Validate()
}

// ApplyEnv applies environment overrides to every widget.
func (c *Config) ApplyEnv() {
	for i := range c.Widgets {
		w := &c.Widgets[i]
		if v := os.Getenv("SYSMONI_WIDGETS_ENDPOINT"); v != "" {
			w.Endpoint = v
		}
		if v := os.Getenv("SYSMONI_WIDGETS_URL"); v != "" {
			w.URL = v
		}
		if v := os.Getenv("SYSMONI_WIDGETS_INTERVAL"); v != "" {
			if parsed, err := time.ParseDuration(v); err == nil {
				w.RefreshInterval = parsed
			} else if parsed, err2 := time.ParseDuration(v + "ms"); err2 == nil {
				w.RefreshInterval = parsed
			}
		}
		if v := os.Getenv("SYSMONI_WIDGETS_UNITS"); v != "" {
			w.Units = v
		}
		if v := os.Getenv("SYSMONI_WIDGETS_LANG"); v != "" {
			w.Lang = v
		}
	}
	if v := os.Getenv("SYSMONI_WIDGETS_GLANCES_URL"); v != "" {
		c.Server.GlancesURL = v
	}
}

func (c *Config) Validate() error {
	var errs []error
	for i := range c.Widgets {
		if err := c.Widgets[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("widget %d: %w", i, err))
		}
	}
	if c.Server.Timeout <= 0 {
		errs = append(errs, errors.New("server timeout must be positive"))
	}
	return errors.Join(errs...)
}

func (w Widget) Validate() error {
	switch w.DiskUnits {
	case DiskUnitsBytes, DiskUnitsBBytes:
	default:
		return fmt.Errorf("unknown diskUnits %q", w.DiskUnits)
	}
	switch w.Units {
	case UnitsMetric, UnitsImperial:
	default:
		return fmt.Errorf("unknown units %q", w.Units)
	}
	if w.RefreshInterval <= 0 {
		return errors.New("refreshInterval must be positive")
	}
	if w.Provider == "" {
		return errors.New("provider is required")
	}
	return nil
}

// Imperial reports whether temperatures should be shown in Fahrenheit.
func (w Widget) Imperial() bool { return w.Units == UnitsImperial }

// Query serializes the widget options and language as URL query parameters.
func (w Widget) Query() url.Values {
	q := url.Values{}
	q.Set("lang", w.Lang)
	q.Set("index", strconv.Itoa(w.Index))
	q.Set("version", strconv.Itoa(w.Version))
	q.Set("cpu", strconv.FormatBool(w.CPU))
	q.Set("mem", strconv.FormatBool(w.Mem))
	q.Set("cputemp", strconv.FormatBool(w.CPUTemp))
	q.Set("uptime", strconv.FormatBool(w.Uptime))
	for _, d := range w.Disk {
		q.Add("disk", d)
	}
	q.Set("diskUnits", w.DiskUnits)
	q.Set("expanded", strconv.FormatBool(w.Expanded))
	q.Set("units", w.Units)
	if w.Label != "" {
		q.Set("label", w.Label)
	}
	q.Set("style.header", w.Style.Header)
	q.Set("style.isRightAligned", strconv.FormatBool(w.Style.IsRightAligned))
	if w.URL != "" {
		q.Set("url", w.URL)
	}
	return q
}

// FromQuery rebuilds widget options from query parameters, starting from the
// defaults. Malformed values are ignored.
func FromQuery(q url.Values) Widget {
	w := DefaultWidget()
	if v := q.Get("lang"); v != "" {
		w.Lang = v
	}
	setInt := func(key string, dst *int) {
		if n, err := strconv.Atoi(q.Get(key)); err == nil {
			*dst = n
		}
	}
	setBool := func(key string, dst *bool) {
		if b, err := strconv.ParseBool(q.Get(key)); err == nil {
			*dst = b
		}
	}
	setInt("index", &w.Index)
	setInt("version", &w.Version)
	setBool("cpu", &w.CPU)
	setBool("mem", &w.Mem)
	setBool("cputemp", &w.CPUTemp)
	setBool("uptime", &w.Uptime)
	setBool("expanded", &w.Expanded)
	setBool("style.isRightAligned", &w.Style.IsRightAligned)
	if disks, ok := q["disk"]; ok {
		w.Disk = nil
		for _, d := range disks {
			// homepage-style clients send a comma joined list
			for _, part := range strings.Split(d, ",") {
				if part = strings.TrimSpace(part); part != "" {
					w.Disk = append(w.Disk, part)
				}
			}
		}
	}
	if v := q.Get("diskUnits"); v != "" {
		w.DiskUnits = v
	}
	if v := q.Get("units"); v != "" {
		w.Units = v
	}
	if v := q.Get("style.header"); v != "" {
		w.Style.Header = v
	}
	w.Label = q.Get("label")
	w.URL = q.Get("url")
	return w
}
