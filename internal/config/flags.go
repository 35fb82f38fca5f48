package config

import (
	"github.com/spf13/pflag"
)

// Flags holds command line overrides for widget options. Only flags the user
// actually set are applied, and they apply to every configured widget.
type Flags struct {
	fs *pflag.FlagSet
	w  Widget
}

// BindFlags registers the widget override flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs, w: DefaultWidget()}
	fs.StringVar(&f.w.Endpoint, "endpoint", f.w.Endpoint, "base URL of the widget API")
	fs.StringVar(&f.w.Provider, "provider", f.w.Provider, "widget provider: glances|local")
	fs.StringVar(&f.w.URL, "url", f.w.URL, "link target opened from the widget")
	fs.StringSliceVar((*[]string)(&f.w.Disk), "disk", f.w.Disk, "mount points to show")
	fs.StringVar(&f.w.DiskUnits, "disk-units", f.w.DiskUnits, "disk size units: bytes|bbytes")
	fs.StringVar(&f.w.Units, "units", f.w.Units, "temperature units: metric|imperial")
	fs.StringVar(&f.w.Lang, "lang", f.w.Lang, "display language")
	fs.StringVar(&f.w.Label, "label", f.w.Label, "widget label")
	fs.DurationVar(&f.w.RefreshInterval, "interval", f.w.RefreshInterval, "refresh interval")
	fs.BoolVar(&f.w.Expanded, "expanded", f.w.Expanded, "show secondary values")
	fs.BoolVar(&f.w.CPU, "cpu", f.w.CPU, "show CPU usage")
	fs.BoolVar(&f.w.Mem, "mem", f.w.Mem, "show memory usage")
	fs.BoolVar(&f.w.CPUTemp, "cputemp", f.w.CPUTemp, "show CPU temperature")
	fs.BoolVar(&f.w.Uptime, "uptime", f.w.Uptime, "show uptime")
	return f
}

// Apply copies every changed flag onto the widgets in c.
func (f *Flags) Apply(c *Config) {
	for i := range c.Widgets {
		w := &c.Widgets[i]
		f.fs.Visit(func(fl *pflag.Flag) {
			switch fl.Name {
			case "endpoint":
				w.Endpoint = f.w.Endpoint
			case "provider":
				w.Provider = f.w.Provider
			case "url":
				w.URL = f.w.URL
			case "disk":
				w.Disk = append(Mounts(nil), f.w.Disk...)
			case "disk-units":
				w.DiskUnits = f.w.DiskUnits
			case "units":
				w.Units = f.w.Units
			case "lang":
				w.Lang = f.w.Lang
			case "label":
				w.Label = f.w.Label
			case "interval":
				w.RefreshInterval = f.w.RefreshInterval
			case "expanded":
				w.Expanded = f.w.Expanded
			case "cpu":
				w.CPU = f.w.CPU
			case "mem":
				w.Mem = f.w.Mem
			case "cputemp":
				w.CPUTemp = f.w.CPUTemp
			case "uptime":
				w.Uptime = f.w.Uptime
			}
		})
	}
}
