package config

import "time"

type Config struct {
	// Device selects the byte source: "stdin" (default) or "file".
	// A non-empty PlaybackLocation forces "file".
	Device           string `yaml:"device"`
	PlaybackLocation string `yaml:"playback_location"`
	// ReadDelay paces file playback; yaml.v2 reads it as nanoseconds.
	ReadDelay time.Duration `yaml:"read_delay"`

	// PRN pins the selected satellite; 0 selects the strongest.
	PRN int `yaml:"prn"`

	// OutputFormat is "raw", "ubx" or "" for no payload output.
	OutputFormat string `yaml:"output_format"`

	ShowMessages bool `yaml:"show_messages"`

	StatusServer struct {
		Port int `yaml:"port"`
	} `yaml:"status_server"`

	InfluxDB struct {
		Host         string `yaml:"host"`
		Organization string `yaml:"organization"`
		Bucket       string `yaml:"bucket"`
	} `yaml:"influxdb"`
}
