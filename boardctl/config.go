package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thunderboard/thunderboard/board"
)

// the boardctl config file. zero values keep the defaults.
type Config struct {
	Url   string `yaml:"url"`
	Codec string `yaml:"codec"`
	Jwt   string `yaml:"jwt"`

	Dashboard DashboardConfig `yaml:"dashboard"`
	Transport TransportConfig `yaml:"transport"`
}

type DashboardConfig struct {
	DefaultBoard      string `yaml:"default_board"`
	TextViewportLines int    `yaml:"text_viewport_lines"`
	EventQueueSize    int    `yaml:"event_queue_size"`
}

type TransportConfig struct {
	HandshakeTimeout    time.Duration `yaml:"handshake_timeout"`
	WriteTimeout        time.Duration `yaml:"write_timeout"`
	ReadTimeout         time.Duration `yaml:"read_timeout"`
	PingTimeout         time.Duration `yaml:"ping_timeout"`
	ReconnectTimeout    time.Duration `yaml:"reconnect_timeout"`
	MaxReconnectTimeout time.Duration `yaml:"max_reconnect_timeout"`
	SendBufferSize      int           `yaml:"send_buffer_size"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if config.Codec != "" {
		if _, err := board.CodecByName(config.Codec); err != nil {
			return nil, err
		}
	}
	if config.Dashboard.TextViewportLines < 0 {
		return nil, fmt.Errorf("text_viewport_lines must be positive")
	}
	if config.Dashboard.EventQueueSize < 0 {
		return nil, fmt.Errorf("event_queue_size must be positive")
	}
	return config, nil
}

func (self *Config) DashboardSettings() *board.DashboardSettings {
	settings := board.DefaultDashboardSettings()
	if self.Dashboard.DefaultBoard != "" {
		settings.DefaultBoard = board.BoardName(self.Dashboard.DefaultBoard)
	}
	if 0 < self.Dashboard.TextViewportLines {
		settings.TextViewportLines = self.Dashboard.TextViewportLines
	}
	if 0 < self.Dashboard.EventQueueSize {
		settings.EventQueueSize = self.Dashboard.EventQueueSize
	}
	return settings
}

func (self *Config) WsTransportSettings() (*board.WsTransportSettings, error) {
	settings := board.DefaultWsTransportSettings()
	codec, err := board.CodecByName(self.Codec)
	if err != nil {
		return nil, err
	}
	settings.Codec = codec

	transport := &self.Transport
	setDuration := func(v *time.Duration, configured time.Duration) {
		if 0 < configured {
			*v = configured
		}
	}
	setDuration(&settings.HandshakeTimeout, transport.HandshakeTimeout)
	setDuration(&settings.WriteTimeout, transport.WriteTimeout)
	setDuration(&settings.ReadTimeout, transport.ReadTimeout)
	setDuration(&settings.PingTimeout, transport.PingTimeout)
	setDuration(&settings.ReconnectTimeout, transport.ReconnectTimeout)
	setDuration(&settings.MaxReconnectTimeout, transport.MaxReconnectTimeout)
	if 0 < transport.SendBufferSize {
		settings.SendBufferSize = transport.SendBufferSize
	}
	return settings, nil
}
