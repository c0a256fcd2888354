package server

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr string `yaml:"listen"`
	RestAddr   string `yaml:"rest"`
	// Players is the table size the server waits for before dealing.
	Players int `yaml:"players"`
	// Table names the table in logs and event subjects.
	Table             string        `yaml:"table"`
	NatsURL           string        `yaml:"nats-url"`
	OutboundQueue     int           `yaml:"outbound-queue"`
	MessagesPerSecond float64       `yaml:"messages-per-second"`
	MessageBurst      int           `yaml:"message-burst"`
	WriteTimeout      time.Duration `yaml:"write-timeout"`
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:        ":31000",
		RestAddr:          ":31080",
		Players:           3,
		Table:             "main",
		OutboundQueue:     64,
		MessagesPerSecond: 20,
		MessageBurst:      10,
		WriteTimeout:      5 * time.Second,
	}
}

// ParseConfig reads a YAML config file on top of DefaultConfig.
func ParseConfig(configFile string) (Config, error) {
	bytes, err := ioutil.ReadFile(configFile)
	if err != nil {
		return Config{}, errors.Wrap(err, fmt.Sprintf("Error reading config file [%s]", configFile))
	}

	data := DefaultConfig()
	err = yaml.Unmarshal(bytes, &data)
	if err != nil {
		return Config{}, errors.Wrap(err, fmt.Sprintf("Error parsing config YAML file [%s]", configFile))
	}
	if err := data.Validate(); err != nil {
		return Config{}, errors.Wrap(err, fmt.Sprintf("Invalid config file [%s]", configFile))
	}
	return data, nil
}

func (c Config) Validate() error {
	if c.Players != 2 && c.Players != 3 {
		return fmt.Errorf("players must be 2 or 3, got %d", c.Players)
	}
	if c.OutboundQueue <= 0 {
		return fmt.Errorf("outbound-queue must be positive, got %d", c.OutboundQueue)
	}
	if c.MessagesPerSecond <= 0 || c.MessageBurst <= 0 {
		return fmt.Errorf("messages-per-second and message-burst must be positive")
	}
	return nil
}
