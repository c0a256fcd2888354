package bot

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Delays are the pauses a bot takes, in milliseconds.
type Delays struct {
	MinAction uint32 `yaml:"minAction"`
	MaxAction uint32 `yaml:"maxAction"`
	PlayAgain uint32 `yaml:"playAgain"`
}

func ParseDelayConfig(delaysFile string) (Delays, error) {
	bytes, err := ioutil.ReadFile(delaysFile)
	if err != nil {
		return Delays{}, errors.Wrap(err, fmt.Sprintf("Error reading delay config file [%s]", delaysFile))
	}

	var data Delays
	err = yaml.Unmarshal(bytes, &data)
	if err != nil {
		return Delays{}, errors.Wrap(err, fmt.Sprintf("Error parsing delays YAML file [%s]", delaysFile))
	}
	if data.MaxAction < data.MinAction {
		return Delays{}, fmt.Errorf("maxAction [%d] is less than minAction [%d] in [%s]", data.MaxAction, data.MinAction, delaysFile)
	}

	return data, nil
}

func millis(ms uint32) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
