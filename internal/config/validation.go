package config

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration against its struct tags and the
// cross-field rules that tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Chat.PingInterval() <= 0 {
		return fmt.Errorf("chat.pong_wait too short to derive a ping interval")
	}

	for name := range c.Scheduler.Tasks {
		if !slices.Contains(KnownTasks, name) {
			return fmt.Errorf("unknown scheduler task %q", name)
		}
	}

	return nil
}
