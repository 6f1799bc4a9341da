package state

import (
	"time"

	"destyle/common"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
		Mode:  common.OutputModeWrite,
	}
}
