package state

import (
	"time"

	"docx2nav/common"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start:   time.Now(),
		Summary: common.NewSummary(),
	}
}
