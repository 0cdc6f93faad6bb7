// internal/storage/factory.go
package storage

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/sdr-enthusiasts/acarshub/internal/logging"
	gormstorage "github.com/sdr-enthusiasts/acarshub/internal/storage/gorm"
	"github.com/sdr-enthusiasts/acarshub/internal/storage/memory"
)

// NewBackend creates a message history backend based on configuration
func NewBackend(kind string, db *gorm.DB, logManager *logging.SlogManager) (Backend, error) {
	switch kind {
	case "gorm":
		if db == nil {
			return nil, fmt.Errorf("gorm backend requires a database connection")
		}
		return gormstorage.New(gormstorage.Dependencies{
			DB:         db,
			LogManager: logManager,
		}), nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", kind)
	}
}
