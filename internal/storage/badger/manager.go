package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger.
type Manager struct {
	db          *BadgerDB
	vacancy     interfaces.VacancyStorage
	maintenance *maintenance
	logger      arbor.ILogger
}

// NewManager creates a new Badger storage manager.
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:      db,
		vacancy: NewVacancyStorage(db, logger),
		logger:  logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// VacancyStorage returns the Vacancy storage interface.
func (m *Manager) VacancyStorage() interfaces.VacancyStorage {
	return m.vacancy
}

// StartMaintenance schedules periodic value-log garbage collection.
func (m *Manager) StartMaintenance(schedule string) error {
	job, err := newMaintenance(m.db, schedule, m.logger)
	if err != nil {
		return err
	}
	m.maintenance = job
	return nil
}

// Close stops maintenance and closes the database connection.
func (m *Manager) Close() error {
	if m.maintenance != nil {
		m.maintenance.stop()
	}
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
