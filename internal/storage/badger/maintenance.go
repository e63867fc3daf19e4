package badger

import (
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// maintenance runs Badger's value-log garbage collection on a cron
// schedule. Badger never reclaims value-log space on its own; without
// periodic GC the store grows without bound.
type maintenance struct {
	db     *BadgerDB
	cron   *cron.Cron
	logger arbor.ILogger
}

func newMaintenance(db *BadgerDB, schedule string, logger arbor.ILogger) (*maintenance, error) {
	m := &maintenance{
		db:     db,
		cron:   cron.New(),
		logger: logger,
	}

	if _, err := m.cron.AddFunc(schedule, m.run); err != nil {
		return nil, fmt.Errorf("invalid maintenance schedule %q: %w", schedule, err)
	}

	m.cron.Start()
	logger.Info().Str("schedule", schedule).Msg("Storage maintenance scheduled")
	return m, nil
}

// run collects value-log files until Badger reports nothing left to
// reclaim. One call reclaims at most one file, hence the loop.
func (m *maintenance) run() {
	reclaimed := 0
	for {
		err := m.db.Store().Badger().RunValueLogGC(0.5)
		if err == nil {
			reclaimed++
			continue
		}
		if !errors.Is(err, badgerdb.ErrNoRewrite) {
			m.logger.Warn().Err(err).Msg("Value-log garbage collection failed")
		}
		break
	}
	m.logger.Info().Int("reclaimed", reclaimed).Msg("Storage maintenance complete")
}

func (m *maintenance) stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}
