package slotdb

import "time"

// SyncFile flushes the store file to disk at a periodic interval until the
// store is closed.
func (s *Store) SyncFile(evalInterval time.Duration) {
	var (
		evalTicker = time.NewTicker(evalInterval)
	)
	defer func() {
		evalTicker.Stop()
		close(s.syncDone)
	}()

	for {
		select {
		case <-s.stopSync:
			return
		case <-evalTicker.C:
			if err := s.Sync(); err != nil {
				s.lo.Error("error syncing store file to disk", "error", err)
			}
		}
	}
}
