package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"media-production-workflow/internal/domain/model"
)

// snapshotVersion guards the on-disk layout. Bump it when the schema
// changes and add a migration branch in load.
const snapshotVersion = 1

type snapshot struct {
	Version      int                       `json:"version"`
	SavedAt      time.Time                 `json:"saved_at"`
	Jobs         []*model.Job              `json:"jobs"`
	Orders       []*model.Order            `json:"orders"`
	Customers    []*model.Customer         `json:"customers"`
	Services     []*model.ServiceOffering  `json:"services"`
	Uploads      []*model.EditorUpload     `json:"uploads"`
	Reservations []*model.OrderReservation `json:"reservations"`
	Counters     map[string]int64          `json:"counters"`
	Folders      []*model.FolderMeta       `json:"folders"`
	Audit        []*model.AuditEntry       `json:"audit"`
}

func (s *Store) load() error {
	if s.path == "" {
		return nil
	}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot %s: %w", s.path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("snapshot %s has version %d, want %d", s.path, snap.Version, snapshotVersion)
	}

	for _, j := range snap.Jobs {
		s.jobs[j.ID] = j
	}
	for _, o := range snap.Orders {
		s.orders[o.ID] = o
	}
	for _, c := range snap.Customers {
		s.customers[c.ID] = c
	}
	for _, svc := range snap.Services {
		s.services[svc.ID] = svc
	}
	for _, u := range snap.Uploads {
		s.uploads[u.ID] = u
	}
	for _, r := range snap.Reservations {
		s.reservations[r.OrderNumber] = r
	}
	for name, v := range snap.Counters {
		s.counters[name] = v
	}
	for _, f := range snap.Folders {
		s.folders[f.Key] = f
	}
	s.audit = snap.Audit
	if s.log != nil {
		s.log.Info().Str("path", s.path).Int("jobs", len(s.jobs)).Int("orders", len(s.orders)).Msg("snapshot loaded")
	}
	return nil
}

// persistLocked writes the whole state to a temp file and renames it
// over the snapshot, so a crash mid-write never leaves a torn file.
// Callers hold s.mu.
func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}

	snap := snapshot{
		Version:  snapshotVersion,
		SavedAt:  time.Now().UTC(),
		Counters: s.counters,
		Audit:    s.audit,
	}
	for _, j := range s.jobs {
		snap.Jobs = append(snap.Jobs, j)
	}
	for _, o := range s.orders {
		snap.Orders = append(snap.Orders, o)
	}
	for _, c := range s.customers {
		snap.Customers = append(snap.Customers, c)
	}
	for _, svc := range s.services {
		snap.Services = append(snap.Services, svc)
	}
	for _, u := range s.uploads {
		snap.Uploads = append(snap.Uploads, u)
	}
	for _, r := range s.reservations {
		snap.Reservations = append(snap.Reservations, r)
	}
	for _, f := range s.folders {
		snap.Folders = append(snap.Folders, f)
	}

	raw, err := json.MarshalIndent(&snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot %s: %w", s.path, err)
	}
	return nil
}
