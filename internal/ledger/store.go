// Package ledger persists the tracker's datasets as append-only CSV files.
// Every write goes through a single read-merge-rewrite path; nothing else
// in the repository touches the files directly.
package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dvloznov/pocketledger/internal/domain"
)

// Store owns the on-disk representation of every dataset under dir.
// Each dataset is guarded by its own mutex for the full duration of the
// read-merge-rewrite, so overlapping appends to the same dataset cannot
// lose rows. Nothing is cached: every read reloads from disk.
type Store struct {
	dir   string
	locks map[Dataset]*sync.Mutex
}

// NewStore creates a store rooted at dir. The directory is created on
// first write, not here.
func NewStore(dir string) *Store {
	locks := make(map[Dataset]*sync.Mutex)
	for _, d := range []Dataset{
		DatasetCreditCard, DatasetWithdrawals, DatasetDeposits,
		DatasetTotals, DatasetInvestments,
	} {
		locks[d] = &sync.Mutex{}
	}
	return &Store{dir: dir, locks: locks}
}

func (s *Store) path(d Dataset) string {
	return filepath.Join(s.dir, d.Filename())
}

func (s *Store) lock(d Dataset) *sync.Mutex {
	if mu, ok := s.locks[d]; ok {
		return mu
	}
	// Unknown dataset names share one lock; they only arise in tests.
	mu := &sync.Mutex{}
	s.locks[d] = mu
	return mu
}

// AppendTransactions merges recs after the existing rows of d and rewrites
// the file. Existing rows keep their relative order; new rows follow them.
// No deduplication happens here: appending the same statement twice stores
// every row twice.
func (s *Store) AppendTransactions(d Dataset, recs []domain.Record) error {
	if d == DatasetTotals {
		return fmt.Errorf("AppendTransactions: %s holds snapshots, not transactions", d)
	}
	for i, r := range recs {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("AppendTransactions: %s row %d: %w", d, i, err)
		}
	}

	mu := s.lock(d)
	mu.Lock()
	defer mu.Unlock()

	rows, err := s.readRows(d)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("AppendTransactions: loading %s: %w", d, err)
	}
	for _, r := range recs {
		rows = append(rows, encodeRecord(r))
	}
	return s.writeRows(d, rows)
}

// ReadTransactions loads every row of d in stored order.
func (s *Store) ReadTransactions(d Dataset) ([]domain.Record, error) {
	if d == DatasetTotals {
		return nil, fmt.Errorf("ReadTransactions: %s holds snapshots, not transactions", d)
	}

	mu := s.lock(d)
	mu.Lock()
	defer mu.Unlock()

	rows, err := s.readRows(d)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", d, domain.ErrDatasetMissing)
		}
		return nil, fmt.Errorf("ReadTransactions: loading %s: %w", d, err)
	}

	recs := make([]domain.Record, 0, len(rows))
	for i, row := range rows {
		rec, err := decodeRecord(row)
		if err != nil {
			return nil, fmt.Errorf("ReadTransactions: %s row %d: %w", d, i+1, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// AppendSnapshots merges balance snapshots after the existing rows of the
// totals dataset.
func (s *Store) AppendSnapshots(snaps []domain.BalanceSnapshot) error {
	for i, snap := range snaps {
		if err := snap.Validate(); err != nil {
			return fmt.Errorf("AppendSnapshots: row %d: %w", i, err)
		}
	}

	mu := s.lock(DatasetTotals)
	mu.Lock()
	defer mu.Unlock()

	rows, err := s.readRows(DatasetTotals)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("AppendSnapshots: loading %s: %w", DatasetTotals, err)
	}
	for _, snap := range snaps {
		rows = append(rows, encodeSnapshot(snap))
	}
	return s.writeRows(DatasetTotals, rows)
}

// ReadSnapshots loads every balance snapshot in stored order.
func (s *Store) ReadSnapshots() ([]domain.BalanceSnapshot, error) {
	mu := s.lock(DatasetTotals)
	mu.Lock()
	defer mu.Unlock()

	rows, err := s.readRows(DatasetTotals)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", DatasetTotals, domain.ErrDatasetMissing)
		}
		return nil, fmt.Errorf("ReadSnapshots: loading %s: %w", DatasetTotals, err)
	}

	snaps := make([]domain.BalanceSnapshot, 0, len(rows))
	for i, row := range rows {
		snap, err := decodeSnapshot(row)
		if err != nil {
			return nil, fmt.Errorf("ReadSnapshots: row %d: %w", i+1, err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// readRows returns the data rows of d without the header. The raw
// os.IsNotExist error is preserved so callers can map it.
func (s *Store) readRows(d Dataset) ([][]string, error) {
	f, err := os.Open(s.path(d))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(d.header())
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[1:], nil
}

// writeRows rewrites the dataset file with header + rows. The write is
// atomic: a temp file in the same directory is renamed over the target,
// so readers never observe a half-written dataset.
func (s *Store) writeRows(d Dataset, rows [][]string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, string(d)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(d.header()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("writing rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path(d)); err != nil {
		return fmt.Errorf("replacing %s: %w", d.Filename(), err)
	}
	return nil
}
