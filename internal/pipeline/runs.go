package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/pocketledger/internal/domain"
)

// RunStatus is the lifecycle state of one ingestion run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusSucceeded RunStatus = "SUCCESS"
)

// RunRecord is one entry in the runs journal.
type RunRecord struct {
	RunID      string     `json:"run_id"`
	Checksum   string     `json:"checksum"`
	Sources    []string   `json:"sources"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Status     RunStatus  `json:"status"`
	Error      string     `json:"error,omitempty"`
}

type journalState struct {
	Runs []RunRecord `json:"runs"`
}

// Journal records every ingestion run in a local JSON file and enforces
// the idempotency key: a checksum that already succeeded cannot be
// ingested again, since the store itself never deduplicates rows.
type Journal struct {
	path string
	mu   sync.Mutex
}

// NewJournal creates a journal backed by the JSON file at path. The file
// appears on the first recorded run.
func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

// Start registers a new run for the given source checksum and returns
// its run id. Returns domain.ErrAlreadyIngested when a succeeded run
// with the same checksum exists; failed runs do not block a retry.
func (j *Journal) Start(checksum string, sources []string) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.load()
	if err != nil {
		return "", err
	}
	for _, run := range state.Runs {
		if run.Checksum == checksum && run.Status == RunStatusSucceeded {
			return "", fmt.Errorf("checksum %s ingested by run %s: %w", checksum[:12], run.RunID, domain.ErrAlreadyIngested)
		}
	}

	run := RunRecord{
		RunID:     uuid.NewString(),
		Checksum:  checksum,
		Sources:   sources,
		StartedAt: time.Now().UTC(),
		Status:    RunStatusRunning,
	}
	state.Runs = append(state.Runs, run)
	if err := j.save(state); err != nil {
		return "", err
	}
	return run.RunID, nil
}

// MarkFailed stamps the run as failed with the error message. Journal
// write errors are swallowed here: the run already failed and the
// original error is the one the caller must see.
func (j *Journal) MarkFailed(runID string, runErr error) {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	_ = j.finish(runID, RunStatusFailed, msg)
}

// MarkSucceeded stamps the run as succeeded.
func (j *Journal) MarkSucceeded(runID string) error {
	return j.finish(runID, RunStatusSucceeded, "")
}

// Runs returns all recorded runs, newest first.
func (j *Journal) Runs() ([]RunRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.load()
	if err != nil {
		return nil, err
	}
	runs := append([]RunRecord(nil), state.Runs...)
	sort.SliceStable(runs, func(i, k int) bool {
		return runs[i].StartedAt.After(runs[k].StartedAt)
	})
	return runs, nil
}

func (j *Journal) finish(runID string, status RunStatus, msg string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.load()
	if err != nil {
		return err
	}
	for i := range state.Runs {
		if state.Runs[i].RunID == runID {
			now := time.Now().UTC()
			state.Runs[i].Status = status
			state.Runs[i].FinishedAt = &now
			state.Runs[i].Error = msg
			return j.save(state)
		}
	}
	return fmt.Errorf("run %s not found in journal", runID)
}

func (j *Journal) load() (*journalState, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &journalState{}, nil
		}
		return nil, fmt.Errorf("reading runs journal: %w", err)
	}
	var state journalState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing runs journal: %w", err)
	}
	return &state, nil
}

// save writes the journal atomically: temp file then rename.
func (j *Journal) save(state *journalState) error {
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding runs journal: %w", err)
	}
	tmp := j.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing runs journal: %w", err)
	}
	if err := os.Rename(tmp, j.path); err != nil {
		return fmt.Errorf("replacing runs journal: %w", err)
	}
	return nil
}

// ChecksumFiles hashes the concatenated contents of the source files.
// The digest is the ingestion's idempotency key.
func ChecksumFiles(paths ...string) (string, error) {
	h := sha256.New()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return "", fmt.Errorf("opening %s for checksum: %w", p, err)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("hashing %s: %w", p, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
