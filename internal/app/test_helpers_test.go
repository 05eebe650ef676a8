package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/example/automl/internal/core/sweep"
	"github.com/example/automl/internal/ports/primary"
	"github.com/example/automl/internal/ports/secondary"
)

// ============================================================================
// Artifact store
// ============================================================================

// Ensure mockArtifactStore implements the interface
var _ secondary.ArtifactStore = (*mockArtifactStore)(nil)

// mockArtifactStore is an in-memory secondary.ArtifactStore.
// ops records every mutating call in order, shared with mockLauncher.
type mockArtifactStore struct {
	mu       sync.Mutex
	files    map[string]string
	dirs     map[string]bool
	logs     map[string]*bytes.Buffer
	ops      []string
	writeErr map[string]error
	mkdirErr map[string]error
	logErr   map[string]error
}

func newMockArtifactStore() *mockArtifactStore {
	return &mockArtifactStore{
		files:    make(map[string]string),
		dirs:     make(map[string]bool),
		logs:     make(map[string]*bytes.Buffer),
		writeErr: make(map[string]error),
		mkdirErr: make(map[string]error),
		logErr:   make(map[string]error),
	}
}

func (m *mockArtifactStore) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, op)
}

func (m *mockArtifactStore) ReadFile(ctx context.Context, path string) (string, error) {
	content, ok := m.files[path]
	if !ok {
		return "", fmt.Errorf("open %s: no such file or directory", path)
	}
	return content, nil
}

func (m *mockArtifactStore) WriteFile(ctx context.Context, path, content string) error {
	if err := m.writeErr[path]; err != nil {
		return err
	}
	m.record("write " + path)
	m.files[path] = content
	return nil
}

func (m *mockArtifactStore) CreateDirectory(ctx context.Context, path string) error {
	if err := m.mkdirErr[path]; err != nil {
		return err
	}
	m.record("mkdir " + path)
	m.dirs[path] = true
	return nil
}

func (m *mockArtifactStore) CreateLogFile(ctx context.Context, path string) (io.WriteCloser, error) {
	if err := m.logErr[path]; err != nil {
		return nil, err
	}
	m.record("log " + path)
	buf := &bytes.Buffer{}
	m.logs[path] = buf
	return nopWriteCloser{buf}, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// ============================================================================
// Process launcher
// ============================================================================

// Ensure mockLauncher implements the interface
var _ secondary.ProcessLauncher = (*mockLauncher)(nil)

// mockLauncher records launches. Exit codes are queued per dataset ID
// (the fifth optimizer argument); an empty queue exits 0.
type mockLauncher struct {
	store     *mockArtifactStore
	calls     []secondary.ProcessSpec
	exitCodes map[string][]int
	runErr    error
	onRun     func(spec secondary.ProcessSpec)
}

func newMockLauncher(store *mockArtifactStore) *mockLauncher {
	return &mockLauncher{store: store, exitCodes: make(map[string][]int)}
}

func (m *mockLauncher) Run(ctx context.Context, spec secondary.ProcessSpec) (int, error) {
	m.calls = append(m.calls, spec)
	dataset := spec.Args[4]
	if m.store != nil {
		m.store.record("launch " + dataset + " " + spec.Args[len(spec.Args)-1])
	}
	if m.onRun != nil {
		m.onRun(spec)
	}
	if m.runErr != nil {
		return -1, m.runErr
	}
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	fmt.Fprintf(spec.Stdout, "run %s\n", dataset)

	queue := m.exitCodes[dataset]
	if len(queue) == 0 {
		return 0, nil
	}
	m.exitCodes[dataset] = queue[1:]
	return queue[0], nil
}

func (m *mockLauncher) launchedDatasets() []string {
	var result []string
	for _, c := range m.calls {
		result = append(result, c.Args[4])
	}
	return result
}

// ============================================================================
// Preparer
// ============================================================================

// mockPreparer fails preparations by output path.
type mockPreparer struct {
	prepared []sweep.Preparation
	fail     map[string]error
}

func newMockPreparer() *mockPreparer {
	return &mockPreparer{fail: make(map[string]error)}
}

func (m *mockPreparer) Prepare(ctx context.Context, prep sweep.Preparation) error {
	m.prepared = append(m.prepared, prep)
	return m.fail[prep.OutputPath]
}

// ============================================================================
// Meta-feature repository
// ============================================================================

// Ensure mockMetaFeatureRepository implements the interface
var _ secondary.MetaFeatureRepository = (*mockMetaFeatureRepository)(nil)

type mockMetaFeatureRepository struct {
	records []*secondary.MetaFeatureRecord
	loadErr error
	loaded  []string
}

func (m *mockMetaFeatureRepository) Load(ctx context.Context, path string) ([]*secondary.MetaFeatureRecord, error) {
	m.loaded = append(m.loaded, path)
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.records, nil
}

// ============================================================================
// Ledger
// ============================================================================

// Ensure mocks implement the interfaces
var (
	_ secondary.LedgerProvider = (*mockLedgerProvider)(nil)
	_ secondary.SweepLedger    = (*mockLedger)(nil)
)

type mockLedgerProvider struct {
	ledger  *mockLedger
	openErr error
}

func newMockLedgerProvider() *mockLedgerProvider {
	return &mockLedgerProvider{ledger: newMockLedger()}
}

func (m *mockLedgerProvider) Open(ctx context.Context, workspace string) (secondary.SweepLedger, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	m.ledger.closed = false
	return m.ledger, nil
}

type mockLedger struct {
	sweeps    map[string]*secondary.SweepRecord
	entries   map[string][]*secondary.EntryRecord
	createErr error
	recordErr error
	closed    bool
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		sweeps:  make(map[string]*secondary.SweepRecord),
		entries: make(map[string][]*secondary.EntryRecord),
	}
}

func (m *mockLedger) CreateSweep(ctx context.Context, s *secondary.SweepRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	copied := *s
	m.sweeps[s.ID] = &copied
	return nil
}

func (m *mockLedger) FinishSweep(ctx context.Context, s *secondary.SweepRecord) error {
	if _, ok := m.sweeps[s.ID]; !ok {
		return fmt.Errorf("sweep %s not found", s.ID)
	}
	copied := *s
	m.sweeps[s.ID] = &copied
	return nil
}

func (m *mockLedger) RecordEntry(ctx context.Context, e *secondary.EntryRecord) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.entries[e.SweepID] = append(m.entries[e.SweepID], e)
	return nil
}

func (m *mockLedger) GetSweep(ctx context.Context, id string) (*secondary.SweepRecord, error) {
	if s, ok := m.sweeps[id]; ok {
		return s, nil
	}
	return nil, errors.New("sweep not found")
}

func (m *mockLedger) ListSweeps(ctx context.Context, limit int) ([]*secondary.SweepRecord, error) {
	var result []*secondary.SweepRecord
	for _, s := range m.sweeps {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartedAt > result[j].StartedAt })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockLedger) ListEntries(ctx context.Context, sweepID string) ([]*secondary.EntryRecord, error) {
	return m.entries[sweepID], nil
}

func (m *mockLedger) Close() error {
	m.closed = true
	return nil
}

// ============================================================================
// Observers
// ============================================================================

type recordingObserver struct {
	started  []int
	finished []sweep.Outcome
}

func (o *recordingObserver) EntryStarted(seq int, entry sweep.Entry) {
	o.started = append(o.started, seq)
}

func (o *recordingObserver) EntryFinished(seq int, entry sweep.Entry, outcome sweep.Outcome, startedAt, finishedAt time.Time) {
	o.finished = append(o.finished, outcome)
}

// Ensure recordingProgress implements the interface
var _ primary.ProgressReporter = (*recordingProgress)(nil)

type recordingProgress struct {
	total    int
	started  int
	results  []*primary.EntryResult
	finished bool
}

func (p *recordingProgress) Start(total int) { p.total = total }
func (p *recordingProgress) EntryStarted(entry *primary.PlannedEntry) { p.started++ }
func (p *recordingProgress) EntryFinished(result *primary.EntryResult) {
	p.results = append(p.results, result)
}
func (p *recordingProgress) Finish() { p.finished = true }
