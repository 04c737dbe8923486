// Package analysis drives the upload → predict → persist cycle and owns the
// transient display state the dashboard renders: current phase, selected
// session and currently shown result.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/veriscope/veriscope/internal/api"
	"github.com/veriscope/veriscope/internal/detection"
	"github.com/veriscope/veriscope/internal/events"
)

// Phase is the orchestrator's state machine position.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseUploading  Phase = "uploading"
	PhasePredicting Phase = "predicting"
	PhaseComplete   Phase = "complete"
	PhaseFailed     Phase = "failed"
)

// Event types published on the orchestrator's broker.
const (
	EventPhaseChanged   events.EventType = "phase_changed"
	EventSessionSaved   events.EventType = "session_saved"
	EventSessionDeleted events.EventType = "session_deleted"
)

var (
	// ErrBusy rejects a submission while an analysis cycle is in flight.
	ErrBusy = errors.New("an analysis is already in progress")

	// ErrResultMissing reports a selected session whose stored result is
	// gone. Recoverable: the caller shows a notification, not a failure
	// state.
	ErrResultMissing = errors.New("no stored result for this session")

	// ErrUnsupportedMedia rejects files outside the service's allow-list
	// before any network traffic happens.
	ErrUnsupportedMedia = errors.New("unsupported media type")
)

// Client is the slice of the remote analysis service the orchestrator needs.
type Client interface {
	Upload(ctx context.Context, name string, content io.Reader, contentType string) (*api.UploadResponse, error)
	Predict(ctx context.Context, filename string, kind detection.MediaKind) (*detection.Result, error)
}

// Store is the session persistence surface, injected so tests substitute an
// in-memory fake.
type Store interface {
	LoadAll() ([]detection.Session, error)
	LoadResult(id string) (*detection.Result, bool, error)
	SaveSession(session detection.Session, result *detection.Result) error
	DeleteSession(id string) error
}

// Update is the display-state snapshot carried on every published event.
type Update struct {
	Phase      Phase
	SelectedID string
	Result     *detection.Result
	Err        string
	Session    *detection.Session
}

// Orchestrator mediates between the remote client and the session store.
// Methods are safe for concurrent use, but at most one analysis cycle runs at
// a time; Submit refuses overlap with ErrBusy.
type Orchestrator struct {
	client Client
	store  Store
	broker *events.Broker[Update]

	mu         sync.Mutex
	phase      Phase
	busy       bool
	selectedID string
	result     *detection.Result
	lastErr    string

	now    func() time.Time
	lastID int64
}

func New(client Client, store Store) *Orchestrator {
	return &Orchestrator{
		client: client,
		store:  store,
		broker: events.NewBroker[Update](),
		phase:  PhaseIdle,
		now:    time.Now,
	}
}

// newID derives a session id from the creation time. Millisecond collisions
// between back-to-back analyses bump forward so ids stay unique and
// monotonic.
func (o *Orchestrator) newID(t time.Time) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	ms := t.UnixMilli()
	if ms <= o.lastID {
		ms = o.lastID + 1
	}
	o.lastID = ms
	return strconv.FormatInt(ms, 10)
}

// Subscribe returns a stream of display-state updates.
func (o *Orchestrator) Subscribe(ctx context.Context) <-chan events.Event[Update] {
	return o.broker.Subscribe(ctx)
}

// Close shuts down the event broker.
func (o *Orchestrator) Close() {
	o.broker.Shutdown()
}

// Snapshot returns the current display state.
func (o *Orchestrator) Snapshot() Update {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() Update {
	return Update{
		Phase:      o.phase,
		SelectedID: o.selectedID,
		Result:     o.result,
		Err:        o.lastErr,
	}
}

// Busy reports whether an analysis cycle is in flight.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// Sessions returns the persisted history, newest first.
func (o *Orchestrator) Sessions() ([]detection.Session, error) {
	return o.store.LoadAll()
}

// SubmitFile runs a full analysis cycle for the file at path: upload,
// predict, persist, select. It blocks until the cycle settles; the returned
// session is nil on failure.
func (o *Orchestrator) SubmitFile(ctx context.Context, path string) (*detection.Session, *detection.Result, error) {
	contentType := detection.ContentTypeForPath(path)
	if contentType == "" {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, filepath.Ext(path))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return o.Submit(ctx, filepath.Base(path), file, contentType)
}

// Submit runs a full analysis cycle for an already-open media stream.
func (o *Orchestrator) Submit(ctx context.Context, name string, content io.Reader, contentType string) (*detection.Session, *detection.Result, error) {
	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return nil, nil, ErrBusy
	}
	// A new submission immediately clears any previously displayed result so
	// stale output never lingers during the fresh cycle.
	o.busy = true
	o.phase = PhaseUploading
	o.result = nil
	o.selectedID = ""
	o.lastErr = ""
	o.publishLocked(EventPhaseChanged)
	o.mu.Unlock()

	kind := detection.KindForContentType(contentType)

	upload, err := o.client.Upload(ctx, name, content, contentType)
	if err != nil {
		o.fail(err)
		return nil, nil, err
	}
	log.Debug("upload accepted", "file", name, "token", upload.Filename)

	o.setPhase(PhasePredicting)

	result, err := o.client.Predict(ctx, upload.Filename, kind)
	if err != nil {
		o.fail(err)
		return nil, nil, err
	}

	createdAt := o.now()
	session := detection.Session{
		ID:        o.newID(createdAt),
		Name:      name,
		Type:      kind,
		Status:    result.FinalPrediction,
		Timestamp: createdAt.Format("Jan 2, 2006 15:04"),
	}

	if err := o.store.SaveSession(session, result); err != nil {
		o.fail(err)
		return nil, nil, err
	}

	o.mu.Lock()
	o.busy = false
	o.phase = PhaseComplete
	o.selectedID = session.ID
	o.result = result
	o.publishLocked(EventPhaseChanged)
	update := o.snapshotLocked()
	update.Session = &session
	o.mu.Unlock()
	o.broker.Publish(EventSessionSaved, update)

	log.Info("analysis complete", "file", name, "verdict", result.FinalPrediction, "confidence", result.Confidence)
	return &session, result, nil
}

// SelectSession makes id the displayed session and loads its stored result.
// A missing result clears the display and returns ErrResultMissing.
func (o *Orchestrator) SelectSession(id string) (*detection.Result, error) {
	result, ok, err := o.store.LoadResult(id)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.selectedID = id
	o.result = result
	o.publishLocked(EventPhaseChanged)
	o.mu.Unlock()

	if !ok {
		return nil, ErrResultMissing
	}
	return result, nil
}

// DeleteSession removes a session and its result. When the deleted session
// was selected, the selection and displayed result are cleared.
func (o *Orchestrator) DeleteSession(id string) error {
	if err := o.store.DeleteSession(id); err != nil {
		return err
	}

	o.mu.Lock()
	if o.selectedID == id {
		o.selectedID = ""
		o.result = nil
	}
	update := o.snapshotLocked()
	o.mu.Unlock()
	o.broker.Publish(EventSessionDeleted, update)
	return nil
}

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.publishLocked(EventPhaseChanged)
	o.mu.Unlock()
}

// fail records a terminal failed phase and returns the machine to a state
// ready for the next submission.
func (o *Orchestrator) fail(err error) {
	log.Error("analysis failed", "error", err)
	o.mu.Lock()
	o.busy = false
	o.phase = PhaseFailed
	o.lastErr = err.Error()
	o.publishLocked(EventPhaseChanged)
	o.mu.Unlock()
}

func (o *Orchestrator) publishLocked(t events.EventType) {
	o.broker.Publish(t, o.snapshotLocked())
}
