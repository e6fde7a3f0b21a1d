package update

import (
	"context"
	"errors"
	"time"

	"koharu-go/internal/koharu"
)

// DefaultExitDelay is how long a scripted run lingers on a terminal state.
const DefaultExitDelay = 100 * time.Millisecond

// View renders states and asks the user for decisions.
type View interface {
	// Render is called once for every state entered.
	Render(s State)

	// Notes shows the release notes for the previewed version; nil means none
	// could be loaded. It may be called while a prompt is open.
	Notes(n *koharu.ReleaseNotes)

	// Prompt blocks until the user decides what to do in s.
	Prompt(ctx context.Context, s State) (Event, error)
}

// NotesFetcher loads release notes for a version.
type NotesFetcher interface {
	FetchNotes(ctx context.Context, version string) (*koharu.ReleaseNotes, error)
}

// ErrInterrupted is returned by a View when the user interrupts a prompt.
var ErrInterrupted = errors.New("interrupted")

type envelope struct {
	gen int
	ev  Event
}

// Orchestrator drives one update run: it feeds effect results and user
// decisions through Reduce until the state is finished.
//
// Only the Run goroutine touches the state. Effects, prompts and timers post
// events tagged with the generation they were started for; events from an
// earlier generation are dropped. Release notes arrive on their own channel
// and never hold up a prompt.
type Orchestrator struct {
	runner      *Runner
	view        View
	notes       NotesFetcher
	interactive bool
	exitDelay   time.Duration
	notesWait   time.Duration
	logger      koharu.Logger

	state  State
	gen    int
	events chan envelope
	timer  ExitTimer

	notesStarted bool
	notesCh      chan *koharu.ReleaseNotes // nil until started and after delivery
	notesDone    bool
	fetched      *koharu.ReleaseNotes
}

// OrchestratorConfig tunes an Orchestrator.
type OrchestratorConfig struct {
	// Interactive runs wait for dismissal on terminal states; scripted ones exit after ExitDelay.
	Interactive bool
	ExitDelay   time.Duration

	// NotesWait bounds how long a scripted check-only preview lingers for
	// release notes before exiting. Interactive previews never wait.
	NotesWait time.Duration
}

// NewOrchestrator creates an Orchestrator. notes may be nil.
func NewOrchestrator(runner *Runner, view View, notes NotesFetcher, cfg OrchestratorConfig, logger koharu.Logger) *Orchestrator {
	if cfg.ExitDelay <= 0 {
		cfg.ExitDelay = DefaultExitDelay
	}
	if cfg.NotesWait <= 0 {
		cfg.NotesWait = 3 * time.Second
	}
	return &Orchestrator{
		runner:      runner,
		view:        view,
		notes:       notes,
		interactive: cfg.Interactive,
		exitDelay:   cfg.ExitDelay,
		notesWait:   cfg.NotesWait,
		logger:      logger,
		events:      make(chan envelope, 1),
	}
}

// Run executes the workflow from the checking state and returns the final state.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (State, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer o.timer.Stop()

	o.state = NewState(opts)
	o.notesStarted, o.notesCh, o.notesDone, o.fetched = false, nil, false, nil
	o.enter(ctx)

	for {
		select {
		case <-ctx.Done():
			return o.state, ctx.Err()
		case n := <-o.notesCh:
			o.deliverNotes(ctx, n)
		case env := <-o.events:
			if env.gen != o.gen {
				continue
			}
			next := Reduce(o.state, env.ev)
			if next.Finished {
				o.state = next
				o.logger.Info("update finished", "status", string(next.Status), "cancelled", next.Cancelled)
				return next, nil
			}
			if sameState(o.state, next) {
				// Event did not apply; ask again.
				o.enter(ctx)
				continue
			}
			o.state = next
			o.enter(ctx)
		}
	}
}

// sameState reports whether an event left the visible state untouched.
func sameState(a, b State) bool {
	return a.Status == b.Status && a.Aborting == b.Aborting &&
		a.BackupFile == b.BackupFile && a.BackupSkipped == b.BackupSkipped
}

// post delivers ev if the run is still in generation gen.
func (o *Orchestrator) post(ctx context.Context, gen int, ev Event) {
	select {
	case o.events <- envelope{gen: gen, ev: ev}:
	case <-ctx.Done():
	}
}

// enter starts a new generation for the current state and schedules whatever
// produces its next event.
func (o *Orchestrator) enter(ctx context.Context) {
	o.timer.Stop()
	o.gen++
	gen, s := o.gen, o.state

	o.logger.Debug("update state", "status", string(s.Status))
	o.view.Render(s)

	if s.Status == StatusPreview {
		o.startNotes(ctx, s)
		if o.notesDone {
			o.view.Notes(o.fetched)
		}
	}

	if ev, ok := AutoEvent(s); ok {
		go o.post(ctx, gen, ev)
		return
	}

	if IsBusy(s) {
		go func() {
			ev, _ := o.runner.Step(ctx, s)
			o.post(ctx, gen, ev)
		}()
		return
	}

	if IsTerminal(s) && !o.interactive {
		delay := o.exitDelay
		if s.Status == StatusPreview && o.notesCh != nil {
			delay = o.notesWait
		}
		o.armExit(ctx, gen, delay)
		return
	}

	go func() {
		ev, err := o.view.Prompt(ctx, s)
		if err != nil {
			if errors.Is(err, ErrInterrupted) || errors.Is(err, context.Canceled) {
				ev = CancelEvent{}
			} else {
				ev = ErrorEvent{Message: err.Error()}
			}
		}
		o.post(ctx, gen, ev)
	}()
}

func (o *Orchestrator) armExit(ctx context.Context, gen int, d time.Duration) {
	o.timer.Arm(d, func() { o.post(ctx, gen, DismissEvent{}) })
}

// startNotes fetches release notes in the background, once per run. Failures
// are logged and delivered as nil.
func (o *Orchestrator) startNotes(ctx context.Context, s State) {
	if o.notesStarted || o.notes == nil || s.Info == nil || s.Info.IsDowngrade || s.Options.Force {
		return
	}
	version := s.Info.LatestVersion
	if version == "" || version == koharu.UnknownVersion {
		return
	}

	o.notesStarted = true
	ch := make(chan *koharu.ReleaseNotes, 1)
	o.notesCh = ch
	go func() {
		n, err := o.notes.FetchNotes(ctx, version)
		if err != nil {
			o.logger.Debug("release notes unavailable", "version", version, "error", err)
			n = nil
		}
		ch <- n
	}()
}

// deliverNotes keeps the fetched notes so later visits to the preview show
// them again, and shows them now if the preview is on screen. A scripted
// check-only preview that was lingering for them exits shortly after.
func (o *Orchestrator) deliverNotes(ctx context.Context, n *koharu.ReleaseNotes) {
	o.notesCh = nil
	o.notesDone = true
	o.fetched = n

	if o.state.Status != StatusPreview {
		return
	}
	o.view.Notes(n)
	if IsTerminal(o.state) && !o.interactive {
		o.armExit(ctx, o.gen, o.exitDelay)
	}
}
