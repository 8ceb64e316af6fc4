// internal/signup/orchestrator.go
package signup

import (
	"context"
	goerrors "errors"
	"fmt"
	"sync"
	"time"

	"mentoloop-waitlist/internal/common/errors"
	"mentoloop-waitlist/internal/common/logger"
	"mentoloop-waitlist/internal/common/metrics"
	"mentoloop-waitlist/internal/common/observability"
	"mentoloop-waitlist/internal/waitlist"
)

// Status is the submission lifecycle phase.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// State is the externally visible submission state. Code is set only on
// failure and drives HTTP status mapping.
type State struct {
	Status  Status
	Message string
	Code    errors.ErrorCode
}

const (
	defaultSubmitTimeout = 15 * time.Second
	defaultResetDelay    = 5 * time.Second
)

// Store persists accepted signups.
type Store interface {
	Submit(ctx context.Context, req *waitlist.SignupRequest) (*waitlist.SignupRecord, error)
}

// Notifier fans out post-persist notifications.
type Notifier interface {
	Notify(ctx context.Context, req *waitlist.SignupRequest) error
}

// Options configures an Orchestrator.
type Options struct {
	Store         Store
	Notifier      Notifier
	Logger        logger.Logger
	Observability *observability.Observability

	// SubmitTimeout bounds one full submission. Zero means the default.
	SubmitTimeout time.Duration
	// ResetDelay is how long a success is displayed before the state
	// returns to idle. Zero means the default.
	ResetDelay time.Duration

	// OnStateChange, if set, observes every state transition.
	OnStateChange func(State)
}

// Orchestrator runs the validate -> persist -> notify pipeline and owns the
// submission state machine: idle -> pending -> succeeded|failed -> idle.
// A pending submission blocks re-entry; a failure clears on the next attempt;
// a success resets to idle after ResetDelay.
type Orchestrator struct {
	store    Store
	notifier Notifier
	logger   logger.Logger
	obs      *observability.Observability

	submitTimeout time.Duration
	resetDelay    time.Duration
	onStateChange func(State)

	mu         sync.Mutex
	state      State
	generation uint64
}

func New(opts Options) *Orchestrator {
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = defaultSubmitTimeout
	}
	if opts.ResetDelay <= 0 {
		opts.ResetDelay = defaultResetDelay
	}
	return &Orchestrator{
		store:         opts.Store,
		notifier:      opts.Notifier,
		logger:        opts.Logger,
		obs:           opts.Observability,
		submitTimeout: opts.SubmitTimeout,
		resetDelay:    opts.ResetDelay,
		onStateChange: opts.OnStateChange,
		state:         State{Status: StatusIdle},
	}
}

// State returns the current submission state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// claimPending atomically moves the state machine into pending. It returns
// false when another submission already holds the pending state, so two
// concurrent Submit calls can never both run the pipeline.
func (o *Orchestrator) claimPending() bool {
	o.mu.Lock()
	if o.state.Status == StatusPending {
		o.mu.Unlock()
		return false
	}
	o.state = State{Status: StatusPending}
	o.generation++
	cb := o.onStateChange
	o.mu.Unlock()
	if cb != nil {
		cb(State{Status: StatusPending})
	}
	return true
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.generation++
	cb := o.onStateChange
	o.mu.Unlock()
	if cb != nil {
		cb(s)
	}
}

// Submit runs one submission end to end. Validation failures are returned as
// FieldErrors without leaving idle; pipeline failures land in the failed
// state with a user-safe message.
func (o *Orchestrator) Submit(ctx context.Context, raw waitlist.RawSignup) (State, waitlist.FieldErrors) {
	// a prior failure or a lingering success message clears when the user
	// tries again
	o.mu.Lock()
	if o.state.Status != StatusPending {
		o.state = State{Status: StatusIdle}
	}
	o.mu.Unlock()

	req, fieldErrs := waitlist.Validate(raw)
	if len(fieldErrs) > 0 {
		metrics.SignupsRejected.WithLabelValues("validation").Inc()
		if o.obs != nil {
			o.obs.RecordSubmission(ctx, "validation_failed")
		}
		return State{Status: StatusIdle}, fieldErrs
	}

	if !o.claimPending() {
		return o.State(), nil
	}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, o.submitTimeout)
	defer cancel()

	state := o.run(ctx, req)

	if o.obs != nil {
		o.obs.RecordSubmission(ctx, string(state.Status))
		o.obs.RecordSubmissionDuration(ctx, time.Since(start), string(state.Status))
	}
	metrics.SubmissionDuration.Observe(time.Since(start).Seconds())

	o.setState(state)
	if state.Status == StatusSucceeded {
		o.scheduleReset()
	}
	return state, nil
}

// run executes persist + notify with panic containment. A panic anywhere in
// the pipeline becomes a generic failure; internals never reach the user.
func (o *Orchestrator) run(ctx context.Context, req *waitlist.SignupRequest) (state State) {
	defer func() {
		if r := recover(); r != nil {
			stdErr := errors.NewInternalError(fmt.Sprintf("panic: %v", r))
			o.logger.WithError(stdErr).Error("Submission pipeline panic", map[string]interface{}{
				"email": req.Email,
			})
			metrics.SignupsRejected.WithLabelValues("panic").Inc()
			state = State{Status: StatusFailed, Message: stdErr.Message, Code: stdErr.Code}
		}
	}()

	record, err := o.store.Submit(ctx, req)
	if err != nil {
		return o.failureState(req, err)
	}

	metrics.SignupsAccepted.Inc()
	o.logger.Info("Signup persisted", map[string]interface{}{
		"id":    record.ID,
		"email": record.Email,
		"role":  string(record.Role),
	})

	// notification is best effort for the primary outcome: the insert landed,
	// so the submission succeeded even if the welcome email did not go out
	if err := o.notifier.Notify(ctx, req); err != nil {
		o.logger.WithError(err).Warn("Post-signup notification failed", map[string]interface{}{
			"email": req.Email,
		})
	}

	return State{
		Status:  StatusSucceeded,
		Message: fmt.Sprintf("Welcome to MentoLoop, %s! Check your email for next steps.", req.FullName),
	}
}

// failureState converts a store sentinel into the StandardError taxonomy and
// the failed submission state it maps to.
func (o *Orchestrator) failureState(req *waitlist.SignupRequest, err error) State {
	var stdErr *errors.StandardError
	switch {
	case goerrors.Is(err, waitlist.ErrDuplicateEmail):
		stdErr = errors.NewDuplicateEmailError(req.Email)
		metrics.SignupsRejected.WithLabelValues("duplicate").Inc()
		o.logger.Info("Duplicate signup rejected", map[string]interface{}{
			"email": req.Email,
		})
	case goerrors.Is(err, waitlist.ErrStoreNotConfigured):
		stdErr = errors.NewStoreNotConfiguredError()
		metrics.SignupsRejected.WithLabelValues("store_not_configured").Inc()
		o.logger.Warn("Signup rejected, store not configured", map[string]interface{}{
			"email": req.Email,
		})
	default:
		stdErr = errors.NewPersistenceFailureError(err)
		metrics.SignupsRejected.WithLabelValues("persistence").Inc()
		o.logger.WithError(err).Error("Signup persistence failed", map[string]interface{}{
			"email": req.Email,
		})
	}
	return State{Status: StatusFailed, Message: errors.UserMessage(stdErr), Code: stdErr.Code}
}

// scheduleReset returns the state to idle after the success display delay,
// unless a newer submission has already moved the state on.
func (o *Orchestrator) scheduleReset() {
	o.mu.Lock()
	gen := o.generation
	o.mu.Unlock()

	time.AfterFunc(o.resetDelay, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.generation != gen || o.state.Status != StatusSucceeded {
			return
		}
		o.state = State{Status: StatusIdle}
		o.generation++
		cb := o.onStateChange
		if cb != nil {
			state := o.state
			go cb(state)
		}
	})
}
