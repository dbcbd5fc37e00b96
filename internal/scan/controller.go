package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"stockscan/internal/conflict"
	"stockscan/internal/logging"
	"stockscan/internal/queue"
	"stockscan/internal/services"
	"stockscan/internal/tagresolve"
	"stockscan/internal/warehouse"
)

// ErrClosed is returned by operations on a closed controller.
var ErrClosed = errors.New("scan controller closed")

// ErrBusy is returned by Scan while a submission is in flight.
var ErrBusy = errors.New("submission in progress")

// ErrNotReady is returned by Submit when the form cannot be submitted.
var ErrNotReady = fmt.Errorf("%w: nothing ready to submit", services.ErrValidation)

// Resolver classifies tag values.
type Resolver interface {
	Resolve(ctx context.Context, tagValue string) (tagresolve.Resolution, error)
}

// Submitter sends one movement.
type Submitter interface {
	SubmitScan(ctx context.Context, req warehouse.ScanRequest, idempotencyKey string) error
}

// Queue is the offline queue as seen by the controller.
type Queue interface {
	EnqueueRef(ctx context.Context, op queue.Operation, clientRef string) (queue.Entry, error)
	Count(ctx context.Context) (int, error)
}

// Connectivity reports the process-wide offline flag.
type Connectivity interface {
	Offline() bool
}

// Deps bundles the controller collaborators. Connectivity is optional.
type Deps struct {
	Resolver     Resolver
	Submitter    Submitter
	Queue        Queue
	Connectivity Connectivity
	Logger       *slog.Logger
}

// Options holds the form defaults.
type Options struct {
	Direction          warehouse.Direction
	ProjectInput       string
	Quantity           int
	ProjectIDMaxDigits int
}

// Controller is the scan form state machine.
type Controller struct {
	deps      Deps
	maxDigits int
	logger    *slog.Logger
	tracker   *tagresolve.Tracker

	mu         sync.Mutex
	closed     bool
	state      State
	outcome    State
	tag        string
	resolution tagresolve.Resolution
	needsMode  bool
	direction  warehouse.Direction
	project    string
	quantity   int
	bundleMode warehouse.BundleMode
	status     string
	statusKind StatusKind
	pending    int

	onChange func(View)
}

// NewController builds a controller in the Idle state. Resolver, Submitter
// and Queue are required.
func NewController(deps Deps, opts Options) (*Controller, error) {
	var missing []string
	if deps.Resolver == nil {
		missing = append(missing, "resolver")
	}
	if deps.Submitter == nil {
		missing = append(missing, "submitter")
	}
	if deps.Queue == nil {
		missing = append(missing, "queue")
	}
	if len(missing) > 0 {
		return nil, services.Wrap(services.ErrConfiguration, "scan", "new controller",
			"missing "+strings.Join(missing, ", "), nil)
	}
	direction := opts.Direction
	if !direction.Valid() {
		direction = warehouse.DirectionOut
	}
	qty := opts.Quantity
	if qty <= 0 {
		qty = 1
	}
	return &Controller{
		deps:      deps,
		maxDigits: opts.ProjectIDMaxDigits,
		logger:    logging.NewComponentLogger(deps.Logger, "scan-controller"),
		tracker:   tagresolve.NewTracker(context.Background()),
		state:     Idle,
		outcome:   Idle,
		direction: direction,
		project:   strings.TrimSpace(opts.ProjectInput),
		quantity:  qty,
	}, nil
}

// OnChange registers fn to receive a snapshot after every state change. fn
// runs outside the controller lock.
func (c *Controller) OnChange(fn func(View)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// RefreshPending reloads the pending counter from the queue.
func (c *Controller) RefreshPending(ctx context.Context) error {
	if c.deps.Queue == nil {
		return nil
	}
	n, err := c.deps.Queue.Count(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.pending = n
	c.mu.Unlock()
	c.emit()
	return nil
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Close cancels any in-flight resolution; later calls return ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.tracker.Close()
}

// Scan starts a new scan, superseding any resolution still in flight.
func (c *Controller) Scan(ctx context.Context, tagValue string) error {
	tagValue = strings.TrimSpace(tagValue)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if tagValue == "" {
		c.mu.Unlock()
		return fmt.Errorf("%w: empty tag value", services.ErrValidation)
	}
	if c.state == Submitting {
		c.mu.Unlock()
		return ErrBusy
	}
	ticket := c.tracker.Begin(tagValue)
	c.tag = tagValue
	c.resolution = nil
	c.needsMode = false
	c.bundleMode = warehouse.BundleModeNone
	c.outcome = Idle
	c.setLocked(Scanned, "", StatusNone)

	offline := c.deps.Connectivity != nil && c.deps.Connectivity.Offline()
	if offline || c.deps.Resolver == nil {
		c.setLocked(Ready, MsgWorkingOffline, StatusInfo)
		c.mu.Unlock()
		c.emit()
		return nil
	}
	c.setLocked(Resolving, "resolving tag", StatusInfo)
	c.mu.Unlock()
	c.emit()

	resolveCtx, stop := mergeCancel(services.WithTagValue(ctx, tagValue), ticket.Context())
	resolution, err := c.deps.Resolver.Resolve(resolveCtx, tagValue)
	stop()

	c.mu.Lock()
	if !c.tracker.Current(ticket) {
		c.mu.Unlock()
		c.logger.Debug("discarding stale resolution",
			logging.TagValue(tagValue),
		)
		return nil
	}
	c.applyResolutionLocked(resolution, err)
	c.mu.Unlock()
	c.emit()
	return nil
}

func (c *Controller) applyResolutionLocked(resolution tagresolve.Resolution, err error) {
	if err != nil {
		switch services.Classify(err) {
		case services.KindNetwork:
			c.setLocked(Ready, MsgWorkingOffline, StatusInfo)
		case services.KindNotFound:
			c.setLocked(Rejected, MsgTagNotLinked, StatusError)
		default:
			c.logger.Debug("tag resolution failed", logging.TagValue(c.tag), logging.Error(err))
			c.setLocked(Error, MsgResolveFailed, StatusError)
		}
		return
	}

	c.resolution = resolution
	c.state = Resolved
	description := tagresolve.Describe(resolution)
	switch resolution.(type) {
	case tagresolve.BundleResolution:
		c.needsMode = true
		c.setLocked(AwaitingBundleMode, description+"; "+MsgChooseBundleMode, StatusInfo)
	case tagresolve.UnknownResolution, tagresolve.OtherResolution:
		c.setLocked(Ready, description, StatusWarning)
	default:
		c.setLocked(Ready, description, StatusInfo)
	}
}

// SetDirection selects in or out.
func (c *Controller) SetDirection(direction warehouse.Direction) error {
	if !direction.Valid() {
		return fmt.Errorf("%w: direction must be in or out", services.ErrValidation)
	}
	c.mu.Lock()
	c.direction = direction
	c.mu.Unlock()
	c.emit()
	return nil
}

// SetProjectInput stores the raw project id field. It is validated on Submit.
func (c *Controller) SetProjectInput(input string) {
	c.mu.Lock()
	c.project = strings.TrimSpace(input)
	c.mu.Unlock()
	c.emit()
}

// SetQuantityInput stores the quantity, coercing invalid or non-positive
// input to 1, and returns the stored value.
func (c *Controller) SetQuantityInput(input string) int {
	qty := CoerceQuantity(input)
	c.mu.Lock()
	c.quantity = qty
	c.mu.Unlock()
	c.emit()
	return qty
}

// ChooseBundleMode answers the bundle mode prompt.
func (c *Controller) ChooseBundleMode(mode warehouse.BundleMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: bundle mode must be explode or book_all", services.ErrValidation)
	}
	c.mu.Lock()
	if !c.needsMode || (c.state != AwaitingBundleMode && c.state != Ready) {
		c.mu.Unlock()
		return fmt.Errorf("%w: no bundle awaiting a mode", services.ErrValidation)
	}
	c.bundleMode = mode
	c.setLocked(Ready, fmt.Sprintf("bundle mode %s selected", mode), StatusInfo)
	c.mu.Unlock()
	c.emit()
	return nil
}

// Submit validates the form locally and sends the movement. Local
// validation failures return an error and make no network call; server
// outcomes are reported through the view and a nil error.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.submitEnabledLocked() {
		c.mu.Unlock()
		return ErrNotReady
	}
	projectID, err := ParseProjectID(c.project, c.maxDigits)
	if err != nil {
		c.status, c.statusKind = err.Error(), StatusError
		c.mu.Unlock()
		c.emit()
		return err
	}
	if c.needsMode && !c.bundleMode.Valid() {
		c.setLocked(AwaitingBundleMode, MsgChooseBundleMode, StatusWarning)
		c.mu.Unlock()
		c.emit()
		return fmt.Errorf("%w: %s", services.ErrValidation, MsgChooseBundleMode)
	}
	op, err := queue.NewOperation(c.tag, c.direction, projectID, c.quantity, c.bundleMode, c.needsMode)
	if err != nil {
		c.status, c.statusKind = "invalid movement", StatusError
		c.mu.Unlock()
		c.emit()
		return err
	}
	c.tracker.Invalidate()
	c.setLocked(Submitting, "submitting", StatusInfo)
	c.mu.Unlock()
	c.emit()

	clientRef := uuid.NewString()
	ctx = services.WithTagValue(ctx, op.Tag())
	var submitErr error
	if c.deps.Connectivity != nil && c.deps.Connectivity.Offline() {
		submitErr = services.Wrap(services.ErrNetwork, "scan", "submit", "offline", nil)
	} else {
		submitErr = c.deps.Submitter.SubmitScan(ctx, op.Request(), clientRef)
	}

	var (
		entry    queue.Entry
		queueErr error
		depth    = -1
	)
	if services.IsNetwork(submitErr) && ctx.Err() == nil {
		entry, queueErr = c.deps.Queue.EnqueueRef(ctx, op, clientRef)
		if queueErr == nil {
			if n, err := c.deps.Queue.Count(ctx); err == nil {
				depth = n
			}
		}
	}

	c.mu.Lock()
	c.applySubmitLocked(ctx, op, submitErr, entry, queueErr, depth)
	c.mu.Unlock()
	c.emit()
	return nil
}

func (c *Controller) applySubmitLocked(ctx context.Context, op queue.Operation, submitErr error, entry queue.Entry, queueErr error, depth int) {
	logger := logging.WithContext(ctx, c.logger)
	switch {
	case submitErr == nil:
		c.finishLocked(Success, MsgRecorded, StatusSuccess, true)
		logger.Info("movement recorded",
			logging.Event("scan_submitted"),
			logging.String("direction", string(op.Direction())),
			logging.Int64("project_id", op.ProjectID()),
			logging.Int("qty", op.Quantity()),
		)
	case ctx.Err() != nil:
		c.finishLocked(Ready, "submission cancelled", StatusWarning, false)
	case services.IsNetwork(submitErr):
		if queueErr != nil {
			logging.ErrorWithContext(logger, "could not queue movement offline", "scan_enqueue_failed",
				logging.Error(queueErr),
				logging.String(logging.FieldErrorHint, "sync or clear the offline queue"),
			)
			message := "could not save movement offline"
			if errors.Is(queueErr, queue.ErrQueueFull) {
				message = "offline queue is full; movement not saved"
			}
			c.finishLocked(Error, message, StatusError, false)
			return
		}
		if depth >= 0 {
			c.pending = depth
		} else {
			c.pending++
		}
		c.finishLocked(QueuedOffline, MsgQueuedOffline, StatusInfo, true)
		logger.Info("movement queued offline",
			logging.Event("scan_queued"),
			logging.EntryID(entry.ID),
			logging.Int("pending", c.pending),
		)
	case services.Classify(submitErr) == services.KindBundleModeRequired:
		c.needsMode = true
		c.bundleMode = warehouse.BundleModeNone
		message := MsgChooseBundleMode + " and resubmit"
		if text := apiText(submitErr); text != "" {
			message = text
		}
		c.outcome = BundleModeRequired
		c.setLocked(AwaitingBundleMode, message, StatusWarning)
	case services.Classify(submitErr) == services.KindConflict:
		c.finishLocked(ConflictBlocked, conflict.Interpret(submitErr, MsgConflictFallback), StatusError, false)
	case services.Classify(submitErr) == services.KindNotFound:
		c.finishLocked(Rejected, MsgTagNotLinked, StatusError, true)
	default:
		message := MsgSubmitFailed
		if text := apiText(submitErr); text != "" {
			message = text
		}
		logging.WarnWithContext(logger, "movement rejected", "scan_rejected",
			logging.Error(submitErr),
			logging.String(logging.FieldErrorHint, "check the server logs for the request id"),
			logging.String(logging.FieldImpact, "movement not recorded"),
		)
		c.finishLocked(Error, message, StatusError, false)
	}
}

// finishLocked records a submit outcome; clear drops the current scan.
func (c *Controller) finishLocked(state State, status string, kind StatusKind, clear bool) {
	c.outcome = state
	if clear {
		c.tag = ""
		c.resolution = nil
		c.needsMode = false
		c.bundleMode = warehouse.BundleModeNone
	}
	c.setLocked(state, status, kind)
}

func (c *Controller) setLocked(state State, status string, kind StatusKind) {
	c.state = state
	c.status = status
	c.statusKind = kind
}

func (c *Controller) submitEnabledLocked() bool {
	return !c.closed && c.state == Ready && c.tag != ""
}

func (c *Controller) viewLocked() View {
	v := View{
		State:            c.state,
		Outcome:          c.outcome,
		Tag:              c.tag,
		Direction:        c.direction,
		ProjectInput:     c.project,
		Quantity:         c.quantity,
		BundleMode:       c.bundleMode,
		Status:           c.status,
		StatusKind:       c.statusKind,
		Pending:          c.pending,
		BundleModePrompt: c.state == AwaitingBundleMode,
		SubmitEnabled:    c.submitEnabledLocked(),
	}
	if c.resolution != nil {
		v.ResolutionKind = c.resolution.Kind()
		v.Resolution = tagresolve.Describe(c.resolution)
	}
	return v
}

func (c *Controller) emit() {
	c.mu.Lock()
	fn := c.onChange
	view := c.viewLocked()
	c.mu.Unlock()
	if fn != nil {
		fn(view)
	}
}

func apiText(err error) string {
	var apiErr *warehouse.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Text()
	}
	return ""
}

// mergeCancel returns a context that carries ctx's values and is cancelled
// when either ctx or other is done.
func mergeCancel(ctx, other context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(other, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}
