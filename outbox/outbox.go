// outbox.go - Role sync outbox: records pending metadata pushes and delivers them
//
// A user write and its RoleSync row commit together. Delivery happens afterwards,
// either as one bounded attempt right after the request (DeliverNow) or from the
// background loop (Run), so a failed push is never lost.

package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-marketplace-backend/identity"
	"go-marketplace-backend/logger"
	"go-marketplace-backend/metrics"
	"go-marketplace-backend/models"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"
)

// Record adds a pending RoleSync row using tx, so it commits with the caller's user write.
func Record(tx *gorm.DB, userID string, role models.Role) (*models.RoleSync, error) {
	row := &models.RoleSync{
		ID:            uuid.NewString(),
		UserID:        userID,
		Role:          role,
		NextAttemptAt: time.Now().UTC(),
	}
	if err := tx.Create(row).Error; err != nil {
		return nil, fmt.Errorf("record role sync: %w", err)
	}
	return row, nil
}

// Options tunes delivery.
type Options struct {
	MaxRetries    uint64        // retries per Deliver call
	Backoff       time.Duration // base of the exponential backoff between retries
	PollInterval  time.Duration // how often Run looks for due rows
	InlineTimeout time.Duration // bound on a DeliverNow attempt
	BatchSize     int
}

// ErrBusy is returned by DeliverNow when another delivery holds the dispatcher.
var ErrBusy = errors.New("outbox: delivery in progress")

func (o *Options) setDefaults() {
	if o.Backoff <= 0 {
		o.Backoff = 200 * time.Millisecond
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 30 * time.Second
	}
	if o.InlineTimeout <= 0 {
		o.InlineTimeout = 2 * time.Second
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
}

// Dispatcher pushes pending RoleSync rows to the identity provider.
type Dispatcher struct {
	db     *gorm.DB
	client identity.MetadataClient
	opts   Options
	log    logger.Logger

	mu   sync.Mutex    // serializes deliveries so a row is never pushed twice concurrently
	wake chan struct{} // buffered(1) nudge for Run
}

func NewDispatcher(db *gorm.DB, client identity.MetadataClient, opts Options) *Dispatcher {
	opts.setDefaults()
	return &Dispatcher{
		db:     db,
		client: client,
		opts:   opts,
		log:    logger.With("component", "outbox"),
		wake:   make(chan struct{}, 1),
	}
}

// Notify asks Run to drain due rows now. It never blocks.
func (d *Dispatcher) Notify() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Deliver pushes the role for the user of row id, retrying transient failures up to
// MaxRetries times. The pushed value is the role stored in the users table at delivery time,
// so older pending rows for the same user are settled by the same push.
// A delivered or unknown row is a no-op.
func (d *Dispatcher) Deliver(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deliver(ctx, id, d.opts.MaxRetries)
}

// DeliverNow makes a single push attempt bounded by InlineTimeout, for use on a request path.
// If another delivery is in progress it returns ErrBusy without waiting. In every non-success case
// the row stays pending and Run is nudged to pick it up.
func (d *Dispatcher) DeliverNow(ctx context.Context, id string) error {
	if !d.mu.TryLock() {
		d.Notify()
		return ErrBusy
	}
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, d.opts.InlineTimeout)
	defer cancel()
	if err := d.deliver(ctx, id, 0); err != nil {
		d.Notify()
		return err
	}
	return nil
}

// deliver expects d.mu to be held.
func (d *Dispatcher) deliver(ctx context.Context, id string, retries uint64) error {
	var row models.RoleSync
	err := d.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load role sync: %w", err)
	}
	if row.DeliveredAt != nil {
		return nil
	}

	// Snapshot the pending rows before reading the role. Only these are covered by the push;
	// a row committed after this point may carry a role the read below does not see.
	var covered []string
	if err := d.db.WithContext(ctx).Model(&models.RoleSync{}).
		Where("user_id = ? AND delivered_at IS NULL", row.UserID).
		Pluck("id", &covered).Error; err != nil {
		return fmt.Errorf("list pending role syncs: %w", err)
	}

	attempt := time.Now().UTC()
	role := row.Role
	var user models.User
	err = d.db.WithContext(ctx).Select("id", "role").First(&user, "id = ?", row.UserID).Error
	switch {
	case err == nil:
		role = user.Role
	case errors.Is(err, gorm.ErrRecordNotFound):
		// the local user row is keyed by email and may carry another id; fall back to the recorded role
	default:
		return fmt.Errorf("load user role: %w", err)
	}

	backoff := retry.WithMaxRetries(retries, retry.NewExponential(d.opts.Backoff))
	pushErr := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := d.client.UpdateRole(ctx, row.UserID, role); err != nil {
			if identity.IsRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})

	if pushErr != nil {
		metrics.RoleSyncPushes.WithLabelValues("failed").Inc()
		d.log.Warn("role push failed", "sync_id", row.ID, "user_id", row.UserID, "attempts", row.Attempts+1, "err", pushErr)
		next := attempt.Add(d.retryDelay(row.Attempts + 1))
		if err := d.db.WithContext(context.WithoutCancel(ctx)).Model(&models.RoleSync{}).Where("id = ?", row.ID).Updates(map[string]any{
			"attempts":        gorm.Expr("attempts + 1"),
			"last_error":      pushErr.Error(),
			"next_attempt_at": next,
		}).Error; err != nil {
			return fmt.Errorf("record role push failure: %w", err)
		}
		return pushErr
	}

	delivered := time.Now().UTC()
	if err := d.db.WithContext(context.WithoutCancel(ctx)).Model(&models.RoleSync{}).
		Where("id IN ? AND delivered_at IS NULL", covered).
		Updates(map[string]any{"delivered_at": delivered, "last_error": ""}).Error; err != nil {
		return fmt.Errorf("mark role sync delivered: %w", err)
	}
	metrics.RoleSyncPushes.WithLabelValues("delivered").Inc()
	d.log.Info("role pushed", "sync_id", row.ID, "user_id", row.UserID, "role", role, "settled", len(covered))
	return nil
}

// retryDelay grows with the number of failed attempts, capped at one hour.
func (d *Dispatcher) retryDelay(attempts int) time.Duration {
	delay := d.opts.PollInterval
	for i := 1; i < attempts && delay < time.Hour; i++ {
		delay *= 2
	}
	if delay > time.Hour {
		delay = time.Hour
	}
	return delay
}

// DrainDue delivers every pending row whose next attempt is due, oldest first.
// It returns how many rows were delivered.
func (d *Dispatcher) DrainDue(ctx context.Context) (int, error) {
	var due []models.RoleSync
	err := d.db.WithContext(ctx).
		Where("delivered_at IS NULL AND next_attempt_at <= ?", time.Now().UTC()).
		Order("created_at ASC").
		Limit(d.opts.BatchSize).
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("list due role syncs: %w", err)
	}

	delivered := 0
	for _, row := range due {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		if err := d.Deliver(ctx, row.ID); err != nil {
			continue // already recorded on the row
		}
		delivered++
	}
	return delivered, nil
}

// Pending counts undelivered rows.
func (d *Dispatcher) Pending(ctx context.Context) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&models.RoleSync{}).Where("delivered_at IS NULL").Count(&n).Error
	return n, err
}

// Run drains due rows on every tick or Notify until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-d.wake:
		}
		if n, err := d.DrainDue(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.log.Error("drain role syncs", "err", err)
		} else if n > 0 {
			d.log.Debug("drained role syncs", "delivered", n)
		}
	}
}
