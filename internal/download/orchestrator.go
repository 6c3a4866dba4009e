// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

// Package download implements the client-side download orchestration
// state machine: email gating, best-effort analytics side effects, and
// the progress-observable file transfer against the Flowmart gateway.
package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/flowmart/flowmart/internal/catalog"
	"github.com/flowmart/flowmart/internal/logging"
)

var (
	// ErrDownloadInProgress rejects a second start while a transfer runs.
	ErrDownloadInProgress = errors.New("a download is already in progress")

	// ErrInvalidEmail rejects gate submissions without an @ sign.
	ErrInvalidEmail = errors.New("please enter a valid email address")
)

// State is a point-in-time snapshot of the orchestrator, shaped for a
// consumer that renders it directly.
type State struct {
	IsDownloading  bool
	Progress       float64
	FileName       string
	ProductTitle   string
	Err            string
	EmailGateOpen  bool
	PendingProduct *catalog.Product
}

// SaveFunc persists a completed payload under the suggested file name.
type SaveFunc func(fileName string, data []byte) error

// SaveToDir returns a SaveFunc that writes payloads into dir. The file
// name is flattened to its base so a hostile header cannot escape dir.
func SaveToDir(dir string) SaveFunc {
	return func(fileName string, data []byte) error {
		name := filepath.Base(fileName)
		if name == "." || name == string(filepath.Separator) {
			return fmt.Errorf("unusable file name %q", fileName)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create download directory: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("failed to save download: %w", err)
		}
		return nil
	}
}

// Options configures an Orchestrator. Client, Prefs and Save are
// required; the rest default sensibly.
type Options struct {
	Client   *Client
	Prefs    PrefStore
	Save     SaveFunc
	OnChange func(State)

	// Grace is how long the terminal 100% state is held before the
	// orchestrator resets to idle. Defaults to 2 seconds.
	Grace time.Duration

	// ProgressRate caps intermediate progress notifications per second.
	// The terminal notification always goes through. Defaults to 30.
	ProgressRate rate.Limit
}

// Orchestrator serializes all download state behind one mutex and
// guarantees a single in-flight transfer.
type Orchestrator struct {
	client   *Client
	prefs    PrefStore
	save     SaveFunc
	onChange func(State)
	grace    time.Duration
	limiter  *rate.Limiter

	mu         sync.Mutex
	state      State
	generation uint64
	cancel     context.CancelFunc
}

// NewOrchestrator builds an Orchestrator from opts.
func NewOrchestrator(opts Options) *Orchestrator {
	grace := opts.Grace
	if grace == 0 {
		grace = 2 * time.Second
	}
	progressRate := opts.ProgressRate
	if progressRate == 0 {
		progressRate = 30
	}
	return &Orchestrator{
		client:   opts.Client,
		prefs:    opts.Prefs,
		save:     opts.Save,
		onChange: opts.OnChange,
		grace:    grace,
		limiter:  rate.NewLimiter(progressRate, 1),
	}
}

// State returns a snapshot of the current orchestrator state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// StartDownload begins the flow for product. When no email has been
// captured on this device it opens the gate and returns false; callers
// then drive HandleEmailSubmit or CloseEmailModal. With a stored email
// it runs the side effects and the transfer, returning true once the
// payload is saved.
func (o *Orchestrator) StartDownload(ctx context.Context, product *catalog.Product) (bool, error) {
	o.mu.Lock()
	if o.state.IsDownloading {
		o.state.Err = ErrDownloadInProgress.Error()
		snap := o.state
		o.mu.Unlock()
		o.notify(snap)
		return false, ErrDownloadInProgress
	}

	email, ok := o.prefs.Get(CapturedEmailKey)
	if !ok || email == "" {
		o.state.EmailGateOpen = true
		o.state.PendingProduct = product
		snap := o.state
		o.mu.Unlock()
		o.notify(snap)
		return false, nil
	}

	tctx, gen := o.beginTransferLocked(ctx, product)
	snap := o.state
	o.mu.Unlock()
	o.notify(snap)

	o.issueSideEffects(product, email)
	return o.runTransfer(tctx, product, gen)
}

// HandleEmailSubmit resumes a gated download. Without a pending product
// it is a no-op, which guards against a stray submit after the gate was
// dismissed. The gate closes before any side effect runs.
func (o *Orchestrator) HandleEmailSubmit(ctx context.Context, email string) (bool, error) {
	o.mu.Lock()
	if o.state.PendingProduct == nil {
		o.mu.Unlock()
		return false, nil
	}
	if !strings.Contains(email, "@") {
		o.mu.Unlock()
		return false, ErrInvalidEmail
	}

	product := o.state.PendingProduct
	o.state.EmailGateOpen = false
	o.state.PendingProduct = nil

	if err := o.prefs.Set(CapturedEmailKey, email); err != nil {
		logging.Error().Err(err).Msg("Failed to persist captured email")
	}

	tctx, gen := o.beginTransferLocked(ctx, product)
	snap := o.state
	o.mu.Unlock()
	o.notify(snap)

	o.issueSideEffects(product, email)
	return o.runTransfer(tctx, product, gen)
}

// CancelDownload aborts any in-flight transfer and resets to idle.
func (o *Orchestrator) CancelDownload() {
	o.mu.Lock()
	o.generation++
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.state = State{}
	snap := o.state
	o.mu.Unlock()
	o.notify(snap)
}

// CloseEmailModal dismisses the gate without side effects.
func (o *Orchestrator) CloseEmailModal() {
	o.mu.Lock()
	if !o.state.EmailGateOpen {
		o.mu.Unlock()
		return
	}
	o.state.EmailGateOpen = false
	o.state.PendingProduct = nil
	snap := o.state
	o.mu.Unlock()
	o.notify(snap)
}

// ClearError dismisses a surfaced error.
func (o *Orchestrator) ClearError() {
	o.mu.Lock()
	if o.state.Err == "" {
		o.mu.Unlock()
		return
	}
	o.state.Err = ""
	snap := o.state
	o.mu.Unlock()
	o.notify(snap)
}

// beginTransferLocked claims the single transfer slot. Callers hold the
// mutex and must not already be downloading.
func (o *Orchestrator) beginTransferLocked(ctx context.Context, product *catalog.Product) (context.Context, uint64) {
	o.generation++
	gen := o.generation

	o.state.IsDownloading = true
	o.state.Progress = 0
	o.state.FileName = product.FileName
	o.state.ProductTitle = product.Title
	o.state.Err = ""

	tctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	return tctx, gen
}

// issueSideEffects fires the gated analytics calls. Both are best
// effort; issuance is sequenced before the transfer, settlement is not.
func (o *Orchestrator) issueSideEffects(product *catalog.Product, email string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := o.client.CaptureUser(ctx, email, product.ID, product.Title); err != nil {
			logging.Warn().Err(err).Str("product_id", product.ID).Msg("User capture failed")
		}
	}()

	flagKey := DownloadedFlagKey(product.ID)
	if _, done := o.prefs.Get(flagKey); done {
		return
	}
	// The flag is set before the HTTP result lands: at most one track
	// per product per device, even if the call is lost.
	if err := o.prefs.Set(flagKey, DownloadedFlagValue); err != nil {
		logging.Error().Err(err).Str("product_id", product.ID).Msg("Failed to persist download flag")
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := o.client.TrackDownload(ctx, product.ID); err != nil {
			logging.Warn().Err(err).Str("product_id", product.ID).Msg("Download tracking failed")
		}
	}()
}

func (o *Orchestrator) runTransfer(ctx context.Context, product *catalog.Product, gen uint64) (bool, error) {
	result, err := o.client.Transfer(ctx, product.ID, func(loaded, total int64) {
		o.observeProgress(gen, loaded, total)
	})
	if err != nil {
		o.failTransfer(gen, err)
		return false, err
	}

	name := result.FileName
	if name == "" {
		name = product.FileName
	}
	if err := o.save(name, result.Data); err != nil {
		o.failTransfer(gen, err)
		return false, err
	}

	o.completeTransfer(gen)
	return true, nil
}

// observeProgress folds a byte-count notification into the state.
// Progress only moves forward within a transfer, and holds its last
// value when the total size is unknown.
func (o *Orchestrator) observeProgress(gen uint64, loaded, total int64) {
	if total <= 0 {
		return
	}

	o.mu.Lock()
	if gen != o.generation || !o.state.IsDownloading {
		o.mu.Unlock()
		return
	}
	pct := float64(loaded) / float64(total) * 100
	if pct > 100 {
		pct = 100
	}
	if pct <= o.state.Progress {
		o.mu.Unlock()
		return
	}
	o.state.Progress = pct
	snap := o.state
	o.mu.Unlock()

	if o.limiter.Allow() {
		o.notify(snap)
	}
}

func (o *Orchestrator) failTransfer(gen uint64, err error) {
	o.mu.Lock()
	if gen != o.generation {
		// Cancelled or superseded; the reset already happened.
		o.mu.Unlock()
		return
	}
	o.state.IsDownloading = false
	o.state.Err = err.Error()
	o.cancel = nil
	snap := o.state
	o.mu.Unlock()

	logging.Error().Err(err).Str("file_name", snap.FileName).Msg("Transfer failed")
	o.notify(snap)
}

// completeTransfer pins progress at 100 and holds that state for the
// grace window so a consumer can show completion before the reset.
func (o *Orchestrator) completeTransfer(gen uint64) {
	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return
	}
	o.state.Progress = 100
	o.cancel = nil
	snap := o.state
	o.mu.Unlock()
	o.notify(snap)

	time.AfterFunc(o.grace, func() {
		o.mu.Lock()
		if gen != o.generation {
			o.mu.Unlock()
			return
		}
		o.state = State{}
		reset := o.state
		o.mu.Unlock()
		o.notify(reset)
	})
}

func (o *Orchestrator) notify(s State) {
	if o.onChange != nil {
		o.onChange(s)
	}
}
