package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/inkpost/imgup/internal/config"
	"github.com/inkpost/imgup/internal/transport"
)

// ErrAborted is the terminal outcome of an upload cancelled through Abort. It
// deliberately carries no further detail.
var ErrAborted = errors.New("upload aborted")

// Loader is the host-side collaborator for one upload: it hands over the file
// and receives progress while the body is in flight.
type Loader interface {
	File(ctx context.Context) (transport.File, error)
	SetProgress(uploaded, total int64)
}

// Result is handed to the host on success. Default is the address the
// uploaded image resolves at.
type Result struct {
	Default string `json:"default"`
}

type state int

const (
	stateIdle state = iota
	stateInFlight
	stateSettled
)

// Adapter drives exactly one file upload to completion, failure or
// cancellation. Create a fresh Adapter per attempt; concurrent adapters are
// fully independent.
type Adapter struct {
	baseAPIURL string
	api        string
	tokens     config.TokenProvider
	loader     Loader
	transport  transport.Transport

	mu           sync.Mutex
	state        state
	aborted      bool
	cancel       context.CancelFunc
	lastUploaded int64
}

// New binds an adapter to a loader and a one-shot transport. Most callers go
// through a Factory instead.
func New(cfg *config.Config, loader Loader, tr transport.Transport) *Adapter {
	return &Adapter{
		baseAPIURL: cfg.BaseAPIURL,
		api:        cfg.API,
		tokens:     cfg.Tokens,
		loader:     loader,
		transport:  tr,
	}
}

// Upload performs the attempt and settles exactly once: a Result on success,
// ErrAborted after cancellation, or an error carrying either the backend's
// message or the generic fallback. There is no retry; a failed attempt is
// final.
func (a *Adapter) Upload(ctx context.Context) (*Result, error) {
	a.mu.Lock()
	if a.state != stateIdle {
		a.mu.Unlock()
		return nil, errors.New("adapter already used")
	}
	ctx, cancel := context.WithCancel(ctx)
	a.state = stateInFlight
	a.cancel = cancel
	a.mu.Unlock()
	defer cancel()

	result, err := a.run(ctx)

	a.mu.Lock()
	a.state = stateSettled
	a.mu.Unlock()

	return result, err
}

func (a *Adapter) run(ctx context.Context) (*Result, error) {
	file, err := a.loader.File(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ErrAborted
		}
		return nil, fmt.Errorf("failed to read upload file: %w", err)
	}

	token, err := a.tokens.AuthToken()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch auth token: %w", err)
	}

	req := &transport.Request{
		File:       file,
		BaseAPIURL: a.baseAPIURL,
		API:        a.api,
		AuthToken:  token,
	}

	outcome := a.transport.Send(ctx, req, a.forwardProgress)

	switch outcome.Kind {
	case transport.Aborted:
		return nil, ErrAborted
	case transport.Errored:
		return nil, genericError(file.Name)
	}

	resp := outcome.Response
	if resp == nil {
		return nil, genericError(file.Name)
	}
	if resp.Error != nil {
		if resp.Error.Message != "" {
			return nil, errors.New(resp.Error.Message)
		}
		return nil, genericError(file.Name)
	}

	// An error-free response counts as success even without an imageId; the
	// resulting address just carries an empty trailing segment.
	return &Result{Default: imageURL(a.baseAPIURL, a.api, resp.ImageID)}, nil
}

// Abort cancels the in-flight request. Before Upload starts, or after the
// attempt has settled, it does nothing.
func (a *Adapter) Abort() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == stateInFlight && a.cancel != nil {
		a.aborted = true
		a.cancel()
	}
}

// forwardProgress relays length-computable progress to the loader. Updates
// stop once the attempt is aborted or settled and never move backwards.
func (a *Adapter) forwardProgress(uploaded, total int64) {
	a.mu.Lock()
	if a.state != stateInFlight || a.aborted || total <= 0 || uploaded < a.lastUploaded {
		a.mu.Unlock()
		return
	}
	a.lastUploaded = uploaded
	a.mu.Unlock()

	// The loader is called outside the lock so it may call back into Abort.
	a.loader.SetProgress(uploaded, total)
}

// genericError is the host-facing fallback when the backend gives no reason of
// its own. The wording is part of the adapter contract.
func genericError(name string) error {
	return fmt.Errorf("Couldn't upload file: %s.", name)
}

func imageURL(base, api, imageID string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(base, "/"), api, imageID)
}
