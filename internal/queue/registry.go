package queue

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/openjuris/docketsync/common"
	"github.com/openjuris/docketsync/internal/config"
	"github.com/openjuris/docketsync/middleware"
)

var validate = validator.New()

// Handler executes one sync routine with its decoded options payload.
type Handler func(ctx context.Context, options json.RawMessage) error

type registration struct {
	validate func(raw json.RawMessage) error
	run      Handler
}

// Registry is the closed set of job types the queue can run. Each type maps
// to a handler plus an options schema; options are checked both when a job
// is enqueued (fail fast) and again when it is claimed.
type Registry struct {
	mu      sync.RWMutex
	entries map[config.SyncType]registration
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[config.SyncType]registration)}
}

// Register binds a sync type to a handler. The options schema O supplies
// validator tags; an empty payload is treated as all defaults.
func Register[O any](r *Registry, syncType config.SyncType, run func(ctx context.Context, opts O) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[syncType] = registration{
		validate: func(raw json.RawMessage) error {
			_, err := decodeOptions[O](raw)
			return err
		},
		run: func(ctx context.Context, raw json.RawMessage) error {
			opts, err := decodeOptions[O](raw)
			if err != nil {
				return err
			}
			return run(ctx, opts)
		},
	}
}

func decodeOptions[O any](raw json.RawMessage) (O, error) {
	var opts O
	if len(raw) == 0 {
		return opts, nil
	}

	if err := json.Unmarshal(raw, &opts); err != nil {
		return opts, common.APIError{
			Status:  http.StatusBadRequest,
			Message: "invalid options format",
		}
	}

	if err := validate.Struct(opts); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			return opts, common.APIError{
				Status:  http.StatusBadRequest,
				Message: "options validation failed",
				Fields:  middleware.FormatValidationErrors(verrs),
			}
		}
		return opts, common.ValidationErr("options validation failed")
	}

	return opts, nil
}

// Known reports whether a sync type has a registered handler.
func (r *Registry) Known(syncType config.SyncType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[syncType]
	return ok
}

// Types lists registered sync types.
func (r *Registry) Types() []config.SyncType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]config.SyncType, 0, len(r.entries))
	for t := range r.entries {
		types = append(types, t)
	}
	return types
}

// ValidateOptions checks an options payload against the type's schema.
func (r *Registry) ValidateOptions(syncType config.SyncType, raw json.RawMessage) error {
	r.mu.RLock()
	entry, ok := r.entries[syncType]
	r.mu.RUnlock()
	if !ok {
		return common.ValidationErr("unknown sync type: %s", syncType)
	}
	return entry.validate(raw)
}

// Run dispatches to the type's handler, re-validating options at claim time.
func (r *Registry) Run(ctx context.Context, syncType config.SyncType, raw json.RawMessage) error {
	r.mu.RLock()
	entry, ok := r.entries[syncType]
	r.mu.RUnlock()
	if !ok {
		return common.ValidationErr("unknown sync type: %s", syncType)
	}
	return entry.run(ctx, raw)
}
