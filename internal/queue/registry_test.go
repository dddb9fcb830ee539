package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openjuris/docketsync/common"
	"github.com/openjuris/docketsync/internal/config"
	"github.com/openjuris/docketsync/internal/dto"
)

func TestRegistry_ValidateOptions(t *testing.T) {
	reg := NewRegistry()
	Register[dto.DecisionSyncOptions](reg, config.SyncTypeDecision, func(ctx context.Context, opts dto.DecisionSyncOptions) error {
		return nil
	})

	tests := []struct {
		name        string
		syncType    config.SyncType
		options     json.RawMessage
		wantErr     bool
		errContains string
	}{
		{
			name:     "valid options",
			syncType: config.SyncTypeDecision,
			options:  json.RawMessage(`{"lookback_days":2,"batch_size":50}`),
		},
		{
			name:     "empty options use defaults",
			syncType: config.SyncTypeDecision,
			options:  nil,
		},
		{
			name:        "malformed json",
			syncType:    config.SyncTypeDecision,
			options:     json.RawMessage(`{not json}`),
			wantErr:     true,
			errContains: "invalid options format",
		},
		{
			name:        "out of range value",
			syncType:    config.SyncTypeDecision,
			options:     json.RawMessage(`{"lookback_days":99999}`),
			wantErr:     true,
			errContains: "options validation failed",
		},
		{
			name:        "unknown type",
			syncType:    config.SyncType("bogus"),
			options:     nil,
			wantErr:     true,
			errContains: "unknown sync type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.ValidateOptions(tt.syncType, tt.options)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				var apiErr common.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, 400, apiErr.Status)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRegistry_RunDecodesOptions(t *testing.T) {
	reg := NewRegistry()

	var got dto.JudgeSyncOptions
	Register[dto.JudgeSyncOptions](reg, config.SyncTypeJudge, func(ctx context.Context, opts dto.JudgeSyncOptions) error {
		got = opts
		return nil
	})

	err := reg.Run(context.Background(), config.SyncTypeJudge, json.RawMessage(`{"batch_size":25,"stale_only":true}`))
	require.NoError(t, err)
	assert.Equal(t, 25, got.BatchSize)
	assert.True(t, got.StaleOnly)
}

func TestRegistry_Types(t *testing.T) {
	reg := NewRegistry()
	assert.False(t, reg.Known(config.SyncTypeDecision))

	Register[dto.DecisionSyncOptions](reg, config.SyncTypeDecision, func(ctx context.Context, opts dto.DecisionSyncOptions) error {
		return nil
	})

	assert.True(t, reg.Known(config.SyncTypeDecision))
	assert.Len(t, reg.Types(), 1)
}
