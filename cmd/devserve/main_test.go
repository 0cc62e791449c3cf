package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kush-Singh-26/devserve/internal/config"
)

func TestRun_Usage(t *testing.T) {
	for _, args := range [][]string{nil, {"a", "b"}, {"-port", "9000", "www"}} {
		err := run(args)
		require.Error(t, err)
		assert.True(t, errors.Is(err, config.ErrUsage), "args %v: %v", args, err)
	}
}

func TestRun_MissingRoot(t *testing.T) {
	err := run([]string{filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.False(t, errors.Is(err, config.ErrUsage))
}
