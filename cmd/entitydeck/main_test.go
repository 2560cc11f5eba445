package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/entitydeck/internal/cli"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version)
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version)
		assert.NotNil(t, root)
		assert.Equal(t, "entitydeck", root.Use)
		assert.Equal(t, version, root.Version)
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: exitOK},
		{name: "generic error", err: errors.New("boom"), want: exitError},
		{name: "interrupted", err: context.Canceled, want: exitInterrupted},
		{name: "wrapped interrupt", err: fmt.Errorf("fetching pages: %w", context.Canceled), want: exitInterrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
