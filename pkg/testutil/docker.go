package testutil

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/datusai/datus-clickhouse/pkg/docker"
	"github.com/stretchr/testify/require"
)

// SkipIfNoDocker skips the test in -short mode or when no Docker daemon is
// reachable.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping Docker tests in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("Docker not available")
	}
	if err := exec.Command("docker", "ps").Run(); err != nil {
		t.Skip("Docker daemon not running")
	}
}

// StartClickHouse starts a ClickHouse container for the duration of the test.
// Use ConnectionConfig or HTTPConnectionConfig on the result to reach it.
func StartClickHouse(t *testing.T, opts docker.DockerOptions) *docker.Container {
	t.Helper()
	SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	container := docker.NewWithOptions(opts)
	require.NoError(t, container.Start(ctx))
	t.Cleanup(func() { _ = container.Stop(context.Background()) })

	return container
}
