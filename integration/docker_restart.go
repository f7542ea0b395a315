//go:build integration
// +build integration

package integration

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

// restartService bounces the compose service so the test can check that the
// backup restores what was saved on shutdown.
func restartService(t *testing.T, ctx context.Context) {
	t.Helper()

	service := getenv("E2E_SERVICE", "itemstore")
	cmd := exec.CommandContext(ctx, "docker", "compose", "restart", service)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "docker compose restart %s\n%s", service, out)
}
