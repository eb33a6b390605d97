package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitOtelDisabled(t *testing.T) {
	shutdown, err := InitOtel(context.Background(), "")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
