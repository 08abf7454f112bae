package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := Default()
	require.Equal(t, ":8080", s.ListenAddr)
	require.Equal(t, 1, s.NumberPrecision)
	require.Equal(t, 0, s.MaxCalcIterations)
}

func TestFromEnvOverridesDefaults(t *testing.T) {
	t.Setenv("CELLWISE_LISTEN_ADDR", ":9090")
	t.Setenv("CELLWISE_NUMBER_PRECISION", "3")

	s := FromEnv()
	require.Equal(t, ":9090", s.ListenAddr)
	require.Equal(t, 3, s.NumberPrecision)
}
