package xscope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevel_ParseRoundTrip(t *testing.T) {
	for _, l := range Levels() {
		require.True(t, l.Valid())
		parsed, err := ParseLevel(l.String())
		require.NoError(t, err)
		require.Equal(t, l, parsed)

		text, err := l.MarshalText()
		require.NoError(t, err)
		var back Level
		require.NoError(t, back.UnmarshalText(text))
		require.Equal(t, l, back)
	}
	w, err := ParseLevel(" Warning ")
	require.NoError(t, err)
	require.Equal(t, LevelWarn, w)
}

func TestLevel_Invalid(t *testing.T) {
	var zero Level
	require.False(t, zero.Valid())
	require.Equal(t, "Level(0)", zero.String())
	_, err := zero.MarshalText()
	require.Error(t, err)
	_, err = ParseLevel("fatal")
	require.Error(t, err)
}

func TestLevel_Ordering(t *testing.T) {
	levels := Levels()
	for i := 1; i < len(levels); i++ {
		require.Less(t, levels[i-1], levels[i])
	}
}
