package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func TestColorProfile(t *testing.T) {
	var buf bytes.Buffer
	require.Equal(t, termenv.Ascii, ColorProfile(&buf, false), "non-terminal writer")
	require.Equal(t, termenv.Ascii, ColorProfile(&buf, true))

	t.Setenv("NO_COLOR", "1")
	require.Equal(t, termenv.Ascii, ColorProfile(&buf, false))
}

func TestVerdictPlain(t *testing.T) {
	ConfigureColor(&bytes.Buffer{}, true)
	require.Equal(t, "VALID", Verdict(true))
	require.Equal(t, "INVALID", Verdict(false))
}

func TestSpinnerWraps(t *testing.T) {
	require.Equal(t, Spinner(0), Spinner(len(SpinnerFrames)))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", Truncate("short", 10))
	require.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	require.Equal(t, "…", Truncate("abc", 1))
	require.Equal(t, "abc", Truncate("abc", 0))
}

func TestSectionHeader(t *testing.T) {
	ConfigureColor(&bytes.Buffer{}, true)
	h := SectionHeader("SUMMARY", ColorCyan)
	require.True(t, strings.HasPrefix(h, "─── SUMMARY "))
}

func TestRenderTitle(t *testing.T) {
	ConfigureColor(&bytes.Buffer{}, true)
	require.Contains(t, RenderTitle("main", "HEAD"), "main..HEAD")
}
