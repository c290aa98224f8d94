package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractYouTubeID(t *testing.T) {
	cases := map[string]string{
		"https://youtu.be/dQw4w9WgXcQ":                    "dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":     "dQw4w9WgXcQ",
		"https://youtube.com/watch?v=abc123&t=42s":        "abc123",
		"https://www.youtube.com/shorts/xyz789":           "xyz789",
		"https://www.youtube.com/embed/abc123":            "abc123",
		"https://www.youtube.com/live/stream42?feature=s": "stream42",
	}
	for input, want := range cases {
		got, err := ExtractYouTubeID(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got, input)
	}
}

func TestExtractYouTubeIDRejectsNonVideoURLs(t *testing.T) {
	for _, input := range []string{
		"https://www.youtube.com/",
		"https://example.com/watch?v=abc",
		"https://youtu.be/",
	} {
		_, err := ExtractYouTubeID(input)
		require.Error(t, err, input)
	}
}

func TestDetectPlatform(t *testing.T) {
	require.Equal(t, "twitter", DetectPlatform("https://twitter.com/user/status/123"))
	require.Equal(t, "twitter", DetectPlatform("https://x.com/user/status/123"))
	require.Equal(t, "twitter", DetectPlatform("https://mobile.twitter.com/user/status/123"))
	require.Equal(t, "youtube", DetectPlatform("https://youtu.be/abc"))
	require.Equal(t, "youtube", DetectPlatform("https://example.com/whatever"))
}

func TestShortHashIsStable(t *testing.T) {
	h := ShortHash("https://youtu.be/abc")
	require.Len(t, h, 10)
	require.Equal(t, h, ShortHash("https://youtu.be/abc"))
	require.NotEqual(t, h, ShortHash("https://youtu.be/def"))
}

func TestNewPostID(t *testing.T) {
	a := NewPostID()
	b := NewPostID()
	require.Len(t, a, 12)
	require.NotEqual(t, a, b)
	require.NotContains(t, a, "-")
}
