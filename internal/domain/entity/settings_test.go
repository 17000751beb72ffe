package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewChatSettings_Defaults(t *testing.T) {
	s := NewChatSettings(10, 0.25, FormatJPEG)
	require.Equal(t, int64(10), s.ChatID)
	require.Equal(t, 0.25, s.Confidence)
	require.Equal(t, FormatJPEG, s.Format)
}

func TestChatSettings_SetConfidence(t *testing.T) {
	s := NewChatSettings(1, 0.25, FormatPNG)
	require.NoError(t, s.SetConfidence(0.6))
	require.Equal(t, 0.6, s.Confidence)

	err := s.SetConfidence(1.5)
	require.True(t, errors.Is(err, ErrInvalidInput))
	require.Equal(t, 0.6, s.Confidence)
}

func TestParseOutputFormat(t *testing.T) {
	f, err := ParseOutputFormat(".JPG")
	require.NoError(t, err)
	require.Equal(t, FormatJPEG, f)

	f, err = ParseOutputFormat("png")
	require.NoError(t, err)
	require.Equal(t, FormatPNG, f)

	_, err = ParseOutputFormat("gif")
	require.ErrorIs(t, err, ErrInvalidInput)
}
