package telegram

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	app "leaf-counter/internal/application"
	"leaf-counter/internal/domain/entity"
)

func TestParseConfidence(t *testing.T) {
	v, err := parseConfidence(" 0,35 ")
	require.NoError(t, err)
	require.Equal(t, 0.35, v)

	_, err = parseConfidence("2")
	require.Error(t, err)

	_, err = parseConfidence("")
	require.Error(t, err)
}

func TestFormatCaption(t *testing.T) {
	caption := formatCaption(&entity.AggregateResult{Count: 3, TotalPixels: 1234, Width: 640, Height: 480})
	require.Contains(t, caption, "Листьев: 3")
	require.Contains(t, caption, "1234")
	require.Contains(t, caption, "640x480")

	require.Contains(t, formatCaption(&entity.AggregateResult{Width: 1, Height: 1}), "не найдены")
}

func TestErrorMessage(t *testing.T) {
	require.Equal(t, msgBadImage, errorMessage(errors.Wrap(entity.ErrResourceUnavailable, "decode")))
	require.Equal(t, msgBadImage, errorMessage(entity.ErrInvalidInput))
	require.Equal(t, msgBusy, errorMessage(app.ErrQueueFull))
	require.Equal(t, msgProcessingError, errorMessage(errors.New("boom")))
}

func TestReadLimited(t *testing.T) {
	data, err := readLimited(strings.NewReader("12345"), 5)
	require.NoError(t, err)
	require.Equal(t, []byte("12345"), data)

	_, err = readLimited(strings.NewReader("123456"), 5)
	require.ErrorIs(t, err, errTooLarge)

	big := bytes.Repeat([]byte{1}, 1<<16)
	data, err = readLimited(bytes.NewReader(big), 0)
	require.NoError(t, err)
	require.Len(t, data, 1<<16)
}
