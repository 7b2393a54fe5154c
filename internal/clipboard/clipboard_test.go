package clipboard

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("терминал закрыт")
}

func TestCopySystem(t *testing.T) {
	var got string
	term := new(bytes.Buffer)
	w := NewWriter(
		WriterSystem(func(s string) error { got = s; return nil }),
		WriterTerminal(term),
	)
	require.NoError(t, w.Copy("https://drive.google.com/uc?export=view&id=1"))
	assert.Equal(t, "https://drive.google.com/uc?export=view&id=1", got)
	assert.Zero(t, term.Len())
}

func TestCopyFallback(t *testing.T) {
	term := new(bytes.Buffer)
	w := NewWriter(
		WriterSystem(func(string) error { return errors.New("нет xclip") }),
		WriterTerminal(term),
	)
	require.NoError(t, w.Copy("текст"))
	assert.Contains(t, term.String(), "\x1b]52;c;")
	assert.Contains(t, term.String(), base64.StdEncoding.EncodeToString([]byte("текст")))
}

func TestCopyDenied(t *testing.T) {
	w := NewWriter(
		WriterSystem(func(string) error { return errors.New("нет xclip") }),
		WriterTerminal(failWriter{}),
	)
	assert.ErrorIs(t, w.Copy("текст"), ErrDenied)

	w = NewWriter(
		WriterSystem(func(string) error { return errors.New("нет xclip") }),
		WriterTerminal(nil),
	)
	assert.ErrorIs(t, w.Copy("текст"), ErrDenied)
}
