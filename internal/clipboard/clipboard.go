// Package clipboard запись текста в буфер обмена.
//
// Сначала используется системный буфер обмена, при ошибке текст отправляется в терминал escape-последовательностью OSC 52.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// ErrDenied текст не удалось скопировать ни одним способом
var ErrDenied = errors.New("копирование в буфер обмена невозможно")

// Writer копирует текст в буфер обмена
type Writer struct {
	system   func(string) error
	terminal io.Writer
}

// WriterOption опции для Writer
type WriterOption func(*Writer)

// WriterSystem заменяет системный буфер обмена
func WriterSystem(f func(string) error) WriterOption {
	return func(w *Writer) {
		w.system = f
	}
}

// WriterTerminal куда писать последовательность OSC 52. nil отключает запасной способ
func WriterTerminal(t io.Writer) WriterOption {
	return func(w *Writer) {
		w.terminal = t
	}
}

// NewWriter по умолчанию системный буфер и stderr
func NewWriter(params ...WriterOption) *Writer {
	w := &Writer{
		system:   clipboard.WriteAll,
		terminal: os.Stderr,
	}
	for _, p := range params {
		p(w)
	}
	return w
}

// Copy копирует text. Возвращает ErrDenied, если не сработал ни один способ
func (w *Writer) Copy(text string) error {
	sysErr := w.system(text)
	if sysErr == nil {
		return nil
	}
	if w.terminal == nil {
		return fmt.Errorf("%w. %w", ErrDenied, sysErr)
	}
	if _, err := osc52.New(text).WriteTo(w.terminal); err != nil {
		return fmt.Errorf("%w. %w. %w", ErrDenied, sysErr, err)
	}
	return nil
}
