// Package drive извлекает идентификатор файла из ссылок Google Drive и строит по нему ссылки для встраивания.
package drive

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrNotFound          = errors.New("идентификатор файла не найден")
	ErrInvalidIdentifier = errors.New("невалидный идентификатор файла")
)

// patterns порядок важен: более конкретные шаблоны проверяются раньше общего
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)/`),
	regexp.MustCompile(`([a-zA-Z0-9_-]{25,})`),
}

// Extract возвращает идентификатор файла из ссылки raw по первому совпавшему шаблону.
// Если ни один шаблон не подошел, возвращается ErrNotFound
func Extract(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNotFound
	}
	for _, p := range patterns {
		m := p.FindStringSubmatch(raw)
		if len(m) > 1 && m[1] != "" {
			return m[1], nil
		}
	}
	return "", ErrNotFound
}
