package drive

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/kTowkA/driveproxy/internal/model"
)

const (
	driveHost  = "https://drive.google.com"
	viewerPage = "viewer.html"
	imageAlt   = "Описание изображения"

	minIDLength = 25
	maxIDLength = 50
)

var validID = regexp.MustCompile(fmt.Sprintf(`^[a-zA-Z0-9_-]{%d,%d}$`, minIDLength, maxIDLength))

// Validate проверяет, что id похож на идентификатор файла Google Drive
func Validate(id string) error {
	if !validID.MatchString(id) {
		return fmt.Errorf("%w: \"%s\"", ErrInvalidIdentifier, id)
	}
	return nil
}

// DirectURL прямая ссылка на просмотр файла
func DirectURL(id string) string {
	return driveHost + "/uc?export=view&id=" + url.QueryEscape(id)
}

// DownloadURL ссылка на скачивание файла
func DownloadURL(id string) string {
	return driveHost + "/uc?export=download&id=" + url.QueryEscape(id)
}

// ViewURL ссылка на страницу файла в Google Drive
func ViewURL(id string) string {
	return driveHost + "/file/d/" + url.PathEscape(id) + "/view"
}

// ProxyURL ссылка на страницу просмотра этого приложения.
// Из адреса текущей страницы pageURL убирается имя файла, запрос и фрагмент
func ProxyURL(pageURL, id string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("разбор адреса страницы \"%s\". %w", pageURL, err)
	}
	dir := u.Path
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		dir = dir[:i+1]
	} else {
		dir = "/"
	}
	u.Path = dir + viewerPage
	u.RawPath = ""
	u.RawQuery = url.Values{"id": {id}}.Encode()
	u.Fragment = ""
	return u.String(), nil
}

// ImageTag html-код для встраивания изображения по ссылке src
func ImageTag(src string) string {
	return fmt.Sprintf(`<img src="%s" alt="%s">`, html.EscapeString(src), imageAlt)
}

// Generate строит все ссылки для идентификатора id. pageURL адрес текущей страницы приложения.
// Невалидный идентификатор не обрабатывается и возвращается ErrInvalidIdentifier
func Generate(id, pageURL string) (model.Links, error) {
	if err := Validate(id); err != nil {
		return model.Links{}, err
	}
	proxy, err := ProxyURL(pageURL, id)
	if err != nil {
		return model.Links{}, err
	}
	direct := DirectURL(id)
	return model.Links{
		FileID:   id,
		Direct:   direct,
		Download: DownloadURL(id),
		Proxy:    proxy,
		HTML:     ImageTag(direct),
	}, nil
}

// Resolve извлекает идентификатор из raw и строит по нему ссылки.
// Ошибки ErrNotFound и ErrInvalidIdentifier для пользователя означают одно и то же
func Resolve(raw, pageURL string) (model.Links, error) {
	id, err := Extract(raw)
	if err != nil {
		return model.Links{}, err
	}
	return Generate(id, pageURL)
}
