package app

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/kTowkA/driveproxy/internal/model"
)

const (
	indexPage  = "index.html"
	viewerPage = "viewer.html"

	// exampleLink ссылка для кнопки "Пример"
	exampleLink = "https://drive.google.com/file/d/1c7GGrJgTjLkfV1vUq2gRyi1lL4H4t5X7/view"
)

//go:embed web/templates/*.html
var templatesFS embed.FS

//go:embed web/static
var staticFS embed.FS

// indexData данные главной страницы
type indexData struct {
	Theme         string
	Input         string
	Example       string
	Result        *model.Result
	PageViews     int64
	Notifications []model.Notification
}

// viewerData данные страницы просмотра. При ошибке Error не пустой
type viewerData struct {
	Theme  string
	FileID string
	Direct string
	Error  string
}

func parsePages() (*template.Template, error) {
	t, err := template.New("pages").Funcs(template.FuncMap{
		"probeText": probeText,
	}).ParseFS(templatesFS, "web/templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("разбор шаблонов страниц. %w", err)
	}
	return t, nil
}

func staticFiles() (fs.FS, error) {
	sub, err := fs.Sub(staticFS, "web/static")
	if err != nil {
		return nil, fmt.Errorf("статические файлы. %w", err)
	}
	return sub, nil
}

func probeText(status model.ProbeStatus) string {
	switch status {
	case model.ProbeAvailable:
		return "Изображение доступно ✓"
	case model.ProbeUnavailable:
		return "Ошибка загрузки ✗"
	default:
		return "Проверка доступности..."
	}
}

// render отрисовка страницы name со статусом status
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	buf := bytes.Buffer{}
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("отрисовка страницы", slog.String("страница", name), slog.String("ошибка", err.Error()))
		http.Error(w, "отрисовка страницы", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
