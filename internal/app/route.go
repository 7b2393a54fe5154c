package app

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kTowkA/driveproxy/internal/controller"
	"github.com/kTowkA/driveproxy/internal/drive"
	"github.com/kTowkA/driveproxy/internal/model"
	"github.com/kTowkA/driveproxy/internal/probe"
	"github.com/kTowkA/driveproxy/internal/utils"
)

const (
	// colorSchemeHint клиентская подсказка о предпочитаемой теме
	colorSchemeHint = "Sec-CH-Prefers-Color-Scheme"
	// maxBodySize предельный размер тела запроса со ссылкой
	maxBodySize = 1 << 20
)

var (
	welcomeNotification = model.Notification{
		Message:  "Добро пожаловать! Вставьте ссылку Google Drive для создания прокси-ссылки.",
		Severity: model.SeverityInfo,
	}
	emptyNotification = model.Notification{
		Message:  "Введите ссылку Google Drive",
		Severity: model.SeverityWarning,
	}
	createdNotification = model.Notification{
		Message:  "Ссылки созданы",
		Severity: model.SeveritySuccess,
	}
	resetNotification = model.Notification{
		Message:  "Данные сброшены",
		Severity: model.SeveritySuccess,
	}
)

// index главная страница
func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID := s.profile(r)

	w.Header().Set("Accept-CH", colorSchemeHint)
	w.Header().Add("Vary", colorSchemeHint)

	views, err := utils.TrackPageView(ctx, s.db, profileID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	theme, err := utils.Theme(ctx, s.db, profileID, r.Header.Get(colorSchemeHint))
	if err != nil {
		s.internalError(w, err)
		return
	}
	data := indexData{
		Theme:     theme,
		Example:   exampleLink,
		PageViews: views,
	}

	welcome, err := utils.Welcome(ctx, s.db, profileID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if welcome {
		data.Notifications = append(data.Notifications, welcomeNotification)
	}

	q := r.URL.Query()
	submitted := false
	switch {
	case strings.TrimSpace(q.Get("url")) != "":
		submitted = true
		data.Input = q.Get("url")
		result, err := s.ctrl.Submit(ctx, profileID, data.Input, s.pageURL(r))
		if err != nil {
			if !badLink(err) {
				s.internalError(w, err)
				return
			}
			data.Notifications = append(data.Notifications, controller.Notification(err))
			break
		}
		data.Result = &result
		data.Notifications = append(data.Notifications, createdNotification)
	case q.Get("id") != "":
		result, err := s.ctrl.Open(ctx, profileID, q.Get("id"), s.pageURL(r))
		if err != nil {
			if !badLink(err) {
				s.internalError(w, err)
				return
			}
			// невалидный идентификатор из адреса страницы просто игнорируется
			s.logger.Debug("идентификатор из запроса", slog.String("ошибка", err.Error()))
			break
		}
		submitted = true
		data.Result = &result
		data.Input = result.Input
	}

	if !submitted {
		data.Input, err = utils.LastInput(ctx, s.db, profileID)
		if err != nil {
			s.internalError(w, err)
			return
		}
		if current, ok := s.ctrl.Current(profileID); ok {
			data.Result = &current
		}
	}

	s.render(w, http.StatusOK, indexPage, data)
}

// viewer страница просмотра изображения по идентификатору
func (s *Server) viewer(w http.ResponseWriter, r *http.Request) {
	theme, err := utils.Theme(r.Context(), s.db, s.profile(r), r.Header.Get(colorSchemeHint))
	if err != nil {
		s.internalError(w, err)
		return
	}
	id := r.URL.Query().Get("id")
	if err := drive.Validate(id); err != nil {
		s.render(w, http.StatusBadRequest, viewerPage, viewerData{
			Theme: theme,
			Error: "Неверный идентификатор файла Google Drive",
		})
		return
	}
	s.render(w, http.StatusOK, viewerPage, viewerData{
		Theme:  theme,
		FileID: id,
		Direct: drive.DirectURL(id),
	})
}

// redirectImage перенаправление на прямую ссылку изображения
func (s *Server) redirectImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := drive.Validate(id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, drive.DirectURL(id), http.StatusTemporaryRedirect)
}

// encodeLink обработчик ссылки в теле text/plain. Ответ - прямая ссылка на изображение
func (s *Server) encodeLink(w http.ResponseWriter, r *http.Request) {
	// проверяем, что контент тайп нужный
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "text/plain") {
		http.Error(w, fmt.Sprintf("разрешенные типы контента: %v", []string{"text/plain"}), http.StatusBadRequest)
		return
	}

	// проверяем, что тело существует
	if r.Body == nil {
		http.Error(w, "пустой запрос", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// читаем тело до первой непустой строки
	sc := bufio.NewScanner(http.MaxBytesReader(w, r.Body, maxBodySize))
	link := ""
	for sc.Scan() {
		link = strings.TrimSpace(sc.Text())
		if link != "" {
			break
		}
	}
	if err := sc.Err(); err != nil {
		http.Error(w, fmt.Sprintf("чтение запроса. %v", err), http.StatusBadRequest)
		return
	}

	if link == "" {
		http.Error(w, "пустой запрос", http.StatusBadRequest)
		return
	}

	result, err := s.ctrl.Submit(r.Context(), s.profile(r), link, s.pageURL(r))
	if err != nil {
		if badLink(err) {
			http.Error(w, controller.Notification(err).Message, http.StatusBadRequest)
			return
		}
		s.internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte(result.Links.Direct))
}

// apiLinks построение ссылок по запросу в формате json
func (s *Server) apiLinks(w http.ResponseWriter, r *http.Request) {
	// проверяем, что тело существует
	if r.Body == nil {
		s.writeJSON(w, http.StatusBadRequest, model.ResponseError{Error: "пустой запрос", Notification: &emptyNotification})
		return
	}

	buf := bytes.Buffer{}
	if _, err := buf.ReadFrom(http.MaxBytesReader(w, r.Body, maxBodySize)); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.writeJSON(w, status, model.ResponseError{Error: fmt.Sprintf("чтение запроса. %v", err)})
		return
	}

	req := model.RequestLinks{}
	if err := json.Unmarshal(buf.Bytes(), &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, model.ResponseError{Error: err.Error()})
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.writeJSON(w, http.StatusBadRequest, model.ResponseError{Error: "пустая ссылка", Notification: &emptyNotification})
		return
	}

	result, err := s.ctrl.Submit(r.Context(), s.profile(r), req.URL, s.pageURL(r))
	if err != nil {
		if badLink(err) {
			n := controller.Notification(err)
			s.writeJSON(w, http.StatusBadRequest, model.ResponseError{Error: err.Error(), Notification: &n})
			return
		}
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, model.ResponseLinks{Result: result, Notification: &createdNotification})
}

// apiCurrent последний результат профиля вместе с состоянием проверки изображения
func (s *Server) apiCurrent(w http.ResponseWriter, r *http.Request) {
	result, ok := s.ctrl.Current(s.profile(r))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	resp := model.ResponseLinks{Result: result}
	if result.Probe == model.ProbeUnavailable {
		n := controller.Notification(probe.ErrUnreachable)
		resp.Notification = &n
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) apiTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := utils.ToggleTheme(r.Context(), s.db, s.profile(r), r.Header.Get(colorSchemeHint))
	if err != nil {
		s.internalError(w, err)
		return
	}
	n := utils.ThemeNotification(theme)
	s.writeJSON(w, http.StatusOK, model.ResponseTheme{Theme: theme, Notification: &n})
}

func (s *Server) apiStats(w http.ResponseWriter, r *http.Request) {
	stats, err := utils.Stats(r.Context(), s.db, s.profile(r))
	if err != nil {
		s.logger.Error("запрос статистики", slog.String("ошибка", err.Error()))
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) apiExport(w http.ResponseWriter, r *http.Request) {
	profileID := s.profile(r)
	var current *model.Result
	if result, ok := s.ctrl.Current(profileID); ok {
		current = &result
	}
	now := time.Now()
	state, err := utils.Export(r.Context(), s.db, profileID, current, now)
	if err != nil {
		s.internalError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"drive-proxy-export-%d.json\"", now.UnixMilli()))
	s.writeJSON(w, http.StatusOK, state)
}

// apiReset сброс всех данных профиля
func (s *Server) apiReset(w http.ResponseWriter, r *http.Request) {
	profileID := s.profile(r)
	if err := s.db.Clear(r.Context(), profileID); err != nil {
		s.internalError(w, err)
		return
	}
	s.ctrl.Forget(profileID)
	s.writeJSON(w, http.StatusOK, resetNotification)
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// profile ID профиля запроса. Без withToken каждый запрос получает новый профиль
func (s *Server) profile(r *http.Request) uuid.UUID {
	if profileID, ok := profileFromContext(r.Context()); ok {
		return profileID
	}
	return uuid.New()
}

// pageURL адрес страницы приложения, от которого строится ссылка на просмотр
func (s *Server) pageURL(r *http.Request) string {
	if base := s.Config.BaseAddress(); base != "" {
		return base
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	// от прокси принимаем только известные схемы
	switch proto := strings.ToLower(r.Header.Get("X-Forwarded-Proto")); proto {
	case "http", "https":
		scheme = proto
	}
	return scheme + "://" + r.Host + "/"
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	resp, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(resp)
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("обработка запроса", slog.String("ошибка", err.Error()))
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// badLink ошибка во введенной пользователем ссылке
func badLink(err error) bool {
	return errors.Is(err, drive.ErrNotFound) || errors.Is(err, drive.ErrInvalidIdentifier)
}
