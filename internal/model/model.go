// пакет model служит для представления используемых моделей приложения
package model

import "time"

// Severity уровень важности уведомления
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ProbeStatus состояние проверки доступности изображения
type ProbeStatus string

const (
	ProbePending     ProbeStatus = "pending"
	ProbeAvailable   ProbeStatus = "available"
	ProbeUnavailable ProbeStatus = "unavailable"
)

// Links набор ссылок, построенных по одному идентификатору файла
type Links struct {
	FileID   string `json:"file_id"`
	Direct   string `json:"direct_url"`
	Download string `json:"download_url"`
	Proxy    string `json:"proxy_url"`
	HTML     string `json:"html"`
}

// Result результат одной обработки ссылки. Заменяется целиком при каждой новой обработке
type Result struct {
	Generation uint64      `json:"generation"`
	Input      string      `json:"input"`
	Links      Links       `json:"links"`
	Probe      ProbeStatus `json:"probe"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Notification уведомление для пользователя
type Notification struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// RequestLinks запрос на построение ссылок
type RequestLinks struct {
	URL string `json:"url,omitempty"`
}

// ResponseLinks ответ с построенными ссылками
type ResponseLinks struct {
	Result
	Notification *Notification `json:"notification,omitempty"`
}

// ResponseError ответ при ошибке обработки
type ResponseError struct {
	Error        string        `json:"error"`
	Notification *Notification `json:"notification,omitempty"`
}

// ResponseTheme ответ на переключение темы
type ResponseTheme struct {
	Theme        string        `json:"theme"`
	Notification *Notification `json:"notification,omitempty"`
}

// Stats статистика профиля
type Stats struct {
	PageViews     int64      `json:"page_views"`
	LastGenerated *time.Time `json:"last_generated,omitempty"`
	AppVersion    string     `json:"app_version"`
}

// AppInfo сведения о приложении для экспорта состояния
type AppInfo struct {
	Name            string   `json:"name"`
	Version         string   `json:"version"`
	SupportedFormat []string `json:"supported_formats"`
}

// ExportState выгрузка состояния профиля
type ExportState struct {
	App       AppInfo           `json:"app"`
	State     map[string]string `json:"state"`
	Current   *Result           `json:"current,omitempty"`
	Stats     Stats             `json:"stats"`
	Timestamp time.Time         `json:"timestamp"`
}

// StorageRecord структура для хранения в файле. Cleared означает сброс всех значений профиля
type StorageRecord struct {
	ProfileID string `json:"profile_id"`
	Key       string `json:"key,omitempty"`
	Value     string `json:"value,omitempty"`
	Cleared   bool   `json:"cleared,omitempty"`
}
