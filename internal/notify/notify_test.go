package notify

import (
	"bytes"
	"testing"

	"github.com/kTowkA/driveproxy/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowLevels(t *testing.T) {
	l, hook := test.NewNullLogger()
	p := WithLogger(l)

	tests := []struct {
		severity model.Severity
		level    logrus.Level
	}{
		{model.SeverityInfo, logrus.InfoLevel},
		{model.SeveritySuccess, logrus.InfoLevel},
		{model.SeverityWarning, logrus.WarnLevel},
		{model.SeverityError, logrus.ErrorLevel},
	}
	for _, tt := range tests {
		p.Show(model.Notification{Message: "сообщение", Severity: tt.severity})
		entry := hook.LastEntry()
		require.NotNil(t, entry, tt.severity)
		assert.Equal(t, tt.level, entry.Level, tt.severity)
		assert.Equal(t, "сообщение", entry.Message)
		assert.EqualValues(t, tt.severity, entry.Data["severity"])
	}
	assert.Len(t, hook.AllEntries(), len(tests))
}

func TestNewLogPresenter(t *testing.T) {
	buf := new(bytes.Buffer)
	var p Presenter = NewLogPresenter(buf)
	p.Show(model.Notification{Message: "Неверный формат ссылки Google Drive", Severity: model.SeverityWarning})
	assert.Contains(t, buf.String(), "Неверный формат ссылки Google Drive")
	assert.Contains(t, buf.String(), "severity=warning")
	assert.NotContains(t, buf.String(), "time=")
}
