package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kTowkA/driveproxy/internal/model"
	"github.com/kTowkA/driveproxy/internal/storage"
	"github.com/kTowkA/driveproxy/internal/storage/memory"
	mocks "github.com/kTowkA/driveproxy/internal/storage/mocs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) storage.Storager {
	st, err := memory.NewStorage("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestTrackPageView(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	user := uuid.New()

	for i := int64(1); i <= 2; i++ {
		views, err := TrackPageView(ctx, store, user)
		require.NoError(t, err)
		assert.EqualValues(t, i, views)
	}

	broken := mocks.NewStorager(t)
	broken.On("Incr", mock.Anything, user, storage.KeyPageViews).Return(int64(0), errors.New("incr error")).Once()
	_, err := TrackPageView(ctx, broken, user)
	assert.Error(t, err)
}

func TestRememberInput(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	user := uuid.New()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	last, err := LastInput(ctx, store, user)
	require.NoError(t, err)
	assert.Empty(t, last)

	require.NoError(t, RememberInput(ctx, store, user, "https://drive.google.com/file/d/x/view", now))
	last, err = LastInput(ctx, store, user)
	require.NoError(t, err)
	assert.Equal(t, "https://drive.google.com/file/d/x/view", last)

	// пустой ввод не затирает сохраненную ссылку
	require.NoError(t, RememberInput(ctx, store, user, "", now.Add(time.Minute)))
	last, err = LastInput(ctx, store, user)
	require.NoError(t, err)
	assert.Equal(t, "https://drive.google.com/file/d/x/view", last)

	stats, err := Stats(ctx, store, user)
	require.NoError(t, err)
	require.NotNil(t, stats.LastGenerated)
	assert.True(t, now.Add(time.Minute).Equal(*stats.LastGenerated))
}

func TestTheme(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	tests := []struct {
		name   string
		stored string
		hint   string
		want   string
		toggle string
	}{
		{"по умолчанию светлая", "", "", ThemeLight, ThemeDark},
		{"подсказка клиента", "", "dark", ThemeDark, ThemeLight},
		{"сохраненная важнее подсказки", ThemeLight, "dark", ThemeLight, ThemeDark},
		{"мусор в хранилище", "blue", "", ThemeLight, ThemeDark},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := uuid.New()
			if tt.stored != "" {
				require.NoError(t, store.Set(ctx, user, storage.KeyTheme, tt.stored))
			}
			theme, err := Theme(ctx, store, user, tt.hint)
			require.NoError(t, err)
			assert.Equal(t, tt.want, theme)

			next, err := ToggleTheme(ctx, store, user, tt.hint)
			require.NoError(t, err)
			assert.Equal(t, tt.toggle, next)

			theme, err = Theme(ctx, store, user, tt.hint)
			require.NoError(t, err)
			assert.Equal(t, tt.toggle, theme)
		})
	}
}

func TestThemeNotification(t *testing.T) {
	assert.Equal(t, model.Notification{Message: "Тема изменена на темную", Severity: model.SeverityInfo}, ThemeNotification(ThemeDark))
	assert.Equal(t, "Тема изменена на светлую", ThemeNotification(ThemeLight).Message)
}

func TestWelcome(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	user := uuid.New()

	first, err := Welcome(ctx, store, user)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := Welcome(ctx, store, user)
	require.NoError(t, err)
	assert.False(t, again)

	broken := mocks.NewStorager(t)
	broken.On("Get", mock.Anything, user, storage.KeySeenWelcome).Return("", errors.New("get error")).Once()
	_, err = Welcome(ctx, broken, user)
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	user := uuid.New()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	_, err := TrackPageView(ctx, store, user)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, user, storage.KeyTheme, ThemeDark))

	current := &model.Result{Generation: 3, Probe: model.ProbeAvailable}
	state, err := Export(ctx, store, user, current, now)
	require.NoError(t, err)
	assert.Equal(t, AppVersion, state.App.Version)
	assert.Equal(t, AppName, state.App.Name)
	assert.Contains(t, state.App.SupportedFormat, "png")
	assert.Equal(t, map[string]string{storage.KeyPageViews: "1", storage.KeyTheme: ThemeDark}, state.State)
	assert.Equal(t, current, state.Current)
	assert.EqualValues(t, 1, state.Stats.PageViews)
	assert.Nil(t, state.Stats.LastGenerated)
	assert.Equal(t, now, state.Timestamp)
}
