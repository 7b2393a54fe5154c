package drive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "1c7GGrJgTjLkfV1vUq2gRyi1lL4H4t5X7"

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{
			name: "ссылка на файл",
			raw:  "https://drive.google.com/file/d/" + testID + "/view",
			want: testID,
		},
		{
			name: "ссылка на файл с параметрами",
			raw:  "https://drive.google.com/file/d/" + testID + "/view?usp=sharing",
			want: testID,
		},
		{
			name: "ссылка open?id",
			raw:  "https://drive.google.com/open?id=" + testID,
			want: testID,
		},
		{
			name: "ссылка uc?id с параметром после id",
			raw:  "https://drive.google.com/uc?id=" + testID + "&export=download",
			want: testID,
		},
		{
			name: "документ /d/",
			raw:  "https://docs.google.com/document/d/" + testID + "/edit",
			want: testID,
		},
		{
			name: "короткий id в пути к файлу берется как есть",
			raw:  "https://drive.google.com/file/d/abc/view",
			want: "abc",
		},
		{
			name: "путь к файлу важнее параметра id",
			raw:  "https://drive.google.com/file/d/" + testID + "/view?id=other",
			want: testID,
		},
		{
			name: "голый идентификатор",
			raw:  testID,
			want: testID,
		},
		{
			name: "голый идентификатор с пробелами",
			raw:  "  \t" + testID + "\n",
			want: testID,
		},
		{
			name:    "пустая строка",
			raw:     "",
			wantErr: ErrNotFound,
		},
		{
			name:    "только пробелы",
			raw:     "   \t\n",
			wantErr: ErrNotFound,
		},
		{
			name:    "не ссылка",
			raw:     "not a link",
			wantErr: ErrNotFound,
		},
		{
			name:    "короткая строка без шаблона",
			raw:     "abcdefghijklmnopqrstuvwx",
			wantErr: ErrNotFound,
		},
		{
			name:    "посторонняя ссылка",
			raw:     "https://example.com/some/page",
			wantErr: ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.raw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFileLinkLengths(t *testing.T) {
	for n := minIDLength; n <= maxIDLength; n++ {
		id := strings.Repeat("a", n-2) + "_-"
		got, err := Extract("https://drive.google.com/file/d/" + id + "/view?usp=drive_link")
		require.NoError(t, err, n)
		assert.Equal(t, id, got, n)
	}
}

func TestExtractShortWithoutPattern(t *testing.T) {
	for n := 1; n < minIDLength; n++ {
		_, err := Extract(strings.Repeat("Z", n))
		assert.ErrorIs(t, err, ErrNotFound, n)
	}
}

func TestExtractBareThirtyChars(t *testing.T) {
	id := "abcdefghijABCDEFGHIJ0123456789"
	got, err := Extract(id)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.NoError(t, Validate(got))
}
