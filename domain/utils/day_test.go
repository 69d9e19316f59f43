package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfDay(t *testing.T) {
	t.Parallel()

	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	tests := []struct {
		name string
		t    time.Time
		loc  *time.Location
		want time.Time
	}{
		{
			name: "utc midday",
			t:    time.Date(2024, 5, 10, 13, 45, 0, 0, time.UTC),
			loc:  time.UTC,
			want: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "nil location falls back to utc",
			t:    time.Date(2024, 5, 10, 0, 0, 1, 0, time.UTC),
			want: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "utc evening is next day in seoul",
			t:    time.Date(2024, 5, 10, 16, 0, 0, 0, time.UTC),
			loc:  seoul,
			want: time.Date(2024, 5, 11, 0, 0, 0, 0, seoul),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := StartOfDay(tt.t, tt.loc)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}
