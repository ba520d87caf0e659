package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Mode
		wantErr bool
	}{
		{name: "all", input: "all", want: ModeAll},
		{name: "streak", input: "streak", want: ModeStreak},
		{name: "trend", input: "trend", want: ModeTrend},
		{name: "unknown", input: "momentum", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "case sensitive", input: "All", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModeWants(t *testing.T) {
	assert.True(t, ModeAll.WantsStreak())
	assert.True(t, ModeAll.WantsTrend())

	assert.True(t, ModeStreak.WantsStreak())
	assert.False(t, ModeStreak.WantsTrend())

	assert.False(t, ModeTrend.WantsStreak())
	assert.True(t, ModeTrend.WantsTrend())
}
