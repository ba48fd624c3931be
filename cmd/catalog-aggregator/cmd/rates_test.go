package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRateArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    [3]string
		want    string
		wantErr string
	}{
		{name: "valid", args: [3]string{"usd", "etb", "156.25"}, want: "156.25"},
		{name: "same currency", args: [3]string{"USD", "usd", "1"}, wantErr: "must differ"},
		{name: "unknown currency", args: [3]string{"USD", "ZZZ", "1"}, wantErr: "unknown currency"},
		{name: "not a number", args: [3]string{"USD", "ETB", "lots"}, wantErr: "parsing rate"},
		{name: "zero", args: [3]string{"USD", "ETB", "0"}, wantErr: "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseRateArgs(tt.args[0], tt.args[1], tt.args[2])
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "USD", got.Base)
			assert.Equal(t, "ETB", got.Target)
			assert.Equal(t, tt.want, got.Rate.String())
		})
	}
}
