package normalize

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToSeconds(t *testing.T) {
	tests := []struct {
		token string
		want  int64
	}{
		{"PT2M10S", 130},
		{"PT5M", 300},
		{"PT45S", 45},
		{"PT1H", 3600},
		{"PT1H2M3S", 3723},
		{"PT1H3S", 3603},
		{"P0D", 0},
		{"PT0S", 0},
		{"P1DT2H", 93600},
		{"P1W", 604800},
		{"PT1.9S", 1},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ToSeconds(tt.token)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

// Every combination of omitted components must add up to H*3600 + M*60 + S.
func TestToSeconds_ComponentSum(t *testing.T) {
	for _, h := range []int64{0, 1, 12} {
		for _, m := range []int64{0, 1, 59} {
			for _, s := range []int64{0, 1, 59} {
				token := "PT"
				if h > 0 {
					token += fmt.Sprintf("%dH", h)
				}
				if m > 0 {
					token += fmt.Sprintf("%dM", m)
				}
				if s > 0 || (h == 0 && m == 0) {
					token += fmt.Sprintf("%dS", s)
				}

				got, err := ToSeconds(token)
				require.NoError(t, err, token)
				require.Equal(t, h*3600+m*60+s, got, token)
			}
		}
	}
}

func TestToSeconds_RejectsMalformed(t *testing.T) {
	for _, token := range []string{"", "10:30", "2 minutes", "PTXS", "P1Y", "P2M"} {
		t.Run(token, func(t *testing.T) {
			_, err := ToSeconds(token)
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "expected *ParseError, got %T", err)
			require.Equal(t, "duration", parseErr.Kind)
			require.Equal(t, token, parseErr.Token)
		})
	}
}

func TestToCount(t *testing.T) {
	got, err := ToCount("1234567")
	require.NoError(t, err)
	require.Equal(t, int64(1234567), got)

	got, err = ToCount("0")
	require.NoError(t, err)
	require.Zero(t, got)
}

func TestToCount_RejectsMalformed(t *testing.T) {
	for _, token := range []string{"", "-5", "+5", "12a", "1,000", "99999999999999999999"} {
		t.Run(token, func(t *testing.T) {
			_, err := ToCount(token)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "expected *ParseError, got %v", err)
			require.Equal(t, "count", parseErr.Kind)
		})
	}
}
