package core

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeLimit(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected time.Duration
		rendered string
	}{
		"days-hours:minutes:seconds": {"0-4:00:00", 4 * time.Hour, "0-4:00:00"},
		"multi-day":                  {"2-12:30:15", 60*time.Hour + 30*time.Minute + 15*time.Second, "2-12:30:15"},
		"minutes":                    {"90", 90 * time.Minute, "0-1:30:00"},
		"minutes:seconds":            {"5:30", 5*time.Minute + 30*time.Second, "0-0:05:30"},
		"hours:minutes:seconds":      {"4:00:00", 4 * time.Hour, "0-4:00:00"},
		"long hours":                 {"36:00:00", 36 * time.Hour, "1-12:00:00"},
		"days-hours":                 {"1-6", 30 * time.Hour, "1-6:00:00"},
		"days-hours:minutes":         {"1-0:45", 24*time.Hour + 45*time.Minute, "1-0:45:00"},
		"padded":                     {"0-04:00:00", 4 * time.Hour, "0-4:00:00"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			limit, err := ParseTimeLimit(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, limit.Duration())
			assert.Equal(t, tc.rendered, limit.String())
		})
	}
}

func TestParseTimeLimit_Invalid(t *testing.T) {
	for _, input := range []string{
		"",
		"0",
		"0-0:00:00",
		"-1",
		"UNLIMITED",
		"infinite",
		"1:2:3:4",
		"0-24:00:00",
		"0-4:60:00",
		"4:00:61",
		"a-4:00:00",
		"0-4::00",
		"1.5",
		"213503982334602-0",
		"3651-0",
		"9223372036854775807",
		"1-0:9223372036854775807",
		"99999999999999999999",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseTimeLimit(input)
			require.Error(t, err)
			assert.Equal(t, ErrInvalidTimeLimit, errors.Cause(err))
		})
	}
}

func TestTimeLimitFromSeconds(t *testing.T) {
	limit, err := TimeLimitFromSeconds(14400)
	require.NoError(t, err)
	assert.Equal(t, "0-4:00:00", limit.String())

	for _, seconds := range []int64{0, -1, 1 << 40} {
		_, err := TimeLimitFromSeconds(seconds)
		assert.Equal(t, ErrInvalidTimeLimit, errors.Cause(err))
	}
}

func TestTimeLimit_Hours(t *testing.T) {
	limit, err := ParseTimeLimit("1-2:03:04")
	require.NoError(t, err)
	assert.Equal(t, "26:03:04", limit.Hours())
}

func TestTimeLimit_Text(t *testing.T) {
	var limit TimeLimit
	require.NoError(t, limit.UnmarshalText([]byte("0-4:00:00")))
	text, err := limit.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "0-4:00:00", string(text))

	assert.Error(t, limit.UnmarshalText([]byte("soon")))
}
