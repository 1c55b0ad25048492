package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCronSchedule(t *testing.T) {
	valid := []string{
		"*/10 * * * *",
		"0 */6 * * *",
		"30 9 * * 1-5",
		"15,45 */2 * * 1,3,5",
		"@hourly",
	}
	for _, s := range valid {
		t.Run("valid "+s, func(t *testing.T) {
			assert.NoError(t, ValidateCronSchedule(s))
		})
	}

	invalid := []string{
		"",
		"0 0",
		"0 0 * * * * *",
		"60 0 * * *",
		"0 24 * * *",
		"0 0 * * 8",
		"invalid format",
		"@sometimes",
	}
	for _, s := range invalid {
		t.Run("invalid "+s, func(t *testing.T) {
			err := ValidateCronSchedule(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid cron schedule")
		})
	}
}

func TestParseCronSchedule_Next(t *testing.T) {
	sched, err := ParseCronSchedule("*/10 * * * *")
	require.NoError(t, err)

	from := time.Date(2024, 4, 1, 9, 3, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 4, 1, 9, 10, 0, 0, time.UTC), sched.Next(from))
}

func TestValidateTimezone(t *testing.T) {
	assert.NoError(t, ValidateTimezone("UTC"))
	assert.Error(t, ValidateTimezone(""))

	err := ValidateTimezone("Mars/Olympus_Mons")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mars/Olympus_Mons")
}

func TestValidateDuration(t *testing.T) {
	tests := []struct {
		name    string
		d       time.Duration
		wantErr string
	}{
		{name: "within range", d: 8 * time.Second},
		{name: "at minimum", d: time.Second},
		{name: "at maximum", d: time.Minute},
		{name: "below", d: 500 * time.Millisecond, wantErr: "below minimum"},
		{name: "above", d: 2 * time.Minute, wantErr: "exceeds maximum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDuration(tt.d, time.Second, time.Minute)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.Error(t, ValidateDuration(time.Second, time.Minute, time.Second), "inverted range")
}

func TestValidateIntRange(t *testing.T) {
	assert.NoError(t, ValidateIntRange(10, 1, 50))
	assert.NoError(t, ValidateIntRange(1, 1, 50))
	assert.ErrorContains(t, ValidateIntRange(0, 1, 50), "below minimum 1")
	assert.ErrorContains(t, ValidateIntRange(51, 1, 50), "exceeds maximum 50")
	assert.Error(t, ValidateIntRange(5, 10, 1))
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "https", url: "https://medium.com"},
		{name: "http with port", url: "http://127.0.0.1:8080"},
		{name: "with path", url: "https://api.resend.com/v1"},
		{name: "empty", url: "", wantErr: true},
		{name: "ftp scheme", url: "ftp://example.com", wantErr: true},
		{name: "javascript scheme", url: "javascript:alert(1)", wantErr: true},
		{name: "no host", url: "https://", wantErr: true},
		{name: "no scheme", url: "medium.com", wantErr: true},
		{name: "query", url: "https://medium.com/?x=1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
