package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatuses(t *testing.T) {
	st, err := ParseJobURLStatus("interviewed")
	require.NoError(t, err)
	assert.Equal(t, JobURLInterviewed, st)

	_, err = ParseJobURLStatus("interview")
	assert.Error(t, err, "interview 是申请状态，不是链接状态")

	app, err := ParseApplicationStatus("accepted")
	require.NoError(t, err)
	assert.Equal(t, ApplicationAccepted, app)
	assert.Equal(t, "Accepted", app.Label())

	_, err = ParseApplicationStatus("")
	assert.Error(t, err)
}

func TestProfileUsesSnakeCase(t *testing.T) {
	data, err := json.Marshal(UserProfile{Name: "Ann", WorkHistory: []WorkHistoryItem{{JobTitle: "Dev", IsCurrent: true}}, RemotePreference: true, LinkedinURL: "https://linkedin.com/in/ann"})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "work_history")
	assert.Contains(t, raw, "remote_preference")
	assert.Contains(t, raw, "linkedin_url")
	assert.NotContains(t, raw, "github_url", "空的可选链接不输出")

	history := raw["work_history"].([]any)[0].(map[string]any)
	assert.Equal(t, "Dev", history["job_title"])
	assert.Equal(t, true, history["is_current"])
}

func TestParseTime(t *testing.T) {
	ts, ok := ParseTime("2024-01-15T10:30:00.000Z")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), ts)

	ts, ok = ParseTime("2024-01-15")
	require.True(t, ok)
	assert.Equal(t, 15, ts.Day())

	_, ok = ParseTime("yesterday")
	assert.False(t, ok)

	_, ok = JobURL{CreatedAt: "2024-02-01T00:00:00Z"}.Created()
	assert.True(t, ok)
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings("https://api.example.com")
	assert.Equal(t, 3, s.ActionDelay)
	assert.True(t, s.Confirmations)
	assert.True(t, s.LocalBackup)
	assert.False(t, s.AutoSubmit)
	assert.Contains(t, SyncFrequencies, s.SyncFrequency)
}
