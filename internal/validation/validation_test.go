package validation

import (
	"encoding/json"
	"fmt"
	"testing"

	"jobflow-dashboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginForm(t *testing.T) {
	require.NoError(t, Validate(LoginForm{Email: "ann@example.com", Password: "secret"}))

	err := Validate(LoginForm{Email: "not-an-email"})
	errs, ok := AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, "Valid email is required", errs.Get("email"))
	assert.Equal(t, "Password is required", errs.Get("password"))
}

func TestJobSearchForm(t *testing.T) {
	form := DefaultJobSearchForm()
	err := Validate(form)
	errs, ok := AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, []FieldError{
		{Field: "title", Message: "Job title is required"},
		{Field: "location", Message: "Location is required"},
	}, []FieldError(errs), "按字段声明顺序报告")

	form.Title, form.Location = "Go Engineer", "Remote"
	require.NoError(t, Validate(form))

	form.PostedAfter = "14"
	errs, _ = AsErrors(Validate(form))
	assert.Equal(t, "Posted date must be 1, 3, 7 or 30 days", errs.Get("postedAfter"))

	req := form.Request()
	assert.Equal(t, "Go Engineer", req.Title)
}

func TestAddJobURLForm(t *testing.T) {
	errs, ok := AsErrors(Validate(AddJobURLForm{URL: "jobs.example.com", Status: "pending"}))
	require.True(t, ok)
	assert.Equal(t, "Please enter a valid URL", errs.Get("url"))

	errs, _ = AsErrors(Validate(AddJobURLForm{URL: "https://jobs.example.com/1", Status: "interview"}))
	assert.Contains(t, errs.Get("status"), "must be one of: pending, applied, interviewed, rejected")

	require.NoError(t, Validate(AddJobURLForm{URL: "https://jobs.example.com/1", Status: "applied"}))
}

func TestProfileForm(t *testing.T) {
	form := ProfileForm{
		Name:         "Ann",
		Email:        "ann@example.com",
		Location:     "Berlin",
		Experience:   "5 years",
		Education:    "BSc",
		Summary:      "too short",
		Availability: "2 weeks",
		GithubURL:    "github.com/ann",
	}
	errs, ok := AsErrors(Validate(form))
	require.True(t, ok)
	assert.Equal(t, "Professional summary must be at least 10 characters", errs.Get("summary"))
	assert.Equal(t, "Github url must be a valid URL", errs.Get("github_url"))
	assert.Empty(t, errs.Get("linkedin_url"), "空的可选链接允许")

	form.Summary = "Backend engineer with Go experience"
	form.GithubURL = "https://github.com/ann"
	require.NoError(t, Validate(form))

	data, err := json.Marshal(form.Profile())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"skills":[]`)
	assert.Contains(t, string(data), `"work_history":[]`)
}

func TestSettingsForm(t *testing.T) {
	form := SettingsFormFrom(models.DefaultSettings("https://api.example.com"))
	require.NoError(t, Validate(form))

	for _, delay := range []int{0, 31} {
		form.ActionDelay = delay
		errs, ok := AsErrors(Validate(form))
		require.True(t, ok, fmt.Sprint(delay))
		assert.Equal(t, "Action delay must be between 1 and 30 seconds", errs.Get("actionDelay"))
	}

	form.ActionDelay = 30
	form.APIEndpoint = "nope"
	errs, _ := AsErrors(Validate(form))
	assert.NotEmpty(t, errs.Get("apiEndpoint"))
	assert.Equal(t, 30, form.Settings().ActionDelay)
}

func TestErrorsString(t *testing.T) {
	errs := Errors{{Field: "email", Message: "Valid email is required"}, {Field: "password", Message: "Password is required"}}
	assert.Equal(t, "email: Valid email is required; password: Password is required", errs.Error())
	assert.Equal(t, map[string]string{"email": "Valid email is required", "password": "Password is required"}, errs.Map())
}

func TestValidateNonStruct(t *testing.T) {
	err := Validate("string")
	require.Error(t, err)
	_, ok := AsErrors(err)
	assert.False(t, ok)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Posted after", humanize("postedAfter"))
	assert.Equal(t, "Linkedin url", humanize("linkedin_url"))
}
