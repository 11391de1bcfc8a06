package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"microblog/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetPasswordRequestResponseIsUniform(t *testing.T) {
	t.Parallel()

	_, app, m := newTestServer(t)
	c := newClient(t, app)
	register(c, "susan", "cat12345")

	// Known and unknown addresses get the same redirect and flash.
	for _, email := range []string{"susan@example.com", "unknown@example.com"} {
		resp := c.postForm("/reset_password_request", url.Values{"email": {email}})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, "/login", resp.Header.Get("Location"))

		resp = c.get("/login")
		assert.Contains(t, readBody(t, resp),
			"Check your email for the instructions to reset your password")
	}

	// Only the known address produced an email.
	resetURL := m.waitForResetURL(t)
	assert.True(t, strings.HasPrefix(resetURL, "http://localhost:8080/reset_password/"))
	select {
	case extra := <-m.sent:
		t.Fatalf("unexpected second email: %s", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestResetPasswordFlow(t *testing.T) {
	t.Parallel()

	_, app, m := newTestServer(t)
	c := newClient(t, app)
	register(c, "susan", "cat12345")

	resp := c.postForm("/reset_password_request", url.Values{"email": {"susan@example.com"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resetURL := m.waitForResetURL(t)
	path := strings.TrimPrefix(resetURL, "http://localhost:8080")

	resp = c.get(path)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Choose a New Password")

	resp = c.postForm(path, url.Values{
		"password":  {"newdog456"},
		"password2": {"newdog456"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	// Old password no longer works, the new one does.
	resp = c.postForm("/login", url.Values{
		"username": {"susan"},
		"password": {"cat12345"},
	})
	require.Equal(t, "/login", resp.Header.Get("Location"))

	login(c, "susan", "newdog456")
}

func TestResetPasswordMismatchedConfirmation(t *testing.T) {
	t.Parallel()

	s, app, _ := newTestServer(t)
	c := newClient(t, app)
	register(c, "susan", "cat12345")

	var userID uint = 1
	resetToken, err := token.GeneratePasswordReset(s.config.SecretKey, userID, 30*time.Minute)
	require.NoError(t, err)

	resp := c.postForm("/reset_password/"+resetToken, url.Values{
		"password":  {"newdog456"},
		"password2": {"different99"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Passwords do not match")
}

func TestResetPasswordInvalidToken(t *testing.T) {
	t.Parallel()

	s, app, _ := newTestServer(t)
	c := newClient(t, app)
	register(c, "susan", "cat12345")

	resp := c.get("/reset_password/not-a-real-token")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	// Expired tokens are rejected the same way.
	expired, err := token.GeneratePasswordReset(s.config.SecretKey, 1, -time.Minute)
	require.NoError(t, err)
	resp = c.get("/reset_password/" + expired)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp = c.postForm("/reset_password/"+expired, url.Values{
		"password":  {"newdog456"},
		"password2": {"newdog456"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestResetPasswordRequestMalformedForm(t *testing.T) {
	t.Parallel()

	_, app, m := newTestServer(t)
	c := newClient(t, app)

	req := httptest.NewRequest(http.MethodPost, "/reset_password_request", strings.NewReader("{not a form"))
	req.Header.Set("Content-Type", "application/json")
	resp := c.do(req)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Invalid form submission")

	select {
	case extra := <-m.sent:
		t.Fatalf("unexpected email: %s", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestResetPasswordUnknownUser(t *testing.T) {
	t.Parallel()

	s, app, _ := newTestServer(t)
	c := newClient(t, app)

	// A well-formed token for an account that does not exist.
	orphan, err := token.GeneratePasswordReset(s.config.SecretKey, 999, 30*time.Minute)
	require.NoError(t, err)

	resp := c.get("/reset_password/" + orphan)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}
