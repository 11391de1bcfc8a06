package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"microblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditProfile(t *testing.T) {
	t.Parallel()

	s, app, _ := newTestServer(t)
	c := newClient(t, app)
	registerAndLogin(c, "susan", "cat12345")

	resp := c.get("/edit_profile")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `value="susan"`)

	resp = c.postForm("/edit_profile", url.Values{
		"username": {"susan_q"},
		"about_me": {"I like cats."},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/edit_profile", resp.Header.Get("Location"))

	resp = c.get("/edit_profile")
	body := readBody(t, resp)
	assert.Contains(t, body, "Your changes have been saved.")
	assert.Contains(t, body, `value="susan_q"`)
	assert.Contains(t, body, "I like cats.")

	var user models.User
	require.NoError(t, s.db.Where("username = ?", "susan_q").First(&user).Error)
	assert.Equal(t, "I like cats.", user.AboutMe)
}

func TestEditProfileRejectsTakenUsername(t *testing.T) {
	t.Parallel()

	_, app, _ := newTestServer(t)
	susan := newClient(t, app)
	registerAndLogin(susan, "susan", "cat12345")
	john := newClient(t, app)
	registerAndLogin(john, "john", "dog12345")

	resp := john.postForm("/edit_profile", url.Values{
		"username": {"susan"},
		"about_me": {""},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Please use a different username")
}

func TestEditProfileMalformedForm(t *testing.T) {
	t.Parallel()

	s, app, _ := newTestServer(t)
	c := newClient(t, app)
	registerAndLogin(c, "susan", "cat12345")

	req := httptest.NewRequest(http.MethodPost, "/edit_profile", strings.NewReader("{not a form"))
	req.Header.Set("Content-Type", "application/json")
	resp := c.do(req)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Invalid form submission")

	// Nothing changed.
	var count int64
	require.NoError(t, s.db.Model(&models.User{}).Where("username = ?", "susan").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEditProfileKeepingOwnUsername(t *testing.T) {
	t.Parallel()

	_, app, _ := newTestServer(t)
	c := newClient(t, app)
	registerAndLogin(c, "susan", "cat12345")

	// Re-submitting the current username is not a conflict.
	resp := c.postForm("/edit_profile", url.Values{
		"username": {"susan"},
		"about_me": {"unchanged name"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestFollowIsIdempotent(t *testing.T) {
	t.Parallel()

	s, app, _ := newTestServer(t)
	susan := newClient(t, app)
	registerAndLogin(susan, "susan", "cat12345")
	john := newClient(t, app)
	registerAndLogin(john, "john", "dog12345")

	for i := 0; i < 2; i++ {
		resp := susan.get("/follow/john")
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, "/user/john", resp.Header.Get("Location"))
	}

	var count int64
	require.NoError(t, s.db.Model(&models.Follow{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUnfollowMissingEdgeIsNoOp(t *testing.T) {
	t.Parallel()

	_, app, _ := newTestServer(t)
	susan := newClient(t, app)
	registerAndLogin(susan, "susan", "cat12345")
	john := newClient(t, app)
	registerAndLogin(john, "john", "dog12345")

	resp := susan.get("/unfollow/john")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/user/john", resp.Header.Get("Location"))

	resp = susan.get("/user/john")
	assert.Contains(t, readBody(t, resp), "You are no longer following john.")
}

func TestCannotFollowSelf(t *testing.T) {
	t.Parallel()

	s, app, _ := newTestServer(t)
	c := newClient(t, app)
	registerAndLogin(c, "susan", "cat12345")

	resp := c.get("/follow/susan")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/user/susan", resp.Header.Get("Location"))

	resp = c.get("/user/susan")
	assert.Contains(t, readBody(t, resp), "You cannot follow yourself!")

	var count int64
	require.NoError(t, s.db.Model(&models.Follow{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestFollowUnknownUser(t *testing.T) {
	t.Parallel()

	_, app, _ := newTestServer(t)
	c := newClient(t, app)
	registerAndLogin(c, "susan", "cat12345")

	resp := c.get("/follow/nobody")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/index", resp.Header.Get("Location"))

	resp = c.get("/index")
	assert.Contains(t, readBody(t, resp), "User nobody not found.")
}
