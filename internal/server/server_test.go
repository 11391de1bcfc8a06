package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"microblog/internal/config"
	"microblog/internal/database"
	"microblog/internal/models"
	"microblog/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// stubMailer records password-reset deliveries. Sends happen on a goroutine,
// so deliveries are exposed through a channel for tests to wait on.
type stubMailer struct {
	sent chan string
}

func (m *stubMailer) SendPasswordReset(toEmail, username, resetURL string) error {
	m.sent <- resetURL
	return nil
}

func (m *stubMailer) waitForResetURL(t *testing.T) string {
	t.Helper()
	select {
	case resetURL := <-m.sent:
		return resetURL
	case <-time.After(2 * time.Second):
		t.Fatal("no password reset email was sent")
		return ""
	}
}

func newTestServer(t *testing.T) (*Server, *fiber.App, *stubMailer) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Env:                  "test",
		Port:                 "8080",
		BaseURL:              "http://localhost:8080",
		SecretKey:            "test-secret-key",
		PostsPerPage:         5,
		ResetTokenTTLMinutes: 30,
		RememberMeDays:       30,
	}

	m := &stubMailer{sent: make(chan string, 4)}
	s := &Server{
		config:     cfg,
		db:         db,
		sessions:   session.New(session.Config{Expiration: time.Hour}),
		userRepo:   repository.NewUserRepository(db),
		postRepo:   repository.NewPostRepository(db),
		followRepo: repository.NewFollowRepository(db),
		mailer:     m,
	}
	return s, s.newApp(), m
}

// client carries session cookies across requests, like a browser would.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newClient(t *testing.T, app *fiber.App) *client {
	return &client{t: t, app: app, cookies: map[string]string{}}
}

func (c *client) do(req *http.Request) *http.Response {
	c.t.Helper()
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	for _, ck := range resp.Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck.Value
	}
	return resp
}

func (c *client) get(path string) *http.Response {
	c.t.Helper()
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, form url.Values) *http.Response {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return string(body)
}

func register(c *client, username, password string) {
	c.t.Helper()
	resp := c.postForm("/register", url.Values{
		"username":  {username},
		"email":     {username + "@example.com"},
		"password":  {password},
		"password2": {password},
	})
	require.Equal(c.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(c.t, "/login", resp.Header.Get("Location"))
}

func login(c *client, username, password string) {
	c.t.Helper()
	resp := c.postForm("/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.Equal(c.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(c.t, "/", resp.Header.Get("Location"))
}

func registerAndLogin(c *client, username, password string) {
	c.t.Helper()
	register(c, username, password)
	login(c, username, password)
}

func createPost(t *testing.T, db *gorm.DB, userID uint, body string, at time.Time) {
	t.Helper()
	post := &models.Post{Body: body, UserID: userID, CreatedAt: at}
	require.NoError(t, db.Create(post).Error)
}
