package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"microblog/internal/middleware"
	"microblog/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	sessionUserIDKey = "user_id"
	sessionFlashKey  = "flash"
)

// SessionContext resolves the authenticated user from the session, stores the
// user ID in locals and the request context, and touches the user's last-seen
// timestamp. It never blocks anonymous requests.
func (s *Server) SessionContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := s.sessions.Get(c)
		if err != nil {
			return c.Next()
		}

		userID, ok := sess.Get(sessionUserIDKey).(uint)
		if !ok || userID == 0 {
			return c.Next()
		}

		c.Locals("userID", userID)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)

		// Committed before the handler produces its response; concurrent
		// requests race with last-writer-wins, which is fine here.
		if err := s.userRepo.TouchLastSeen(c.Context(), userID, time.Now().UTC()); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to touch last seen",
				slog.String("error", err.Error()))
		}

		return c.Next()
	}
}

// LoginRequired redirects anonymous requests to the login page, preserving
// the originally requested URL (path and query) as the next parameter.
func (s *Server) LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := s.currentUserID(c); !ok {
			return c.Redirect("/login?next=" + url.QueryEscape(c.OriginalURL()))
		}
		return c.Next()
	}
}

// currentUserID returns the authenticated user's ID as resolved by
// SessionContext.
func (s *Server) currentUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("userID").(uint)
	return userID, ok && userID != 0
}

// currentUser loads the authenticated user record, or nil for anonymous
// requests.
func (s *Server) currentUser(c *fiber.Ctx) *models.User {
	userID, ok := s.currentUserID(c)
	if !ok {
		return nil
	}
	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return nil
	}
	return user
}

// flash queues a one-time message shown on the next rendered page.
func (s *Server) flash(c *fiber.Ctx, message string) {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return
	}
	pending, _ := sess.Get(sessionFlashKey).(string)
	if pending != "" {
		pending += "\n"
	}
	sess.Set(sessionFlashKey, pending+message)
	if err := sess.Save(); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to save flash",
			slog.String("error", err.Error()))
	}
}

// popFlashes returns and clears all pending flash messages.
func (s *Server) popFlashes(c *fiber.Ctx) []string {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return nil
	}
	pending, _ := sess.Get(sessionFlashKey).(string)
	if pending == "" {
		return nil
	}
	sess.Delete(sessionFlashKey)
	if err := sess.Save(); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to clear flashes",
			slog.String("error", err.Error()))
	}
	return strings.Split(pending, "\n")
}

// render renders a page inside the base layout with the current user and any
// pending flash messages bound.
func (s *Server) render(c *fiber.Ctx, name string, bind fiber.Map) error {
	if bind == nil {
		bind = fiber.Map{}
	}
	if _, ok := bind["Errors"]; !ok {
		bind["Errors"] = map[string]string{}
	}
	bind["CurrentUser"] = s.currentUser(c)
	bind["Flashes"] = s.popFlashes(c)
	return c.Render(name, bind, "layouts/base")
}

// renderNotFound renders the 404 page.
func (s *Server) renderNotFound(c *fiber.Ctx) error {
	c.Status(fiber.StatusNotFound)
	return s.render(c, "errors/404", fiber.Map{"Title": "Not Found"})
}

// safeNextTarget validates a post-login redirect target. Anything carrying a
// scheme, a network location, or not an absolute path is replaced by the home
// page so the login flow cannot be abused as an open redirect.
func safeNextTarget(next string) string {
	if next == "" || strings.Contains(next, "\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return next
}

// parsePage extracts the 1-indexed page query parameter, defaulting to 1.
func parsePage(c *fiber.Ctx) int {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	return page
}

// pageURL builds a link to another page of the current path, or "" when the
// page number is 0 (no such page).
func pageURL(path string, page int) string {
	if page == 0 {
		return ""
	}
	return fmt.Sprintf("%s?page=%d", path, page)
}
