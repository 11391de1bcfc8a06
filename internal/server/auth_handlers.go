package server

import (
	"log/slog"
	"time"

	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type loginForm struct {
	Username   string `form:"username"`
	Password   string `form:"password"`
	RememberMe bool   `form:"remember_me"`
}

type registerForm struct {
	Username  string `form:"username"`
	Email     string `form:"email"`
	Password  string `form:"password"`
	Password2 string `form:"password2"`
}

// LoginPage handles GET /login.
func (s *Server) LoginPage(c *fiber.Ctx) error {
	if _, ok := s.currentUserID(c); ok {
		return c.Redirect("/")
	}
	return s.render(c, "login", fiber.Map{
		"Title":        "Sign In",
		"FormAction":   loginFormAction(c.Query("next")),
		"FormUsername": "",
	})
}

// Login handles POST /login. The failure message never distinguishes an
// unknown username from a wrong password.
func (s *Server) Login(c *fiber.Ctx) error {
	if _, ok := s.currentUserID(c); ok {
		return c.Redirect("/")
	}

	var form loginForm
	if err := c.BodyParser(&form); err != nil {
		s.flash(c, "Invalid username or password")
		return c.Redirect(loginFormAction(c.Query("next")), fiber.StatusSeeOther)
	}

	user, err := s.userRepo.GetByUsername(c.Context(), form.Username)
	if err != nil {
		return err
	}
	if user == nil || !user.CheckPassword(form.Password) {
		s.flash(c, "Invalid username or password")
		return c.Redirect(loginFormAction(c.Query("next")), fiber.StatusSeeOther)
	}

	sess, err := s.sessions.Get(c)
	if err != nil {
		return models.NewInternalError(err)
	}
	// Fresh session ID on privilege change.
	if err := sess.Regenerate(); err != nil {
		return models.NewInternalError(err)
	}
	sess.Set(sessionUserIDKey, user.ID)
	if form.RememberMe {
		sess.SetExpiry(time.Duration(s.config.RememberMeDays) * 24 * time.Hour)
	}
	if err := sess.Save(); err != nil {
		return models.NewInternalError(err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "user logged in",
		slog.String("username", user.Username))

	return c.Redirect(safeNextTarget(c.Query("next")), fiber.StatusSeeOther)
}

// loginFormAction keeps the next parameter across the login form roundtrip.
func loginFormAction(next string) string {
	target := safeNextTarget(next)
	if target == "/" {
		return "/login"
	}
	return "/login?next=" + target
}

// Logout handles GET /logout.
func (s *Server) Logout(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	return c.Redirect("/")
}

// RegisterPage handles GET /register.
func (s *Server) RegisterPage(c *fiber.Ctx) error {
	if _, ok := s.currentUserID(c); ok {
		return c.Redirect("/")
	}
	return s.render(c, "register", fiber.Map{
		"Title":        "Register",
		"FormUsername": "",
		"FormEmail":    "",
	})
}

// Register handles POST /register.
func (s *Server) Register(c *fiber.Ctx) error {
	if _, ok := s.currentUserID(c); ok {
		return c.Redirect("/")
	}

	var form registerForm
	if err := c.BodyParser(&form); err != nil {
		return s.renderRegister(c, form, map[string]string{"username": "Invalid form submission"})
	}

	errs := map[string]string{}
	if err := validation.ValidateUsername(form.Username); err != nil {
		errs["username"] = err.Error()
	}
	if err := validation.ValidateEmail(form.Email); err != nil {
		errs["email"] = err.Error()
	}
	if err := validation.ValidatePassword(form.Password); err != nil {
		errs["password"] = err.Error()
	}
	if form.Password != form.Password2 {
		errs["password2"] = "Passwords do not match"
	}

	if len(errs) == 0 {
		if existing, err := s.userRepo.GetByUsername(c.Context(), form.Username); err != nil {
			return err
		} else if existing != nil {
			errs["username"] = "Please use a different username"
		}
		if existing, err := s.userRepo.GetByEmail(c.Context(), form.Email); err != nil {
			return err
		} else if existing != nil {
			errs["email"] = "Please use a different email address"
		}
	}

	if len(errs) > 0 {
		return s.renderRegister(c, form, errs)
	}

	user := &models.User{Username: form.Username, Email: form.Email}
	if err := user.SetPassword(form.Password); err != nil {
		return models.NewInternalError(err)
	}
	if err := s.userRepo.Create(c.Context(), user); err != nil {
		// Lost a race with a concurrent registration; surface it as a form
		// error rather than a failure page.
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == "VALIDATION_ERROR" {
			return s.renderRegister(c, form, map[string]string{"username": appErr.Message})
		}
		return err
	}

	middleware.Logger.InfoContext(c.UserContext(), "user registered",
		slog.String("username", user.Username))

	s.flash(c, "Congratulations, you are now a registered user!")
	return c.Redirect("/login", fiber.StatusSeeOther)
}

func (s *Server) renderRegister(c *fiber.Ctx, form registerForm, errs map[string]string) error {
	return s.render(c, "register", fiber.Map{
		"Title":        "Register",
		"FormUsername": form.Username,
		"FormEmail":    form.Email,
		"Errors":       errs,
	})
}
