package server

import (
	"log/slog"
	"time"

	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/token"
	"microblog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type resetRequestForm struct {
	Email string `form:"email"`
}

type resetPasswordForm struct {
	Password  string `form:"password"`
	Password2 string `form:"password2"`
}

// ResetPasswordRequestPage handles GET /reset_password_request.
func (s *Server) ResetPasswordRequestPage(c *fiber.Ctx) error {
	if _, ok := s.currentUserID(c); ok {
		return c.Redirect("/")
	}
	return s.render(c, "reset_password_request", fiber.Map{
		"Title":     "Reset Password",
		"FormEmail": "",
	})
}

// ResetPasswordRequest handles POST /reset_password_request. The response is
// the same whether or not the address belongs to an account, so the form
// cannot be used to probe which emails are registered.
func (s *Server) ResetPasswordRequest(c *fiber.Ctx) error {
	if _, ok := s.currentUserID(c); ok {
		return c.Redirect("/")
	}

	var form resetRequestForm
	if err := c.BodyParser(&form); err != nil {
		c.Status(fiber.StatusBadRequest)
		return s.render(c, "reset_password_request", fiber.Map{
			"Title":     "Reset Password",
			"FormEmail": "",
			"Errors":    map[string]string{"email": "Invalid form submission"},
		})
	}

	user, err := s.userRepo.GetByEmail(c.Context(), form.Email)
	if err != nil {
		return err
	}
	if user != nil {
		ttl := time.Duration(s.config.ResetTokenTTLMinutes) * time.Minute
		resetToken, err := token.GeneratePasswordReset(s.config.SecretKey, user.ID, ttl)
		if err != nil {
			return models.NewInternalError(err)
		}
		resetURL := s.config.BaseURL + "/reset_password/" + resetToken

		// Delivery happens off the request path. Failures are logged and
		// never surfaced, to keep the response independent of the address.
		email, username := user.Email, user.Username
		go func() {
			if err := s.mailer.SendPasswordReset(email, username, resetURL); err != nil {
				middleware.Logger.Error("password reset email failed",
					slog.String("error", err.Error()))
			}
		}()
	}

	s.flash(c, "Check your email for the instructions to reset your password")
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// ResetPasswordPage handles GET /reset_password/:token.
func (s *Server) ResetPasswordPage(c *fiber.Ctx) error {
	if _, ok := s.currentUserID(c); ok {
		return c.Redirect("/")
	}

	resetToken := c.Params("token")
	userID, err := token.VerifyPasswordReset(s.config.SecretKey, resetToken)
	if err != nil {
		return c.Redirect("/")
	}
	// The account may have been removed since the token was issued.
	if _, err := s.userRepo.GetByID(c.Context(), userID); err != nil {
		return c.Redirect("/")
	}

	return s.render(c, "reset_password", fiber.Map{
		"Title":      "Reset Your Password",
		"FormAction": "/reset_password/" + resetToken,
	})
}

// ResetPassword handles POST /reset_password/:token.
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	if _, ok := s.currentUserID(c); ok {
		return c.Redirect("/")
	}

	resetToken := c.Params("token")
	userID, err := token.VerifyPasswordReset(s.config.SecretKey, resetToken)
	if err != nil {
		return c.Redirect("/")
	}
	if _, err := s.userRepo.GetByID(c.Context(), userID); err != nil {
		return c.Redirect("/")
	}

	var form resetPasswordForm
	if err := c.BodyParser(&form); err != nil {
		c.Status(fiber.StatusBadRequest)
		return s.render(c, "reset_password", fiber.Map{
			"Title":      "Reset Your Password",
			"FormAction": "/reset_password/" + resetToken,
			"Errors":     map[string]string{"password": "Invalid form submission"},
		})
	}

	errs := map[string]string{}
	if err := validation.ValidatePassword(form.Password); err != nil {
		errs["password"] = err.Error()
	}
	if form.Password != form.Password2 {
		errs["password2"] = "Passwords do not match"
	}
	if len(errs) > 0 {
		return s.render(c, "reset_password", fiber.Map{
			"Title":      "Reset Your Password",
			"FormAction": "/reset_password/" + resetToken,
			"Errors":     errs,
		})
	}

	user := &models.User{}
	if err := user.SetPassword(form.Password); err != nil {
		return models.NewInternalError(err)
	}
	if err := s.userRepo.UpdatePassword(c.Context(), userID, user.PasswordHash); err != nil {
		return err
	}

	middleware.Logger.InfoContext(c.UserContext(), "password reset completed",
		slog.Uint64("user_id", uint64(userID)))

	s.flash(c, "Your password has been reset.")
	return c.Redirect("/login", fiber.StatusSeeOther)
}
