package server

import (
	"microblog/internal/models"
	"microblog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type editProfileForm struct {
	Username string `form:"username"`
	AboutMe  string `form:"about_me"`
}

// EditProfilePage handles GET /edit_profile, pre-populated with the
// current values.
func (s *Server) EditProfilePage(c *fiber.Ctx) error {
	user := s.currentUser(c)
	if user == nil {
		return c.Redirect("/login")
	}
	return s.render(c, "edit_profile", fiber.Map{
		"Title":        "Edit Profile",
		"FormUsername": user.Username,
		"FormAboutMe":  user.AboutMe,
	})
}

// EditProfile handles POST /edit_profile.
func (s *Server) EditProfile(c *fiber.Ctx) error {
	user := s.currentUser(c)
	if user == nil {
		return c.Redirect("/login")
	}

	var form editProfileForm
	if err := c.BodyParser(&form); err != nil {
		c.Status(fiber.StatusBadRequest)
		return s.render(c, "edit_profile", fiber.Map{
			"Title":        "Edit Profile",
			"FormUsername": user.Username,
			"FormAboutMe":  user.AboutMe,
			"Errors":       map[string]string{"username": "Invalid form submission"},
		})
	}

	errs := map[string]string{}
	if err := validation.ValidateUsername(form.Username); err != nil {
		errs["username"] = err.Error()
	}
	if err := validation.ValidateAboutMe(form.AboutMe); err != nil {
		errs["about_me"] = err.Error()
	}

	if len(errs) == 0 && form.Username != user.Username {
		existing, err := s.userRepo.GetByUsername(c.Context(), form.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			errs["username"] = "Please use a different username"
		}
	}

	if len(errs) > 0 {
		return s.render(c, "edit_profile", fiber.Map{
			"Title":        "Edit Profile",
			"FormUsername": form.Username,
			"FormAboutMe":  form.AboutMe,
			"Errors":       errs,
		})
	}

	user.Username = form.Username
	user.AboutMe = form.AboutMe
	if err := s.userRepo.Update(c.Context(), user); err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == "VALIDATION_ERROR" {
			return s.render(c, "edit_profile", fiber.Map{
				"Title":        "Edit Profile",
				"FormUsername": form.Username,
				"FormAboutMe":  form.AboutMe,
				"Errors":       map[string]string{"username": appErr.Message},
			})
		}
		return err
	}

	s.flash(c, "Your changes have been saved.")
	return c.Redirect("/edit_profile", fiber.StatusSeeOther)
}

// Follow handles POST /follow/:username.
func (s *Server) Follow(c *fiber.Ctx) error {
	return s.setFollowing(c, true)
}

// Unfollow handles POST /unfollow/:username.
func (s *Server) Unfollow(c *fiber.Ctx) error {
	return s.setFollowing(c, false)
}

func (s *Server) setFollowing(c *fiber.Ctx, follow bool) error {
	userID, _ := s.currentUserID(c)
	username := c.Params("username")

	target, err := s.userRepo.GetByUsername(c.Context(), username)
	if err != nil {
		return err
	}
	if target == nil {
		s.flash(c, "User "+username+" not found.")
		return c.Redirect("/index", fiber.StatusSeeOther)
	}
	if target.ID == userID {
		if follow {
			s.flash(c, "You cannot follow yourself!")
		} else {
			s.flash(c, "You cannot unfollow yourself!")
		}
		return c.Redirect("/user/"+username, fiber.StatusSeeOther)
	}

	if follow {
		err = s.followRepo.Follow(c.Context(), userID, target.ID)
	} else {
		err = s.followRepo.Unfollow(c.Context(), userID, target.ID)
	}
	if err != nil {
		return err
	}

	if follow {
		s.flash(c, "You are following "+username+"!")
	} else {
		s.flash(c, "You are no longer following "+username+".")
	}
	return c.Redirect("/user/"+username, fiber.StatusSeeOther)
}
