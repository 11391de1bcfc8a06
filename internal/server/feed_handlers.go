package server

import (
	"log/slog"
	"strings"

	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/repository"
	"microblog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type postForm struct {
	Body string `form:"post"`
}

// Index handles GET / and GET /index: posts by the current user and the
// users they follow, newest first.
func (s *Server) Index(c *fiber.Ctx) error {
	userID, _ := s.currentUserID(c)
	page, err := s.postRepo.Feed(c.Context(), userID, parsePage(c), s.config.PostsPerPage)
	if err != nil {
		return err
	}
	return s.renderFeed(c, "index", fiber.Map{
		"Title":        "Home",
		"ShowPostForm": true,
		"FormBody":     "",
	}, page, "/index")
}

// CreatePost handles POST /index.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, _ := s.currentUserID(c)

	var form postForm
	if err := c.BodyParser(&form); err != nil {
		c.Status(fiber.StatusBadRequest)
		return s.renderPostFormError(c, userID, "Invalid form submission", "")
	}

	if err := validation.ValidatePostBody(form.Body); err != nil {
		return s.renderPostFormError(c, userID, err.Error(), form.Body)
	}

	post := &models.Post{Body: strings.TrimSpace(form.Body), UserID: userID}
	if err := s.postRepo.Create(c.Context(), post); err != nil {
		return err
	}

	middleware.Logger.InfoContext(c.UserContext(), "post created",
		slog.Uint64("post_id", uint64(post.ID)))

	s.flash(c, "Your post is now live!")
	// Redirect so a refresh does not resubmit the form.
	return c.Redirect("/index", fiber.StatusSeeOther)
}

// Explore handles GET /explore: all posts from all users, newest first.
func (s *Server) Explore(c *fiber.Ctx) error {
	page, err := s.postRepo.All(c.Context(), parsePage(c), s.config.PostsPerPage)
	if err != nil {
		return err
	}
	return s.renderFeed(c, "index", fiber.Map{
		"Title":        "Explore",
		"ShowPostForm": false,
	}, page, "/explore")
}

// UserProfile handles GET /user/:username.
func (s *Server) UserProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	profile, err := s.userRepo.GetByUsername(c.Context(), username)
	if err != nil {
		return err
	}
	if profile == nil {
		return s.renderNotFound(c)
	}

	page, err := s.postRepo.ByAuthor(c.Context(), profile.ID, parsePage(c), s.config.PostsPerPage)
	if err != nil {
		return err
	}

	followers, err := s.followRepo.CountFollowers(c.Context(), profile.ID)
	if err != nil {
		return err
	}
	following, err := s.followRepo.CountFollowing(c.Context(), profile.ID)
	if err != nil {
		return err
	}

	userID, _ := s.currentUserID(c)
	isFollowing := false
	if userID != profile.ID {
		isFollowing, err = s.followRepo.IsFollowing(c.Context(), userID, profile.ID)
		if err != nil {
			return err
		}
	}

	return s.renderFeed(c, "user", fiber.Map{
		"Title":          profile.Username,
		"Profile":        profile,
		"FollowerCount":  followers,
		"FollowingCount": following,
		"IsSelf":         userID == profile.ID,
		"IsFollowing":    isFollowing,
	}, page, "/user/"+profile.Username)
}

// renderPostFormError re-renders the home feed with the rejected submission
// still in the form.
func (s *Server) renderPostFormError(c *fiber.Ctx, userID uint, message, body string) error {
	page, err := s.postRepo.Feed(c.Context(), userID, 1, s.config.PostsPerPage)
	if err != nil {
		return err
	}
	return s.renderFeed(c, "index", fiber.Map{
		"Title":        "Home",
		"ShowPostForm": true,
		"FormError":    message,
		"FormBody":     body,
	}, page, "/index")
}

// renderFeed binds a page of posts plus its navigation URLs into the view.
func (s *Server) renderFeed(c *fiber.Ctx, name string, bind fiber.Map, page *repository.Page, path string) error {
	bind["Posts"] = page.Posts
	bind["NextURL"] = pageURL(path, page.NextPage())
	bind["PrevURL"] = pageURL(path, page.PrevPage())
	return s.render(c, name, bind)
}
