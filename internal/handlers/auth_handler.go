package handlers

import (
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"debo-engineering/job-portal/internal/models"
	"debo-engineering/job-portal/internal/services"
)

type AuthHandler struct {
	authService  services.AuthService
	cookieName   string
	tokenTTL     time.Duration
	secureCookie bool
}

func NewAuthHandler(authService services.AuthService, cookieName string, tokenTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieName:   cookieName,
		tokenTTL:     tokenTTL,
		secureCookie: secureCookie,
	}
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.tokenTTL),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, resp.Token)
	return success(c, fiber.StatusCreated, resp)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, resp.Token)
	return ok(c, resp)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.ClearCookie(h.cookieName)
	return ok(c, fiber.Map{"message": "logged out"})
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Profile(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return ok(c, user)
}

// UpdateProfile handles PUT /auth/profile. It accepts JSON or a multipart
// form carrying an optional resume file.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	var resume *multipart.FileHeader

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid multipart form")
		}
		req.Name = formValue(form.Value, "name")
		req.Phone = formValue(form.Value, "phone")
		req.Experience = formValue(form.Value, "experience")
		req.Education = formValues(form.Value, "education")
		req.Skills = services.ParseSkills(formValues(form.Value, "skills"))
		if files := form.File["resume"]; len(files) > 0 {
			resume = files[0]
		}
	} else if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}

	result, err := h.authService.UpdateProfile(c.UserContext(), actor, req, resume)
	if err != nil {
		return err
	}
	return ok(c, result)
}

// ForgotPassword answers the same way whether or not the email is
// registered.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.authService.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return err
	}
	return ok(c, fiber.Map{"message": "If the email exists, a reset link has been sent"})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.authService.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		return err
	}
	return ok(c, fiber.Map{"message": "password has been reset"})
}

func formValue(values map[string][]string, key string) *string {
	v, found := values[key]
	if !found || len(v) == 0 {
		return nil
	}
	s := strings.TrimSpace(v[0])
	return &s
}

// formValues accepts both "key" and "key[]" field names.
func formValues(values map[string][]string, key string) []string {
	out := append([]string{}, values[key]...)
	return append(out, values[key+"[]"]...)
}
