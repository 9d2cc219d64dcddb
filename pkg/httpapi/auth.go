package httpapi

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"storeroom/pkg/account"
	"storeroom/pkg/deletion"
	"storeroom/pkg/sl"
)

const userKey = "user"

// identify resolves an optional bearer token into the current account.
// Requests without a token stay anonymous; a bad token is rejected outright.
func (s *Server) identify() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if header == "" {
			return c.Next()
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		claims, err := s.tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			s.logger.Warn("token rejected", slog.String("path", c.Path()), sl.Err(err))
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		// Roles are read from the directory so changes apply to tokens already issued.
		user, err := s.accounts.Get(claims.Email)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		c.Locals(userKey, user)
		return c.Next()
	}
}

func requireUser(c *fiber.Ctx) error {
	if _, ok := currentUser(c); !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing token")
	}
	return c.Next()
}

func currentUser(c *fiber.Ctx) (account.User, bool) {
	user, ok := c.Locals(userKey).(account.User)
	return user, ok
}

func reviewer(c *fiber.Ctx) deletion.Reviewer {
	user, _ := currentUser(c)
	return deletion.Reviewer{Email: user.Email, Admin: user.IsAdmin()}
}

func (s *Server) login(c *fiber.Ctx) error {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return s.badRequest(c, "login failed: unable to decode payload", "invalid JSON")
	}
	if strings.TrimSpace(payload.Email) == "" || payload.Password == "" {
		return s.badRequest(c, "login rejected", "email and password are required")
	}

	if err := s.latency.Wait(s.lifetime); err != nil {
		return s.fail(c, "login aborted", err)
	}

	user, err := s.accounts.Authenticate(payload.Email, payload.Password)
	if err != nil {
		return s.fail(c, "login failed", err)
	}
	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return s.fail(c, "token signing failed", err)
	}

	s.logger.Info("user logged in", slog.String("email", user.Email), slog.String("role", string(user.Role)))
	return c.JSON(loginResponse{
		Token:     token,
		ExpiresAt: expires,
		User:      toUserResponse(user),
	})
}

func (s *Server) me(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	return c.JSON(toUserResponse(user))
}

func (s *Server) listUsers(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	if !user.IsAdmin() {
		return s.fail(c, "user listing denied", account.ErrForbidden)
	}
	users := s.accounts.List()
	s.logger.Info("user listing served", slog.Int("count", len(users)))
	return c.JSON(toUserResponses(users))
}

func (s *Server) changeRole(c *fiber.Ctx) error {
	var payload struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return s.badRequest(c, "role change failed: unable to decode payload", "invalid JSON")
	}
	email := c.Params("email")
	actor, _ := currentUser(c)

	updated, err := s.accounts.SetRole(actor, email, account.Role(payload.Role))
	if err != nil {
		return s.fail(c, "role change failed", err)
	}
	s.logger.Info("role changed",
		slog.String("actor", actor.Email),
		slog.String("email", updated.Email),
		slog.String("role", string(updated.Role)),
	)
	return c.JSON(toUserResponse(updated))
}
