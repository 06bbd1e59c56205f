package services

import (
	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"

	"github.com/fluentpath/roadmap_client/shared"
)

// AuthMiddleware resolves the learner identity for each request. Most
// routes accept anonymous visitors (preview mode), so the default is
// OptionalAuth: a valid bearer token yields the user id, anything else
// yields an empty id rather than a 401.
type AuthMiddleware struct {
	context.DefaultService

	jwtSvc *JWTService
}

const AUTH_MIDDLEWARE_SVC = "auth"

func (svc AuthMiddleware) Id() string {
	return AUTH_MIDDLEWARE_SVC
}

func (svc *AuthMiddleware) Configure(ctx *context.Context) error {
	svc.jwtSvc = ctx.Service(JWT_SVC).(*JWTService)
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthMiddleware) Start() error {
	return nil
}

func (svc *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(shared.UserID, svc.resolveUserID(c))
		return c.Next()
	}
}

func (svc *AuthMiddleware) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := svc.resolveUserID(c)
		if userID == "" {
			return shared.NewUnauthorizedError(nil, "Unauthorized")
		}

		c.Locals(shared.UserID, userID)
		return c.Next()
	}
}

func (svc *AuthMiddleware) resolveUserID(c *fiber.Ctx) string {
	token, err := svc.jwtSvc.ExtractTokenFromHeader(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return ""
	}

	userID, err := svc.jwtSvc.VerifyJWTToken(token)
	if err != nil {
		return ""
	}

	return userID
}
