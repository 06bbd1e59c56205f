package services

import (
	"fmt"
	"os"
	"strconv"

	docs "github.com/fluentpath/roadmap_client/docs"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/gofiber/swagger"

	"github.com/fluentpath/roadmap_client/services/handlers"
	"github.com/fluentpath/roadmap_client/shared"
)

type HttpService struct {
	context.DefaultService

	authSvc       *AuthMiddleware
	enrollmentSvc *EnrollmentService
	sessionSvc    *SessionService
	monitoringSvc *MonitoringService
	rateLimitSvc  *RateLimitService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_MIDDLEWARE_SVC).(*AuthMiddleware)
	svc.enrollmentSvc = svc.Service(ENROLLMENT_SVC).(*EnrollmentService)
	svc.sessionSvc = svc.Service(SESSION_SVC).(*SessionService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)

	docs.SwaggerInfo.BasePath = ""

	app := fiber.New(fiber.Config{
		ErrorHandler: svc.handleError,
	})

	app.Use(recover.New())
	if os.Getenv("LOG_LEVEL") == "TRACE" {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
	}))
	app.Use(MonitoringMiddleware(svc.monitoringSvc))

	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", fiberSwagger.HandlerDefault)

	roadmapHandler := handlers.NewRoadmapHandler(svc.enrollmentSvc, svc.sessionSvc)
	sessionHandler := handlers.NewSessionHandler(svc.sessionSvc)

	v1 := app.Group("/api/v1", svc.authSvc.OptionalAuth(), svc.rateLimitSvc.IPRateLimit())

	v1.Get("/ping", svc.ping)

	roadmaps := v1.Group("/roadmaps")
	roadmaps.Get("/:roadmapId", roadmapHandler.Bootstrap)
	roadmaps.Get("/:roadmapId/days", roadmapHandler.Days)
	roadmaps.Post("/:roadmapId/switch", svc.authSvc.RequiredAuth(), svc.rateLimitSvc.RateLimit("switch"), roadmapHandler.Switch)
	roadmaps.Post("/:roadmapId/switch/confirm", svc.authSvc.RequiredAuth(), svc.rateLimitSvc.RateLimit("switch"), roadmapHandler.ConfirmSwitch)

	v1.Post("/days/:dayId/select", svc.rateLimitSvc.RateLimit("day_select"), sessionHandler.SelectDay)

	session := v1.Group("/session")
	session.Get("/", sessionHandler.State)
	session.Post("/advance", svc.rateLimitSvc.RateLimit("advance"), sessionHandler.Advance)
	session.Post("/activities/:index/select", sessionHandler.SelectActivity)
	session.Post("/minigames/:index/select", sessionHandler.SelectMiniGame)
	session.Post("/close", sessionHandler.Close)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	svc.server = app
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	if fiberErr, ok := err.(*fiber.Error); ok {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	return shared.ResponseInternalError(c, err)
}
