package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/fluentpath/roadmap_client/dto"
	"github.com/fluentpath/roadmap_client/shared"
)

type RoadmapHandler struct {
	enrollmentSvc EnrollmentServiceInterface
	sessionSvc    SessionServiceInterface
}

func NewRoadmapHandler(enrollmentSvc EnrollmentServiceInterface, sessionSvc SessionServiceInterface) *RoadmapHandler {
	return &RoadmapHandler{
		enrollmentSvc: enrollmentSvc,
		sessionSvc:    sessionSvc,
	}
}

func userID(c *fiber.Ctx) string {
	if id, ok := c.Locals(shared.UserID).(string); ok {
		return id
	}
	return ""
}

// @Summary Bootstrap Roadmap
// @Description This endpoint loads a roadmap with the learner's enrollment state, degrading to preview mode when progress is unavailable
// @Tags roadmap
// @Accept  json
// @Produce json
// @Param roadmapId path string true "Roadmap ID"
// @Success 200 {object} shared.Response{data=dto.RoadmapBootstrapResponse}
// @Router /api/v1/roadmaps/{roadmapId} [get]
func (h *RoadmapHandler) Bootstrap(c *fiber.Ctx) error {
	roadmapID := c.Params("roadmapId")

	resp, err := h.enrollmentSvc.Bootstrap(c.UserContext(), userID(c), roadmapID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Switch Roadmap
// @Description This endpoint resolves what happens when the learner picks a roadmap: enroll, navigate, or ask for a continue/restart decision
// @Tags roadmap
// @Accept  json
// @Produce json
// @Param roadmapId path string true "Roadmap ID"
// @Param switchRequest body dto.SwitchRequest true "Switch request"
// @Success 200 {object} shared.Response{data=dto.SwitchOutcome}
// @Router /api/v1/roadmaps/{roadmapId}/switch [post]
func (h *RoadmapHandler) Switch(c *fiber.Ctx) error {
	roadmapID := c.Params("roadmapId")

	var req dto.SwitchRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	outcome, err := h.enrollmentSvc.TrySwitch(c.UserContext(), userID(c), roadmapID, req.CurrentRoadmapID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", outcome)
}

// @Summary Confirm Roadmap Switch
// @Description This endpoint applies the learner's continue-or-restart decision for a roadmap with prior progress
// @Tags roadmap
// @Accept  json
// @Produce json
// @Param roadmapId path string true "Roadmap ID"
// @Param confirmSwitchRequest body dto.ConfirmSwitchRequest true "Confirm switch request"
// @Success 200 {object} shared.Response{data=dto.SwitchOutcome}
// @Router /api/v1/roadmaps/{roadmapId}/switch/confirm [post]
func (h *RoadmapHandler) ConfirmSwitch(c *fiber.Ctx) error {
	roadmapID := c.Params("roadmapId")

	var req dto.ConfirmSwitchRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	outcome, err := h.enrollmentSvc.ConfirmSwitch(c.UserContext(), userID(c), roadmapID, *req.Restart)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", outcome)
}

// @Summary List Roadmap Days
// @Description This endpoint returns one page of the roadmap's day sequence with derived lock state
// @Tags roadmap
// @Accept  json
// @Produce json
// @Param roadmapId path string true "Roadmap ID"
// @Param page query int false "Page number"
// @Success 200 {object} shared.Response{data=dto.DayPageResponse}
// @Router /api/v1/roadmaps/{roadmapId}/days [get]
func (h *RoadmapHandler) Days(c *fiber.Ctx) error {
	roadmapID := c.Params("roadmapId")

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	resp, err := h.sessionSvc.Days(c.UserContext(), userID(c), roadmapID, page)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}
