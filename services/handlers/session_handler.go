package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/fluentpath/roadmap_client/dto"
	"github.com/fluentpath/roadmap_client/shared"
)

type SessionHandler struct {
	sessionSvc SessionServiceInterface
}

func NewSessionHandler(sessionSvc SessionServiceInterface) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// @Summary Get Session State
// @Description This endpoint returns the learner's current session state
// @Tags session
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.SessionStateResponse}
// @Router /api/v1/session [get]
func (h *SessionHandler) State(c *fiber.Ctx) error {
	resp, err := h.sessionSvc.State(userID(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Select Day
// @Description This endpoint opens a day: activities and progress load in the background while the session reports loadingDay
// @Tags session
// @Accept  json
// @Produce json
// @Param dayId path string true "Day ID"
// @Param selectDayRequest body dto.SelectDayRequest true "Select day request"
// @Success 200 {object} shared.Response{data=dto.SessionStateResponse}
// @Router /api/v1/days/{dayId}/select [post]
func (h *SessionHandler) SelectDay(c *fiber.Ctx) error {
	dayID := c.Params("dayId")

	var req dto.SelectDayRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.sessionSvc.SelectDay(c.UserContext(), userID(c), req.RoadmapID, dayID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Advance Session
// @Description This endpoint moves the learner forward: content into the mini-game chain, chain onward, and completion when the chain is exhausted
// @Tags session
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.SessionStateResponse}
// @Router /api/v1/session/advance [post]
func (h *SessionHandler) Advance(c *fiber.Ctx) error {
	resp, err := h.sessionSvc.Advance(c.UserContext(), userID(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Select Activity
// @Description This endpoint jumps to an unlocked activity in the current day
// @Tags session
// @Accept  json
// @Produce json
// @Param index path int true "Activity index"
// @Success 200 {object} shared.Response{data=dto.SessionStateResponse}
// @Router /api/v1/session/activities/{index}/select [post]
func (h *SessionHandler) SelectActivity(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return shared.NewBadRequestError(err, "Invalid activity index")
	}

	resp, err := h.sessionSvc.SelectActivity(userID(c), index)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Select Mini-Game
// @Description This endpoint jumps to any mini-game in the current activity's chain
// @Tags session
// @Accept  json
// @Produce json
// @Param index path int true "Mini-game index"
// @Success 200 {object} shared.Response{data=dto.SessionStateResponse}
// @Router /api/v1/session/minigames/{index}/select [post]
func (h *SessionHandler) SelectMiniGame(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return shared.NewBadRequestError(err, "Invalid mini-game index")
	}

	resp, err := h.sessionSvc.SelectMiniGame(userID(c), index)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Close Session
// @Description This endpoint abandons the current activity, logging the partial attempt before the session goes idle
// @Tags session
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.SessionStateResponse}
// @Router /api/v1/session/close [post]
func (h *SessionHandler) Close(c *fiber.Ctx) error {
	resp, err := h.sessionSvc.Close(c.UserContext(), userID(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}
