package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// UsersHandler exposes the account directory used by the assignment picker.
type UsersHandler struct {
	service *service.TicketService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(ticketService *service.TicketService) *UsersHandler {
	return &UsersHandler{service: ticketService}
}

// ListEmployees GET /users?role=EMPLOYEE.
func (h *UsersHandler) ListEmployees(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if c.Query("role") != "EMPLOYEE" {
		return c.JSON(fiber.Map{"data": []dto.UserResponse{}})
	}
	employees, err := h.service.ListEmployees(c.Context(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(employees))
	for i := range employees {
		items = append(items, userResponse(&employees[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
