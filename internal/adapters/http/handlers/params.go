package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// paramID parses a positive uint path parameter
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// paramInt parses a positive int path parameter
func paramInt(c *fiber.Ctx, name string) (int, bool) {
	n, err := strconv.Atoi(c.Params(name))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
