package http

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wiedertv/BizAway-code-challenge/internal/core/domain"
	"github.com/wiedertv/BizAway-code-challenge/internal/core/usecases"
)

const sessionHeader = "x-session-id"

// SearchTripsHandler ranks the trips between origin and destination.
// sort_by is required and must be cheapest or fastest.
func SearchTripsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Query("origin")
		destination := c.Query("destination")
		if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
			return errBadRequest(c, "origin and destination are required")
		}

		mode, err := domain.ParseRankingMode(c.Query("sort_by"))
		if err != nil {
			return writeDomainError(c, err)
		}

		trips, err := deps.Search.Search(c.UserContext(), domain.NewSearchCriteria(origin, destination, mode))
		if err != nil {
			return writeDomainError(c, err)
		}

		if src, err := json.Marshal(trips); err == nil {
			c.Locals(etagSourceKey, src)
		}
		return respond(c, fiber.StatusOK, trips)
	}
}

// SaveTripHandler stores a trip snapshot for the caller's session. When no
// session header is sent a new session is created and echoed back.
func SaveTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var snap domain.TripSnapshot
		if err := c.BodyParser(&snap); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		session := strings.TrimSpace(c.Get(sessionHeader))
		if session == "" {
			session = usecases.NewSessionToken()
		}
		c.Set(sessionHeader, session)

		saved, err := deps.SavedTrips.Save(c.UserContext(), snap, session)
		if err != nil {
			return writeDomainError(c, err)
		}
		return respond(c, fiber.StatusCreated, saved)
	}
}

// ListSavedTripsHandler returns the session's saved trips, newest first.
func ListSavedTripsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := strings.TrimSpace(c.Get(sessionHeader))
		if session == "" {
			return errBadRequest(c, "x-session-id header is required")
		}

		trips, err := deps.SavedTrips.ListBySession(c.UserContext(), session)
		if err != nil {
			return writeDomainError(c, err)
		}

		pg := parsePagination(c, len(trips))
		SetLinkHeaders(c, pg)
		return respondWithMeta(c, fiber.StatusOK, page(trips, pg), &pg)
	}
}

// DeleteSavedTripHandler removes one saved trip owned by the session.
func DeleteSavedTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := strings.TrimSpace(c.Get(sessionHeader))
		if session == "" {
			return errBadRequest(c, "x-session-id header is required")
		}

		if err := deps.SavedTrips.Delete(c.UserContext(), c.Params("id"), session); err != nil {
			return writeDomainError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SupportedAirportsHandler lists the IATA codes a search accepts.
func SupportedAirportsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
		return respond(c, fiber.StatusOK, fiber.Map{
			"airports": domain.SupportedIATACodes(),
			"sort_by":  domain.RankingModes(),
		})
	}
}
