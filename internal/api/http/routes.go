package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/astropoint/skyquality/internal/geo"
	"github.com/astropoint/skyquality/internal/locations"
	"github.com/astropoint/skyquality/internal/siqs"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *siqs.Service, engine *locations.Engine) {
	v1 := app.Group("/api/v1")

	v1.Get("/siqs", func(c *fiber.Ctx) error {
		coord, err := parseCoordinateQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		date, err := parseDateQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result, err := service.ComputeSiqs(c.Context(), coord, date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "could not compute sky quality score")
		}

		return c.JSON(result)
	})

	v1.Post("/locations/filter", func(c *fiber.Ctx) error {
		var req filterRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		candidates := make([]locations.Candidate, 0, len(req.Candidates))
		for _, p := range req.Candidates {
			candidates = append(candidates, locations.Candidate{
				ID:               p.ID,
				Name:             p.Name,
				Coordinate:       geo.Sanitize(p.Lat, p.Lon),
				Certified:        p.Certified,
				IsDarkSkyReserve: p.IsDarkSkyReserve,
			})
		}

		var reference *geo.Coordinate
		if req.Reference != nil {
			ref := geo.Sanitize(req.Reference.Lat, req.Reference.Lon)
			reference = &ref
		}

		filtered := engine.Filter(c.Context(), candidates, reference, req.RadiusKm, locations.Mode(req.Mode))

		return c.JSON(fiber.Map{
			"locations": filtered,
			"count":     len(filtered),
		})
	})
}

// parseCoordinateQuery reads lat/lon query parameters. Values must be
// numeric; out-of-range values are clamped at the sanitization boundary
// rather than rejected.
func parseCoordinateQuery(c *fiber.Ctx) (geo.Coordinate, error) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return geo.Coordinate{}, errors.New("lat and lon query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return geo.Coordinate{}, errors.New("lat must be numeric")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return geo.Coordinate{}, errors.New("lon must be numeric")
	}

	return geo.Sanitize(lat, lon), nil
}

// parseDateQuery reads the optional date parameter (2006-01-02),
// defaulting to today in UTC.
func parseDateQuery(c *fiber.Ctx) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errors.New("invalid date format; use YYYY-MM-DD")
	}
	return d, nil
}

// filterRequest is the payload of the location filter endpoint.
type filterRequest struct {
	Candidates []candidatePayload `json:"candidates" validate:"required,min=1,dive"`
	Reference  *pointPayload      `json:"reference"`
	RadiusKm   float64            `json:"radiusKm" validate:"gte=0"`
	Mode       string             `json:"mode" validate:"required,oneof=certified calculated"`
}

type pointPayload struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type candidatePayload struct {
	ID               string  `json:"id"`
	Name             string  `json:"name" validate:"required"`
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	Certified        bool    `json:"certified"`
	IsDarkSkyReserve bool    `json:"isDarkSkyReserve"`
}
