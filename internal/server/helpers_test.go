package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- parsePagination ---

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		p := parsePagination(c, 25)
		return c.JSON(fiber.Map{"limit": p.Limit, "offset": p.Offset})
	})

	tests := []struct {
		name           string
		query          string
		expectedLimit  float64
		expectedOffset float64
	}{
		{"Defaults", "", 25, 0},
		{"Custom", "?limit=10&offset=30", 10, 30},
		{"Capped At Max", "?limit=5000", 100, 0},
		{"Negative Values Reset", "?limit=-1&offset=-5", 25, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/items"+tt.query, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			var body map[string]float64
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.expectedLimit, body["limit"])
			assert.Equal(t, tt.expectedOffset, body["offset"])
		})
	}
}

// --- parseID ---

func TestParseID(t *testing.T) {
	app := fiber.New()
	s := &Server{}
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{"Valid", "/items/42", http.StatusOK},
		{"Non Numeric", "/items/abc", http.StatusBadRequest},
		{"Zero", "/items/0", http.StatusBadRequest},
		{"Negative", "/items/-3", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

// --- actorID ---

func TestActorID(t *testing.T) {
	app := fiber.New()
	app.Get("/with", func(c *fiber.Ctx) error {
		c.Locals("userID", uint(7))
		return c.JSON(fiber.Map{"id": actorID(c)})
	})
	app.Get("/without", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": actorID(c)})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/with", nil))
	require.NoError(t, err)
	var body map[string]float64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(7), body["id"])
	_ = resp.Body.Close()

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/without", nil))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(0), body["id"])
	_ = resp.Body.Close()
}
