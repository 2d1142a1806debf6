package http

import (
	"os"
	"sync"

	"github.com/gofiber/fiber/v2"
)

// openAPIPath is relative to the process working directory.
var openAPIPath = "api/openapi.yaml"

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Trip Planner API</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="docs"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({url: '/docs/openapi.yaml', dom_id: '#docs', tryItOutEnabled: true});
  </script>
</body>
</html>`

// SetupDocs serves the Swagger UI page and the OpenAPI document. The
// document is read once, on first request.
func SetupDocs(app *fiber.App) {
	var (
		once    sync.Once
		doc     []byte
		readErr error
	)
	load := func() ([]byte, error) {
		once.Do(func() { doc, readErr = os.ReadFile(openAPIPath) })
		return doc, readErr
	}

	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.SendString(swaggerUIHTML)
	})

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		data, err := load()
		if err != nil {
			return errNotFound(c, "api document not available")
		}
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(data)
	})
}
