package http

import (
	"embed"
	"html/template"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/flarexio/cms"
	"github.com/flarexio/cms/content"
	"github.com/flarexio/cms/locale"
)

//go:embed templates/*.html
var templates embed.FS

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"stars": func(n int) []struct{} {
		if n < 0 {
			n = 0
		}
		return make([]struct{}, n)
	},
}

// LoadTemplates parses the landing templates from dir, falling back to the
// built-in ones when dir holds none.
func LoadTemplates(dir string) (*template.Template, error) {
	if dir != "" {
		matches, err := filepath.Glob(filepath.Join(dir, "*.html"))
		if err != nil {
			return nil, err
		}

		if len(matches) > 0 {
			return template.New("").Funcs(funcs).ParseFiles(matches...)
		}

		if _, err := os.Stat(dir); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	return template.New("").Funcs(funcs).ParseFS(templates, "templates/*.html")
}

// AddPublicRoutes registers the visitor facing routes.
func AddPublicRoutes(r *gin.Engine, endpoints cms.EndpointSet, m *locale.Matcher) {
	// GET /healthz
	r.GET("/healthz", HealthHandler)

	// GET /.well-known/jwks.json
	r.GET("/.well-known/jwks.json", JWKHandler)

	site := r.Group("", LocaleResolver(m))
	{
		// GET /
		site.GET("/", LandingHandler(endpoints.Page))

		// GET /api/v1/page
		site.GET("/api/v1/page", PageHandler(endpoints.Page))
	}
}

// AddAdminRoutes registers the authenticated management API.
func AddAdminRoutes(g *gin.RouterGroup, endpoints cms.EndpointSet, auth func(permission string) gin.HandlerFunc) {
	// PATCH /signin
	g.PATCH("/signin", SignInHandler(endpoints.SignIn))

	// PATCH /token/refresh
	g.PATCH("/token/refresh", RefreshHandler)

	sections := []content.Section{
		content.HeroSection,
		content.ContactSection,
		content.SettingsSection,
	}

	for _, section := range sections {
		path := "/" + string(section)

		// GET /hero, /contact, /settings
		g.GET(path,
			auth("content.read"),
			SectionHandler(endpoints.Section, section))

		// PUT /hero, /contact, /settings
		g.PUT(path,
			auth("content.write"),
			UpdateSectionHandler(endpoints.UpdateSection, section))
	}

	items := g.Group("/items/:kind")
	{
		// GET /items/:kind
		items.GET("", auth("content.read"), ItemsHandler(endpoints.Items))

		// POST /items/:kind
		items.POST("", auth("content.write"), CreateItemHandler(endpoints.CreateItem))

		// PATCH /items/:kind/reorder
		items.PATCH("/reorder", auth("content.write"), ReorderItemsHandler(endpoints.ReorderItems))

		// GET /items/:kind/:id
		items.GET("/:id", auth("content.read"), ItemHandler(endpoints.Item))

		// PUT /items/:kind/:id
		items.PUT("/:id", auth("content.write"), UpdateItemHandler(endpoints.UpdateItem))

		// DELETE /items/:kind/:id
		items.DELETE("/:id", auth("content.write"), DeleteItemHandler(endpoints.DeleteItem))
	}

	translations := g.Group("/translations")
	{
		// GET /translations/coverage
		translations.GET("/coverage", auth("translations.read"), CoverageHandler(endpoints.Coverage))

		// POST /translations/sync
		translations.POST("/sync", auth("translations.sync"), SyncTranslationsHandler(endpoints.SyncTranslations))

		// GET /translations/:locale
		translations.GET("/:locale", auth("translations.read"), TranslationsHandler(endpoints.Translations))

		// GET /translations/:locale/export
		translations.GET("/:locale/export", auth("translations.read"), ExportTranslationsHandler(endpoints.ExportTranslations))

		// POST /translations/:locale/import
		translations.POST("/:locale/import", auth("translations.write"), ImportTranslationsHandler(endpoints.ImportTranslations))

		// PUT /translations/:locale/*key
		translations.PUT("/:locale/*key", auth("translations.write"), PutTranslationHandler(endpoints.PutTranslation))

		// DELETE /translations/:locale/*key
		translations.DELETE("/:locale/*key", auth("translations.write"), DeleteTranslationHandler(endpoints.DeleteTranslation))
	}
}
