package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/kit/endpoint"

	"github.com/flarexio/cms"
	"github.com/flarexio/cms/content"
	"github.com/flarexio/cms/translation"
)

func fail(c *gin.Context, code int, err error) {
	c.Abort()
	c.Error(err)
	c.String(code, err.Error())
}

// StatusCode maps service errors to HTTP status codes.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, content.ErrItemNotFound),
		errors.Is(err, content.ErrKindInvalid),
		errors.Is(err, translation.ErrTranslationNotFound),
		errors.Is(err, cms.ErrLocaleNotFound):
		return http.StatusNotFound

	case errors.Is(err, cms.ErrInvalidRequest),
		errors.Is(err, translation.ErrKeyInvalid):
		return http.StatusBadRequest

	default:
		return http.StatusExpectationFailed
	}
}

func signInStatusCode(err error) int {
	switch {
	case errors.Is(err, cms.ErrNotAdmin),
		errors.Is(err, cms.ErrEmailUnverified):
		return http.StatusForbidden

	case errors.Is(err, cms.ErrAudienceNotFound):
		return http.StatusExpectationFailed

	default:
		return http.StatusUnauthorized
	}
}

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func PageHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		requested := c.Query("lang")
		if requested == "" {
			requested = RequestLocale(c)
		}

		resp, err := endpoint(c, requested)
		if err != nil {
			fail(c, StatusCode(err), err)
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func LandingHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := endpoint(c, RequestLocale(c))
		if err != nil {
			fail(c, http.StatusInternalServerError, err)
			return
		}

		c.HTML(http.StatusOK, "landing.html", resp)
	}
}

type SignInRequest struct {
	Credential string `json:"credential" binding:"required"`
}

func SignInHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignInRequest
		if err := c.ShouldBind(&req); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}

		resp, err := endpoint(c, req.Credential)
		if err != nil {
			unauthorized(c, signInStatusCode(err), err)
			return
		}

		response, ok := resp.(cms.SignInResponse)
		if !ok {
			err := errors.New("invalid admin")
			unauthorized(c, http.StatusExpectationFailed, err)
			return
		}

		token, err := IssueToken(response.Admin)
		if err != nil {
			unauthorized(c, http.StatusExpectationFailed, err)
			return
		}

		response.Token = token

		c.JSON(http.StatusOK, &response)
	}
}

func SectionHandler(endpoint endpoint.Endpoint, section content.Section) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := endpoint(c, section)
		if err != nil {
			fail(c, StatusCode(err), err)
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func UpdateSectionHandler(endpoint endpoint.Endpoint, section content.Section) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req any
		switch section {
		case content.HeroSection:
			req = new(content.Hero)
		case content.ContactSection:
			req = new(content.Contact)
		case content.SettingsSection:
			req = new(content.Settings)
		default:
			fail(c, http.StatusNotFound, cms.ErrInvalidRequest)
			return
		}

		if err := c.ShouldBindJSON(req); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}

		resp, err := endpoint(c, req)
		if err != nil {
			fail(c, StatusCode(err), err)
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func parseKind(c *gin.Context) (content.Kind, bool) {
	kind, err := content.ParseKind(c.Param("kind"))
	if err != nil {
		fail(c, http.StatusNotFound, err)
		return -1, false
	}

	return kind, true
}

func parseItemRequest(c *gin.Context) (cms.ItemRequest, bool) {
	kind, ok := parseKind(c)
	if !ok {
		return cms.ItemRequest{}, false
	}

	id, err := content.ParseID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return cms.ItemRequest{}, false
	}

	return cms.ItemRequest{Kind: kind, ID: id}, true
}

func ItemsHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := parseKind(c)
		if !ok {
			return
		}

		resp, err := endpoint(c, kind)
		if err != nil {
			fail(c, StatusCode(err), err)
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func ItemHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := parseItemRequest(c)
		if !ok {
			return
		}

		resp, err := endpoint(c, req)
		if err != nil {
			fail(c, StatusCode(err), err)
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func CreateItemHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := parseKind(c)
		if !ok {
			return
		}

		item, err := content.NewItem(kind)
		if err != nil {
			fail(c, http.StatusNotFound, err)
			return
		}

		if err := c.ShouldBindJSON(item); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}

		resp, err := endpoint(c, item)
		if err != nil {
			fail(c, StatusCode(err), err)
			return
		}

		c.JSON(http.StatusCreated, &resp)
	}
}

func UpdateItemHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := parseItemRequest(c)
		if !ok {
			return
		}

		item, err := content.NewItem(req.Kind)
		if err != nil {
			fail(c, http.StatusNotFound, err)
			return
		}

		if err := c.ShouldBindJSON(item); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}

		item.Header().ID = req.ID

		resp, err := endpoint(c, item)
		if err != nil {
			fail(c, StatusCode(err), err)
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func DeleteItemHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := parseItemRequest(c)
		if !ok {
			return
		}

		if _, err := endpoint(c, req); err != nil {
			fail(c, StatusCode(err), err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func ReorderItemsHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := parseKind(c)
		if !ok {
			return
		}

		var req cms.ReorderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
		req.Kind = kind

		resp, err := endpoint(c, req)
		if err != nil {
			code := StatusCode(err)
			if errors.Is(err, content.ErrInvalidPosition) || errors.Is(err, content.ErrInvalidOrder) {
				code = http.StatusBadRequest
			}

			fail(c, code, err)
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func TranslationsHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := endpoint(c, c.Param("locale"))
		if err != nil {
			fail(c, StatusCode(err), err)
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func translationKey(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("key"), "/")
}

func PutTranslationHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cms.TranslationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
		req.Locale = c.Param("locale")
		req.Key = translationKey(c)

		resp, err := endpoint(c, req)
		if err != nil {
			fail(c, StatusCode(err), err)
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func DeleteTranslationHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := cms.TranslationRequest{
			Locale: c.Param("locale"),
			Key:    translationKey(c),
		}

		if _, err := endpoint(c, req); err != nil {
			fail(c, StatusCode(err), err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func ImportTranslationsHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var doc map[string]any
		if err := c.ShouldBindJSON(&doc); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}

		req := cms.ImportRequest{
			Locale:   c.Param("locale"),
			Document: doc,
		}

		resp, err := endpoint(c, req)
		if err != nil {
			fail(c, StatusCode(err), err)
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func ExportTranslationsHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := c.Param("locale")

		resp, err := endpoint(c, locale)
		if err != nil {
			fail(c, StatusCode(err), err)
			return
		}

		if c.Query("download") != "" {
			c.Header("Content-Disposition", `attachment; filename="`+locale+`.json"`)
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func CoverageHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := endpoint(c, nil)
		if err != nil {
			fail(c, StatusCode(err), err)
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func SyncTranslationsHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cms.SyncRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				fail(c, http.StatusBadRequest, err)
				return
			}
		}

		resp, err := endpoint(c, req)
		if err != nil {
			fail(c, StatusCode(err), err)
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}
