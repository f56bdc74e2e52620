package http

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
	"google.golang.org/api/idtoken"

	"github.com/flarexio/cms"
	"github.com/flarexio/cms/conf"
	"github.com/flarexio/cms/content"
	"github.com/flarexio/cms/locale"
	"github.com/flarexio/cms/persistence/inmem"
	"github.com/flarexio/cms/translation"
)

// fakeValidator treats the credential itself as the signed-in email.
func fakeValidator(ctx context.Context, token string, audience string) (*idtoken.Payload, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}

	return &idtoken.Payload{
		Audience: audience,
		Claims: map[string]any{
			"email":          token,
			"email_verified": true,
			"name":           "Test Admin",
		},
	}, nil
}

type httpTestSuite struct {
	suite.Suite
	r   *gin.Engine
	db  *inmem.Database
	svc cms.Service
}

func (suite *httpTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	_, priv, err := ed25519.GenerateKey(nil)
	suite.Require().NoError(err)

	cfg := &conf.Config{
		Name:    "cms",
		BaseURL: "http://localhost:8080",
		Site: conf.Site{
			BaseLocale: "en",
			Locales:    []string{"en", "es", "fr"},
		},
		Admins: []conf.Admin{
			{Email: "admin@example.com", Roles: []string{"admin"}},
			{Email: "translator@example.com", Roles: []string{"translator"}},
		},
	}
	cfg.JWT.Privkey = priv
	cfg.JWT.Timeout = time.Hour
	cfg.JWT.Refresh.Enabled = true
	cfg.JWT.Refresh.Maximum = 24 * time.Hour
	cfg.JWT.Audiences = []string{"cms"}

	conf.ReplaceGlobals(cfg)
	Init(cfg.BaseURL, cfg.JWT.Audiences[0], cfg.JWT.Privkey)

	db := inmem.NewDatabase()
	svc := cms.NewService(db.Contents(), db.Translations(), cms.Options{
		Site:      cfg.Site,
		Admins:    cfg.Admins,
		ClientID:  "client-id",
		Validator: fakeValidator,
	})

	endpoints := cms.NewEndpointSet(svc)

	policy, err := NewRegoPolicy(context.Background(), "")
	suite.Require().NoError(err)

	tmpl, err := LoadTemplates("")
	suite.Require().NoError(err)

	r := gin.New()
	r.Use(RequestID())
	r.SetHTMLTemplate(tmpl)

	m := locale.NewMatcher(cfg.Site.Locales, cfg.Site.BaseLocale)
	AddPublicRoutes(r, endpoints, m)
	AddAdminRoutes(r.Group("/cms/v1"), endpoints, Authorizator(policy))

	suite.r = r
	suite.db = db
	suite.svc = svc
}

func (suite *httpTestSuite) do(method string, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.r.ServeHTTP(w, req)
	return w
}

func (suite *httpTestSuite) signIn(email string) string {
	w := suite.do(http.MethodPatch, "/cms/v1/signin", SignInRequest{email}, "")
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp cms.SignInResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().NotNil(resp.Token)
	return resp.Token.Token
}

func (suite *httpTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/healthz", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.NotEmpty(w.Header().Get(RequestIDHeader))
}

func (suite *httpTestSuite) TestJWKS() {
	w := suite.do(http.MethodGet, "/.well-known/jwks.json", nil, "")
	suite.Equal(http.StatusOK, w.Code)

	var set JWKSet
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &set))
	suite.Len(set.Keys, 1)
	suite.Equal("EdDSA", set.Keys[0].Alg)
}

func (suite *httpTestSuite) TestPageFallback() {
	w := suite.do(http.MethodGet, "/api/v1/page?lang=de", nil, "")
	suite.Equal(http.StatusOK, w.Code)

	var page cms.LocalizedPage
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &page))
	suite.Equal("de", page.Meta.RequestedLocale)
	suite.Equal("en", page.Meta.ResolvedLocale)
	suite.True(page.Meta.FallbackUsed)
}

func (suite *httpTestSuite) TestPageTranslated() {
	hero := content.DefaultHero()
	hero.Title = "Welcome"
	_, err := suite.svc.UpdateHero(hero)
	suite.Require().NoError(err)

	_, err = suite.svc.PutTranslation("es", "hero.title", "Bienvenido")
	suite.Require().NoError(err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/page", nil)
	req.Header.Set("Accept-Language", "es-MX,es;q=0.9,en;q=0.5")
	w := httptest.NewRecorder()
	suite.r.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)

	var page cms.LocalizedPage
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &page))
	suite.Equal("es", page.Meta.ResolvedLocale)
	suite.Equal("Bienvenido", page.Hero.Title)
}

func (suite *httpTestSuite) TestLandingSetsCookie() {
	w := suite.do(http.MethodGet, "/?lang=fr", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `<html lang="fr">`)

	cookies := w.Result().Cookies()
	suite.Require().Len(cookies, 1)
	suite.Equal(LocaleCookie, cookies[0].Name)
	suite.Equal("fr", cookies[0].Value)

	// the cookie wins over Accept-Language on the next visit
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	req.Header.Set("Accept-Language", "es")
	w = httptest.NewRecorder()
	suite.r.ServeHTTP(w, req)
	suite.Contains(w.Body.String(), `<html lang="fr">`)
}

func (suite *httpTestSuite) TestSignInRejected() {
	w := suite.do(http.MethodPatch, "/cms/v1/signin", SignInRequest{"stranger@example.com"}, "")
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.do(http.MethodPatch, "/cms/v1/signin", map[string]string{}, "")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *httpTestSuite) TestRefresh() {
	token := suite.signIn("admin@example.com")

	w := suite.do(http.MethodPatch, "/cms/v1/token/refresh", nil, token)
	suite.Equal(http.StatusOK, w.Code)

	var t cms.Token
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &t))
	suite.NotEmpty(t.Token)
}

func (suite *httpTestSuite) refresh(token string) (*httptest.ResponseRecorder, string) {
	w := suite.do(http.MethodPatch, "/cms/v1/token/refresh", nil, token)
	if w.Code != http.StatusOK {
		return w, ""
	}

	var t cms.Token
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &t))
	return w, t.Token
}

func (suite *httpTestSuite) TestRefreshRevokedAdmin() {
	token := suite.signIn("admin@example.com")

	conf.G().Admins = []conf.Admin{
		{Email: "translator@example.com", Roles: []string{"translator"}},
	}

	w, refreshed := suite.refresh(token)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Empty(refreshed)
}

func (suite *httpTestSuite) TestRefreshTakesRolesFromConfig() {
	token := suite.signIn("admin@example.com")

	conf.G().Admins = []conf.Admin{
		{Email: "Admin@Example.com", Roles: []string{"translator"}},
	}

	w, refreshed := suite.refresh(token)
	suite.Require().Equal(http.StatusOK, w.Code)

	hero := content.DefaultHero()
	hero.Title = "Owned"

	w = suite.do(http.MethodPut, "/cms/v1/hero", hero, refreshed)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *httpTestSuite) TestRefreshChainBounded() {
	token := suite.signIn("admin@example.com")

	var claims Claims
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	suite.Require().NoError(ParseToken(c, &claims))
	suite.Require().NotNil(claims.SignedInAt)
	signedInAt := claims.SignedInAt.Unix()

	// a fresh token from a sign-in older than the refresh window
	now := time.Now()
	claims.SignedInAt = jwt.NewNumericDate(now.Add(-25 * time.Hour))
	claims.IssuedAt = jwt.NewNumericDate(now)

	old, err := sign(claims, now)
	suite.Require().NoError(err)

	w, _ := suite.refresh(old.Token)
	suite.Equal(http.StatusForbidden, w.Code)

	// refreshing keeps the original sign-in time
	_, refreshed := suite.refresh(token)

	var again Claims
	req.Header.Set("Authorization", "Bearer "+refreshed)
	suite.Require().NoError(ParseToken(c, &again))
	suite.Require().NotNil(again.SignedInAt)
	suite.Equal(signedInAt, again.SignedInAt.Unix())
}

func (suite *httpTestSuite) TestAdminRequiresToken() {
	w := suite.do(http.MethodGet, "/cms/v1/hero", nil, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.NotEmpty(w.Header().Get("WWW-Authenticate"))
}

func (suite *httpTestSuite) TestTranslatorCannotEditContent() {
	token := suite.signIn("translator@example.com")

	w := suite.do(http.MethodGet, "/cms/v1/hero", nil, token)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPut, "/cms/v1/hero", content.DefaultHero(), token)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.do(http.MethodPut, "/cms/v1/translations/es/hero.title", map[string]string{"value": "Hola"}, token)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *httpTestSuite) TestItemLifecycle() {
	token := suite.signIn("admin@example.com")

	ids := make([]string, 0)
	for _, q := range []string{"First?", "Second?", "Third?"} {
		faq := map[string]any{"question": q, "answer": "Yes.", "published": true}

		w := suite.do(http.MethodPost, "/cms/v1/items/faqs", faq, token)
		suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

		var created content.FAQ
		suite.NoError(json.Unmarshal(w.Body.Bytes(), &created))
		ids = append(ids, created.ID.String())
	}

	w := suite.do(http.MethodGet, "/cms/v1/items/faqs/"+ids[1], nil, token)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPut, "/cms/v1/items/faqs/"+ids[1],
		map[string]any{"question": "Second, edited?", "answer": "Yes."}, token)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPatch, "/cms/v1/items/faqs/reorder", map[string]int{"from": 2, "to": 0}, token)
	suite.Equal(http.StatusOK, w.Code)

	var ordered []*content.FAQ
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &ordered))
	suite.Require().Len(ordered, 3)
	suite.Equal(ids[2], ordered[0].ID.String())
	suite.Equal("Second, edited?", ordered[2].Question)

	w = suite.do(http.MethodPatch, "/cms/v1/items/faqs/reorder", map[string]int{"from": 5, "to": 0}, token)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodDelete, "/cms/v1/items/faqs/"+ids[0], nil, token)
	suite.Equal(http.StatusNoContent, w.Code)

	w = suite.do(http.MethodGet, "/cms/v1/items/faqs/"+ids[0], nil, token)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodGet, "/cms/v1/items/widgets", nil, token)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodPost, "/cms/v1/items/faqs", map[string]any{"question": ""}, token)
	suite.Equal(http.StatusExpectationFailed, w.Code)
}

func (suite *httpTestSuite) TestTranslations() {
	token := suite.signIn("admin@example.com")

	doc := map[string]any{
		"hero": map[string]any{
			"title":    "Bienvenido",
			"subtitle": "Hola",
		},
	}

	w := suite.do(http.MethodPost, "/cms/v1/translations/es/import", doc, token)
	suite.Equal(http.StatusOK, w.Code)

	var imported cms.ImportResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &imported))
	suite.Equal(2, imported.Imported)

	w = suite.do(http.MethodGet, "/cms/v1/translations/es", nil, token)
	suite.Equal(http.StatusOK, w.Code)

	var ts []*translation.Translation
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &ts))
	suite.Len(ts, 2)

	w = suite.do(http.MethodGet, "/cms/v1/translations/es/export", nil, token)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"hero":{"subtitle":"Hola","title":"Bienvenido"}}`, w.Body.String())

	w = suite.do(http.MethodDelete, "/cms/v1/translations/es/hero.subtitle", nil, token)
	suite.Equal(http.StatusNoContent, w.Code)

	w = suite.do(http.MethodDelete, "/cms/v1/translations/es/hero.subtitle", nil, token)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodGet, "/cms/v1/translations/de", nil, token)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodGet, "/cms/v1/translations/coverage", nil, token)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPost, "/cms/v1/translations/sync", nil, token)
	suite.Equal(http.StatusOK, w.Code)

	var report translation.SyncReport
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &report))
	suite.Equal("en", report.BaseLocale)
}

func (suite *httpTestSuite) TestStatusCode() {
	suite.Equal(http.StatusNotFound, StatusCode(content.ErrItemNotFound))
	suite.Equal(http.StatusNotFound, StatusCode(translation.ErrTranslationNotFound))
	suite.Equal(http.StatusBadRequest, StatusCode(translation.ErrKeyInvalid))
	suite.Equal(http.StatusExpectationFailed, StatusCode(errors.New("boom")))
}

func TestHTTPTestSuite(t *testing.T) {
	suite.Run(t, new(httpTestSuite))
}
