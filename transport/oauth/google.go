package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/kit/endpoint"
	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/flarexio/cms"
	"github.com/flarexio/cms/conf"

	transHTTP "github.com/flarexio/cms/transport/http"
)

var (
	ErrInvalidState    = errors.New("invalid state")
	ErrIDTokenNotFound = errors.New("id_token not found in token response")
)

var (
	config *oauth2.Config
	store  *cache.Cache
)

func SetConfig(provider conf.GoogleProvider) {
	config = &oauth2.Config{
		ClientID:     provider.Client.ID,
		ClientSecret: provider.Client.Secret,
		RedirectURL:  provider.RedirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}

	store = cache.New(10*time.Minute, 20*time.Minute)
}

func generateRandomString(length int) string {
	bytes := make([]byte, length)
	_, err := rand.Read(bytes)
	if err != nil {
		panic(err.Error())
	}

	return base64.RawURLEncoding.EncodeToString(bytes)
}

// Session is kept between the redirect to Google and the callback.
type Session struct {
	State    string
	Nonce    string
	ReturnTo string
}

func NewSession(returnTo string) *Session {
	return &Session{
		State:    generateRandomString(32),
		Nonce:    generateRandomString(32),
		ReturnTo: returnTo,
	}
}

// validReturnTo accepts same-site paths only.
func validReturnTo(raw string) bool {
	if raw == "" {
		return true
	}

	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return false
	}

	_, err := url.Parse(raw)
	return err == nil
}

func LoginAuthURLHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		returnTo := c.Query("return_to")
		if !validReturnTo(returnTo) {
			err := errors.New("invalid return_to")
			c.Abort()
			c.Error(err)
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		session := NewSession(returnTo)
		store.Set(session.State, session, cache.DefaultExpiration)

		authURL := config.AuthCodeURL(session.State,
			oauth2.SetAuthURLParam("nonce", session.Nonce),
			oauth2.SetAuthURLParam("prompt", "select_account"),
		)

		c.Redirect(http.StatusFound, authURL)
	}
}

func AuthCallback(signInEndpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		if reason := c.Query("error"); reason != "" {
			err := errors.New(reason)
			c.Abort()
			c.Error(err)
			c.String(http.StatusUnauthorized, err.Error())
			return
		}

		code := c.Query("code")
		if code == "" {
			err := errors.New("code is required")
			c.Abort()
			c.Error(err)
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		state := c.Query("state")
		s, ok := store.Get(state)
		if state == "" || !ok {
			c.Abort()
			c.Error(ErrInvalidState)
			c.String(http.StatusBadRequest, ErrInvalidState.Error())
			return
		}
		defer store.Delete(state)

		session, ok := s.(*Session)
		if !ok {
			err := errors.New("invalid session data")
			c.Abort()
			c.Error(err)
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		ctx := c.Request.Context()
		ctx = context.WithValue(ctx, cms.Nonce, session.Nonce)

		token, err := config.Exchange(ctx, code)
		if err != nil {
			c.Abort()
			c.Error(err)
			c.String(http.StatusInternalServerError, err.Error())
			return
		}

		idToken, ok := token.Extra("id_token").(string)
		if !ok {
			c.Abort()
			c.Error(ErrIDTokenNotFound)
			c.String(http.StatusInternalServerError, ErrIDTokenNotFound.Error())
			return
		}

		resp, err := signInEndpoint(ctx, idToken)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, cms.ErrNotAdmin) {
				status = http.StatusForbidden
			}

			c.Abort()
			c.Error(err)
			c.String(status, err.Error())
			return
		}

		response, ok := resp.(cms.SignInResponse)
		if !ok {
			err := errors.New("invalid admin")
			c.Abort()
			c.Error(err)
			c.String(http.StatusExpectationFailed, err.Error())
			return
		}

		t, err := transHTTP.IssueToken(response.Admin)
		if err != nil {
			c.Abort()
			c.Error(err)
			c.String(http.StatusExpectationFailed, err.Error())
			return
		}

		response.Token = t

		if session.ReturnTo == "" {
			c.JSON(http.StatusOK, &response)
			return
		}

		// token travels in the fragment, not the query
		fragment := url.Values{
			"token":      {t.Token},
			"expired_at": {t.ExpiredAt.Format(time.RFC3339)},
		}

		c.Redirect(http.StatusFound, session.ReturnTo+"#"+fragment.Encode())
	}
}
