package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"cardstore/internal/service"
)

func TestAdminSecret(t *testing.T) {
	e := echo.New()
	handler := AdminSecret("s3cret")(func(c echo.Context) error {
		return c.String(200, "ok")
	})

	cases := []struct {
		name   string
		secret string
		header string
		want   int
	}{
		{"valid secret", "s3cret", "s3cret", 200},
		{"wrong secret", "s3cret", "nope", 401},
		{"missing header", "s3cret", "", 401},
		{"empty configured secret rejects all", "", "anything", 401},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("X-Admin-Secret", tc.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			h := handler
			if tc.secret != "s3cret" {
				h = AdminSecret(tc.secret)(func(c echo.Context) error {
					return c.String(200, "ok")
				})
			}
			assert.NoError(t, h(c))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestHTTPErrorMapping(t *testing.T) {
	e := echo.New()

	cases := []struct {
		err  error
		want int
	}{
		{service.ErrUserNotFound, 401},
		{service.ErrInvalidLogin, 401},
		{service.ErrOrderNotFound, 404},
		{service.ErrPostNotFound, 404},
		{service.ErrEmptyCart, 400},
		{service.ErrUserExists, 400},
		{service.ErrInvalidShipping, 400},
		{service.ErrCountryNotAllowed, 400},
		{service.ErrInvalidTransition, 400},
		{service.ErrMissingTracking, 400},
		{&service.StockError{CardID: "11", Stock: 1, Requested: 2}, 400},
		{&service.CardNotFoundError{CardID: "11"}, 400},
		{assert.AnError, 500},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		assert.NoError(t, httpError(c, tc.err))
		assert.Equal(t, tc.want, rec.Code, tc.err.Error())
	}
}
