package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"msgsvc/types"
)

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(XUserMiddleware())
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, string(Requester(c)))
	})
	r.DELETE("/owned", func(c *gin.Context) {
		if !RequireCreator(c, types.Identity(`{"id":"u1"}`)) {
			return
		}
		c.String(http.StatusOK, "deleted")
	})
	return r
}

func TestXUserMiddlewareRejectsMissingHeader(t *testing.T) {
	r := newAuthRouter()

	for _, header := range []string{"", "   "} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set(XUser, header)
		}
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected %d, got %d", http.StatusUnauthorized, rec.Code)
		}
		if rec.Body.String() != StatusXUserRequired {
			t.Fatalf("unexpected body %q", rec.Body.String())
		}
	}
}

func TestXUserMiddlewareExposesIdentity(t *testing.T) {
	r := newAuthRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(XUser, `{"id":"u1"}`)
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if rec.Body.String() != `{"id":"u1"}` {
		t.Fatalf("unexpected identity %q", rec.Body.String())
	}
}

func TestRequireCreator(t *testing.T) {
	r := newAuthRouter()

	cases := []struct {
		header string
		code   int
	}{
		{`{"id":"u1","userName":"alice"}`, http.StatusOK},
		{`{"id":"u2"}`, http.StatusForbidden},
		{`u1`, http.StatusForbidden},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/owned", nil)
		req.Header.Set(XUser, tc.header)
		r.ServeHTTP(rec, req)

		if rec.Code != tc.code {
			t.Fatalf("header %s: expected %d, got %d", tc.header, tc.code, rec.Code)
		}
		if tc.code == http.StatusForbidden && rec.Body.String() != StatusAuthorRequired {
			t.Fatalf("unexpected body %q", rec.Body.String())
		}
	}
}
