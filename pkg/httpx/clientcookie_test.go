package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/cinedash/pkg/httpx"
	"github.com/aussiebroadwan/cinedash/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestClientCookie(t *testing.T) {
	var seen idx.ID
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := httpx.ClientIDFromContext(r.Context())
		require.True(t, ok)
		seen = id
	}), httpx.ClientCookie(httpx.ClientCookieConfig{}))

	t.Run("issues a cookie when missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, httpx.DefaultClientCookie, cookies[0].Name)
		require.True(t, cookies[0].HttpOnly)
		require.Equal(t, seen.String(), cookies[0].Value)
	})

	t.Run("reuses a valid cookie", func(t *testing.T) {
		id := idx.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: httpx.DefaultClientCookie, Value: id.String()})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Empty(t, rec.Result().Cookies())
		require.Equal(t, id, seen)
	})

	t.Run("replaces a malformed cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: httpx.DefaultClientCookie, Value: "../../etc/passwd"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Len(t, rec.Result().Cookies(), 1)
		require.NotEqual(t, "../../etc/passwd", seen.String())
	})
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mark("outer"), mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestByClient(t *testing.T) {
	limit := httpx.Limit{Name: "test", Requests: 1, Window: time.Minute, Burst: 1}
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), httpx.ClientCookie(httpx.ClientCookieConfig{}), httpx.ByClient(limit))

	do := func(id idx.ID) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		req.AddCookie(&http.Cookie{Name: httpx.DefaultClientCookie, Value: id.String()})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	a, b := idx.New(), idx.New()
	require.Equal(t, http.StatusOK, do(a))
	require.Equal(t, http.StatusTooManyRequests, do(a))
	require.Equal(t, http.StatusOK, do(b), "a second browser behind the same IP has its own bucket")
}
