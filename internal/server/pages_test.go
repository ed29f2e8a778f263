package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticPages(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/", "/about/", "/location/", "/contact/", "/products/"} {
		w := env.get(path)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d: %s", path, w.Code, w.Body.String())
		}
		require.Contains(t, w.Header().Get("Content-Type"), "text/html")
	}
}

func TestProductListPagination(t *testing.T) {
	env := newTestEnv(t)

	beef := env.category(t, "牛肉", "Beef")
	for i := 0; i < 15; i++ {
		env.product(t, beef.ID, fmt.Sprintf("牛排%d", i), fmt.Sprintf("Steak %d", i), "500")
	}

	w := env.get("/products/?page=2")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Steak")

	w = env.get("/products/?page=last")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.get("/products/?page=3")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.get("/products/?page=abc")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.get("/products/?category=beef")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.get("/products/?category=lamb")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductDetail(t *testing.T) {
	env := newTestEnv(t)

	beef := env.category(t, "牛肉", "Beef")
	ribeye := env.product(t, beef.ID, "肋眼牛排", "Ribeye Steak", "1280.50")
	require.Equal(t, "ribeye-steak", ribeye.Slug)

	w := env.get("/products/ribeye-steak/")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "NT$ 1,280.50")
	require.Contains(t, w.Body.String(), "Ribeye Steak")

	w = env.get("/products/no-such-cut/")
	require.Equal(t, http.StatusNotFound, w.Code)
}
