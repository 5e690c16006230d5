package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/tecnova-catalog/internal/config"
	"github.com/javajoker/tecnova-catalog/internal/models"
)

func testRemoteConfig(baseURL string) config.RemoteConfig {
	return config.RemoteConfig{
		BaseURL:         baseURL,
		SearchPath:      "/search",
		SearchParam:     "nome",
		ImportPath:      "/importar",
		ImagePath:       "/imagens",
		ProductPart:     "produto",
		CreateImagePart: "imagens",
		UpdateImagePart: "novasImagens",
		Timeout:         2 * time.Second,
	}
}

func quietLogger() *logrus.Entry {
	logger, _ := test.NewNullLogger()
	return logrus.NewEntry(logger)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*CatalogClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewCatalogClient(testRemoteConfig(srv.URL+"/api/produtos"), srv.Client(), quietLogger()), srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func lampDraft() models.ProductDraft {
	return models.ProductDraft{
		Name:     "Lamp",
		Price:    decimal.RequireFromString("19.99"),
		Quantity: 10,
	}
}

func TestCatalogClientCreateSendsMultipart(t *testing.T) {
	var (
		productJSON map[string]interface{}
		partType    string
		fileNames   []string
		fileData    string
	)

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/produtos", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Empty(t, r.MultipartForm.File["produto"], "product part must not be a file")
		raw := r.MultipartForm.Value["produto"]
		if assert.Len(t, raw, 1) {
			assert.NoError(t, json.Unmarshal([]byte(raw[0]), &productJSON))
		}

		for _, f := range r.MultipartForm.File["imagens"] {
			fileNames = append(fileNames, f.Filename)
			partType = f.Header.Get("Content-Type")
			rc, _ := f.Open()
			data, _ := io.ReadAll(rc)
			rc.Close()
			fileData = string(data)
		}

		writeJSON(w, http.StatusCreated, `{"id":7,"nome":"Lamp","preco":19.99,"quantidade":10,"imagens":["http://img/7.png"]}`)
	})

	product, err := client.Create(context.Background(), lampDraft(), []models.ImageUpload{
		{Filename: "lamp.png", ContentType: "image/png", Data: []byte("png-bytes")},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), product.ID)
	assert.True(t, product.Persisted())
	assert.True(t, decimal.RequireFromString("19.99").Equal(product.Price))
	assert.Equal(t, []string{"http://img/7.png"}, product.Images)

	assert.Equal(t, "Lamp", productJSON["nome"])
	assert.Equal(t, 19.99, productJSON["preco"])
	assert.Equal(t, float64(10), productJSON["quantidade"])
	assert.NotContains(t, productJSON, "imagens")
	assert.NotContains(t, productJSON, "id")

	assert.Equal(t, []string{"lamp.png"}, fileNames)
	assert.Equal(t, "image/png", partType)
	assert.Equal(t, "png-bytes", fileData)
}

func TestCatalogClientCreateWithoutImages(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Len(t, r.MultipartForm.Value["produto"], 1)
		assert.Empty(t, r.MultipartForm.File)
		writeJSON(w, http.StatusCreated, `{"id":1,"nome":"Lamp","preco":19.99,"quantidade":10,"imagens":[]}`)
	})

	product, err := client.Create(context.Background(), lampDraft(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), product.ID)
}

func TestCatalogClientUpdateUsesNewImagesPart(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/produtos/7", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Len(t, r.MultipartForm.File["novasImagens"], 2)
		assert.Empty(t, r.MultipartForm.File["imagens"])

		files := r.MultipartForm.File["novasImagens"]
		assert.Equal(t, "image-2", files[1].Filename)
		writeJSON(w, http.StatusOK, `{"id":7,"nome":"Lamp","preco":9.5,"quantidade":1}`)
	})

	product, err := client.Update(context.Background(), 7, lampDraft(), []models.ImageUpload{
		{Filename: "a.jpg", Data: []byte{0xff, 0xd8, 0xff}},
		{Data: []byte("GIF89a")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, product.Quantity)
}

func TestCatalogClientListAndSearchQueries(t *testing.T) {
	var seen []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.RequestURI())
		writeJSON(w, http.StatusOK, `[{"id":1,"nome":"Mouse","quantidade":3}]`)
	})
	ctx := context.Background()

	products, err := client.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, products, 1)

	_, err = client.List(ctx, "mouse gamer")
	require.NoError(t, err)

	_, err = client.Search(ctx, "fone")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/api/produtos",
		"/api/produtos?nome=mouse+gamer",
		"/api/produtos/search?nome=fone",
	}, seen)
}

func TestCatalogClientListNullBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `null`)
	})

	products, err := client.List(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestCatalogClientRemoteErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantCode    string
		wantMessage string
		notFound    bool
	}{
		{
			name:        "backend error response",
			status:      http.StatusNotFound,
			body:        `{"code":"PRODUCT_NOT_FOUND","message":"Produto não encontrado com id: 99","status":404}`,
			wantCode:    "PRODUCT_NOT_FOUND",
			wantMessage: "Produto não encontrado com id: 99",
			notFound:    true,
		},
		{
			name:        "error envelope",
			status:      http.StatusBadRequest,
			body:        `{"error":{"code":"BAD","message":"nome é obrigatório"}}`,
			wantCode:    "BAD",
			wantMessage: "nome é obrigatório",
		},
		{
			name:        "empty body falls back to status text",
			status:      http.StatusInternalServerError,
			wantMessage: "Internal Server Error",
		},
		{
			name:        "html body falls back to status text",
			status:      http.StatusBadGateway,
			body:        "<html>bad gateway</html>",
			wantMessage: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := client.Get(context.Background(), 99)
			require.Error(t, err)

			var remoteErr *RemoteError
			require.True(t, errors.As(err, &remoteErr))
			assert.Equal(t, tt.status, remoteErr.Status)
			assert.Equal(t, tt.wantCode, remoteErr.Code)
			assert.Equal(t, tt.wantMessage, remoteErr.Message)
			assert.Equal(t, tt.notFound, IsNotFound(err))
		})
	}
}

func TestCatalogClientDeleteNoContent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/produtos/3", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, client.Delete(context.Background(), 3))
}

func TestCatalogClientEmptySuccessBodyIsError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.Get(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response body")
}

func TestCatalogClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client := NewCatalogClient(testRemoteConfig(baseURL+"/api/produtos"), nil, quietLogger())
	_, err := client.List(context.Background(), "")
	require.Error(t, err)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.MethodGet, netErr.Op)
	assert.False(t, netErr.Timeout())
}

func TestCatalogClientTimeout(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	client.cfg.Timeout = 50 * time.Millisecond

	_, err := client.List(context.Background(), "")
	require.Error(t, err)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.True(t, netErr.Timeout())
}

func TestCatalogClientImport(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/produtos/importar", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var drafts []map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&drafts))
		require.Len(t, drafts, 1)
		assert.Equal(t, []interface{}{"https://cdn.test/lamp.png"}, drafts[0]["imagens"])

		writeJSON(w, http.StatusCreated, `[{"id":11,"nome":"Lamp","quantidade":10,"imagens":["http://localhost:8080/api/produtos/imagens/lamp.png"]}]`)
	})

	draft := lampDraft()
	draft.Images = []string{"https://cdn.test/lamp.png"}

	products, err := client.Import(context.Background(), []models.ProductDraft{draft})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(11), products[0].ID)
}

func TestCatalogClientFetchImage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/produtos/imagens/lamp.png", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		io.WriteString(w, "png-bytes")
	})

	img, err := client.FetchImage(context.Background(), "lamp.png")
	require.NoError(t, err)
	assert.Equal(t, "lamp.png", img.Filename)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, []byte("png-bytes"), img.Data)

	_, err = client.FetchImage(context.Background(), "  ")
	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestImageURL(t *testing.T) {
	client := NewCatalogClient(testRemoteConfig("http://localhost:8080/api/produtos"), nil, nil)

	assert.Equal(t, "https://cdn.test/a.png", client.ImageURL("https://cdn.test/a.png"))
	assert.Equal(t, "http://localhost:8080/api/produtos/imagens/a.png", client.ImageURL("a.png"))
	assert.Equal(t, "http://localhost:8080/api/produtos/imagens/a.png", client.ImageURL("/a.png"))
	assert.Equal(t, "http://localhost:8080/api/produtos/imagens/foto%20nova.png", client.ImageURL("foto nova.png"))
	assert.Equal(t, "", client.ImageURL(""))
}

func TestCatalogClientRateLimiterHonoursContext(t *testing.T) {
	cfg := testRemoteConfig("http://127.0.0.1:1/api/produtos")
	cfg.RateLimit = 0.001
	cfg.RateBurst = 1
	client := NewCatalogClient(cfg, nil, quietLogger())

	// Drain the single token so the next call has to wait
	require.True(t, client.limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.List(ctx, "")

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
}
