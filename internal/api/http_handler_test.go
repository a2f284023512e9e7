package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kilofresh-admin/internal/backend"
	"kilofresh-admin/internal/console"
)

const (
	testMaxFileSize    = 5 * 1024 * 1024
	testMaxRequestSize = 32 * 1024 * 1024
)

// fakeBackend stands in for the Kilo Fresh REST API.
type fakeBackend struct {
	router *chi.Mux
}

func newFakeBackend() *fakeBackend {
	fb := &fakeBackend{router: chi.NewRouter()}

	fb.router.Get("/categories/category/getAll", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"categories": []map[string]any{
				{"_id": "c1", "name": "Fruits", "image": map[string]string{"url": "https://cdn/f.png"}},
			},
		})
	})
	fb.router.Post("/categories/addCategory", func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"category": map[string]any{"_id": "c2", "name": r.FormValue("name")},
			"message":  "تم إضافة الفئة بنجاح",
		})
	})
	fb.router.Put("/categories/updateCategory/{id}", func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		json.NewEncoder(w).Encode(map[string]any{
			"category": map[string]any{"_id": chi.URLParam(r, "id"), "name": r.FormValue("name")},
			"message":  "تم تحديث الفئة بنجاح",
		})
	})
	fb.router.Delete("/categories/deleteCategory/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "locked" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "تم حذف الفئة بنجاح"})
	})

	fb.router.Get("/products/product/getAll", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"products": []map[string]any{
				{"_id": "p1", "name": "Apples", "description": "crisp", "priceBefore": 100,
					"priceAfter": 80, "category": "c1", "isOffer": true,
					"images": []map[string]string{{"url": "https://cdn/a.png"}}},
			},
			"count": 1,
		})
	})
	fb.router.Post("/products/addProduct", func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"product": map[string]any{"_id": "p2", "name": r.FormValue("name")},
			"message": "تم إضافة المنتج بنجاح",
		})
	})
	fb.router.Put("/products/updateProduct/{id}", func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		json.NewEncoder(w).Encode(map[string]any{
			"product": map[string]any{"_id": chi.URLParam(r, "id"), "name": r.FormValue("name")},
		})
	})
	fb.router.Delete("/products/deleteProduct/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "تم حذف المنتج بنجاح"})
	})

	fb.router.Get("/order/getAll", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"orders": []map[string]any{
				{"_id": "o1", "name": "Ali", "status": "pending", "total": 210},
			},
			"count": 1,
		})
	})
	fb.router.Get("/order/getById/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"order": map[string]any{"_id": chi.URLParam(r, "id"), "name": "Ali", "status": "pending"},
		})
	})
	fb.router.Put("/order/updateStatus/{id}", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		json.NewEncoder(w).Encode(map[string]any{
			"order":   map[string]any{"_id": chi.URLParam(r, "id"), "status": payload["status"]},
			"message": "تم تحديث حالة الطلب بنجاح",
		})
	})
	fb.router.Delete("/order/delete/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "تم حذف الطلب بنجاح"})
	})

	return fb
}

// newTestRouter wires real screens and a real backend client against the fake
// backend, returning the console router under test.
func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	router, _ := newTestRouterMaxFile(t, httptest.NewServer(newFakeBackend().router), testMaxFileSize)
	return router
}

// newTestRouterMaxFile wires the router against the given fake backend server
// with a custom per-file upload ceiling, also returning the category screen
// for tests asserting on session state.
func newTestRouterMaxFile(t *testing.T, srv *httptest.Server, maxFile int64) (chi.Router, *console.CategoryScreen) {
	t.Helper()
	t.Cleanup(srv.Close)

	logger := zerolog.Nop()
	client := backend.New(srv.URL, 5*time.Second, logger)
	notifier := console.NewNotifier()
	categories := console.NewCategoryScreen(client, notifier, maxFile, logger)
	products := console.NewProductScreen(client, categories.Store(), notifier, maxFile, logger)
	orders := console.NewOrderScreen(client, notifier, logger)

	handler := NewHTTPHandler(categories, products, orders, notifier, testMaxRequestSize, logger)
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router, categories
}

// multipartBody builds a multipart payload of plain fields plus named file
// parts.
func multipartBody(t *testing.T, fields map[string]string, files map[string][]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, names := range files {
		for _, name := range names {
			fw, err := mw.CreateFormFile(field, name)
			require.NoError(t, err)
			_, err = fw.Write([]byte("image-bytes"))
			require.NoError(t, err)
		}
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

// testFile is one multipart file part with explicit content.
type testFile struct {
	field   string
	name    string
	content []byte
}

func multipartBodyFiles(t *testing.T, fields map[string]string, files []testFile) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func doRequest(t *testing.T, router chi.Router, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHTTPHandler_ListCategories(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/categories", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Categories []map[string]any `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Categories, 1)
	assert.Equal(t, "Fruits", res.Categories[0]["name"])
}

func TestHTTPHandler_CreateCategory(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartBody(t,
		map[string]string{"name": "Bakery"},
		map[string][]string{"image": {"bakery.png"}},
	)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/categories", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)

	var res struct {
		Notice *console.Notice `json:"notice"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Notice)
	assert.Equal(t, console.NoticeSuccess, res.Notice.Kind)
	assert.Equal(t, "تم إضافة الفئة بنجاح", res.Notice.Text)
}

func TestHTTPHandler_CreateCategory_ValidationErrors(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartBody(t, map[string]string{"name": "  "}, nil)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/categories", body, contentType)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var res struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "اسم الفئة مطلوب", res.Errors["name"])
	assert.Equal(t, "صورة الفئة مطلوبة", res.Errors["image"])
}

func TestHTTPHandler_UpdateCategory(t *testing.T) {
	router := newTestRouter(t)

	// Seed the snapshot so the edit session can find c1.
	rec := doRequest(t, router, http.MethodGet, "/api/v1/categories", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body, contentType := multipartBody(t, map[string]string{"name": "Fresh Fruits"}, nil)
	rec = doRequest(t, router, http.MethodPut, "/api/v1/categories/c1", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPHandler_UpdateCategory_UnknownID(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/categories", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body, contentType := multipartBody(t, map[string]string{"name": "Ghost"}, nil)
	rec = doRequest(t, router, http.MethodPut, "/api/v1/categories/missing", body, contentType)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPHandler_DeleteCategory_BackendFailure(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/categories/locked", nil, "")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var res struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	// No JSON body from the backend, so the fixed fallback message surfaces.
	assert.Equal(t, "فشل في حذف الفئة", res.Error)
}

func TestHTTPHandler_CreateProduct(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartBody(t,
		map[string]string{
			"name":        "Bananas",
			"description": "Ripe",
			"priceBefore": "30",
			"priceAfter":  "25",
			"category":    "c1",
			"isOffer":     "true",
		},
		map[string][]string{"images": {"a.png", "b.png"}},
	)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/products", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)

	var res struct {
		Notice *console.Notice `json:"notice"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Notice)
	assert.Equal(t, console.NoticeSuccess, res.Notice.Kind)
}

func TestHTTPHandler_CreateProduct_PricePairRejected(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartBody(t,
		map[string]string{
			"name":        "Bananas",
			"description": "Ripe",
			"priceBefore": "100",
			"priceAfter":  "120",
			"category":    "c1",
		},
		map[string][]string{"images": {"a.png"}},
	)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/products", body, contentType)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var res struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "السعر بعد الخصم يجب أن يكون أقل من السعر الأصلي", res.Errors["priceAfter"])
	assert.NotContains(t, res.Errors, "name")
}

func TestHTTPHandler_UpdateProduct_WithRemovals(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Remove the only persisted image and stage a replacement in the same
	// request.
	body, contentType := multipartBody(t,
		map[string]string{
			"name":         "Apples",
			"description":  "crisp",
			"priceBefore":  "100",
			"priceAfter":   "80",
			"category":     "c1",
			"isOffer":      "true",
			"removeImages": "0",
		},
		map[string][]string{"images": {"replacement.png"}},
	)
	rec = doRequest(t, router, http.MethodPut, "/api/v1/products/p1", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPHandler_DeleteProduct(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/products/p1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Notice *console.Notice `json:"notice"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Notice)
	assert.Equal(t, "تم حذف المنتج بنجاح", res.Notice.Text)
}

func TestHTTPHandler_GetOrder(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/orders/o1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Order map[string]any `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "o1", res.Order["_id"])
}

func TestHTTPHandler_UpdateOrderStatus(t *testing.T) {
	router := newTestRouter(t)

	body := strings.NewReader(`{"status":"completed"}`)
	rec := doRequest(t, router, http.MethodPut, "/api/v1/orders/o1/status", body, "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Notice *console.Notice `json:"notice"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Notice)
	assert.Equal(t, "تم تحديث حالة الطلب بنجاح", res.Notice.Text)
}

func TestHTTPHandler_UpdateOrderStatus_InvalidValue(t *testing.T) {
	router := newTestRouter(t)

	body := strings.NewReader(`{"status":"vanished"}`)
	rec := doRequest(t, router, http.MethodPut, "/api/v1/orders/o1/status", body, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPHandler_ListOrders(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/orders", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Orders []map[string]any `json:"orders"`
		Count  int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Count)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "pending", res.Orders[0]["status"])
}

func TestHTTPHandler_SubmitTeardownSparesSuccessorSession(t *testing.T) {
	release := make(chan struct{})
	reloadStarted := make(chan struct{})
	var once sync.Once

	mux := chi.NewRouter()
	mux.Get("/categories/category/getAll", func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(reloadStarted) })
		<-release
		json.NewEncoder(w).Encode(map[string]any{"categories": []map[string]any{}})
	})
	mux.Post("/categories/addCategory", func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"category": map[string]any{"_id": "c1", "name": r.FormValue("name")},
			"message":  "تم إضافة الفئة بنجاح",
		})
	})
	router, categories := newTestRouterMaxFile(t, httptest.NewServer(mux), testMaxFileSize)

	body, contentType := multipartBody(t,
		map[string]string{"name": "Fruits"},
		map[string][]string{"image": {"f.png"}},
	)
	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- doRequest(t, router, http.MethodPost, "/api/v1/categories", body, contentType)
	}()

	// The submit has succeeded and closed its own session; the post-submit
	// list reload is now held in flight. A session opened in this window
	// must survive the first request's deferred teardown.
	<-reloadStarted
	require.NoError(t, categories.OpenCreate())
	close(release)

	rec := <-done
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, console.SessionCreating, categories.SessionState())
	categories.Cancel()
}

func TestHTTPHandler_CreateProduct_OversizedImageReported(t *testing.T) {
	router, _ := newTestRouterMaxFile(t, httptest.NewServer(newFakeBackend().router), 16)

	body, contentType := multipartBodyFiles(t,
		map[string]string{
			"name":        "Bananas",
			"description": "Ripe",
			"priceBefore": "30",
			"priceAfter":  "25",
			"category":    "c1",
		},
		[]testFile{
			{field: "images", name: "ok.png", content: []byte("small")},
			{field: "images", name: "big.png", content: bytes.Repeat([]byte("x"), 64)},
		},
	)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/products", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)

	// The product was created from the valid file, but the response must
	// carry the rejection of its oversized batch-mate.
	var res struct {
		Notice *console.Notice   `json:"notice"`
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Notice)
	assert.Equal(t, console.NoticeSuccess, res.Notice.Kind)
	assert.Equal(t, "حجم إحدى الصور كبير جداً (الحد الأقصى 5 ميجابايت لكل صورة)", res.Errors["images"])
}

func TestHTTPHandler_CreateProduct_AllImagesOversized(t *testing.T) {
	router, _ := newTestRouterMaxFile(t, httptest.NewServer(newFakeBackend().router), 16)

	body, contentType := multipartBodyFiles(t,
		map[string]string{
			"name":        "Bananas",
			"description": "Ripe",
			"priceBefore": "30",
			"priceAfter":  "25",
			"category":    "c1",
		},
		[]testFile{
			{field: "images", name: "big.png", content: bytes.Repeat([]byte("x"), 64)},
		},
	)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/products", body, contentType)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// The size rejection is the reason no image is staged; the generic
	// "at least one image" message would misreport it.
	var res struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "حجم إحدى الصور كبير جداً (الحد الأقصى 5 ميجابايت لكل صورة)", res.Errors["images"])
}

func TestHTTPHandler_CreateProduct_UnparseablePrice(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartBody(t,
		map[string]string{
			"name":        "Bananas",
			"description": "Ripe",
			"priceBefore": "not-a-number",
			"priceAfter":  "25",
			"category":    "c1",
		},
		map[string][]string{"images": {"a.png"}},
	)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/products", body, contentType)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var res struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Contains(t, res.Error, "priceBefore")
}

func TestHTTPHandler_CreateProduct_UnparseableIsOffer(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartBody(t,
		map[string]string{
			"name":        "Bananas",
			"description": "Ripe",
			"priceBefore": "30",
			"priceAfter":  "25",
			"category":    "c1",
			"isOffer":     "maybe",
		},
		map[string][]string{"images": {"a.png"}},
	)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/products", body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRespondScreenError_ConsoleSentinels(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{console.ErrFormOpen, http.StatusConflict},
		{console.ErrFormClosed, http.StatusConflict},
		{console.ErrBusy, http.StatusConflict},
		{console.ErrUnknownEntity, http.StatusNotFound},
		{console.ErrValidation, http.StatusUnprocessableEntity},
		{console.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		respondScreenError(rec, tc.err)
		assert.Equal(t, tc.code, rec.Code, "%v", tc.err)

		var res ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		// Local failures keep their own text, never the connection message.
		assert.Equal(t, tc.err.Error(), res.Error)
	}

	rec := httptest.NewRecorder()
	respondScreenError(rec, &backend.Error{Message: "فشل في جلب الفئات", Status: 500})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var res ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "فشل في جلب الفئات", res.Error)
}

func TestHTTPHandler_GetNotice_EmptySlot(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/notices", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Notice *console.Notice `json:"notice"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Nil(t, res.Notice)
}
