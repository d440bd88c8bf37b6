package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	engine := gin.New()
	r := NewRouter(engine, WithLogger(zap.New(core)))

	quotations := NewDomainGroup("quotations", "/quotations")
	quotations.GET("/:id", func(c *gin.Context) { c.String(http.StatusOK, "quote "+c.Param("id")) })
	invoices := NewDomainGroup("invoices", "/invoices")
	invoices.POST("", func(c *gin.Context) { c.Status(http.StatusCreated) })

	r.Register(quotations, invoices).Setup()

	w := get(engine, http.MethodGet, "/api/v1/quotations/42")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "quote 42", w.Body.String())
	assert.Equal(t, http.StatusCreated, get(engine, http.MethodPost, "/api/v1/invoices").Code)
	assert.Equal(t, http.StatusNotFound, get(engine, http.MethodGet, "/quotations/42").Code)

	assert.Equal(t, 2, logs.FilterMessage("Route registered").Len())
}

func TestDomainGroup_Methods(t *testing.T) {
	ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
	g := NewDomainGroup("invoices", "/invoices").
		GET("/:id", ok).
		POST("/:id/receipts", ok).
		PUT("/:id/status", ok).
		PATCH("/:id", ok).
		DELETE("/:id", ok)

	engine := gin.New()
	g.RegisterRoutes(engine.Group("/api/v1"))

	tests := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/v1/invoices/1"},
		{http.MethodPost, "/api/v1/invoices/1/receipts"},
		{http.MethodPut, "/api/v1/invoices/1/status"},
		{http.MethodPatch, "/api/v1/invoices/1"},
		{http.MethodDelete, "/api/v1/invoices/1"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := get(engine, tt.method, tt.target)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.method, w.Body.String())
		})
	}
}

func TestDomainGroup_Middleware(t *testing.T) {
	var order []string
	g := NewDomainGroup("quotations", "/quotations").Use(func(c *gin.Context) {
		order = append(order, "group")
		c.Next()
	})
	g.GET("", func(c *gin.Context) {
		order = append(order, "handler")
		c.Status(http.StatusOK)
	})

	engine := gin.New()
	g.RegisterRoutes(engine.Group("/api/v1"))
	get(engine, http.MethodGet, "/api/v1/quotations")

	assert.Equal(t, []string{"group", "handler"}, order)
}

func TestDomainGroup_Routes(t *testing.T) {
	noop := func(c *gin.Context) {}
	g := NewDomainGroup("invoices", "/invoices")
	g.POST("", noop)
	g.GET("/:id", noop)
	g.Group("items", "/:id/items").DELETE("/:itemId", noop)

	assert.Equal(t, "invoices", g.Name())
	assert.Equal(t, "/invoices", g.Prefix())

	var got []string
	for _, route := range g.Routes() {
		got = append(got, route.Method+" "+route.Path)
	}
	assert.Equal(t, []string{
		"POST /invoices",
		"GET /invoices/:id",
		"DELETE /invoices/:id/items/:itemId",
	}, got)
}
