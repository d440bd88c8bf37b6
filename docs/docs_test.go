package docs

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/bizdocs/backend/internal/interfaces/http/handler"
	"github.com/bizdocs/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag/v2"
)

type swaggerDoc struct {
	Info     struct{ Title string }                `json:"info"`
	BasePath string                                `json:"basePath"`
	Paths    map[string]map[string]json.RawMessage `json:"paths"`
}

func readDoc(t *testing.T) swaggerDoc {
	t.Helper()
	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var doc swaggerDoc
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestSwaggerDocument(t *testing.T) {
	doc := readDoc(t)
	assert.Equal(t, "bizdocs API", doc.Info.Title)
	assert.Equal(t, "/api/v1", doc.BasePath)
}

var ginParam = regexp.MustCompile(`:(\w+)`)

// every route the API mounts is described, with its method
func TestSwaggerDocument_CoversRoutes(t *testing.T) {
	doc := readDoc(t)

	groups := []*router.DomainGroup{
		handler.QuotationRoutes(nil),
		handler.InvoiceRoutes(nil, nil),
		handler.ReceiptRoutes(nil),
		handler.ScanRoutes(nil),
		handler.PrintRoutes(nil),
	}
	for _, g := range groups {
		for _, route := range g.Routes() {
			path := ginParam.ReplaceAllString(route.Path, "{$1}")
			t.Run(route.Method+" "+path, func(t *testing.T) {
				require.Contains(t, doc.Paths, path)
				assert.Contains(t, doc.Paths[path], strings.ToLower(route.Method))
			})
		}
	}
}
