package spec

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func v2Doc() Document {
	return Document{
		"swagger": "2.0",
		"info": map[string]any{
			"title":       "Orders",
			"description": "Order management",
			"version":     "1.0.0",
		},
		"host":     "orders.contoso.com",
		"basePath": "/api",
		"schemes":  []any{"https", "http"},
		"paths":    map[string]any{},
	}
}

func v3Doc() Document {
	return Document{
		"openapi": "3.0.1",
		"info": map[string]any{
			"title":          "Orders",
			"version":        "2.1",
			"termsOfService": "https://contoso.com/terms",
		},
		"servers": []any{
			map[string]any{"url": "https://orders.contoso.com/v1"},
			map[string]any{"url": "http://orders-legacy.contoso.com/v1"},
			map[string]any{"url": "https://backup.contoso.com/v1"},
		},
		"paths": map[string]any{},
	}
}

func TestParse_V2(t *testing.T) {
	t.Parallel()
	doc := v2Doc()

	desc, err := Parse(doc)
	require.NoError(t, err)

	assert.Equal(t, "2.0", desc.Version)
	assert.Equal(t, FormatSwaggerJSON, desc.Format)
	assert.True(t, desc.IsV2())
	assert.Equal(t, Info{Title: "Orders", Description: "Order management", Version: "1.0.0"}, desc.Info)
	assert.Equal(t, "orders.contoso.com", desc.Host)
	assert.Equal(t, "/api", desc.BasePath)
	assert.Equal(t, []string{"https", "http"}, desc.Schemes)
}

func TestParse_V3DerivesFromFirstServer(t *testing.T) {
	t.Parallel()

	desc, err := Parse(v3Doc())
	require.NoError(t, err)

	assert.Equal(t, "3.0.1", desc.Version)
	assert.Equal(t, FormatOpenAPIJSON, desc.Format)
	assert.False(t, desc.IsV2())
	assert.Equal(t, "https://contoso.com/terms", desc.Info.TermsOfService)
	assert.Equal(t, "orders.contoso.com", desc.Host)
	assert.Equal(t, "/v1", desc.BasePath)
	assert.Equal(t, []string{"https", "http"}, desc.Schemes)
}

func TestParse_V3WithoutServers(t *testing.T) {
	t.Parallel()
	doc := v3Doc()
	delete(doc, "servers")

	desc, err := Parse(doc)
	require.NoError(t, err)
	assert.Empty(t, desc.Host)
	assert.Empty(t, desc.BasePath)
	assert.Nil(t, desc.Schemes)
}

func TestParse_V3TemplatedServers(t *testing.T) {
	t.Parallel()
	doc := v3Doc()
	doc["servers"] = []any{
		map[string]any{"url": "https://{env}.contoso.com/v1?x=1"},
		map[string]any{"url": "{protocol}://{env}.contoso.com/v1"},
		map[string]any{"url": "HTTP://legacy.contoso.com"},
	}

	desc, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, "{env}.contoso.com", desc.Host)
	assert.Equal(t, "/v1", desc.BasePath)
	assert.Equal(t, []string{"https", "http"}, desc.Schemes)
}

func TestParse_V3RelativeServer(t *testing.T) {
	t.Parallel()
	doc := v3Doc()
	doc["servers"] = []any{map[string]any{"url": "/v2"}}

	desc, err := Parse(doc)
	require.NoError(t, err)
	assert.Empty(t, desc.Host)
	assert.Equal(t, "/v2", desc.BasePath)
	assert.Nil(t, desc.Schemes)
}

func TestParse_V3MalformedFirstServer(t *testing.T) {
	t.Parallel()
	doc := v3Doc()
	doc["servers"] = []any{
		"https://not-an-object.contoso.com",
		map[string]any{"url": "https://second.contoso.com/v9"},
	}

	desc, err := Parse(doc)
	require.NoError(t, err)
	assert.Empty(t, desc.Host)
	assert.Empty(t, desc.BasePath)
	assert.Equal(t, []string{"https"}, desc.Schemes)
}

func TestParse_OpenAPIMarkerWins(t *testing.T) {
	t.Parallel()
	doc := v3Doc()
	doc["swagger"] = "2.0"

	desc, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, FormatOpenAPIJSON, desc.Format)
}

func TestParse_SourceIsNotCopied(t *testing.T) {
	t.Parallel()
	doc := v2Doc()
	original, err := json.Marshal(doc)
	require.NoError(t, err)

	desc, err := Parse(doc)
	require.NoError(t, err)

	value, err := desc.Value()
	require.NoError(t, err)
	assert.JSONEq(t, string(original), value)

	desc.Source["x-marker"] = true
	assert.Equal(t, true, doc["x-marker"])
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		source  any
		message string
		pointer string
	}{
		{name: "nil", source: nil, message: "could not be parsed"},
		{name: "string", source: "openapi: 3.0.0", message: "could not be parsed"},
		{name: "array", source: []any{}, message: "could not be parsed"},
		{name: "nil map", source: map[string]any(nil), message: "could not be parsed"},
		{name: "empty object", source: map[string]any{}, message: "could not be parsed"},
		{name: "old swagger", source: map[string]any{"swagger": "1.2"}, message: "unsupported version"},
		{name: "openapi 4", source: map[string]any{"openapi": "4.0.0"}, message: "unsupported version"},
		{name: "numeric swagger", source: map[string]any{"swagger": 2.0}, message: "unsupported version"},
		{name: "missing info", source: map[string]any{"swagger": "2.0"}, message: `missing required field "info"`, pointer: "#/info"},
		{
			name:    "missing title",
			source:  map[string]any{"openapi": "3.0.0", "info": map[string]any{"version": "1"}},
			message: `missing required field "info.title"`,
			pointer: "#/info/title",
		},
		{
			name:    "missing version",
			source:  map[string]any{"openapi": "3.1.0", "info": map[string]any{"title": "t"}},
			message: `missing required field "info.version"`,
			pointer: "#/info/version",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			desc, err := Parse(tc.source)
			require.Error(t, err)
			assert.Nil(t, desc)
			assert.Contains(t, err.Error(), tc.message)
			assert.True(t, errors.Is(err, ErrInvalidDocument))

			var se *SpecError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, InvalidDocument, se.Code)
			if tc.pointer != "" {
				assert.Equal(t, tc.pointer, se.JSONPointer)
			}
		})
	}
}

func TestParse_NumericInfoVersion(t *testing.T) {
	t.Parallel()
	doc := Document{"openapi": "3.0.0", "info": map[string]any{"title": "t", "version": json.Number("2")}}

	desc, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, "2", desc.Info.Version)
}

func TestUpdateBasePath_V2(t *testing.T) {
	t.Parallel()

	doc := v2Doc()
	UpdateBasePath(doc, "/orders", "gateway.contoso.net")
	assert.Equal(t, "/orders", doc["basePath"])
	assert.Equal(t, "orders.contoso.com", doc["host"], "host must not change")

	UpdateBasePath(doc, "", "gateway.contoso.net")
	_, present := doc["basePath"]
	assert.False(t, present, "empty base path removes the key")
	assert.Equal(t, "orders.contoso.com", doc["host"])
}

func TestUpdateBasePath_V3KeepsEachScheme(t *testing.T) {
	t.Parallel()

	doc := v3Doc()
	UpdateBasePath(doc, "/orders", "contoso.azure-api.net")

	servers := doc["servers"].([]any)
	require.Len(t, servers, 3)
	assert.Equal(t, "https://contoso.azure-api.net/orders", servers[0].(map[string]any)["url"])
	assert.Equal(t, "http://contoso.azure-api.net/orders", servers[1].(map[string]any)["url"])
	assert.Equal(t, "https://contoso.azure-api.net/orders", servers[2].(map[string]any)["url"])
}

func TestUpdateBasePath_V3ProxyHostWithScheme(t *testing.T) {
	t.Parallel()

	doc := v3Doc()
	UpdateBasePath(doc, "/orders", "http://contoso.azure-api.net")

	for _, s := range doc["servers"].([]any) {
		assert.Equal(t, "http://contoso.azure-api.net/orders", s.(map[string]any)["url"])
	}
}

func TestUpdateBasePath_V3TemplatedAndRelativeServers(t *testing.T) {
	t.Parallel()

	doc := Document{
		"openapi": "3.0.0",
		"info":    map[string]any{"title": "t", "version": "1"},
		"servers": []any{
			map[string]any{"url": "{protocol}://{host}/v1"},
			map[string]any{"url": "/relative"},
		},
	}
	UpdateBasePath(doc, "/x", "gw.net")

	servers := doc["servers"].([]any)
	assert.Equal(t, "{protocol}://gw.net/x", servers[0].(map[string]any)["url"])
	assert.Equal(t, "https://gw.net/x", servers[1].(map[string]any)["url"])
}

func TestUpdateBasePath_UnknownDocumentIsUntouched(t *testing.T) {
	t.Parallel()

	doc := Document{"basePath": "/keep"}
	UpdateBasePath(doc, "", "gw.net")
	assert.Equal(t, "/keep", doc["basePath"])
}

func TestUpdateBackend_V2(t *testing.T) {
	t.Parallel()

	doc := v2Doc()
	require.NoError(t, UpdateBackend(doc, "https://backend.contoso.com:8443/v2/orders"))
	assert.Equal(t, "backend.contoso.com:8443", doc["host"])
	assert.Equal(t, "/v2/orders", doc["basePath"])

	require.NoError(t, UpdateBackend(doc, "https://backend.contoso.com"))
	assert.Equal(t, "backend.contoso.com", doc["host"])
	_, present := doc["basePath"]
	assert.False(t, present)
}

func TestUpdateBackend_V2RejectsRelativeURL(t *testing.T) {
	t.Parallel()

	doc := v2Doc()
	err := UpdateBackend(doc, "not a url/path")
	require.Error(t, err)
	assert.Equal(t, "orders.contoso.com", doc["host"])
}

func TestUpdateBackend_V3ReplacesServers(t *testing.T) {
	t.Parallel()

	doc := v3Doc()
	require.NoError(t, UpdateBackend(doc, "https://backend.contoso.com/api"))
	assert.Equal(t, []any{map[string]any{"url": "https://backend.contoso.com/api"}}, doc["servers"])
}

func TestUpdateBackend_UnknownDocument(t *testing.T) {
	t.Parallel()

	err := UpdateBackend(Document{}, "https://backend.contoso.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDocument))
}

func TestDescriptorMutatorsRefreshDerivedFields(t *testing.T) {
	t.Parallel()

	desc, err := Parse(v3Doc())
	require.NoError(t, err)

	require.NoError(t, desc.UpdateBackend("http://backend.contoso.com/api"))
	assert.Equal(t, "backend.contoso.com", desc.Host)
	assert.Equal(t, "/api", desc.BasePath)
	assert.Equal(t, []string{"http"}, desc.Schemes)

	desc.UpdateBasePath("/orders", "contoso.azure-api.net")
	assert.Equal(t, "contoso.azure-api.net", desc.Host)
	assert.Equal(t, "/orders", desc.BasePath)
}

func TestClone_DoesNotAlias(t *testing.T) {
	t.Parallel()

	doc := v3Doc()
	desc, err := Parse(doc)
	require.NoError(t, err)

	clone := desc.Clone()
	clone.UpdateBasePath("/changed", "gw.net")

	first := doc["servers"].([]any)[0].(map[string]any)
	assert.Equal(t, "https://orders.contoso.com/v1", first["url"])
	assert.Equal(t, "/v1", desc.BasePath)
	assert.Equal(t, "/changed", clone.BasePath)
}
