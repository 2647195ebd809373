package arm

import (
	"encoding/json"
	"testing"

	"github.com/mark3labs/apimport/internal/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func parse(t *testing.T, doc spec.Document) *spec.ImportDescriptor {
	t.Helper()
	desc, err := spec.Parse(doc)
	require.NoError(t, err)
	return desc
}

func TestNewAPIImport_V2(t *testing.T) {
	t.Parallel()
	desc := parse(t, spec.Document{
		"swagger": "2.0",
		"info":    map[string]any{"title": "Orders", "version": "1"},
		"schemes": []any{"http", "https", "ftp", "HTTPS"},
	})

	body, err := NewAPIImport(desc, ImportOptions{Path: "/orders/", ServiceURL: " https://backend.contoso.com "})
	require.NoError(t, err)

	p := body.Properties
	assert.Equal(t, spec.FormatSwaggerJSON, p.Format)
	assert.Equal(t, "orders", p.Path)
	assert.Equal(t, "Orders", p.DisplayName)
	assert.Equal(t, "https://backend.contoso.com", p.ServiceURL)
	assert.Equal(t, []string{"http", "https"}, p.Protocols)
	assert.JSONEq(t, `{"swagger":"2.0","info":{"title":"Orders","version":"1"},"schemes":["http","https","ftp","HTTPS"]}`, p.Value)
}

func TestNewAPIImport_V3YAML(t *testing.T) {
	t.Parallel()
	desc := parse(t, spec.Document{
		"openapi": "3.0.0",
		"info":    map[string]any{"title": "Orders", "version": "1"},
	})

	body, err := NewAPIImport(desc, ImportOptions{Path: "orders", DisplayName: "Orders API", AsYAML: true})
	require.NoError(t, err)

	assert.Equal(t, spec.FormatOpenAPI, body.Properties.Format)
	assert.Equal(t, "Orders API", body.Properties.DisplayName)
	assert.Equal(t, []string{"https"}, body.Properties.Protocols)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(body.Properties.Value), &decoded))
	assert.Equal(t, "3.0.0", decoded["openapi"])
}

func TestNewAPIImport_V2IgnoresYAML(t *testing.T) {
	t.Parallel()
	desc := parse(t, spec.Document{"swagger": "2.0", "info": map[string]any{"title": "t", "version": "1"}})

	body, err := NewAPIImport(desc, ImportOptions{Path: "t", AsYAML: true, Protocols: []string{"wss"}})
	require.NoError(t, err)
	assert.Equal(t, spec.FormatSwaggerJSON, body.Properties.Format)
	assert.Equal(t, []string{"wss"}, body.Properties.Protocols)
}

func TestNewAPIImport_Errors(t *testing.T) {
	t.Parallel()
	_, err := NewAPIImport(nil, ImportOptions{Path: "x"})
	assert.Error(t, err)

	desc := parse(t, spec.Document{"openapi": "3.0.0", "info": map[string]any{"title": "t", "version": "1"}})
	_, err = NewAPIImport(desc, ImportOptions{Path: " / "})
	assert.ErrorContains(t, err, "path is required")
}

func TestNewOperationContract(t *testing.T) {
	t.Parallel()

	oc := NewOperationContract("post", "", "orders/{id:int}/lines/{line=1?}/{*rest}")
	b, err := json.Marshal(oc)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"properties": {
			"displayName": "POST /orders/{id}/lines/{line}/{rest}",
			"method": "POST",
			"urlTemplate": "/orders/{id}/lines/{line}/{rest}",
			"templateParameters": [
				{"name": "id", "type": "integer", "required": true},
				{"name": "line", "type": "string", "required": false, "defaultValue": "1"},
				{"name": "rest", "type": "string", "required": true}
			]
		}
	}`, string(b))
}

func TestNewOperationContract_Defaults(t *testing.T) {
	t.Parallel()

	oc := NewOperationContract("", "List", "/flat")
	assert.Equal(t, "GET", oc.Properties.Method)
	assert.Equal(t, "List", oc.Properties.DisplayName)
	assert.Equal(t, "/flat", oc.Properties.URLTemplate)
	assert.NotNil(t, oc.Properties.TemplateParameters)
	assert.Empty(t, oc.Properties.TemplateParameters)
}
