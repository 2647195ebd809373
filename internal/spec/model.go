package spec

// Document is a JSON-decoded OpenAPI or Swagger document. Mutators operate on
// it in place, so a Document must have a single owner while it is being
// normalized.
type Document = map[string]any

// ImportFormat selects how a document is submitted to the APIM API create
// endpoint.
type ImportFormat string

const (
	FormatSwaggerJSON ImportFormat = "swagger-json"
	FormatOpenAPI     ImportFormat = "openapi"
	FormatOpenAPIJSON ImportFormat = "openapi+json"
)

// Info mirrors the document's info object.
type Info struct {
	Title          string `json:"title" yaml:"title"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
	Version        string `json:"version" yaml:"version"`
	TermsOfService string `json:"termsOfService,omitempty" yaml:"termsOfService,omitempty"`
}

// ImportDescriptor is the normalized view of a document ready for import.
type ImportDescriptor struct {
	// Version is the raw version tag, "2.0" or a 3.x string.
	Version string `json:"version" yaml:"version"`
	// Format is fully determined by Version.
	Format ImportFormat `json:"importFormat" yaml:"importFormat"`
	// Source is the caller's document, not a copy.
	Source Document `json:"-" yaml:"-"`
	// Location is the file path or URL the document was loaded from, if any.
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	Info   Info     `json:"info" yaml:"info"`

	Host     string   `json:"host,omitempty" yaml:"host,omitempty"`
	BasePath string   `json:"basePath,omitempty" yaml:"basePath,omitempty"`
	Schemes  []string `json:"schemes,omitempty" yaml:"schemes,omitempty"`
}

// IsV2 reports whether the descriptor wraps a Swagger 2.0 document.
func (d *ImportDescriptor) IsV2() bool { return d != nil && d.Format == FormatSwaggerJSON }

// Operation is a single method+path pair found in a document.
type Operation struct {
	Method      string   `json:"method" yaml:"method"`
	Path        string   `json:"path" yaml:"path"`
	OperationID string   `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Summary     string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}
