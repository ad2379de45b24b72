package docs

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIYAML []byte

var (
	openAPIOnce sync.Once
	openAPIJSON []byte
	openAPIErr  error
)

// OpenAPIJSON returns the OpenAPI 3.0.3 document rendered as JSON. The YAML
// source is parsed once.
func OpenAPIJSON() ([]byte, error) {
	openAPIOnce.Do(func() {
		var doc map[string]any
		if err := yaml.Unmarshal(openAPIYAML, &doc); err != nil {
			openAPIErr = fmt.Errorf("parse openapi document: %w", err)
			return
		}
		openAPIJSON, openAPIErr = json.Marshal(doc)
	})
	return openAPIJSON, openAPIErr
}
