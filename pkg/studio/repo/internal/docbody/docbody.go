// Package docbody encodes the kind-specific part of a document as JSON for
// SQL backends that keep it in a single column.
package docbody

import (
	"encoding/json"
	"fmt"

	"github.com/fiodorowphotography/studio/pkg/studio"
)

// Marshal encodes the body that matches doc.Kind.
func Marshal(doc *studio.Document) ([]byte, error) {
	switch doc.Kind {
	case studio.KindPortfolio:
		return json.Marshal(doc.Portfolio)
	case studio.KindReport:
		return json.Marshal(doc.Report)
	}
	return nil, fmt.Errorf("unknown document kind %q", doc.Kind)
}

// Unmarshal decodes data into the body field that matches doc.Kind.
func Unmarshal(doc *studio.Document, data []byte) error {
	switch doc.Kind {
	case studio.KindPortfolio:
		doc.Portfolio = &studio.Portfolio{}
		return json.Unmarshal(data, doc.Portfolio)
	case studio.KindReport:
		doc.Report = &studio.Report{}
		return json.Unmarshal(data, doc.Report)
	}
	return fmt.Errorf("unknown document kind %q", doc.Kind)
}
