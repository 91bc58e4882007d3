package render

import (
	"encoding/json"

	"github.com/matzehuels/radials/pkg/errors"
	"github.com/matzehuels/radials/pkg/radial"
)

// RenderJSON returns the bundle as indented JSON.
func RenderJSON(b radial.Bundle) ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "encode bundle")
	}
	return append(data, '\n'), nil
}
