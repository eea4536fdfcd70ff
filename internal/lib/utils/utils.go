// Package utils contains small helper functions used across the project.
package utils

import (
	"encoding/json"
	"fmt"
	"io"
)

// PrintJSON pretty-prints v as indented JSON to w.
func PrintJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// JSONLines writes one compact JSON document per line.
type JSONLines struct {
	enc *json.Encoder
}

func NewJSONLines(w io.Writer) *JSONLines {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLines{enc: enc}
}

// Write encodes v followed by a newline.
func (j *JSONLines) Write(v interface{}) error {
	return j.enc.Encode(v)
}
