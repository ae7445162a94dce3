package api

import "encoding/json"

// monthResponse is the envelope returned by /ajax/getShalatbln.
// Only data is consumed; message explains a missing data member.
type monthResponse struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// option is one <option> of a region selector.
type option struct {
	Value string
	Label string
}
