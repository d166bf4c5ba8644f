package mailtm

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Collection is a page of a Hydra collection.
type Collection[T any] struct {
	Member     []T    `json:"hydra:member"`
	TotalItems int    `json:"hydra:totalItems"`
	View       View   `json:"hydra:view"`
	Search     Search `json:"hydra:search"`
}

// collectionJSON mirrors Collection without its UnmarshalJSON method.
type collectionJSON[T any] struct {
	Member     []T    `json:"hydra:member"`
	TotalItems int    `json:"hydra:totalItems"`
	View       View   `json:"hydra:view"`
	Search     Search `json:"hydra:search"`
}

// UnmarshalJSON implements json.Unmarshaler. A page without members decodes
// to an empty, non-nil Member slice.
func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	var raw collectionJSON[T]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Member == nil {
		raw.Member = []T{}
	}
	*c = Collection[T](raw)
	return nil
}

// View is the set of pagination links of a collection page (hydra:view).
type View struct {
	IRI      string `json:"@id,omitempty"`
	Type     string `json:"@type,omitempty"`
	First    string `json:"hydra:first,omitempty"`
	Last     string `json:"hydra:last,omitempty"`
	Previous string `json:"hydra:previous,omitempty"`
	Next     string `json:"hydra:next,omitempty"`
}

// HasNext reports whether the server advertised a next page.
func (v View) HasNext() bool {
	return v.Next != ""
}

// Search describes the query template of a collection (hydra:search).
type Search struct {
	Type                   string    `json:"@type,omitempty"`
	Template               string    `json:"hydra:template,omitempty"`
	VariableRepresentation string    `json:"hydra:variableRepresentation,omitempty"`
	Mapping                []Mapping `json:"hydra:mapping,omitempty"`
}

type searchJSON struct {
	Type                   string          `json:"@type"`
	Template               string          `json:"hydra:template"`
	VariableRepresentation string          `json:"hydra:variableRepresentation"`
	Mapping                json.RawMessage `json:"hydra:mapping"`
}

// UnmarshalJSON implements json.Unmarshaler. hydra:mapping is accepted both
// as a single object and as an array of objects.
func (s *Search) UnmarshalJSON(data []byte) error {
	var raw searchJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Search{
		Type:                   raw.Type,
		Template:               raw.Template,
		VariableRepresentation: raw.VariableRepresentation,
	}

	m := bytes.TrimSpace(raw.Mapping)
	switch {
	case len(m) == 0 || bytes.Equal(m, []byte("null")):
	case m[0] == '[':
		if err := json.Unmarshal(m, &s.Mapping); err != nil {
			return fmt.Errorf("hydra:mapping: %w", err)
		}
	case m[0] == '{':
		var one Mapping
		if err := json.Unmarshal(m, &one); err != nil {
			return fmt.Errorf("hydra:mapping: %w", err)
		}
		s.Mapping = []Mapping{one}
	default:
		return fmt.Errorf("hydra:mapping: unexpected JSON %s", m)
	}
	return nil
}

// Mapping describes one variable of a search template.
type Mapping struct {
	Type     string `json:"@type,omitempty"`
	Variable string `json:"variable"`
	Property string `json:"property"`
	Required bool   `json:"required"`
}

// decode unmarshals body into a new T, reporting failures as *DecodeError.
func decode[T any](resource string, body []byte) (*T, error) {
	v := new(T)
	if err := json.Unmarshal(body, v); err != nil {
		return nil, &DecodeError{Resource: resource, Err: err}
	}
	return v, nil
}
