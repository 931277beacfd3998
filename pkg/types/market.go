// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
)

// OWRecord is one entry of OW.json: an empty id placeholder and a nested
// meta object carrying the display name and an attributes list.
type OWRecord struct {
	ID   string `json:"id"`
	Meta OWMeta `json:"meta"`
}

// OWMeta is the nested metadata object of an OWRecord.
type OWMeta struct {
	Name       string       `json:"name"`
	Attributes []LayerTrait `json:"attributes"`
}

// DMRecord is one entry of DM.json: a top-level empty inscription id,
// the display name, and a flat trait_type -> value mapping.
type DMRecord struct {
	InscriptionID string       `json:"inscriptionId"`
	Name          string       `json:"name"`
	Attributes    DMAttributes `json:"attributes"`
}

// DMAttributes is a trait_type -> value mapping that marshals as a JSON
// object with keys in layer order rather than sorted order.
type DMAttributes []LayerTrait

// MarshalJSON implements json.Marshaler. A later entry with a duplicate
// trait type overwrites the earlier value in place.
func (a DMAttributes) MarshalJSON() ([]byte, error) {
	order := make([]string, 0, len(a))
	values := make(map[string]string, len(a))
	for _, t := range a {
		if _, seen := values[t.TraitType]; !seen {
			order = append(order, t.TraitType)
		}
		values[t.TraitType] = t.Value
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
