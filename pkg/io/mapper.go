package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/prooftower/pkg/errors"
)

const mapperKey = "Concept2Representative"

// ReadMapper decodes a concept-to-representative dictionary. Both a bare
// object and one wrapped under "Concept2Representative" are accepted.
func ReadMapper(r io.Reader) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "decode mapper")
	}
	if inner, ok := raw[mapperKey]; ok {
		var m map[string]string
		if err := json.Unmarshal(inner, &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "decode %s", mapperKey)
		}
		return orEmpty(m), nil
	}

	m := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "mapper entry %q", k)
		}
		m[k] = s
	}
	return m, nil
}

// ImportMapper reads the mapper at path.
func ImportMapper(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return ReadMapper(f)
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
