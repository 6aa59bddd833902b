package io

import (
	"encoding/xml"
	"io"
	"os"
	"strconv"

	"github.com/matzehuels/prooftower/pkg/counterexample"
	"github.com/matzehuels/prooftower/pkg/errors"
)

// Data keys of model nodes and edges.
const (
	keyLabel  = "label"
	keyHidden = "hidden"
)

// ReadModel decodes a counterexample model from r. Nodes start visible
// unless they carry <data key="hidden">true</data>.
func ReadModel(r io.Reader) (*counterexample.Data, error) {
	g, err := decodeGraph(xml.NewDecoder(r))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "decode model")
	}
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidModel, "model has no <graph> element")
	}

	d := counterexample.NewData()
	for _, n := range g.Nodes {
		hidden, _ := strconv.ParseBool(value(n.Data, keyHidden))
		err := d.AddNode(counterexample.Node{
			ID:      n.ID,
			Label:   value(n.Data, keyLabel),
			Element: value(n.Data, keyElement),
			Visible: !hidden,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "node %q", n.ID)
		}
	}
	for i, e := range g.Edges {
		id := e.ID
		if id == "" {
			id = "e" + strconv.Itoa(i)
		}
		err := d.AddEdge(counterexample.Edge{
			ID:     id,
			Source: e.Source,
			Target: e.Target,
			Labels: values(e.Data, keyLabel),
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "edge %s->%s", e.Source, e.Target)
		}
	}
	return d, nil
}

// ImportModel reads the model at path.
func ImportModel(path string) (*counterexample.Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return ReadModel(f)
}
