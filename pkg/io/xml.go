package io

import (
	"encoding/xml"
	"strings"
)

// document is the shared GraphML envelope. The graph element may be the
// root or sit inside a graphml element.
type document struct {
	XMLName xml.Name
	Graph   *xmlGraph `xml:"graph"`
	Nodes   []xmlNode `xml:"node"`
	Edges   []xmlEdge `xml:"edge"`
}

type xmlGraph struct {
	ID    string    `xml:"id,attr,omitempty"`
	Nodes []xmlNode `xml:"node"`
	Edges []xmlEdge `xml:"edge"`
}

type xmlNode struct {
	ID   string    `xml:"id,attr"`
	Data []xmlData `xml:"data"`
}

type xmlEdge struct {
	ID     string    `xml:"id,attr,omitempty"`
	Source string    `xml:"source,attr"`
	Target string    `xml:"target,attr"`
	Data   []xmlData `xml:"data"`
}

type xmlData struct {
	Key         string          `xml:"key,attr"`
	Text        string          `xml:",chardata"`
	Refs        []xmlRef        `xml:"ref"`
	Equations   []xmlConstraint `xml:"equation"`
	Inequations []xmlConstraint `xml:"inequation"`
}

type xmlRef struct {
	ConstraintID string  `xml:"constraintID,attr"`
	Type         string  `xml:"type,attr"`
	Coe          float64 `xml:"coe,attr"`
}

type xmlConstraint struct {
	ID    string    `xml:"id,attr"`
	Op    string    `xml:"op,attr,omitempty"`
	Bound float64   `xml:"bound,attr"`
	Terms []xmlTerm `xml:"term"`
}

type xmlTerm struct {
	Var  string  `xml:"var,attr"`
	Coef float64 `xml:"coef,attr"`
}

// values returns the text of every data element with key, in order.
func values(data []xmlData, key string) []string {
	var out []string
	for _, d := range data {
		if d.Key == key {
			out = append(out, strings.TrimSpace(d.Text))
		}
	}
	return out
}

// value returns the trimmed text of the first data element with key.
func value(data []xmlData, key string) string {
	for _, d := range data {
		if d.Key == key {
			return strings.TrimSpace(d.Text)
		}
	}
	return ""
}

// find returns the first data element with key.
func find(data []xmlData, key string) (xmlData, bool) {
	for _, d := range data {
		if d.Key == key {
			return d, true
		}
	}
	return xmlData{}, false
}

// decodeGraph accepts both <graphml><graph/></graphml> and a bare <graph>.
func decodeGraph(dec *xml.Decoder) (*xmlGraph, error) {
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc.XMLName.Local == "graph" {
		return &xmlGraph{Nodes: doc.Nodes, Edges: doc.Edges}, nil
	}
	return doc.Graph, nil
}
