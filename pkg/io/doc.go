// Package io reads the files a session starts from and writes proofs back.
//
// # Proof Traces
//
// A proof trace is GraphML-like XML. Each node carries its attributes as
// data elements; each edge runs from a premise to the node it supports:
//
//	<graphml>
//	  <graph id="proof">
//	    <node id="n0">
//	      <data key="type">axiom</data>
//	      <data key="element">A ⊑ C</data>
//	      <data key="nLElement">Every A is a C</data>
//	    </node>
//	    <node id="n1">
//	      <data key="type">rule</data>
//	      <data key="element">Intersection Composition</data>
//	    </node>
//	    <edge id="e1" source="n1" target="n0"/>
//	  </graph>
//	</graphml>
//
// Rules over numeric constraints carry their payload inside an "op" data
// element:
//
//	<data key="op">
//	  <ref constraintID="c1" type="inequation" coe="2"/>
//	  <inequation id="c1" op="&lt;=" bound="4">
//	    <term var="x" coef="2"/>
//	  </inequation>
//	</data>
//
// [ReadProof] checks the trace through [dag.DAG] before converting it: ids
// must be unique and non-synthetic, every edge must resolve, the graph must
// be acyclic, every node must support at most one other node and exactly one
// node (the conclusion) supports none.
//
// # Counterexample Models
//
// [ReadModel] reads the same GraphML shape with "label" and "element" data
// on nodes and one or more "label" data elements on edges. [ReadMapper]
// reads the concept-to-representative dictionary, either bare or wrapped in
// a "Concept2Representative" object. [LoadCounterexample] loads both files
// concurrently.
//
// Every failure is a structured error from pkg/errors: INVALID_TRACE,
// INVALID_MODEL or FILE_NOT_FOUND.
//
// [dag.DAG]: github.com/matzehuels/prooftower/pkg/dag.DAG
package io
