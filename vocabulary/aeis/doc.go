// Package aeis provides vocabulary predicates for decoded AEIS column codes.
//
// Every fact key a grammar can emit has one predicate of the form
// aeis.column.<key>, so a decoded column becomes a flat set of triples about
// one column entity:
//
//	aeis.column.level    -> "campus"
//	aeis.column.race     -> "hispanic"
//	aeis.column.field    -> "taas-tasp-equivalence"
//	aeis.column.year     -> 1994
//	aeis.column.measure  -> "rate"
//
// Record predicates describe the column itself: its raw code, dataset kind,
// report year, descriptions found in layout or reference files, and the notes
// of any unconfirmed mapping used while decoding it.
//
// # Usage
//
// Import the package to register predicates, then map fact keys:
//
//	pred, ok := aeis.PredicateFor("measure")
//
// IRIs live under https://semaeis.dev/ontology/aeis/.
package aeis
