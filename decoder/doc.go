// Package decoder turns AEIS column codes into structured facts.
//
// A column code such as CG0EQ94R packs a reporting level, a student group, a
// field, an abbreviated year and a measure into fixed positional segments. The
// grammar differs per dataset kind and changed across report years, so it is
// declared as data: a tree of rule sets whose entries pair a literal or
// regular-expression transition with a rule that emits facts and names the
// rule sets to try next.
//
// Decoding walks the tree with a forward-only cursor. Every consumed piece of
// the code is recorded as a Step, and the evidence of all steps concatenates to
// exactly the input code; anything left over is a decode failure.
//
//	rec, err := decoder.NewPipeline(nil).Decode("othr", 1994, "CG0EQ94R")
//
// Trees are compiled once at registration and are immutable afterwards, so a
// Pipeline is safe for concurrent use.
package decoder
