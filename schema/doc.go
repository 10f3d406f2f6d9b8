// Package schema derives wire schemas from Go types using reflection, in the
// vocabulary the Generative Language API accepts for constrained output.
//
// It supports structs, primitives, slices, fixed-length arrays, string-keyed
// maps, pointers, enums ([Enumerated]), tagged unions ([Union]) and positional
// aggregates ([Tuple]). Fields are annotated through the `schema` struct tag;
// `json` tags are mirrored for naming so the schema matches what
// encoding/json produces. Recursive types are rejected at derivation time
// because the wire format has no schema references.
//
// Tag options are comma separated, so an option value cannot itself contain
// a comma. A description that needs one can be split across several
// description= fragments, or the whole schema can be authored through
// [Schemer].
//
// The main entry points are [For], which derives and caches a [Schema] for
// any Go type T, and [Unmarshal], which strictly decodes a returned payload
// back into T, rejecting anything the schema does not allow.
package schema
