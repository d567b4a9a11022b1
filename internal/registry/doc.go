// Package registry is the symbol table over a lexed STEP file.
//
// A Registry owns every entity record keyed by id, a secondary index by
// class name, and reverse indices for the IFC relationships that express
// aggregation, spatial containment and property attachment. All
// cross-entity links stay plain integer ids resolved through the Registry,
// so cyclic instance graphs need no special ownership handling.
//
// The address side-table is the only state written after population. Each
// id is written at most once; later writes are ignored. A Registry is not
// safe for concurrent writers to that table: parallel resolvers must keep
// per-branch tables and merge them afterward.
package registry
