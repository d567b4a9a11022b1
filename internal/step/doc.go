// Package step tokenizes ISO-10303-21 (STEP) exchange text into entity records.
//
// The lexer reads the DATA section of an IFC file one `#id= CLASS(params);`
// record at a time. It performs no schema validation: class names and
// parameter arity are checked later by the resolvers.
//
// Key design constraints:
//   - Params form a sealed union (Integer, Float, String, Ref, List, Null,
//     Enum, Bool, Typed); only types in this package implement Param
//   - Entities are immutable once lexed
//   - A syntax error stops the stream silently; callers compare entity
//     counts or Lexer.Offset against the input length to detect truncation
package step
