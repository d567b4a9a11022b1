// Package resolve is the top-level pass that turns a populated entity
// registry into a domain.Building.
//
// Resolution walks project -> building -> storeys -> spaces, assigning each
// level's address by extending its parent's, then resolves allow-listed
// equipment classes and AR anchor annotations against the addresses of
// their spatial containers. The registry must be fully populated first;
// references in STEP files point in either direction.
//
// A missing IFCPROJECT is the only hard failure. Every other gap falls
// back to a default and is reported as a Diagnostic and a debug log line.
package resolve
