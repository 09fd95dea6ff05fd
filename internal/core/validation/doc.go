// Package validation provides pure field validation for client and note records.
//
// This package contains the functional core logic for checking proposed field
// values and producing their normalized form. All functions are pure (no I/O,
// no side effects) and normalization is idempotent: validating an already
// normalized value returns it unchanged.
//
// # Functions
//
//   - ValidateClient: Check name, email and phone; trim, lower-case and strip
//   - ValidateNote: Check title, content and client reference; trim
//
// # Usage
//
// The save hook validates before any ownership check runs:
//
//	fields, err := validation.ValidateClient(client.Fields())
//	if err != nil {
//	    // err wraps domain.ErrValidation and names the offending field
//	}
//
// Lengths are counted in characters, not bytes.
package validation
