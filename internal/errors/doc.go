// Package errors provides structured, actionable error messages for keepblock.
//
// Every error carries a code (e.g. "K101") registered with a category,
// a short message, a longer explanation and a documentation link. The CLI
// and the HTTP service translate library errors into coded errors so the
// user sees where the artifact is broken and what to do about it.
//
// # Error Categories
//
//   - boundary: the generated/preserved boundary of an artifact is malformed
//   - storage: an artifact, folder or backup could not be read or written
//   - config: keepblock.yaml is missing or invalid
//   - form: a form definition could not be loaded
//   - cli: command-level failures such as stale artifacts
//
// # Usage
//
//	err := errors.New("K102").
//	    WithLocation("ui/main_dialog.py", 88, 1).
//	    WithSuggestion("Delete one of the two comment blocks by hand")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR K102: Duplicate boundary marker
//	//
//	//   ui/main_dialog.py:88:1
//	//
//	//     86 │
//	//     87 │
//	//   → 88 │ # ************* End of generated code ***********
//	//        │ ^
//	//     89 │ # DO NOT EDIT THIS COMMENT BLOCK!
//	//     90 │ #
//	//
//	//   Hint: Delete one of the two comment blocks by hand
//	//
//	//   Learn more: https://keepblock.dev/docs/errors/K102
package errors
