package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Boundary Errors (K100-K199)
	// ============================================

	"K101": {
		Category: CategoryBoundary,
		Message:  "Missing boundary marker",
		Detail:   "The existing file has no \"End of generated code\" comment block, so keepblock cannot tell generated code from hand-written code. Nothing was written.",
		DocURL:   "https://keepblock.dev/docs/errors/K101",
	},
	"K102": {
		Category: CategoryBoundary,
		Message:  "Duplicate boundary marker",
		Detail:   "The existing file contains more than one \"End of generated code\" comment block. Regenerating would have to guess which code is hand-written. Nothing was written.",
		DocURL:   "https://keepblock.dev/docs/errors/K102",
	},
	"K103": {
		Category: CategoryBoundary,
		Message:  "Generated code contains a boundary marker",
		Detail:   "The freshly generated code already contains an \"End of generated code\" comment block. Appending another one would produce an artifact with two markers.",
		DocURL:   "https://keepblock.dev/docs/errors/K103",
	},
	"K104": {
		Category: CategoryBoundary,
		Message:  "Unknown target language",
		Detail:   "The language could not be determined from the flag, the configuration, or the file extension.",
		DocURL:   "https://keepblock.dev/docs/errors/K104",
	},

	// ============================================
	// Storage Errors (K200-K299)
	// ============================================

	"K201": {
		Category: CategoryStorage,
		Message:  "Artifact could not be read",
		Detail:   "The existing artifact exists but could not be read, so no comparison can be made.",
		DocURL:   "https://keepblock.dev/docs/errors/K201",
	},
	"K202": {
		Category: CategoryStorage,
		Message:  "Artifact could not be written",
		Detail:   "The merged artifact could not be written to its destination.",
		DocURL:   "https://keepblock.dev/docs/errors/K202",
	},
	"K203": {
		Category: CategoryStorage,
		Message:  "Output folder does not exist",
		Detail:   "The folder for the artifact does not exist and folder creation is disabled.",
		DocURL:   "https://keepblock.dev/docs/errors/K203",
	},
	"K204": {
		Category: CategoryStorage,
		Message:  "Backup could not be written",
		Detail:   "A snapshot of the previous artifact could not be saved, so the artifact was left untouched.",
		DocURL:   "https://keepblock.dev/docs/errors/K204",
	},

	// ============================================
	// Configuration Errors (K300-K399)
	// ============================================

	"K301": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "keepblock.yaml could not be parsed or contains invalid values.",
		DocURL:   "https://keepblock.dev/docs/errors/K301",
	},
	"K302": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No keepblock.yaml was found in the project directory.",
		DocURL:   "https://keepblock.dev/docs/errors/K302",
	},

	// ============================================
	// Form Errors (K400-K499)
	// ============================================

	"K401": {
		Category: CategoryForm,
		Message:  "Invalid form definition",
		Detail:   "The form definition could not be parsed or violates the widget nesting rules.",
		DocURL:   "https://keepblock.dev/docs/errors/K401",
	},
	"K402": {
		Category: CategoryForm,
		Message:  "Form file not found",
		Detail:   "The form definition file does not exist.",
		DocURL:   "https://keepblock.dev/docs/errors/K402",
	},

	// ============================================
	// CLI Errors (K500-K599)
	// ============================================

	"K501": {
		Category: CategoryCLI,
		Message:  "Artifact is out of date",
		Detail:   "Regenerating the artifact would change it.",
		DocURL:   "https://keepblock.dev/docs/errors/K501",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
