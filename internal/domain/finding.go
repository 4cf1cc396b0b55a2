package domain

// Category classifies a finding.
type Category string

const (
	// CategoryMissing indicates a required entry is absent.
	CategoryMissing Category = "missing"
	// CategoryUnexpected indicates an entry that the layout does not allow.
	CategoryUnexpected Category = "unexpected"
	// CategoryInvalidJSON indicates a JSON file that does not parse or violates its schema.
	CategoryInvalidJSON Category = "invalid_json"
)

// Categories lists every category in report order.
var Categories = []Category{CategoryMissing, CategoryUnexpected, CategoryInvalidJSON}

// Label returns the human-readable heading for the category.
func (c Category) Label() string {
	switch c {
	case CategoryMissing:
		return "Missing"
	case CategoryUnexpected:
		return "Unexpected"
	case CategoryInvalidJSON:
		return "Invalid JSON"
	}
	return string(c)
}

// Finding represents a single deviation from the expected layout or content.
// Path is slash-separated and relative to the dataset root; it is empty for
// findings that concern the dataset as a whole.
type Finding struct {
	Category Category
	Message  string
	Path     string
}

// Missing creates a missing-entry finding.
func Missing(path, message string) Finding {
	return Finding{Category: CategoryMissing, Message: message, Path: path}
}

// Unexpected creates an unexpected-entry finding.
func Unexpected(path, message string) Finding {
	return Finding{Category: CategoryUnexpected, Message: message, Path: path}
}

// InvalidJSON creates a content finding for a JSON file.
func InvalidJSON(path, message string) Finding {
	return Finding{Category: CategoryInvalidJSON, Message: message, Path: path}
}
