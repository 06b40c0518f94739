package annoconv

import "errors"

// Failures during reading, conversion or writing wrap one of these sentinel
// errors. Match with errors.Is.
var (
	// ErrFormat indicates malformed or schema-violating input.
	ErrFormat = errors.New("format error")

	// ErrReference indicates a dangling id reference between annotations,
	// images and categories.
	ErrReference = errors.New("dangling reference")

	// ErrMissingResource indicates a required auxiliary file or directory is
	// absent, e.g. the classes file or a matching image for YOLO labels.
	ErrMissingResource = errors.New("missing resource")

	// ErrDuplicateCategory indicates a category id is already present in the
	// dataset.
	ErrDuplicateCategory = errors.New("duplicate category")

	// ErrCategoryNotFound indicates a category lookup by id or name failed.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrUnsupportedFormat indicates a format identifier outside the
	// supported set.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrInvalidState indicates an operation requires data that is not
	// available, e.g. writing YOLO labels for an image with unknown
	// dimensions.
	ErrInvalidState = errors.New("invalid state")
)
