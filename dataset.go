package annoconv

// The in-memory representation of one annotated dataset. A Dataset is built
// once per conversion run by a reader, optionally mutated, then consumed by a
// writer.

import "fmt"

// Category is a class label with a numeric id, unique within its Dataset.
type Category struct {
	ID            int
	Name          string
	Supercategory string // Optional; empty when the source format has none.
}

// Annotation is a single labelled object within an Image.
type Annotation struct {
	BBox         BBox
	CategoryID   int
	CategoryName string // Denormalized copy for formats that key by name.
	Difficult    bool   // Pascal VOC: excluded from standard evaluation.
	Truncated    bool   // Object extends beyond the image boundary.
	Area         float64
	IsCrowd      int
}

// NewAnnotation builds an Annotation for the given box and category, with
// Area derived from the box.
func NewAnnotation(bbox BBox, categoryID int, categoryName string) Annotation {
	return Annotation{
		BBox:         bbox,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		Area:         bbox.Area(),
	}
}

// Image is one annotated image. Width and Height are zero when the pixel
// dimensions are not yet known; see InferDimensions.
type Image struct {
	ID          int // Source image id when the format has one; zero otherwise.
	FileName    string
	Width       int
	Height      int
	Annotations []Annotation
}

// AddAnnotation appends an annotation to the image's ordered sequence.
func (img *Image) AddAnnotation(a Annotation) {
	img.Annotations = append(img.Annotations, a)
}

// Dataset owns the ordered images and categories of a single conversion run.
// Every annotation's CategoryID must resolve to a category in Categories;
// readers construct datasets that way and writers rely on it.
type Dataset struct {
	Images     []Image
	Categories []Category
	Info       map[string]interface{} // COCO info block, passed through verbatim.
}

// AddCategory appends a category. The id must not already be present.
func (d *Dataset) AddCategory(c Category) error {
	for _, existing := range d.Categories {
		if existing.ID == c.ID {
			return fmt.Errorf("%w: id %d (%q vs existing %q)",
				ErrDuplicateCategory, c.ID, c.Name, existing.Name)
		}
	}
	d.Categories = append(d.Categories, c)
	return nil
}

// AddImage appends an image. Duplicate file names are not checked.
func (d *Dataset) AddImage(img Image) {
	d.Images = append(d.Images, img)
}

// CategoryByID returns the category with the given id.
func (d *Dataset) CategoryByID(id int) (Category, error) {
	for _, c := range d.Categories {
		if c.ID == id {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("%w: id %d", ErrCategoryNotFound, id)
}

// CategoryByName returns the category with the given name.
func (d *Dataset) CategoryByName(name string) (Category, error) {
	for _, c := range d.Categories {
		if c.Name == name {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("%w: name %q", ErrCategoryNotFound, name)
}
