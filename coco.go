package annoconv

// COCO specific functionality. The whole dataset lives in a single JSON
// document with top-level images, annotations and categories arrays.

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// cocoImage is one entry of the top-level images array.
type cocoImage struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// cocoAnnotation is one entry of the top-level annotations array. The bbox is
// [x, y, width, height] with the origin at the top-left corner.
type cocoAnnotation struct {
	ID           int           `json:"id"`
	ImageID      int           `json:"image_id"`
	CategoryID   int           `json:"category_id"`
	BBox         []float64     `json:"bbox"`
	Area         *float64      `json:"area,omitempty"`
	IsCrowd      int           `json:"iscrowd"`
	Segmentation []interface{} `json:"segmentation"`
}

// cocoCategory is one entry of the top-level categories array.
type cocoCategory struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Supercategory string `json:"supercategory,omitempty"`
}

// cocoFile is the complete document structure.
type cocoFile struct {
	Info        map[string]interface{} `json:"info"`
	Licenses    []interface{}          `json:"licenses"`
	Images      []cocoImage            `json:"images"`
	Annotations []cocoAnnotation       `json:"annotations"`
	Categories  []cocoCategory         `json:"categories"`
}

// ReadCOCO reads and parses COCO annotations from the JSON file at path.
//
// Annotations referencing an image or category id that is not part of the
// document fail with ErrReference.
func ReadCOCO(path string) (*Dataset, error) {
	enc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingResource, err)
	}

	// Check for the required top-level keys before decoding; a missing array
	// key and an empty array are not the same document.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(enc, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse COCO input from %q: %v", ErrFormat, path, err)
	}
	for _, key := range []string{"images", "annotations", "categories"} {
		if _, ok := raw[key]; !ok {
			return nil, fmt.Errorf("%w: missing %q key in %q", ErrFormat, key, path)
		}
	}

	var doc cocoFile
	if err := json.Unmarshal(enc, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse COCO input from %q: %v", ErrFormat, path, err)
	}
	log.Printf("Parsing COCO labels for %d images", len(doc.Images))

	dataset := &Dataset{Info: doc.Info}

	catNames := make(map[int]string, len(doc.Categories))
	for _, c := range doc.Categories {
		if err := dataset.AddCategory(Category{ID: c.ID, Name: c.Name, Supercategory: c.Supercategory}); err != nil {
			return nil, err
		}
		catNames[c.ID] = c.Name
	}

	imageIdx := make(map[int]int, len(doc.Images))
	for _, img := range doc.Images {
		if img.FileName == "" {
			return nil, fmt.Errorf("%w: image %d has no file_name in %q", ErrFormat, img.ID, path)
		}
		imageIdx[img.ID] = len(dataset.Images)
		dataset.AddImage(Image{
			ID:       img.ID,
			FileName: img.FileName,
			Width:    img.Width,
			Height:   img.Height,
		})
	}

	for _, a := range doc.Annotations {
		if len(a.BBox) != 4 {
			return nil, fmt.Errorf("%w: annotation %d has a bbox with %d values, want 4",
				ErrFormat, a.ID, len(a.BBox))
		}
		idx, ok := imageIdx[a.ImageID]
		if !ok {
			return nil, fmt.Errorf("%w: annotation %d references unknown image id %d",
				ErrReference, a.ID, a.ImageID)
		}
		name, ok := catNames[a.CategoryID]
		if !ok {
			return nil, fmt.Errorf("%w: annotation %d references unknown category id %d",
				ErrReference, a.ID, a.CategoryID)
		}

		annotation := NewAnnotation(FromXYWH(a.BBox[0], a.BBox[1], a.BBox[2], a.BBox[3]),
			a.CategoryID, name)
		if a.Area != nil {
			annotation.Area = *a.Area
		}
		annotation.IsCrowd = a.IsCrowd
		dataset.Images[idx].AddAnnotation(annotation)
	}

	return dataset, nil
}

// WriteCOCO writes the dataset as a single COCO JSON document to path.
//
// Image and annotation ids are synthesized sequentially starting at 1;
// category ids are written as-is. The difficult and truncated flags have no
// COCO representation and are dropped.
func WriteCOCO(dataset *Dataset, path string) error {
	doc := cocoFile{
		Info:        dataset.Info,
		Licenses:    []interface{}{},
		Images:      make([]cocoImage, 0, len(dataset.Images)),
		Annotations: make([]cocoAnnotation, 0, len(dataset.Images)),
		Categories:  make([]cocoCategory, 0, len(dataset.Categories)),
	}
	if doc.Info == nil {
		doc.Info = map[string]interface{}{}
	}

	for _, c := range dataset.Categories {
		doc.Categories = append(doc.Categories, cocoCategory{
			ID:            c.ID,
			Name:          c.Name,
			Supercategory: c.Supercategory,
		})
	}

	annotationID := 1
	for i, img := range dataset.Images {
		imageID := i + 1
		doc.Images = append(doc.Images, cocoImage{
			ID:       imageID,
			FileName: img.FileName,
			Width:    img.Width,
			Height:   img.Height,
		})

		for _, a := range img.Annotations {
			x, y, w, h := a.BBox.ToXYWH()
			area := a.Area
			doc.Annotations = append(doc.Annotations, cocoAnnotation{
				ID:           annotationID,
				ImageID:      imageID,
				CategoryID:   a.CategoryID,
				BBox:         []float64{x, y, w, h},
				Area:         &area,
				IsCrowd:      a.IsCrowd,
				Segmentation: []interface{}{},
			})
			annotationID++
		}
	}

	enc, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, enc, 0644); err != nil {
		return fmt.Errorf("cannot write file %q: %v", path, err)
	}

	return nil
}
