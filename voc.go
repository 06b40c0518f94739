package annoconv

// Pascal VOC specific functionality. One XML document per image; objects are
// keyed by class name only, so ids are assigned on first occurrence.

import (
	"encoding/xml"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// vocInBndBox holds the corner coordinates of one object. Pointers so that
// missing elements can be told apart from zero coordinates.
type vocInBndBox struct {
	XMin *float64 `xml:"xmin"`
	YMin *float64 `xml:"ymin"`
	XMax *float64 `xml:"xmax"`
	YMax *float64 `xml:"ymax"`
}

// vocInObject is one object element as read from a VOC document.
type vocInObject struct {
	Name      string       `xml:"name"`
	BndBox    *vocInBndBox `xml:"bndbox"`
	Difficult *int         `xml:"difficult"`
	Truncated *int         `xml:"truncated"`
}

// vocInFile is the root annotation element as read from a VOC document.
type vocInFile struct {
	XMLName  xml.Name      `xml:"annotation"`
	Filename string        `xml:"filename"`
	Size     *vocSize      `xml:"size"`
	Objects  []vocInObject `xml:"object"`
}

type vocSize struct {
	Width  int `xml:"width"`
	Height int `xml:"height"`
	Depth  int `xml:"depth"`
}

// ReadVOC reads and parses Pascal VOC annotations from the XML files in dir.
//
// Category ids are assigned to class names on first occurrence, scanning the
// files in sorted name order so the assignment is stable.
func ReadVOC(dir string) (*Dataset, error) {
	xmlFiles, err := filesByExtInDir(dir, ".xml")
	if err != nil {
		return nil, err
	}
	log.Printf("Parsing VOC labels for %d files", len(xmlFiles))

	dataset := &Dataset{}
	catIDs := make(map[string]int)

	for _, path := range xmlFiles {
		enc, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingResource, err)
		}

		var doc vocInFile
		if err := xml.Unmarshal(enc, &doc); err != nil {
			return nil, fmt.Errorf("%w: failed to parse VOC input from %q: %v", ErrFormat, path, err)
		}
		if doc.Filename == "" {
			return nil, fmt.Errorf("%w: missing filename element in %q", ErrFormat, path)
		}
		if doc.Size == nil || doc.Size.Width <= 0 || doc.Size.Height <= 0 {
			return nil, fmt.Errorf("%w: missing or invalid size element in %q", ErrFormat, path)
		}

		img := Image{
			FileName: doc.Filename,
			Width:    doc.Size.Width,
			Height:   doc.Size.Height,
		}

		for _, obj := range doc.Objects {
			if obj.Name == "" {
				return nil, fmt.Errorf("%w: object without name in %q", ErrFormat, path)
			}
			b := obj.BndBox
			if b == nil || b.XMin == nil || b.YMin == nil || b.XMax == nil || b.YMax == nil {
				return nil, fmt.Errorf("%w: incomplete bndbox for %q in %q", ErrFormat, obj.Name, path)
			}

			// Promote the name-only identity to an id-based category.
			id, ok := catIDs[obj.Name]
			if !ok {
				id = len(dataset.Categories)
				catIDs[obj.Name] = id
				if err := dataset.AddCategory(Category{ID: id, Name: obj.Name}); err != nil {
					return nil, err
				}
			}

			annotation := NewAnnotation(
				BBox{XMin: *b.XMin, YMin: *b.YMin, XMax: *b.XMax, YMax: *b.YMax}, id, obj.Name)
			annotation.Difficult = obj.Difficult != nil && *obj.Difficult != 0
			annotation.Truncated = obj.Truncated != nil && *obj.Truncated != 0
			img.AddAnnotation(annotation)
		}

		dataset.AddImage(img)
	}

	return dataset, nil
}

// vocOutObject is one object element as written to a VOC document.
type vocOutObject struct {
	Name      string       `xml:"name"`
	Pose      string       `xml:"pose"`
	Truncated int          `xml:"truncated"`
	Difficult int          `xml:"difficult"`
	BndBox    vocOutBndBox `xml:"bndbox"`
}

type vocOutBndBox struct {
	XMin int `xml:"xmin"`
	YMin int `xml:"ymin"`
	XMax int `xml:"xmax"`
	YMax int `xml:"ymax"`
}

type vocSource struct {
	Database string `xml:"database"`
}

// vocOutFile is the root annotation element as written to a VOC document.
type vocOutFile struct {
	XMLName   xml.Name       `xml:"annotation"`
	Folder    string         `xml:"folder"`
	Filename  string         `xml:"filename"`
	Path      string         `xml:"path"`
	Source    vocSource      `xml:"source"`
	Size      vocSize        `xml:"size"`
	Segmented int            `xml:"segmented"`
	Objects   []vocOutObject `xml:"object"`
}

// WriteVOC writes the dataset to dir, one XML document per image.
func WriteVOC(dataset *Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for _, img := range dataset.Images {
		doc := vocOutFile{
			Folder:   "images",
			Filename: img.FileName,
			Path:     img.FileName,
			Source:   vocSource{Database: "Unknown"},
			Size:     vocSize{Width: img.Width, Height: img.Height, Depth: 3},
			Objects:  make([]vocOutObject, 0, len(img.Annotations)),
		}

		for _, a := range img.Annotations {
			obj := vocOutObject{
				Name: a.CategoryName,
				Pose: "Unspecified",
				BndBox: vocOutBndBox{
					XMin: int(a.BBox.XMin),
					YMin: int(a.BBox.YMin),
					XMax: int(a.BBox.XMax),
					YMax: int(a.BBox.YMax),
				},
			}
			if a.Truncated {
				obj.Truncated = 1
			}
			if a.Difficult {
				obj.Difficult = 1
			}
			doc.Objects = append(doc.Objects, obj)
		}

		if err := writeVOCFile(doc, dir); err != nil {
			return err
		}
	}
	log.Printf("Wrote VOC labels for %d files to %s", len(dataset.Images), dir)

	return nil
}

// writeVOCFile writes a single VOC document to dir, named after the image
// file with an .xml extension.
func writeVOCFile(doc vocOutFile, dir string) error {
	enc, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	enc = append([]byte(xml.Header), enc...)

	_, baseNoExt, _ := splitPath(doc.Filename)
	path := filepath.Join(dir, baseNoExt+".xml")
	if err := os.WriteFile(path, enc, 0644); err != nil {
		return fmt.Errorf("cannot write file %q: %v", path, err)
	}

	return nil
}
