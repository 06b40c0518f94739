package annoconv

// The conversion engine. Readers build a Dataset, writers consume it; this is
// the only place aware of all three formats at once. The format set is closed,
// so dispatch is a plain switch rather than a registry.

import (
	"fmt"
	"path/filepath"
)

// Format identifies one of the supported annotation formats.
type Format int

const (
	FormatUnknown Format = iota
	FormatCOCO
	FormatYOLO
	FormatVOC
)

// ParseFormat maps a format identifier to a Format. Unknown identifiers map
// to FormatUnknown.
func ParseFormat(s string) Format {
	switch s {
	case "coco":
		return FormatCOCO
	case "yolo":
		return FormatYOLO
	case "voc":
		return FormatVOC
	}
	return FormatUnknown
}

// String returns the identifier ParseFormat accepts for f.
func (f Format) String() string {
	switch f {
	case FormatCOCO:
		return "coco"
	case FormatYOLO:
		return "yolo"
	case FormatVOC:
		return "voc"
	}
	return "unknown"
}

// Options carries the resolved paths of a conversion. Input and Output are
// the COCO JSON file (coco) or the label directory (yolo, voc); the remaining
// fields only apply to YOLO ends of a conversion.
type Options struct {
	Input  string
	Output string

	ImagesDir   string // YOLO input: directory with the annotated images.
	ClassesFile string // YOLO input: ordered class name list, one per line.
	ImageExt    string // YOLO input: image file extension; ".jpg" when empty.

	// YOLO output: path of the emitted class list. Defaults to classes.txt
	// inside the output label directory.
	OutClassesFile string
}

// Read parses the source at opts.Input in the given format into a Dataset.
func Read(format Format, opts Options) (*Dataset, error) {
	switch format {
	case FormatCOCO:
		return ReadCOCO(opts.Input)
	case FormatYOLO:
		if opts.ImagesDir == "" {
			return nil, fmt.Errorf("%w: YOLO input requires an images directory", ErrMissingResource)
		}
		if opts.ClassesFile == "" {
			return nil, fmt.Errorf("%w: YOLO input requires a classes file", ErrMissingResource)
		}
		return ReadYOLO(opts.Input, opts.ImagesDir, opts.ClassesFile, opts.ImageExt)
	case FormatVOC:
		return ReadVOC(opts.Input)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Write serializes the dataset to opts.Output in the given format.
func Write(format Format, dataset *Dataset, opts Options) error {
	switch format {
	case FormatCOCO:
		return WriteCOCO(dataset, opts.Output)
	case FormatYOLO:
		classesFile := opts.OutClassesFile
		if classesFile == "" {
			classesFile = filepath.Join(opts.Output, "classes.txt")
		}
		return WriteYOLO(dataset, opts.Output, classesFile)
	case FormatVOC:
		return WriteVOC(dataset, opts.Output)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Convert reads the source format from opts.Input and writes the target
// format to opts.Output. The Dataset built in between is the single source of
// truth for category identity: writers may renumber ids for their own wire
// conventions but the id to name mapping stays a bijection.
func Convert(from, to Format, opts Options) error {
	dataset, err := Read(from, opts)
	if err != nil {
		return err
	}
	return Write(to, dataset, opts)
}

// InferDimensions fills in unknown image dimensions by probing the image
// files in imagesDir, matched by file name. Images with known dimensions are
// left untouched.
func InferDimensions(dataset *Dataset, imagesDir string) error {
	for i := range dataset.Images {
		img := &dataset.Images[i]
		if img.Width > 0 && img.Height > 0 {
			continue
		}

		width, height, err := imageDimensions(filepath.Join(imagesDir, img.FileName))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMissingResource, err)
		}
		img.Width = width
		img.Height = height
	}

	return nil
}
