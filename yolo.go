package annoconv

// YOLO specific functionality. Labels live in one text file per image, with
// one line per object in normalized center form, plus a classes file mapping
// line numbers to class names.

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Fallback image extensions probed when the configured one does not match.
var yoloImageExts = []string{".jpg", ".jpeg", ".png", ".JPG", ".JPEG", ".PNG"}

// ReadYOLO reads and parses YOLO annotations from labelsDir. The matching
// images in imagesDir provide the pixel dimensions needed to scale the
// normalized boxes to absolute coordinates; classesFile maps class ids to
// names, one name per line. imageExt is the expected image file extension
// (".jpg" when empty); other common extensions are probed as a fallback.
func ReadYOLO(labelsDir, imagesDir, classesFile, imageExt string) (*Dataset, error) {
	if imageExt == "" {
		imageExt = ".jpg"
	} else if !strings.HasPrefix(imageExt, ".") {
		imageExt = "." + imageExt
	}

	dataset := &Dataset{}

	// The line index in the classes file is the category id.
	classNames, err := readLines(classesFile)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(classNames))
	for _, name := range classNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if err := dataset.AddCategory(Category{ID: len(names), Name: name}); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	labelFiles, err := filesByExtInDir(labelsDir, ".txt")
	if err != nil {
		return nil, err
	}
	log.Printf("Parsing YOLO labels for %d files", len(labelFiles))

	for _, labelPath := range labelFiles {
		imagePath, err := findImageForLabel(labelPath, imagesDir, imageExt)
		if err != nil {
			return nil, err
		}
		width, height, err := imageDimensions(imagePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingResource, err)
		}

		img := Image{
			FileName: filepath.Base(imagePath),
			Width:    width,
			Height:   height,
		}

		lines, err := readLines(labelPath)
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			annotation, err := parseYOLOAnnotation(line, names, width, height)
			if err != nil {
				return nil, fmt.Errorf("%w in %q", err, labelPath)
			}
			img.AddAnnotation(annotation)
		}

		dataset.AddImage(img)
	}

	return dataset, nil
}

// findImageForLabel locates the image matching the label file by base name,
// trying imageExt first and the common extensions as a fallback.
func findImageForLabel(labelPath, imagesDir, imageExt string) (string, error) {
	_, baseNoExt, _ := splitPath(labelPath)

	path := filepath.Join(imagesDir, baseNoExt+imageExt)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	for _, ext := range yoloImageExts {
		if ext == imageExt {
			continue
		}
		path := filepath.Join(imagesDir, baseNoExt+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: no image for label file %q in %q",
		ErrMissingResource, labelPath, imagesDir)
}

// parseYOLOAnnotation parses the line of values for a single annotation:
// class_id x_center y_center width height, all but the id normalized.
func parseYOLOAnnotation(line string, classNames []string, imgWidth, imgHeight int) (Annotation, error) {
	tokens := strings.Fields(line)
	if len(tokens) != 5 {
		return Annotation{}, fmt.Errorf("%w: %d tokens in %q, want 5", ErrFormat, len(tokens), line)
	}

	classID, err := strconv.Atoi(tokens[0])
	if err != nil {
		return Annotation{}, fmt.Errorf("%w: invalid class id in %q: %v", ErrFormat, line, err)
	}
	if classID < 0 || classID >= len(classNames) {
		return Annotation{}, fmt.Errorf("%w: class id %d out of range [0, %d)",
			ErrFormat, classID, len(classNames))
	}

	var coords [4]float64
	for i := 1; i < 5 && err == nil; i++ {
		coords[i-1], err = strconv.ParseFloat(tokens[i], 64)
	}
	if err != nil {
		return Annotation{}, fmt.Errorf("%w: unexpected values in %q: %v", ErrFormat, line, err)
	}

	bbox := FromYOLO(coords[0], coords[1], coords[2], coords[3], imgWidth, imgHeight)
	return NewAnnotation(bbox, classID, classNames[classID]), nil
}

// WriteYOLO writes the dataset to labelsDir, one label file per image, and
// the class names to classesFile, one per line.
//
// Category ids are remapped to a contiguous 0-based range in dataset category
// order, since the classes file line number is the class id. Images with
// unknown dimensions fail with ErrInvalidState as the boxes cannot be
// normalized.
func WriteYOLO(dataset *Dataset, labelsDir, classesFile string) error {
	if err := os.MkdirAll(labelsDir, 0755); err != nil {
		return err
	}
	if dir := filepath.Dir(classesFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	// Contiguous ids in category order; the original ids may be sparse.
	classIndex := make(map[int]int, len(dataset.Categories))
	var classList strings.Builder
	for i, c := range dataset.Categories {
		classIndex[c.ID] = i
		classList.WriteString(c.Name)
		classList.WriteByte('\n')
	}
	if err := os.WriteFile(classesFile, []byte(classList.String()), 0644); err != nil {
		return fmt.Errorf("cannot write file %q: %v", classesFile, err)
	}

	for _, img := range dataset.Images {
		if img.Width <= 0 || img.Height <= 0 {
			return fmt.Errorf("%w: unknown dimensions for image %q, cannot normalize boxes",
				ErrInvalidState, img.FileName)
		}

		if err := writeYOLOLabelFile(img, labelsDir, classIndex); err != nil {
			return err
		}
	}
	log.Printf("Wrote YOLO labels for %d files to %s", len(dataset.Images), labelsDir)

	return nil
}

// writeYOLOLabelFile writes the label file for a single image.
func writeYOLOLabelFile(img Image, labelsDir string, classIndex map[int]int) (err error) {
	_, baseNoExt, _ := splitPath(img.FileName)
	path := filepath.Join(labelsDir, baseNoExt+".txt")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeWithErrCheck(file, &err)

	for _, a := range img.Annotations {
		classID, ok := classIndex[a.CategoryID]
		if !ok {
			return fmt.Errorf("%w: annotation in %q references unknown category id %d",
				ErrReference, img.FileName, a.CategoryID)
		}
		xc, yc, w, h := a.BBox.ToYOLO(img.Width, img.Height)
		if _, err := fmt.Fprintf(file, "%d %.6f %.6f %.6f %.6f\n", classID, xc, yc, w, h); err != nil {
			return err
		}
	}

	return nil
}
