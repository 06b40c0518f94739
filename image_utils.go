package annoconv

// Image header probing. YOLO labels are normalized and dimension-less, so the
// pixel dimensions have to come from the image files themselves.

import (
	"fmt"
	"image"
	"os"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// imageDimensions decodes only the header of the image at path and returns
// its pixel dimensions.
func imageDimensions(path string) (width, height int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer closeWithErrCheck(file, &err)

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot decode image dimensions from %q: %v", path, err)
	}

	return cfg.Width, cfg.Height, nil
}
