package annoconv

// Bounding box representation and coordinate-form conversions.

// BBox is an axis-aligned bounding box in absolute pixel coordinates, with
// (XMin, YMin) at the top-left and (XMax, YMax) at the bottom-right corner.
//
// BBox never validates or clips: boxes with zero or negative extent, or with
// coordinates outside the image bounds, are passed through unchanged.
type BBox struct {
	XMin float64
	YMin float64
	XMax float64
	YMax float64
}

// FromXYWH constructs a BBox from the corner-plus-extent form used by COCO.
func FromXYWH(x, y, w, h float64) BBox {
	return BBox{XMin: x, YMin: y, XMax: x + w, YMax: y + h}
}

// FromYOLO constructs a BBox from the normalized center form used by YOLO,
// scaled to absolute pixels by the image dimensions.
func FromYOLO(xCenter, yCenter, width, height float64, imgWidth, imgHeight int) BBox {
	w := width * float64(imgWidth)
	h := height * float64(imgHeight)
	x := xCenter*float64(imgWidth) - w/2
	y := yCenter*float64(imgHeight) - h/2
	return BBox{XMin: x, YMin: y, XMax: x + w, YMax: y + h}
}

// Width is the horizontal extent of the box.
func (b BBox) Width() float64 {
	return b.XMax - b.XMin
}

// Height is the vertical extent of the box.
func (b BBox) Height() float64 {
	return b.YMax - b.YMin
}

// Area is the pixel area of the box.
func (b BBox) Area() float64 {
	return b.Width() * b.Height()
}

// ToXYWH returns the corner-plus-extent form used by COCO.
func (b BBox) ToXYWH() (x, y, w, h float64) {
	return b.XMin, b.YMin, b.Width(), b.Height()
}

// ToYOLO returns the center form normalized to [0, 1] by the image
// dimensions.
func (b BBox) ToYOLO(imgWidth, imgHeight int) (xCenter, yCenter, width, height float64) {
	w := b.Width()
	h := b.Height()
	xCenter = (b.XMin + w/2) / float64(imgWidth)
	yCenter = (b.YMin + h/2) / float64(imgHeight)
	return xCenter, yCenter, w / float64(imgWidth), h / float64(imgHeight)
}
