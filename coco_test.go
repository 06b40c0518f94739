package annoconv

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const cocoFixture = `{
  "info": {"description": "test set"},
  "images": [
    {"id": 10, "file_name": "img1.jpg", "width": 640, "height": 480},
    {"id": 11, "file_name": "img2.jpg", "width": 800, "height": 600}
  ],
  "annotations": [
    {"id": 1, "image_id": 10, "category_id": 7, "bbox": [100, 200, 50, 80], "area": 4000, "iscrowd": 0},
    {"id": 2, "image_id": 10, "category_id": 9, "bbox": [0, 0, 10, 10], "iscrowd": 1},
    {"id": 3, "image_id": 11, "category_id": 7, "bbox": [5.5, 6.5, 7.25, 8.75]}
  ],
  "categories": [
    {"id": 7, "name": "person", "supercategory": "human"},
    {"id": 9, "name": "car"}
  ]
}`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestReadCOCO(t *testing.T) {
	dataset, err := ReadCOCO(writeTempFile(t, "train.json", cocoFixture))
	if err != nil {
		t.Fatalf("ReadCOCO: %v", err)
	}

	if len(dataset.Images) != 2 {
		t.Fatalf("images: got %d, want 2", len(dataset.Images))
	}
	if len(dataset.Categories) != 2 {
		t.Fatalf("categories: got %d, want 2", len(dataset.Categories))
	}
	if dataset.Info["description"] != "test set" {
		t.Errorf("info not preserved: %v", dataset.Info)
	}

	c, err := dataset.CategoryByID(7)
	if err != nil || c.Name != "person" || c.Supercategory != "human" {
		t.Errorf("category 7: got (%+v, %v)", c, err)
	}

	img := dataset.Images[0]
	if img.FileName != "img1.jpg" || img.Width != 640 || img.Height != 480 {
		t.Errorf("image 0: got %+v", img)
	}
	if len(img.Annotations) != 2 {
		t.Fatalf("image 0 annotations: got %d, want 2", len(img.Annotations))
	}

	a := img.Annotations[0]
	want := BBox{XMin: 100, YMin: 200, XMax: 150, YMax: 280}
	if a.BBox != want {
		t.Errorf("bbox: got %+v, want %+v", a.BBox, want)
	}
	if a.CategoryID != 7 || a.CategoryName != "person" {
		t.Errorf("category: got id %d name %q", a.CategoryID, a.CategoryName)
	}
	if a.Area != 4000 {
		t.Errorf("area: got %v, want 4000", a.Area)
	}
	if img.Annotations[1].IsCrowd != 1 {
		t.Errorf("iscrowd: got %d, want 1", img.Annotations[1].IsCrowd)
	}

	// Area falls back to the box area when the source omits it.
	a3 := dataset.Images[1].Annotations[0]
	if math.Abs(a3.Area-7.25*8.75) > 1e-9 {
		t.Errorf("derived area: got %v, want %v", a3.Area, 7.25*8.75)
	}
}

func TestReadCOCOErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{
			"malformed JSON",
			`{"images": [`,
			ErrFormat,
		},
		{
			"missing categories key",
			`{"images": [], "annotations": []}`,
			ErrFormat,
		},
		{
			"bbox with wrong arity",
			`{"images": [{"id": 1, "file_name": "a.jpg", "width": 10, "height": 10}],
			  "annotations": [{"id": 1, "image_id": 1, "category_id": 1, "bbox": [1, 2, 3]}],
			  "categories": [{"id": 1, "name": "person"}]}`,
			ErrFormat,
		},
		{
			"image without file_name",
			`{"images": [{"id": 1, "width": 10, "height": 10}],
			  "annotations": [], "categories": []}`,
			ErrFormat,
		},
		{
			"unknown category id",
			`{"images": [{"id": 1, "file_name": "a.jpg", "width": 10, "height": 10}],
			  "annotations": [{"id": 1, "image_id": 1, "category_id": 42, "bbox": [1, 2, 3, 4]}],
			  "categories": [{"id": 1, "name": "person"}]}`,
			ErrReference,
		},
		{
			"unknown image id",
			`{"images": [{"id": 1, "file_name": "a.jpg", "width": 10, "height": 10}],
			  "annotations": [{"id": 1, "image_id": 42, "category_id": 1, "bbox": [1, 2, 3, 4]}],
			  "categories": [{"id": 1, "name": "person"}]}`,
			ErrReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCOCO(writeTempFile(t, "bad.json", tt.content))
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCOCORoundTrip(t *testing.T) {
	src, err := ReadCOCO(writeTempFile(t, "train.json", cocoFixture))
	if err != nil {
		t.Fatalf("ReadCOCO: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "out", "train.json")
	if err := WriteCOCO(src, outPath); err != nil {
		t.Fatalf("WriteCOCO: %v", err)
	}
	got, err := ReadCOCO(outPath)
	if err != nil {
		t.Fatalf("ReadCOCO(written): %v", err)
	}

	if len(got.Images) != len(src.Images) {
		t.Fatalf("images: got %d, want %d", len(got.Images), len(src.Images))
	}
	if got.Info["description"] != "test set" {
		t.Errorf("info not preserved: %v", got.Info)
	}

	for i := range src.Images {
		if len(got.Images[i].Annotations) != len(src.Images[i].Annotations) {
			t.Fatalf("image %d annotations: got %d, want %d",
				i, len(got.Images[i].Annotations), len(src.Images[i].Annotations))
		}
		for j, a := range src.Images[i].Annotations {
			b := got.Images[i].Annotations[j]
			const tol = 1e-9
			if math.Abs(a.BBox.XMin-b.BBox.XMin) > tol || math.Abs(a.BBox.YMin-b.BBox.YMin) > tol ||
				math.Abs(a.BBox.XMax-b.BBox.XMax) > tol || math.Abs(a.BBox.YMax-b.BBox.YMax) > tol {
				t.Errorf("image %d annotation %d bbox: got %+v, want %+v", i, j, b.BBox, a.BBox)
			}
			if b.CategoryName != a.CategoryName || b.IsCrowd != a.IsCrowd {
				t.Errorf("image %d annotation %d metadata: got %+v, want %+v", i, j, b, a)
			}
		}
	}

	// The id to name mapping must stay a bijection.
	for _, c := range src.Categories {
		gc, err := got.CategoryByName(c.Name)
		if err != nil {
			t.Errorf("category %q lost: %v", c.Name, err)
			continue
		}
		if gc.ID != c.ID || gc.Supercategory != c.Supercategory {
			t.Errorf("category %q: got %+v, want %+v", c.Name, gc, c)
		}
	}
}
