// Converts object-detection annotation datasets between the COCO, YOLO and
// Pascal VOC formats.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/visionset/annoconv"
)

const version = "0.3.0"

var (
	convertFrom annoconv.Format // The source format.
	convertTo   annoconv.Format // The target format.

	inputPath   string // The input annotation file (coco) or directory (yolo, voc).
	outputPath  string // The output annotation file (coco) or directory (yolo, voc).
	imagesDir   string // The directory with the annotated images (yolo input).
	classesFile string // The class list file (yolo input).
	imageExt    string // The image file extension (yolo input).
)

func usage(fs *flag.FlagSet) {
	out := os.Stderr
	_, _ = fmt.Fprintf(out, "Usage: %s <from> <to> -i <path> -o <path> [options]\n",
		filepath.Base(os.Args[0]))
	_, _ = fmt.Fprintln(out, "  <from>, <to>:\t\tone of {coco, yolo, voc}")
	_, _ = fmt.Fprintln(out, "  coco paths:\t\tannotation JSON file")
	_, _ = fmt.Fprintln(out, "  yolo/voc paths:\tlabel directory")
	_, _ = fmt.Fprintln(out, "  yolo input options:\t--images <dir> --classes <file> [--image-ext <ext>]")
	_, _ = fmt.Fprintln(out)
	fs.PrintDefaults()
}

func main() {
	fs := flag.NewFlagSet(filepath.Base(os.Args[0]), flag.ExitOnError)

	fs.StringVar(&inputPath, "i", "", "The `path` to the input annotations")
	fs.StringVar(&inputPath, "input", "", "Alias for -i")
	fs.StringVar(&outputPath, "o", "", "The `path` to the output annotations")
	fs.StringVar(&outputPath, "output", "", "Alias for -o")
	fs.StringVar(&imagesDir, "images", "", "The `path` to the image directory (yolo input)")
	fs.StringVar(&classesFile, "classes", "", "The `path` to the class list file (yolo input)")
	fs.StringVar(&imageExt, "image-ext", ".jpg", "The image file `extension` (yolo input)")
	fs.Usage = func() { usage(fs) }

	args := os.Args[1:]
	if len(args) > 0 && (args[0] == "-v" || args[0] == "--version") {
		fmt.Println(version)
		return
	}
	if len(args) < 2 {
		usage(fs)
		os.Exit(1)
	}

	convertFrom = annoconv.ParseFormat(args[0])
	convertTo = annoconv.ParseFormat(args[1])
	if convertFrom == annoconv.FormatUnknown {
		log.Print("Unsupported source format: ", args[0])
		usage(fs)
		os.Exit(1)
	}
	if convertTo == annoconv.FormatUnknown {
		log.Print("Unsupported target format: ", args[1])
		usage(fs)
		os.Exit(1)
	}

	_ = fs.Parse(args[2:])

	if inputPath == "" || outputPath == "" {
		log.Print("Missing input or output path argument")
		usage(fs)
		os.Exit(1)
	}
	inputPath = filepath.Clean(inputPath)
	outputPath = filepath.Clean(outputPath)
	if inputPath == outputPath {
		log.Fatal("The input and output paths cannot be identical")
	}

	opts := annoconv.Options{
		Input:       inputPath,
		Output:      outputPath,
		ImagesDir:   imagesDir,
		ClassesFile: classesFile,
		ImageExt:    imageExt,
	}

	dataset, err := annoconv.Read(convertFrom, opts)
	if err != nil {
		log.Fatal("Failed to parse the input: ", err)
	}

	// The target may need pixel dimensions the source did not carry.
	if convertTo == annoconv.FormatYOLO && imagesDir != "" {
		if err := annoconv.InferDimensions(dataset, imagesDir); err != nil {
			log.Fatal("Failed to infer image dimensions: ", err)
		}
	}

	if err := annoconv.Write(convertTo, dataset, opts); err != nil {
		log.Fatal("Conversion failed: ", err)
	}

	log.Printf("Converted annotations for %d images from %s to %s",
		len(dataset.Images), convertFrom, convertTo)
}
