// Command bimdexter converts between 24-bit uncompressed BMP images and
// DXT1-compressed DDS textures.
//
// Usage:
//
//	bimdexter [-b | -d] [-q] [-u] <input> <output>
//	bimdexter info <input.dds>
//	bimdexter -batch <decode|encode> <input dir> <output dir>
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samiperttu/bimdexter/pkg/container"
	"github.com/samiperttu/bimdexter/pkg/dxt"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: bimdexter [-b | -d] [-q] [-u] {input file} {output file}")
	fmt.Fprintln(os.Stderr, "Converts between .BMP (24-bit uncompressed) and .DDS (DXT1) files.")
	fmt.Fprintln(os.Stderr, "If not specified, the mode is chosen based on the extension of the input file.")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "  -b  Set mode: input BMP and output DDS.")
	fmt.Fprintln(os.Stderr, "  -d  Set mode: input DDS and output BMP.")
	fmt.Fprintln(os.Stderr, "  -q  Suppress diagnostic output to stderr.")
	fmt.Fprintln(os.Stderr, "  -u  Choose uniform color component weighting. Default is (3, 4, 2) (R, G, B).")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Supplemental commands:")
	fmt.Fprintln(os.Stderr, "  bimdexter info <input.dds>")
	fmt.Fprintln(os.Stderr, "      Prints the dimensions and block counts of a DDS file.")
	fmt.Fprintln(os.Stderr, "  bimdexter -batch <decode|encode> <input dir> <output dir>")
	fmt.Fprintln(os.Stderr, "      Applies the same conversion to every matching file under a directory tree.")
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 0
	}

	switch args[0] {
	case "info":
		if len(args) != 2 {
			usage()
			return 0
		}
		if err := infoCommand(args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	case "-batch":
		if len(args) != 4 {
			usage()
			return 0
		}
		return batchCommand(args[1], args[2], args[3])
	}

	return convertCommand(args)
}

// convertCommand implements the spec's core [-b | -d] [-q] [-u] <in> <out>
// grammar. The argument loop mirrors the original program's manual scan
// (BimDexter.cpp's main) rather than the flag package, since the grammar
// mixes bare switches with exactly two positional arguments in an order
// flag.Parse alone doesn't model without extra bookkeeping.
func convertCommand(args []string) int {
	var filenames []string
	verbose := true
	modeSpecified := false
	bmpToDDS := false
	importance := dxt.DefaultImportance

	for _, arg := range args {
		switch arg {
		case "-b":
			bmpToDDS = true
			modeSpecified = true
		case "-d":
			bmpToDDS = false
			modeSpecified = true
		case "-q":
			verbose = false
		case "-u":
			importance = dxt.UniformImportance
		default:
			if len(filenames) < 2 {
				filenames = append(filenames, arg)
			} else {
				usage()
				return 0
			}
		}
	}

	if len(filenames) < 2 {
		usage()
		return 0
	}

	if !modeSpecified {
		switch {
		case hasSuffixFold(filenames[0], ".dds"):
			bmpToDDS = false
		case hasSuffixFold(filenames[0], ".bmp"):
			bmpToDDS = true
		default:
			fmt.Fprintln(os.Stderr, "Error: Cannot deduce mode from input file extension.")
			return 1
		}
	}

	var diag *os.File
	if verbose {
		diag = os.Stderr
	}

	if bmpToDDS {
		if err := convertBMPToDDS(filenames[0], filenames[1], importance, diag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		if err := convertDDSToBMP(filenames[0], filenames[1], diag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	return 0
}

func convertBMPToDDS(inPath, outPath string, importance dxt.Importance, diag *os.File) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("cannot open input file: %w", err)
	}
	defer in.Close()

	pm, err := container.ReadBMP(in, diagWriter(diag))
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("cannot open output file: %w", err)
	}
	defer out.Close()

	enc := dxt.NewEncoder(importance)
	start := time.Now()
	rms, err := container.WriteDDS(out, pm, enc, true)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	if diag != nil {
		fmt.Fprintf(diag, "DDS image written. Weighted RMS error per pixel: %.4f%%.\n", rms*100)
		fmt.Fprintf(diag, "Time taken: %.3f seconds.\n", elapsed.Seconds())
	}
	return nil
}

func convertDDSToBMP(inPath, outPath string, diag *os.File) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("cannot open input file: %w", err)
	}
	defer in.Close()

	pm, err := container.ReadDDS(in, diagWriter(diag))
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("cannot open output file: %w", err)
	}
	defer out.Close()

	if err := container.WriteBMP(out, pm); err != nil {
		return err
	}
	return nil
}

// diagWriter returns f as an io.Writer, or nil if f is nil, so
// container.ReadBMP/ReadDDS can gate their own diagnostic lines on a nil
// check rather than a separate verbose bool.
func diagWriter(f *os.File) io.Writer {
	if f == nil {
		return nil
	}
	return f
}

func hasSuffixFold(s, suffix string) bool {
	return strings.HasSuffix(strings.ToLower(s), strings.ToLower(suffix))
}

// batchCommand applies convertBMPToDDS/convertDDSToBMP to every .bmp or
// .dds file under inputDir, mirroring cmd/texconv's batch mode: failures
// are reported per file and do not abort the walk.
func batchCommand(mode, inputDir, outputDir string) int {
	var srcExt, dstExt string
	switch mode {
	case "decode":
		srcExt, dstExt = ".dds", ".bmp"
	case "encode":
		srcExt, dstExt = ".bmp", ".dds"
	default:
		fmt.Fprintln(os.Stderr, "Usage: bimdexter -batch <decode|encode> <input dir> <output dir>")
		return 0
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: create output dir: %v\n", err)
		return 1
	}

	converted, failed := 0, 0
	walkErr := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !hasSuffixFold(path, srcExt) {
			return nil
		}

		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outputDir, strings.TrimSuffix(rel, filepath.Ext(rel))+dstExt)
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "mkdir %s: %v\n", filepath.Dir(outPath), err)
			failed++
			return nil
		}

		var convErr error
		if mode == "decode" {
			convErr = convertDDSToBMP(path, outPath, nil)
		} else {
			convErr = convertBMPToDDS(path, outPath, dxt.DefaultImportance, nil)
		}
		if convErr != nil {
			fmt.Fprintf(os.Stderr, "convert %s: %v\n", path, convErr)
			failed++
		} else {
			converted++
		}
		return nil
	})
	if walkErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", walkErr)
		return 1
	}

	fmt.Printf("Completed: %d files converted, %d errors\n", converted, failed)
	if failed > 0 {
		return 1
	}
	return 0
}

// infoCommand prints the file name, dimensions and block counts of a DDS
// file without writing a second output file, grounded on cmd/texconv's
// "info" command. It decodes the whole file to get them and does not
// print endpoint colors.
func infoCommand(inPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("cannot open input file: %w", err)
	}
	defer in.Close()

	pm, err := container.ReadDDS(in, nil)
	if err != nil {
		return err
	}

	fmt.Printf("File: %s\n", inPath)
	fmt.Printf("Dimensions: %dx%d\n", pm.Width(), pm.Height())
	fmt.Printf("Blocks: %dx%d\n", pm.Width()/4, pm.Height()/4)
	return nil
}
