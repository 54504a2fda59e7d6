// o3dtool is a CLI utility for inspecting and converting O3D mesh files.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/o3dtools/o3dkit/pkg/cfg"
	"github.com/o3dtools/o3dkit/pkg/diag"
	"github.com/o3dtools/o3dkit/pkg/o3d"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "validate":
		cmdValidate(args)
	case "convert":
		cmdConvert(args)
	case "cfg":
		cmdCfg(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`o3dtool - O3D mesh file utility

Usage:
  o3dtool <command> [options]

Commands:
  info <file.o3d>                 Show mesh information
  validate <file.o3d>             Check a file for structural problems
  convert [options] <in> <out>    Re-encode a mesh file
  cfg <file.cfg|file.sco>         Summarize a model config

Convert options:
  -invert        Invert triangle winding
  -version N     Change the container version (1-7)

Examples:
  o3dtool info model/bus.o3d
  o3dtool convert -version 7 old.o3d new.o3d
  o3dtool cfg sceneryobjects/house/house.sco`)
}

func decodeOrDie(path string, opts o3d.Options, diags *diag.List) *o3d.Document {
	doc, err := o3d.DecodeFile(path, opts, diags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return doc
}

func printDiags(diags *diag.List) {
	for _, rec := range diags.Records() {
		fmt.Fprintln(os.Stderr, rec.String())
	}
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: o3dtool info <file.o3d>")
		os.Exit(1)
	}

	var diags diag.List
	doc := decodeOrDie(args[0], o3d.Options{}, &diags)

	fmt.Printf("File:      %s\n", args[0])
	fmt.Printf("Version:   %d\n", doc.Version)
	fmt.Printf("Indices:   %s\n", indexWidth(doc))
	fmt.Printf("Encrypted: %v\n", doc.Encrypted())
	fmt.Printf("Vertices:  %d\n", len(doc.Vertices))
	fmt.Printf("Triangles: %d\n", len(doc.Triangles))
	fmt.Printf("Bones:     %d\n", len(doc.Bones))
	fmt.Println()
	fmt.Printf("Materials (%d):\n", len(doc.Materials))
	for i, m := range doc.Materials {
		name := m.Texture
		if name == "" {
			name = "(untextured)"
		}
		fmt.Printf("  %2d  %s\n", i, name)
	}
	printDiags(&diags)
}

func indexWidth(doc *o3d.Document) string {
	if doc.LongIndices {
		return "32-bit"
	}
	return "16-bit"
}

func cmdValidate(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: o3dtool validate <file.o3d>")
		os.Exit(1)
	}

	var diags diag.List
	doc := decodeOrDie(args[0], o3d.Options{}, &diags)

	if err := doc.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printDiags(&diags)
	if diags.Warnings() > 0 {
		fmt.Printf("%s: valid with %d warning(s)\n", args[0], diags.Warnings())
		return
	}
	fmt.Printf("%s: valid\n", args[0])
}

func cmdConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	invert := fs.Bool("invert", false, "Invert triangle winding")
	version := fs.Int("version", 0, "Change the container version (1-7)")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: o3dtool convert [options] <in> <out>")
		os.Exit(1)
	}

	var diags diag.List
	doc := decodeOrDie(fs.Arg(0), o3d.Options{InvertWinding: *invert}, &diags)

	if *version > 0 {
		doc.Version = uint8(*version)
		if doc.Version <= 3 {
			// Legacy containers cannot carry the extended header features.
			doc.LongIndices = false
			doc.AltSeed = false
			doc.EncryptionKey = o3d.NoEncryptionKey
		}
	}

	if err := o3d.EncodeFile(doc, fs.Arg(1), o3d.Options{InvertWinding: *invert}, &diags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printDiags(&diags)
	fmt.Printf("Wrote %s (version %d, %d vertices)\n", fs.Arg(1), doc.Version, len(doc.Vertices))
}

func cmdCfg(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: o3dtool cfg <file.cfg|file.sco>")
		os.Exit(1)
	}

	var diags diag.List
	doc, err := cfg.ReadFile(args[0], cfg.ReadOptions{}, &diags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if doc.FriendlyName != "" {
		fmt.Printf("Name: %s\n", doc.FriendlyName)
	}
	for _, lod := range doc.LODs {
		if lod.Threshold == cfg.DefaultLOD {
			fmt.Println("LOD (default):")
		} else {
			fmt.Printf("LOD %g:\n", lod.Threshold)
		}
		for _, mesh := range lod.Meshes {
			fmt.Printf("  %s  (%d materials, %d lights)\n", mesh.Path, len(mesh.Materials), len(mesh.Lights))
			for _, matl := range mesh.Materials {
				fmt.Printf("    %s\n", matl.Texture)
			}
		}
	}
	printDiags(&diags)
}
