// objtool is a CLI utility for inspecting OBJ meshes before import.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/keyframe-studio/internal/engine/geometry"
	"github.com/Faultbox/keyframe-studio/internal/engine/transform"
	"github.com/Faultbox/keyframe-studio/pkg/formats"
	"github.com/Faultbox/keyframe-studio/pkg/math"
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
	case "check":
		cmdCheck(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`objtool - OBJ mesh utility

Usage:
  objtool <command> [options]

Commands:
  info <file.obj>               Show counts, bounds and centroids
  check [-eps E] <file.obj>...  Verify files import and survive an identity transform

Examples:
  objtool info cube.obj
  objtool check -eps 1e-4 models/*.obj`)
}

func load(path string) (*formats.OBJ, *geometry.Mesh, error) {
	obj, err := formats.LoadOBJ(path)
	if err != nil {
		return nil, nil, err
	}
	mesh, err := geometry.FromTriangles(obj.Positions, obj.Triangles)
	if err != nil {
		return nil, nil, err
	}
	return obj, mesh, nil
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool info <file.obj>")
		os.Exit(1)
	}

	obj, mesh, err := load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	b := mesh.Bounds()
	fmt.Printf("File:      %s\n", args[0])
	fmt.Printf("Positions: %d\n", len(obj.Positions))
	fmt.Printf("Polygons:  %d\n", obj.Polygons)
	fmt.Printf("Triangles: %d\n", len(obj.Triangles))
	fmt.Printf("Vertices:  %d (flat shaded)\n", mesh.VertexCount())
	fmt.Println()
	fmt.Printf("Bounds min:      %s\n", vec(b.Min))
	fmt.Printf("Bounds max:      %s\n", vec(b.Max))
	fmt.Printf("Size:            %s\n", vec(b.Size()))
	fmt.Printf("Import centroid: %s\n", vec(b.Center()))
	fmt.Printf("Vertex mean:     %s\n", vec(geometry.Centroid(mesh.Vertices())))
}

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	eps := fs.Float64("eps", 1e-4, "Largest allowed position drift")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool check [-eps E] <file.obj>...")
		os.Exit(1)
	}

	failed := 0
	for _, path := range fs.Args() {
		if err := check(path, float32(*eps)); err != nil {
			fmt.Printf("FAIL %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("ok   %s\n", path)
	}
	if failed > 0 {
		fmt.Printf("\n%d of %d files failed\n", failed, fs.NArg())
		os.Exit(1)
	}
}

// check imports path and runs it through the identity transform about its
// own vertex mean, which must leave every vertex in place.
func check(path string, eps float32) error {
	_, mesh, err := load(path)
	if err != nil {
		return err
	}
	in := mesh.Vertices()
	out, err := transform.Apply(in, transform.Identity(geometry.Centroid(in)))
	if err != nil {
		return err
	}
	for i := range in {
		if !in[i].Position.ApproxEqual(out[i].Position, eps) {
			return fmt.Errorf("vertex %d moved from %s to %s", i, vec(in[i].Position), vec(out[i].Position))
		}
	}
	return nil
}

func vec(v math.Vec3) string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v.X, v.Y, v.Z)
}
