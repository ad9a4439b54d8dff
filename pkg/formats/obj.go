package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/keyframe-studio/pkg/math"
)

// OBJ format errors.
var (
	ErrNoVertices       = errors.New("obj: no vertex positions found")
	ErrNoFaces          = errors.New("obj: no faces found")
	ErrMalformedVertex  = errors.New("obj: malformed vertex record")
	ErrMalformedFace    = errors.New("obj: malformed face record")
	ErrInvalidFaceIndex = errors.New("obj: face references a missing vertex")
)

// OBJ holds the geometry read from a Wavefront OBJ file.
type OBJ struct {
	Positions []math.Vec3
	// Triangles index into Positions. Polygons are fan-triangulated.
	Triangles [][3]int
	// Polygons counts the face records before triangulation.
	Polygons int
}

// LoadOBJ reads and parses an OBJ file from disk.
func LoadOBJ(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}
	obj, err := ParseOBJ(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obj, nil
}

// ParseOBJ parses OBJ data. Any malformed vertex or face record fails the
// whole parse.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			obj.Positions = append(obj.Positions, v)

		case "f":
			face, err := parseFace(fields[1:], len(obj.Positions))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			obj.Polygons++
			for i := 1; i < len(face)-1; i++ {
				obj.Triangles = append(obj.Triangles, [3]int{face[0], face[i], face[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning OBJ: %w", err)
	}

	if len(obj.Positions) == 0 {
		return nil, ErrNoVertices
	}
	if len(obj.Triangles) == 0 {
		return nil, ErrNoFaces
	}

	return obj, nil
}

func parseVertex(fields []string) (math.Vec3, error) {
	if len(fields) < 3 {
		return math.Vec3{}, fmt.Errorf("%w: expected 3 coordinates, got %d", ErrMalformedVertex, len(fields))
	}
	var c [3]float32
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("%w: %q", ErrMalformedVertex, fields[i])
		}
		c[i] = float32(f)
	}
	return math.Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}

// parseFace resolves face references to zero-based position indices.
// Negative indices are relative to the vertices read so far.
func parseFace(fields []string, vertexCount int) ([]int, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("%w: expected at least 3 vertices, got %d", ErrMalformedFace, len(fields))
	}

	face := make([]int, 0, len(fields))
	for _, ref := range fields {
		// v, v/vt, v/vt/vn or v//vn
		idxStr, _, _ := strings.Cut(ref, "/")
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx == 0 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedFace, ref)
		}

		if idx < 0 {
			idx = vertexCount + idx
		} else {
			idx--
		}
		if idx < 0 || idx >= vertexCount {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFaceIndex, ref)
		}
		face = append(face, idx)
	}
	return face, nil
}
