// Package formats provides parsers for the mesh file formats the studio can
// import.
package formats

// Note: Wavefront OBJ is implemented in obj.go. Only positions and faces are
// read; texture coordinates, normals and materials are ignored because the
// studio computes flat normals itself.
