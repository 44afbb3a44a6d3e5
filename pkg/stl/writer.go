package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/nyxforge/supportgen/pkg/geometry"
)

// WriteBinary writes m to path in binary STL format: an 80-byte header,
// a little-endian uint32 triangle count, then 50 bytes per triangle
// (12 floats for normal + 3 vertices, plus a 2-byte attribute count).
// Mirrors the layout parseBinary reads in parser.go.
func (m *Model) WriteBinary(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	var header [80]byte
	copy(header[:], m.Name)
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(m.Triangles))); err != nil {
		return fmt.Errorf("failed to write triangle count: %w", err)
	}

	for i, triangle := range m.Triangles {
		if err := writeBinaryTriangle(w, triangle); err != nil {
			return fmt.Errorf("failed to write triangle %d: %w", i, err)
		}
	}

	return w.Flush()
}

func writeBinaryTriangle(w io.Writer, triangle geometry.Triangle) error {
	normal := triangle.Normal
	if normal.IsZero() {
		normal = triangle.CalculateNormal()
	}

	coords := [4]geometry.Vector3{normal, triangle.V1, triangle.V2, triangle.V3}
	for _, c := range coords {
		v := [3]float32{float32(c.X), float32(c.Y), float32(c.Z)}
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	return binary.Write(w, binary.LittleEndian, uint16(0))
}

// WriteASCII writes m to path in ASCII STL format.
func (m *Model) WriteASCII(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	name := m.Name
	if name == "" {
		name = "model"
	}
	fmt.Fprintf(w, "solid %s\n", name)
	for _, triangle := range m.Triangles {
		normal := triangle.Normal
		if normal.IsZero() {
			normal = triangle.CalculateNormal()
		}
		fmt.Fprintf(w, "  facet normal %e %e %e\n", normal.X, normal.Y, normal.Z)
		fmt.Fprintln(w, "    outer loop")
		fmt.Fprintf(w, "      vertex %e %e %e\n", triangle.V1.X, triangle.V1.Y, triangle.V1.Z)
		fmt.Fprintf(w, "      vertex %e %e %e\n", triangle.V2.X, triangle.V2.Y, triangle.V2.Z)
		fmt.Fprintf(w, "      vertex %e %e %e\n", triangle.V3.X, triangle.V3.Y, triangle.V3.Z)
		fmt.Fprintln(w, "    endloop")
		fmt.Fprintln(w, "  endfacet")
	}
	fmt.Fprintf(w, "endsolid %s\n", name)

	return w.Flush()
}

// Write writes m in binary format if binary is true, ASCII otherwise. The
// original mesh's own format is not remembered, since the router and mesher
// pipeline that produces the output model works purely with in-memory
// triangles regardless of how they were read in.
func (m *Model) Write(path string, binaryFormat bool) error {
	if binaryFormat {
		return m.WriteBinary(path)
	}
	return m.WriteASCII(path)
}

// Append copies every triangle of other into m, renaming neither model.
// STL has no shared vertex indices (it is a triangle soup), so "appending
// a second connected component" is simply concatenating triangle lists;
// no vertex-index shift is involved.
func (m *Model) Append(other *Model) {
	m.Triangles = append(m.Triangles, other.Triangles...)
}

// Combine returns a new model holding the model's triangles followed by the
// support mesh's triangles, so the result can be written as a single file
// containing both the original part and its supports.
func Combine(model, support *Model) *Model {
	combined := NewModel(model.Name)
	combined.Triangles = append(combined.Triangles, model.Triangles...)
	combined.Triangles = append(combined.Triangles, support.Triangles...)
	return combined
}
