package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedOBJ is wrapped by every OBJ parse failure.
var ErrMalformedOBJ = errors.New("malformed OBJ")

// OBJError describes where an OBJ parse failed.
type OBJError struct {
	Line int
	Msg  string
}

func (e *OBJError) Error() string {
	return fmt.Sprintf("obj line %d: %s", e.Line, e.Msg)
}

// Unwrap lets errors.Is match ErrMalformedOBJ.
func (e *OBJError) Unwrap() error {
	return ErrMalformedOBJ
}

// OBJFaceVertex holds 0-based indices into the OBJ attribute sequences.
// TexCoord and Normal are -1 when the file has no such sequence.
type OBJFaceVertex struct {
	Position int
	TexCoord int
	Normal   int
}

// OBJ is a parsed Wavefront OBJ file restricted to triangles.
type OBJ struct {
	Positions [][3]float32
	TexCoords [][2]float32
	Normals   [][3]float32
	Faces     [][3]OBJFaceVertex
}

// HasTexCoords reports whether the file declared any texture coordinates.
func (o *OBJ) HasTexCoords() bool {
	return len(o.TexCoords) > 0
}

// HasNormals reports whether the file declared any normals.
func (o *OBJ) HasNormals() bool {
	return len(o.Normals) > 0
}

// objFaceLine is a face record kept for the second pass.
type objFaceLine struct {
	line   int
	tokens []string
}

// ParseOBJ parses a Wavefront OBJ description.
//
// Only v, vt, vn and f records are read; everything else is ignored.
// Attributes are collected for the whole file before faces are resolved,
// so whether a face-vertex carries a texture coordinate or normal depends
// on the file as a whole, never on record order. Faces must be triangles.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	var faces []objFaceLine

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3, 3, lineNo)
			if err != nil {
				return nil, err
			}
			obj.Positions = append(obj.Positions, [3]float32{v[0], v[1], v[2]})
		case "vn":
			v, err := parseFloats(fields[1:], 3, 3, lineNo)
			if err != nil {
				return nil, err
			}
			obj.Normals = append(obj.Normals, [3]float32{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(fields[1:], 1, 2, lineNo)
			if err != nil {
				return nil, err
			}
			obj.TexCoords = append(obj.TexCoords, [2]float32{v[0], v[1]})
		case "f":
			faces = append(faces, objFaceLine{line: lineNo, tokens: fields[1:]})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading obj: %w", err)
	}

	obj.Faces = make([][3]OBJFaceVertex, 0, len(faces))
	for _, f := range faces {
		face, err := obj.resolveFace(f)
		if err != nil {
			return nil, err
		}
		obj.Faces = append(obj.Faces, face)
	}

	return obj, nil
}

// parseFloats parses at least min numbers and returns the first keep of
// them, zero-padding up to keep.
func parseFloats(fields []string, min, keep, line int) ([]float32, error) {
	if len(fields) < min {
		return nil, &OBJError{Line: line, Msg: fmt.Sprintf("expected at least %d values, got %d", min, len(fields))}
	}
	out := make([]float32, keep)
	for i := 0; i < keep && i < len(fields); i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, &OBJError{Line: line, Msg: fmt.Sprintf("invalid number %q", fields[i])}
		}
		out[i] = float32(f)
	}
	return out, nil
}

func (o *OBJ) resolveFace(f objFaceLine) ([3]OBJFaceVertex, error) {
	var face [3]OBJFaceVertex
	if len(f.tokens) != 3 {
		return face, &OBJError{Line: f.line, Msg: fmt.Sprintf("face has %d vertices, want 3", len(f.tokens))}
	}

	for i, token := range f.tokens {
		parts := strings.Split(token, "/")
		if len(parts) > 3 {
			return face, &OBJError{Line: f.line, Msg: fmt.Sprintf("face vertex %q has too many parts", token)}
		}

		pos, err := resolveIndex(parts[0], len(o.Positions), "position", f.line)
		if err != nil {
			return face, err
		}
		fv := OBJFaceVertex{Position: pos, TexCoord: -1, Normal: -1}

		if o.HasTexCoords() {
			part := ""
			if len(parts) > 1 {
				part = parts[1]
			}
			if fv.TexCoord, err = resolveIndex(part, len(o.TexCoords), "texcoord", f.line); err != nil {
				return face, err
			}
		}

		if o.HasNormals() {
			part := ""
			if len(parts) > 2 {
				part = parts[2]
			}
			if fv.Normal, err = resolveIndex(part, len(o.Normals), "normal", f.line); err != nil {
				return face, err
			}
		}

		face[i] = fv
	}

	return face, nil
}

// resolveIndex converts a 1-based OBJ index into a 0-based one.
func resolveIndex(s string, count int, kind string, line int) (int, error) {
	if s == "" {
		return 0, &OBJError{Line: line, Msg: fmt.Sprintf("missing %s index", kind)}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &OBJError{Line: line, Msg: fmt.Sprintf("invalid %s index %q", kind, s)}
	}
	if n < 1 || n > count {
		return 0, &OBJError{Line: line, Msg: fmt.Sprintf("%s index %d out of range [1, %d]", kind, n, count)}
	}
	return n - 1, nil
}
