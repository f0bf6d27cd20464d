// annotations.go defines the helix WGSL annotation syntax. Annotations are single-line
// comments prefixed with @hx: that the PreProcessor expands before a source is handed to the
// backend compiler:
//
//	//@hx:include <snippet>          inject a library snippet once per source
//	//@hx:uniform <name> [<type>]    request a member of the per-draw uniform block
//	//@hx:ifdef <DEFINE>             keep the following lines if DEFINE is set
//	//@hx:ifndef <DEFINE>            keep the following lines if DEFINE is not set
//	//@hx:else
//	//@hx:endif
//
// Conditional blocks nest. Lines inside an inactive block are dropped, including any
// annotations they contain.
package shader

import (
	"fmt"
	"strings"
)

// annotationPrefix marks an annotation inside a WGSL line comment.
const annotationPrefix = "//@hx:"

// AnnotationType identifies the kind of a parsed annotation.
type AnnotationType string

const (
	AnnotationTypeInclude AnnotationType = "include"
	AnnotationTypeUniform AnnotationType = "uniform"
	AnnotationTypeIfdef   AnnotationType = "ifdef"
	AnnotationTypeIfndef  AnnotationType = "ifndef"
	AnnotationTypeElse    AnnotationType = "else"
	AnnotationTypeEndif   AnnotationType = "endif"
)

// Annotation is one parsed @hx: line.
type Annotation struct {
	Type AnnotationType

	// Args holds the annotation's arguments:
	//   - include: [0] = snippet name
	//   - uniform: [0] = uniform name, [1] = optional WGSL type
	//   - ifdef/ifndef: [0] = define name
	Args []string

	// Line is the 1-based line number within the source being processed.
	Line int
}

// argCounts holds the accepted argument count range per annotation type.
var argCounts = map[AnnotationType][2]int{
	AnnotationTypeInclude: {1, 1},
	AnnotationTypeUniform: {1, 2},
	AnnotationTypeIfdef:   {1, 1},
	AnnotationTypeIfndef:  {1, 1},
	AnnotationTypeElse:    {0, 0},
	AnnotationTypeEndif:   {0, 0},
}

// parseAnnotation parses a single source line. Lines that are not annotations return nil
// without error.
//
// Parameters:
//   - line: the raw source line
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	after, ok := strings.CutPrefix(strings.TrimSpace(line), annotationPrefix)
	if !ok {
		return nil, nil
	}

	fields := strings.Fields(after)
	if len(fields) == 0 {
		return nil, fmt.Errorf("line %d: empty @hx annotation", lineNum)
	}

	typ := AnnotationType(fields[0])
	counts, known := argCounts[typ]
	if !known {
		return nil, fmt.Errorf("line %d: unknown @hx annotation %q", lineNum, fields[0])
	}

	args := fields[1:]
	if typ == AnnotationTypeUniform && len(args) > 1 {
		// types may contain spaces, e.g. array<vec4<f32>, 32>
		args = []string{args[0], strings.Join(args[1:], " ")}
	}
	if len(args) < counts[0] || len(args) > counts[1] {
		return nil, fmt.Errorf("line %d: @hx:%s takes %d to %d arguments, got %d", lineNum, typ, counts[0], counts[1], len(args))
	}

	return &Annotation{Type: typ, Args: args, Line: lineNum}, nil
}
