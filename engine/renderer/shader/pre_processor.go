// pre_processor.go expands helix annotations in a vertex/fragment source pair. Includes are
// resolved against a Library, conditional blocks against the program's Defines, and the
// //@hx:uniform requests of both stages are merged into one generated uniform block so the
// two stages always agree on its layout.
package shader

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/helix-go/engine/renderer/uniform"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/wgsl"
)

// typesSnippet defines the host-shared structs referenced by block uniform types.
const typesSnippet = "hx_types"

// blockStructName is the WGSL struct type of the generated uniform block.
const blockStructName = "HX_Uniforms"

// Defines maps define names to values. An empty value marks a flag-only define.
type Defines map[string]string

// Clone returns a copy of d that is safe to modify.
func (d Defines) Clone() Defines {
	return maps.Clone(d)
}

// Merge returns a new set holding d overlaid with other.
//
// Parameters:
//   - other: defines taking precedence
//
// Returns:
//   - Defines: the merged set
func (d Defines) Merge(other Defines) Defines {
	out := make(Defines, len(d)+len(other))
	maps.Copy(out, d)
	maps.Copy(out, other)
	return out
}

// sortedNames returns the define names in lexical order.
func (d Defines) sortedNames() []string {
	return slices.Sorted(maps.Keys(d))
}

// ProcessedProgram is the output of a PreProcessor run.
type ProcessedProgram struct {
	VertexSource   string
	FragmentSource string

	// Uniforms lists the block uniform names requested by either stage, sorted.
	Uniforms []string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	lib Library
}

// PreProcessor expands annotations in a vertex/fragment pair.
type PreProcessor interface {
	// Process expands includes and conditional blocks in both sources, prefixes each with the
	// defines as WGSL constants and the shared uniform block.
	//
	// Parameters:
	//   - vertexSource: raw vertex stage source
	//   - fragmentSource: raw fragment stage source
	//   - defines: the program's define set
	//
	// Returns:
	//   - ProcessedProgram: the expanded sources
	//   - error: on unknown snippets, unknown or conflicting uniforms, or unbalanced conditionals
	Process(vertexSource, fragmentSource string, defines Defines) (ProcessedProgram, error)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a pre-processor resolving includes against lib.
//
// Parameters:
//   - lib: the snippet library
//
// Returns:
//   - PreProcessor: the pre-processor
func NewPreProcessor(lib Library) PreProcessor {
	if lib == nil {
		panic("shader: pre-processor requires a library")
	}
	return &preProcessor{lib: lib}
}

// stageState accumulates the expansion of one stage.
type stageState struct {
	defines  Defines
	included map[string]bool
	out      []string
	uniforms map[string]string
}

// condFrame is one level of the conditional stack.
type condFrame struct {
	parentActive bool
	taken        bool
	sawElse      bool
}

func (p *preProcessor) Process(vertexSource, fragmentSource string, defines Defines) (ProcessedProgram, error) {
	vs := &stageState{defines: defines, included: map[string]bool{}, uniforms: map[string]string{}}
	fs := &stageState{defines: defines, included: map[string]bool{}, uniforms: map[string]string{}}

	if err := p.expand(vs, "vertex", vertexSource); err != nil {
		return ProcessedProgram{}, err
	}
	if err := p.expand(fs, "fragment", fragmentSource); err != nil {
		return ProcessedProgram{}, err
	}

	requested := make(map[string]string, len(vs.uniforms)+len(fs.uniforms))
	for _, stage := range []*stageState{vs, fs} {
		for name, explicit := range stage.uniforms {
			typ, err := resolveUniformType(name, explicit)
			if err != nil {
				return ProcessedProgram{}, err
			}
			if prev, ok := requested[name]; ok && prev != typ {
				return ProcessedProgram{}, fmt.Errorf("uniform %s requested as %s and %s", name, prev, typ)
			}
			requested[name] = typ
		}
	}

	names := slices.Sorted(maps.Keys(requested))
	block, needsTypes := uniformBlock(names, requested)

	out := ProcessedProgram{Uniforms: names}
	for i, stage := range []*stageState{vs, fs} {
		var sb strings.Builder
		writeDefines(&sb, defines)
		if needsTypes && !stage.included[typesSnippet] {
			src, _ := p.lib.Get(typesSnippet)
			sb.WriteString(src)
			sb.WriteByte('\n')
		}
		sb.WriteString(block)
		sb.WriteString(strings.Join(stage.out, "\n"))
		if i == 0 {
			out.VertexSource = sb.String()
		} else {
			out.FragmentSource = sb.String()
		}
	}
	return out, nil
}

// expand appends the active lines of source to st, recursing into includes.
func (p *preProcessor) expand(st *stageState, origin, source string) error {
	var stack []condFrame
	active := true

	for i, line := range strings.Split(source, "\n") {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return fmt.Errorf("%s: %w", origin, err)
		}
		if a == nil {
			if active {
				st.out = append(st.out, line)
			}
			continue
		}

		switch a.Type {
		case AnnotationTypeIfdef, AnnotationTypeIfndef:
			_, defined := st.defines[a.Args[0]]
			cond := defined == (a.Type == AnnotationTypeIfdef)
			stack = append(stack, condFrame{parentActive: active, taken: cond})
			active = active && cond
		case AnnotationTypeElse:
			if len(stack) == 0 {
				return fmt.Errorf("%s: line %d: @hx:else without @hx:ifdef", origin, a.Line)
			}
			top := &stack[len(stack)-1]
			if top.sawElse {
				return fmt.Errorf("%s: line %d: duplicate @hx:else", origin, a.Line)
			}
			top.sawElse = true
			active = top.parentActive && !top.taken
		case AnnotationTypeEndif:
			if len(stack) == 0 {
				return fmt.Errorf("%s: line %d: @hx:endif without @hx:ifdef", origin, a.Line)
			}
			active = stack[len(stack)-1].parentActive
			stack = stack[:len(stack)-1]
		case AnnotationTypeInclude:
			if !active {
				continue
			}
			name := a.Args[0]
			if st.included[name] {
				continue
			}
			src, ok := p.lib.Get(name)
			if !ok {
				return fmt.Errorf("%s: line %d: unknown snippet %q", origin, a.Line, name)
			}
			st.included[name] = true
			if err := p.expand(st, name, src); err != nil {
				return err
			}
		case AnnotationTypeUniform:
			if !active {
				continue
			}
			name := a.Args[0]
			explicit := ""
			if len(a.Args) > 1 {
				explicit = a.Args[1]
			}
			if prev, ok := st.uniforms[name]; ok && prev != "" && explicit != "" && prev != explicit {
				return fmt.Errorf("%s: line %d: uniform %s redeclared as %s", origin, a.Line, name, explicit)
			}
			if explicit != "" || st.uniforms[name] == "" {
				st.uniforms[name] = explicit
			}
		}
	}

	if len(stack) != 0 {
		return fmt.Errorf("%s: unterminated @hx:ifdef", origin)
	}
	return nil
}

// resolveUniformType returns the WGSL type of a block uniform.
func resolveUniformType(name, explicit string) (string, error) {
	if !strings.HasPrefix(name, wgsl.BlockName+"_") {
		return "", fmt.Errorf("uniform %s: block uniforms must be prefixed with %s_", name, wgsl.BlockName)
	}
	known, ok := uniform.WGSLType(name)
	switch {
	case explicit != "" && ok && known != explicit:
		return "", fmt.Errorf("uniform %s has type %s, not %s", name, known, explicit)
	case explicit != "":
		return explicit, nil
	case ok:
		return known, nil
	default:
		return "", fmt.Errorf("uniform %s has no known type", name)
	}
}

// uniformBlock renders the block struct and its binding. It reports whether any member
// uses a struct from the types snippet.
func uniformBlock(names []string, types map[string]string) (string, bool) {
	if len(names) == 0 {
		return "", false
	}
	var sb strings.Builder
	needsTypes := false
	fmt.Fprintf(&sb, "struct %s {\n", blockStructName)
	for _, name := range names {
		typ := types[name]
		if strings.HasPrefix(typ, "HX_") {
			needsTypes = true
		}
		fmt.Fprintf(&sb, "    @align(16) %s: %s,\n", strings.TrimPrefix(name, wgsl.BlockName+"_"), typ)
	}
	sb.WriteString("};\n")
	fmt.Fprintf(&sb, "@group(0) @binding(0) var<uniform> %s: %s;\n\n", wgsl.BlockName, blockStructName)
	return sb.String(), needsTypes
}

// writeDefines emits the defines as WGSL constants. Flag-only defines become true.
func writeDefines(sb *strings.Builder, d Defines) {
	for _, name := range d.sortedNames() {
		value := d[name]
		if value == "" {
			value = "true"
		}
		fmt.Fprintf(sb, "const %s = %s;\n", name, value)
	}
	if len(d) > 0 {
		sb.WriteByte('\n')
	}
}
