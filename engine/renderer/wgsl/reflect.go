package wgsl

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	structRegex   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex  = regexp.MustCompile(`@builtin\(\w+\)`)
	alignRegex    = regexp.MustCompile(`@align\((\d+)\)`)
	fieldRegex    = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:\s*(.+)$`)

	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b\s*fn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b\s*fn\s+(\w+)`)

	// matches: @group(0) @binding(2) var<uniform> hx_wvpMatrix: mat4x4<f32>;
	resourceRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// Reflect reads the entry point, resource bindings and vertex input layouts
// out of a single-stage WGSL source. Vertex layouts are only collected for
// StageVertex.
//
// Parameters:
//   - source: the fully pre-processed WGSL source
//   - stage: the stage the source is compiled for
//
// Returns:
//   - Reflection: the reflected bindings, sorted by group then binding
//   - error: if the source has no entry point for the stage
func Reflect(source string, stage Stage) (Reflection, error) {
	cleaned := StripComments(source)

	entryRegex := vertexEntryRegex
	if stage == StageFragment {
		entryRegex = fragmentEntryRegex
	}
	m := entryRegex.FindStringSubmatch(cleaned)
	if m == nil {
		return Reflection{}, fmt.Errorf("no @%s entry point found", stage)
	}

	blocks := parseStructs(cleaned)
	layouts := structLayouts(blocks)

	r := Reflection{Stage: stage, EntryPoint: m[1]}
	for _, d := range resourceRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.ParseUint(d[1], 10, 32)
		binding, _ := strconv.ParseUint(d[2], 10, 32)
		b := Binding{
			Group:        uint32(group),
			Binding:      uint32(binding),
			AddressSpace: strings.TrimSpace(d[3]),
			Name:         d[4],
			Type:         canonicalType(d[5]),
		}
		if b.AddressSpace != "" {
			if l, ok := resolveLayout(b.Type, layouts); ok {
				b.Size = l.size
			}
			for _, s := range blocks {
				if s.name == b.Type {
					b.Members = structMembers(s, layouts)
				}
			}
		}
		b.Entry, b.Kind = layoutEntry(b, stage.Visibility())
		r.Bindings = append(r.Bindings, b)
	}
	sortBindings(r.Bindings)

	if stage == StageVertex {
		params := entryParamTypes(cleaned, r.EntryPoint)
		for _, s := range blocks {
			if !isVertexInput(s) || (len(params) > 0 && !params[s.name]) {
				continue
			}
			if l, ok := vertexLayout(s); ok {
				r.VertexLayouts = append(r.VertexLayouts, l)
			}
		}
	}
	return r, nil
}

// Uniforms returns the buffer bindings of the reflection.
func (r Reflection) Uniforms() []Binding {
	var out []Binding
	for _, b := range r.Bindings {
		if b.Kind == BindingKindUniform || b.Kind == BindingKindStorage {
			out = append(out, b)
		}
	}
	return out
}

// Textures returns the texture bindings of the reflection.
func (r Reflection) Textures() []Binding {
	var out []Binding
	for _, b := range r.Bindings {
		if b.Kind == BindingKindTexture {
			out = append(out, b)
		}
	}
	return out
}

// BlockUniforms flattens the members of the uniform block variable named
// BlockName into individually addressable uniforms named "hx_<member>".
//
// Returns:
//   - Binding: the block binding
//   - []Member: the members with prefixed names; nil when the source declares no block
func (r Reflection) BlockUniforms() (Binding, []Member) {
	b, ok := r.Lookup(BlockName)
	if !ok || b.Kind != BindingKindUniform {
		return Binding{}, nil
	}
	members := make([]Member, len(b.Members))
	for i, m := range b.Members {
		m.Name = BlockName + "_" + m.Name
		members[i] = m
	}
	return b, members
}

// Lookup finds a binding by its variable name.
func (r Reflection) Lookup(name string) (Binding, bool) {
	for _, b := range r.Bindings {
		if b.Name == name {
			return b, true
		}
	}
	return Binding{}, false
}

// MergeBindings combines the bindings of a vertex and fragment stage. A binding
// declared by both stages keeps the vertex declaration and ORs the visibility.
//
// Parameters:
//   - stages: the per-stage binding lists to merge
//
// Returns:
//   - []Binding: the union, sorted by group then binding
//   - error: if two stages declare the same slot with different names or types
func MergeBindings(stages ...[]Binding) ([]Binding, error) {
	type slot struct{ group, binding uint32 }
	index := make(map[slot]int)
	var merged []Binding
	for _, bindings := range stages {
		for _, b := range bindings {
			k := slot{b.Group, b.Binding}
			i, ok := index[k]
			if !ok {
				index[k] = len(merged)
				merged = append(merged, b)
				continue
			}
			existing := &merged[i]
			if existing.Name != b.Name || existing.Type != b.Type {
				return nil, fmt.Errorf("binding @group(%d) @binding(%d) declared as %s: %s and %s: %s",
					b.Group, b.Binding, existing.Name, existing.Type, b.Name, b.Type)
			}
			existing.Entry.Visibility |= b.Entry.Visibility
		}
	}
	sortBindings(merged)
	return merged, nil
}

// GroupEntries groups merged bindings into per-group layout entries. When
// dynamicUniforms is set, uniform buffer entries are marked with dynamic offsets.
//
// Parameters:
//   - bindings: merged bindings, typically from MergeBindings
//   - dynamicUniforms: whether uniform buffers are bound with dynamic offsets
//
// Returns:
//   - map[uint32][]wgpu.BindGroupLayoutEntry: entries keyed by group, sorted by binding
func GroupEntries(bindings []Binding, dynamicUniforms bool) map[uint32][]wgpu.BindGroupLayoutEntry {
	groups := make(map[uint32][]wgpu.BindGroupLayoutEntry)
	for _, b := range bindings {
		e := b.Entry
		if dynamicUniforms && b.Kind == BindingKindUniform {
			e.Buffer.HasDynamicOffset = true
		}
		groups[b.Group] = append(groups[b.Group], e)
	}
	return groups
}

// StripComments removes // line comments and nested /* */ block comments.
func StripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			pair := source[i : i+2]
			switch {
			case pair == "/*":
				depth++
				i++
				continue
			case pair == "*/" && depth > 0:
				depth--
				i++
				continue
			case pair == "//" && depth == 0:
				for i < len(source) && source[i] != '\n' {
					i++
				}
				if i < len(source) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

func parseStructs(source string) []structBlock {
	matches := structRegex.FindAllStringSubmatch(source, -1)
	blocks := make([]structBlock, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, structBlock{name: m[1], fields: parseFields(m[2])})
	}
	return blocks
}

func parseFields(body string) []structField {
	var fields []structField
	for _, raw := range splitTopLevel(body, ',') {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		f := structField{
			name:      fm[1],
			typeName:  canonicalType(fm[2]),
			location:  -1,
			isBuiltin: builtinRegex.MatchString(line),
		}
		if lm := locationRegex.FindStringSubmatch(line); lm != nil {
			f.location, _ = strconv.Atoi(lm[1])
		}
		if am := alignRegex.FindStringSubmatch(line); am != nil {
			f.align, _ = strconv.ParseUint(am[1], 10, 64)
		}
		fields = append(fields, f)
	}
	return fields
}

// isVertexInput reports whether the struct only carries @location fields.
// Vertex outputs are excluded by their @builtin(position) member.
func isVertexInput(s structBlock) bool {
	located := false
	for _, f := range s.fields {
		if f.isBuiltin {
			return false
		}
		if f.location >= 0 {
			located = true
		}
	}
	return located
}

// entryParamTypes collects the parameter type names of the named function.
func entryParamTypes(source, entry string) map[string]bool {
	re := regexp.MustCompile(`fn\s+` + regexp.QuoteMeta(entry) + `\s*\(([^)]*)\)`)
	m := re.FindStringSubmatch(source)
	if m == nil {
		return nil
	}
	types := make(map[string]bool)
	for _, p := range splitTopLevel(m[1], ',') {
		if _, t, ok := strings.Cut(p, ":"); ok {
			types[strings.TrimSpace(t)] = true
		}
	}
	return types
}

func sortBindings(b []Binding) {
	sort.Slice(b, func(i, j int) bool {
		if b[i].Group != b[j].Group {
			return b[i].Group < b[j].Group
		}
		return b[i].Binding < b[j].Binding
	})
}
