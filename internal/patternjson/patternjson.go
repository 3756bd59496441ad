// Package patternjson exports an evaluated pattern tree to JSON for
// `vellum dump --json` (spec §4.5's pattern tree is the CLI's dump
// format). Built on bitly/go-simplejson rather than a hand-rolled struct
// walked by encoding/json, since the tree's payload shape varies by
// pattern.Kind (a tagged union, not a fixed Go struct) and simplejson's
// untyped node lets each branch assemble exactly the keys that kind has
// without a parallel struct-per-kind hierarchy.
package patternjson

import (
	"github.com/bitly/go-simplejson"

	"github.com/vellumlang/vellum/pkg/pattern"
	"github.com/vellumlang/vellum/pkg/provider"
)

// Exporter reads pattern values through the correct provider (the bound
// data source for placed patterns, the evaluator's stack for locals),
// mirroring eval.Evaluator.providerFor since patternjson runs after
// evaluation has finished and the Evaluator itself may already be gone.
type Exporter struct {
	Data          provider.Provider
	Stack         provider.Provider
	DefaultEndian pattern.Endian
}

// Export renders top to a JSON document: `{"patterns": [...]}`, one
// object per top-level pattern, nested recursively for containers.
func (x Exporter) Export(top []*pattern.Pattern) ([]byte, error) {
	js := simplejson.New()
	nodes := make([]interface{}, 0, len(top))
	for _, p := range top {
		nodes = append(nodes, x.node(p))
	}
	js.Set("patterns", nodes)
	return js.Encode()
}

func (x Exporter) node(p *pattern.Pattern) map[string]interface{} {
	n := map[string]interface{}{
		"name":   p.Name(),
		"type":   p.TypeName,
		"kind":   p.Kind.String(),
		"offset": p.Offset,
		"size":   p.Size,
		"color":  p.Color,
		"local":  p.Local,
		"hidden": p.Hidden,
	}
	if p.Comment != "" {
		n["comment"] = p.Comment
	}

	prov := x.Data
	if p.Local {
		prov = x.Stack
	}
	if prov != nil {
		if v, err := p.Format(prov, x.DefaultEndian); err == nil {
			n["value"] = v
		}
	}

	switch p.Kind {
	case pattern.KindStruct, pattern.KindUnion, pattern.KindBitfield:
		children := p.Children()
		out := make([]interface{}, 0, len(children))
		for _, c := range children {
			out = append(out, x.node(c))
		}
		n["children"] = out

	case pattern.KindStaticArray, pattern.KindDynamicArray:
		count := p.EntryCount()
		n["count"] = count
		entries := make([]interface{}, 0, count)
		for i := uint64(0); i < count; i++ {
			entry, err := p.ArrayEntry(i)
			if err != nil {
				break
			}
			entries = append(entries, x.node(entry))
		}
		n["entries"] = entries

	case pattern.KindPointer:
		if p.Pointer != nil {
			n["pointedAt"] = p.Pointer.PointedAtAddress
			if p.Pointer.Pointee != nil {
				n["pointee"] = x.node(p.Pointer.Pointee)
			}
		}

	case pattern.KindEnum:
		if p.Enum != nil {
			entries := make([]interface{}, 0, len(p.Enum.Entries))
			for _, e := range p.Enum.Entries {
				entries = append(entries, map[string]interface{}{
					"name":  e.Name,
					"value": e.Value.String(),
				})
			}
			n["enumEntries"] = entries
		}
	}

	return n
}
