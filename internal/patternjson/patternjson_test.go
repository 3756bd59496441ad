package patternjson

import (
	"encoding/json"
	"testing"

	"github.com/bitly/go-simplejson"

	"github.com/vellumlang/vellum/pkg/pattern"
	"github.com/vellumlang/vellum/pkg/provider"
)

func TestExportStruct(t *testing.T) {
	prov := provider.NewMemoryProvider([]byte{0xAA, 0xBB, 0xCC, 0xDD}, 0)
	a := &pattern.Pattern{Kind: pattern.KindUnsigned, VariableName: "a", Offset: 0, Size: 2}
	b := &pattern.Pattern{Kind: pattern.KindUnsigned, VariableName: "b", Offset: 2, Size: 2}
	top := &pattern.Pattern{
		Kind: pattern.KindStruct, VariableName: "p", Offset: 0, Size: 4, TypeName: "P",
		Struct: &pattern.StructData{Members: []*pattern.Pattern{a, b}},
	}

	x := Exporter{Data: prov, DefaultEndian: pattern.EndianLittle}
	data, err := x.Export([]*pattern.Pattern{top})
	if err != nil {
		t.Fatalf("export error: %v", err)
	}

	js, err := simplejson.NewJson(data)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	patterns := js.Get("patterns").MustArray()
	if len(patterns) != 1 {
		t.Fatalf("got %d top-level patterns", len(patterns))
	}

	var doc struct {
		Patterns []struct {
			Name     string `json:"name"`
			Kind     string `json:"kind"`
			Offset   uint64 `json:"offset"`
			Size     uint64 `json:"size"`
			Children []struct {
				Name   string `json:"name"`
				Offset uint64 `json:"offset"`
			} `json:"children"`
		} `json:"patterns"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Patterns[0].Name != "p" || doc.Patterns[0].Kind != "struct" {
		t.Fatalf("got %+v", doc.Patterns[0])
	}
	if len(doc.Patterns[0].Children) != 2 {
		t.Fatalf("got %d children", len(doc.Patterns[0].Children))
	}
	if doc.Patterns[0].Children[0].Name != "a" || doc.Patterns[0].Children[1].Name != "b" {
		t.Fatalf("got children %+v", doc.Patterns[0].Children)
	}
}

func TestExportStaticArrayEntries(t *testing.T) {
	prov := provider.NewMemoryProvider([]byte{1, 2, 3, 4}, 0)
	tmpl := &pattern.Pattern{Kind: pattern.KindUnsigned, VariableName: "[i]", Size: 1}
	arr := &pattern.Pattern{
		Kind: pattern.KindStaticArray, VariableName: "xs", Offset: 0, Size: 4,
		StaticArray: &pattern.StaticArrayData{Template: tmpl, EntryCount: 4},
	}
	x := Exporter{Data: prov, DefaultEndian: pattern.EndianLittle}
	data, err := x.Export([]*pattern.Pattern{arr})
	if err != nil {
		t.Fatalf("export error: %v", err)
	}
	var doc struct {
		Patterns []struct {
			Count   int `json:"count"`
			Entries []struct {
				Value string `json:"value"`
			} `json:"entries"`
		} `json:"patterns"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Patterns[0].Count != 4 {
		t.Fatalf("got count %d", doc.Patterns[0].Count)
	}
	if len(doc.Patterns[0].Entries) != 4 {
		t.Fatalf("got %d entries", len(doc.Patterns[0].Entries))
	}
}
