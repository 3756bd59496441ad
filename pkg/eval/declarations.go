package eval

import (
	"fmt"

	"github.com/vellumlang/vellum/pkg/ast"
	"github.com/vellumlang/vellum/pkg/numeric"
	"github.com/vellumlang/vellum/pkg/pattern"
	"github.com/vellumlang/vellum/pkg/token"
)

// createPatterns is the pattern-creation contract of spec §4.6: given a
// declaration AST node, produce the pattern(s) it describes and advance
// e.dataOffset by exactly the number of bytes consumed.
func (e *Evaluator) createPatterns(stmt ast.Statement) ([]*pattern.Pattern, *Error) {
	switch d := stmt.(type) {
	case *ast.VariableDecl:
		p, err := e.createVariable(d)
		if err != nil {
			return nil, err
		}
		return []*pattern.Pattern{p}, nil
	case *ast.ArrayVariableDecl:
		p, err := e.createArray(d)
		if err != nil {
			return nil, err
		}
		return []*pattern.Pattern{p}, nil
	case *ast.PointerVariableDecl:
		p, err := e.createPointer(d)
		if err != nil {
			return nil, err
		}
		return []*pattern.Pattern{p}, nil
	case *ast.MultiVariableDecl:
		var out []*pattern.Pattern
		for _, sub := range d.Decls {
			ps, err := e.createPatterns(sub)
			if err != nil {
				return nil, err
			}
			out = append(out, ps...)
		}
		return out, nil
	default:
		return nil, newError(ErrTypeMismatch, stmt.Location(), "statement does not create a pattern")
	}
}

// placeAt evaluates a placement expression (if any), moving e.dataOffset
// there first, and returns the offset the pattern will start at.
func (e *Evaluator) placeAt(placement ast.Expr) (uint64, *Error) {
	if placement == nil {
		return e.dataOffset, nil
	}
	if lit, ok := placement.(*ast.Literal); ok && lit.Kind == ast.LitString {
		return 0, newError(ErrInvalidPlacement, lit.Loc, "placement expression cannot be a string")
	}
	v, err := e.evaluate(placement)
	if err != nil {
		return 0, err
	}
	if v.Kind == ValString {
		return 0, newError(ErrInvalidPlacement, placement.Location(), "placement expression cannot be a string")
	}
	addr, ok := v.AsUint64()
	if !ok {
		return 0, newError(ErrInvalidPlacement, placement.Location(), "placement expression must be numeric")
	}
	e.dataOffset = addr
	return addr, nil
}

// createVariable implements spec §3's `local` pattern rule: a declaration
// with no placement expression, written inside a function body, is scratch
// storage on the evaluator stack rather than a view onto the data source.
// Composite (non-builtin) locals are placed in the data like any other
// member — a scoped simplification recorded in DESIGN.md.
func (e *Evaluator) createVariable(d *ast.VariableDecl) (*pattern.Pattern, *Error) {
	if d.Placement == nil && e.inFunctionBody > 0 && d.Type.IsBuiltin &&
		d.Type.Builtin != token.TypeStr && d.Type.Builtin != token.TypeAuto {
		return e.createLocalScalar(d.Type.Builtin, d.Name, d.Attributes, d.Loc)
	}
	start, err := e.placeAt(d.Placement)
	if err != nil {
		return nil, err
	}
	p, err := e.createType(d.Type, d.Name, start)
	if err != nil {
		return nil, err
	}
	e.applyAttributes(p, d.Attributes)
	e.dataOffset = start + p.Size
	return p, nil
}

func (e *Evaluator) createLocalScalar(bt token.BuiltinType, name string, attrs []*ast.Attribute, loc token.Location) (*pattern.Pattern, *Error) {
	size := bt.Size()
	if size == 0 {
		size = 1
	}
	offset := e.Stack.Append(make([]byte, size))
	p, err := e.createBuiltin(bt, name, offset, loc)
	if err != nil {
		return nil, err
	}
	p.Local = true
	e.applyAttributes(p, attrs)
	return p, nil
}

// createType materializes one instance of t at offset, not touching
// e.dataOffset itself (callers manage the cursor); used both for real
// declarations and for sizeof's scratch evaluation.
func (e *Evaluator) createType(t *ast.TypeRef, name string, offset uint64) (*pattern.Pattern, *Error) {
	if t.Typeof != nil {
		return nil, newError(ErrTypeMismatch, t.Loc, "typeof type references are not supported in declarations")
	}
	if t.IsBuiltin {
		return e.createBuiltin(t.Builtin, name, offset, t.Loc)
	}
	name2 := joinScopePath(t.ScopePath, t.Name)
	udt := e.resolveUDT(name2)
	if udt == nil {
		err := newError(ErrTypeMismatch, t.Loc, fmt.Sprintf("unknown type %q", name2))
		return nil, err
	}
	return e.createUDT(udt, name, offset, t.Loc)
}

func joinScopePath(scope []string, name string) string {
	s := ""
	for _, p := range scope {
		s += p + "::"
	}
	return s + name
}

func (e *Evaluator) createBuiltin(bt token.BuiltinType, name string, offset uint64, loc token.Location) (*pattern.Pattern, *Error) {
	switch bt {
	case token.TypePadding:
		return &pattern.Pattern{Kind: pattern.KindPadding, Offset: offset, Size: 1, VariableName: name, TypeName: "padding", Hidden: true}, nil
	case token.TypeBool:
		return &pattern.Pattern{Kind: pattern.KindBoolean, Offset: offset, Size: 1, VariableName: name, TypeName: "bool"}, nil
	case token.TypeChar:
		return &pattern.Pattern{Kind: pattern.KindCharacter, Offset: offset, Size: 1, VariableName: name, TypeName: "char"}, nil
	case token.TypeChar16:
		return &pattern.Pattern{Kind: pattern.KindCharacter16, Offset: offset, Size: 2, VariableName: name, TypeName: "char16"}, nil
	case token.TypeFloat:
		return &pattern.Pattern{Kind: pattern.KindFloat, Offset: offset, Size: 4, VariableName: name, TypeName: "float"}, nil
	case token.TypeDouble:
		return &pattern.Pattern{Kind: pattern.KindFloat, Offset: offset, Size: 8, VariableName: name, TypeName: "double"}, nil
	case token.TypeStr:
		return e.createCString(name, offset)
	case token.TypeAuto:
		return nil, newError(ErrTypeMismatch, loc, "cannot instantiate auto type directly")
	default:
		size := bt.Size()
		if size == 0 {
			return nil, newError(ErrTypeMismatch, loc, "unsupported built-in type")
		}
		kind := pattern.KindUnsigned
		if bt.Signed() {
			kind = pattern.KindSigned
		}
		return &pattern.Pattern{Kind: kind, Offset: offset, Size: size, VariableName: name, TypeName: builtinTypeName(bt)}, nil
	}
}

var builtinNames = map[token.BuiltinType]string{
	token.TypeU8: "u8", token.TypeU16: "u16", token.TypeU24: "u24", token.TypeU32: "u32",
	token.TypeU48: "u48", token.TypeU64: "u64", token.TypeU96: "u96", token.TypeU128: "u128",
	token.TypeS8: "s8", token.TypeS16: "s16", token.TypeS24: "s24", token.TypeS32: "s32",
	token.TypeS48: "s48", token.TypeS64: "s64", token.TypeS96: "s96", token.TypeS128: "s128",
}

func builtinTypeName(bt token.BuiltinType) string {
	if n, ok := builtinNames[bt]; ok {
		return n
	}
	return "unknown"
}

// createCString reads a null-terminated string starting at offset,
// terminating at the first zero byte or provider end — the primitive
// unbounded-read rule spec §9's Design Notes resolves the "unbounded
// array" Open Question with, applied here to the built-in `str` type.
func (e *Evaluator) createCString(name string, offset uint64) (*pattern.Pattern, *Error) {
	const chunk = 256
	var length uint64
	for {
		data, truncated, rerr := e.Provider.Read(offset+length, chunk)
		if rerr != nil {
			return nil, newError(ErrProviderUnreadable, token.Location{}, rerr.Error())
		}
		found := false
		for i, b := range data {
			if b == 0 {
				length += uint64(i)
				found = true
				break
			}
		}
		if found || truncated {
			if !found {
				length += uint64(len(data))
			}
			break
		}
		length += chunk
	}
	return &pattern.Pattern{Kind: pattern.KindString, Offset: offset, Size: length, VariableName: name, TypeName: "str"}, nil
}

func (e *Evaluator) createUDT(udt *udtDecl, name string, offset uint64, loc token.Location) (*pattern.Pattern, *Error) {
	switch udt.kind {
	case udtStruct:
		return e.createStruct(udt.structD, name, offset)
	case udtUnion:
		return e.createUnion(udt.unionD, name, offset)
	case udtEnum:
		return e.createEnum(udt.enumD, name, offset)
	case udtBitfield:
		return e.createBitfield(udt.bitfieldD, name, offset)
	case udtTypedef:
		if udt.typedefD.Target == nil {
			return nil, newError(ErrTypeMismatch, loc, fmt.Sprintf("typedef %q has no target (forward declaration only)", udt.typedefD.Name))
		}
		p, err := e.createType(udt.typedefD.Target, name, offset)
		if err != nil {
			return nil, err
		}
		p.TypeName = udt.typedefD.Name
		return p, nil
	default:
		return nil, newError(ErrTypeMismatch, loc, "unknown UDT kind")
	}
}

func (e *Evaluator) createStruct(d *ast.StructDecl, name string, offset uint64) (*pattern.Pattern, *Error) {
	saved := e.dataOffset
	e.dataOffset = offset
	e.pushScope()
	for _, inh := range d.Inherits {
		if parentUDT := e.resolveUDT(joinScopePath(inh.ScopePath, inh.Name)); parentUDT != nil && parentUDT.kind == udtStruct {
			for _, m := range parentUDT.structD.Members {
				if _, err := e.execStmt(m); err != nil {
					e.popScope()
					e.dataOffset = saved
					return nil, err
				}
			}
		}
	}
	for _, m := range d.Members {
		if _, err := e.execStmt(m); err != nil {
			e.popScope()
			e.dataOffset = saved
			return nil, err
		}
	}
	members := e.popScope()
	size := e.dataOffset - offset
	e.dataOffset = saved
	p := &pattern.Pattern{
		Kind: pattern.KindStruct, Offset: offset, Size: size,
		VariableName: name, TypeName: d.Name,
		Struct: &pattern.StructData{Members: members},
	}
	e.applyAttributes(p, d.Attributes)
	return p, nil
}

func (e *Evaluator) createUnion(d *ast.UnionDecl, name string, offset uint64) (*pattern.Pattern, *Error) {
	saved := e.dataOffset
	e.pushScope()
	var maxSize uint64
	for _, m := range d.Members {
		e.dataOffset = offset
		if _, err := e.execStmt(m); err != nil {
			e.popScope()
			e.dataOffset = saved
			return nil, err
		}
		if span := e.dataOffset - offset; span > maxSize {
			maxSize = span
		}
	}
	members := e.popScope()
	e.dataOffset = saved
	p := &pattern.Pattern{
		Kind: pattern.KindUnion, Offset: offset, Size: maxSize,
		VariableName: name, TypeName: d.Name,
		Union: &pattern.UnionData{Members: members},
	}
	e.applyAttributes(p, d.Attributes)
	return p, nil
}

func (e *Evaluator) createEnum(d *ast.EnumDecl, name string, offset uint64) (*pattern.Pattern, *Error) {
	size := uint64(4)
	if d.Underlying != nil && d.Underlying.IsBuiltin {
		size = d.Underlying.Builtin.Size()
	}
	entries := make([]pattern.EnumEntry, 0, len(d.Entries))
	next := numeric.FromUint64(0)
	for _, ent := range d.Entries {
		v := next
		if ent.Value != nil {
			val, err := e.evaluate(ent.Value)
			if err != nil {
				return nil, err
			}
			iv, ok := val.AsInt128()
			if !ok {
				return nil, newError(ErrTypeMismatch, ent.Loc, "enum entry value must be numeric")
			}
			v = iv
		}
		entries = append(entries, pattern.EnumEntry{Value: v, Name: ent.Name})
		next = v.Add(numeric.FromUint64(1))
	}
	p := &pattern.Pattern{
		Kind: pattern.KindEnum, Offset: offset, Size: size,
		VariableName: name, TypeName: d.Name,
		Enum: &pattern.EnumData{UnderlyingSize: size, Entries: entries},
	}
	e.applyAttributes(p, d.Attributes)
	return p, nil
}

func (e *Evaluator) createBitfield(d *ast.BitfieldDecl, name string, offset uint64) (*pattern.Pattern, *Error) {
	var totalBits uint64
	fields := make([]*pattern.Pattern, 0, len(d.Fields))
	owner := &pattern.Pattern{Kind: pattern.KindBitfield, Offset: offset, VariableName: name, TypeName: d.Name}
	for _, f := range d.Fields {
		sizeVal, err := e.evaluate(f.Size)
		if err != nil {
			return nil, err
		}
		bits, _ := sizeVal.AsUint64()
		fp := &pattern.Pattern{
			Kind: pattern.KindBitfieldField, Offset: offset, Size: 0,
			VariableName: f.Name, TypeName: "bitfield field", Hidden: f.Padding,
			BitfieldField: &pattern.BitfieldFieldData{BitOffset: uint8(totalBits), BitSize: uint8(bits), Owner: owner},
		}
		e.applyAttributes(fp, f.Attributes)
		fields = append(fields, fp)
		totalBits += bits
	}
	owner.Size = (totalBits + 7) / 8
	owner.Bitfield = &pattern.BitfieldData{Fields: fields}
	e.applyAttributes(owner, d.Attributes)
	return owner, nil
}

func (e *Evaluator) createArray(d *ast.ArrayVariableDecl) (*pattern.Pattern, *Error) {
	start, err := e.placeAt(d.Placement)
	if err != nil {
		return nil, err
	}
	switch {
	case d.Size != nil:
		// [[static]] forces the fast path; otherwise a sized array whose
		// element type has a statically known, data-independent size (any
		// builtin but str, or a UDT built only from such members) still
		// gets it (spec §4.5: "a static array stores a single template
		// child plus an entry-count"). DynamicArray is reserved for
		// elements whose size can vary per index.
		isStatic := hasAttribute(d.Attributes, "static") || e.isFixedSizeType(d.Type)
		return e.createSizedArray(d, start, isStatic)
	case d.WhileCond != nil:
		return e.createWhileArray(d, start)
	default:
		return e.createUnboundedArray(d, start)
	}
}

func hasAttribute(attrs []*ast.Attribute, name string) bool {
	for _, a := range attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

// isFixedSizeType reports whether every instantiation of t consumes the
// same number of bytes regardless of the data read. Builtins are fixed
// size except the variable-length str (and auto, which never reaches here
// uninstantiated); a UDT is fixed size when every member is itself fixed
// size and no member is a while/unbounded array.
func (e *Evaluator) isFixedSizeType(t *ast.TypeRef) bool {
	return e.isFixedSizeTypeVisiting(t, map[string]bool{})
}

func (e *Evaluator) isFixedSizeTypeVisiting(t *ast.TypeRef, visiting map[string]bool) bool {
	if t.Typeof != nil {
		return false
	}
	if t.IsBuiltin {
		return t.Builtin != token.TypeStr && t.Builtin != token.TypeAuto
	}
	name := joinScopePath(t.ScopePath, t.Name)
	udt := e.resolveUDT(name)
	if udt == nil {
		return false
	}
	if visiting[name] {
		// A direct cycle would already have been rejected by the validator
		// (spec §4.4: "no direct type cycles without indirection"); treat
		// re-entry as fixed rather than infinitely recursing.
		return true
	}
	visiting[name] = true
	defer delete(visiting, name)

	switch udt.kind {
	case udtEnum, udtBitfield:
		return true
	case udtTypedef:
		if udt.typedefD.Target == nil {
			return false
		}
		return e.isFixedSizeTypeVisiting(udt.typedefD.Target, visiting)
	case udtStruct:
		return e.membersFixedSize(udt.structD.Members, visiting)
	case udtUnion:
		return e.membersFixedSize(udt.unionD.Members, visiting)
	default:
		return false
	}
}

// membersFixedSize reports whether every member declaration in a
// struct/union body has a statically known size: plain and multi variable
// declarations recurse into their element type, pointers are fixed size by
// their own storage regardless of pointee, sized arrays recurse into their
// element type, and anything data-dependent (unbounded/while arrays,
// conditionals, nested statements) makes the whole container dynamic.
func (e *Evaluator) membersFixedSize(members []ast.Statement, visiting map[string]bool) bool {
	for _, m := range members {
		switch d := m.(type) {
		case *ast.VariableDecl:
			if !e.isFixedSizeTypeVisiting(d.Type, visiting) {
				return false
			}
		case *ast.PointerVariableDecl:
			// the pointer itself occupies a fixed number of bytes; the
			// pointee lives elsewhere and doesn't affect this type's size.
		case *ast.ArrayVariableDecl:
			if d.Size == nil {
				return false
			}
			if !e.isFixedSizeTypeVisiting(d.Type, visiting) {
				return false
			}
		case *ast.MultiVariableDecl:
			if !e.membersFixedSize(d.Decls, visiting) {
				return false
			}
		case *ast.StructDecl, *ast.UnionDecl, *ast.EnumDecl, *ast.BitfieldDecl, *ast.TypedefDecl:
			// nested type declarations don't themselves occupy storage.
		default:
			return false
		}
	}
	return true
}

func (e *Evaluator) createSizedArray(d *ast.ArrayVariableDecl, start uint64, isStatic bool) (*pattern.Pattern, *Error) {
	sizeVal, err := e.evaluate(d.Size)
	if err != nil {
		return nil, err
	}
	count, ok := sizeVal.AsUint64()
	if !ok {
		return nil, newError(ErrBadArraySize, d.Loc, "array size must be numeric")
	}
	if isStatic {
		e.dataOffset = start
		template, terr := e.createType(d.Type, d.Name, start)
		if terr != nil {
			return nil, terr
		}
		p := &pattern.Pattern{
			Kind: pattern.KindStaticArray, Offset: start, Size: template.Size * count,
			VariableName: d.Name, TypeName: template.TypeName,
			StaticArray: &pattern.StaticArrayData{Template: template, EntryCount: count},
		}
		e.applyAttributes(p, d.Attributes)
		e.dataOffset = start + p.Size
		return p, nil
	}
	entries := make([]*pattern.Pattern, 0, count)
	cursor := start
	for i := uint64(0); i < count; i++ {
		if cerr := e.checkCancelled(d.Loc); cerr != nil {
			return nil, cerr
		}
		e.dataOffset = cursor
		entry, eerr := e.createType(d.Type, fmt.Sprintf("[%d]", i), cursor)
		if eerr != nil {
			return nil, eerr
		}
		if e.patternCount++; e.limits.MaxPatternCount > 0 && e.patternCount > e.limits.MaxPatternCount {
			return nil, newError(ErrPatternLimit, d.Loc, "pattern creation limit exceeded")
		}
		entries = append(entries, entry)
		cursor += entry.Size
	}
	p := &pattern.Pattern{
		Kind: pattern.KindDynamicArray, Offset: start, Size: cursor - start,
		VariableName: d.Name, TypeName: typeRefDisplayName(d.Type),
		DynamicArray: &pattern.DynamicArrayData{Entries: entries},
	}
	e.applyAttributes(p, d.Attributes)
	e.dataOffset = cursor
	return p, nil
}

func (e *Evaluator) createWhileArray(d *ast.ArrayVariableDecl, start uint64) (*pattern.Pattern, *Error) {
	var entries []*pattern.Pattern
	cursor := start
	for {
		if cerr := e.checkCancelled(d.Loc); cerr != nil {
			return nil, cerr
		}
		e.dataOffset = cursor
		condVal, cerr := e.evaluate(d.WhileCond)
		if cerr != nil {
			return nil, cerr
		}
		if !condVal.Truthy() {
			break
		}
		entry, eerr := e.createType(d.Type, fmt.Sprintf("[%d]", len(entries)), cursor)
		if eerr != nil {
			return nil, eerr
		}
		entries = append(entries, entry)
		cursor += entry.Size
		if e.patternCount++; e.limits.MaxPatternCount > 0 && e.patternCount > e.limits.MaxPatternCount {
			return nil, newError(ErrPatternLimit, d.Loc, "pattern creation limit exceeded")
		}
	}
	p := &pattern.Pattern{
		Kind: pattern.KindDynamicArray, Offset: start, Size: cursor - start,
		VariableName: d.Name, TypeName: typeRefDisplayName(d.Type),
		DynamicArray: &pattern.DynamicArrayData{Entries: entries},
	}
	e.applyAttributes(p, d.Attributes)
	e.dataOffset = cursor
	return p, nil
}

// createUnboundedArray implements spec §9's Open Question resolution:
// an unbounded array (`T name[]`) of a primitive type terminates at the
// first zero-valued element or provider EOF; any other element type is
// rejected with BadArraySize since the sentinel rule is only well-defined
// for primitives.
func (e *Evaluator) createUnboundedArray(d *ast.ArrayVariableDecl, start uint64) (*pattern.Pattern, *Error) {
	if !d.Type.IsBuiltin || d.Type.Builtin == token.TypeStr || d.Type.Builtin == token.TypeAuto {
		return nil, newError(ErrBadArraySize, d.Loc, "unbounded arrays of non-primitive types require an explicit while(...) size")
	}
	var entries []*pattern.Pattern
	cursor := start
	for cursor < e.Provider.Size() {
		if cerr := e.checkCancelled(d.Loc); cerr != nil {
			return nil, cerr
		}
		entry, eerr := e.createType(d.Type, fmt.Sprintf("[%d]", len(entries)), cursor)
		if eerr != nil {
			return nil, eerr
		}
		val, verr := e.valueOfPattern(entry, d.Loc)
		if verr != nil {
			return nil, verr
		}
		entries = append(entries, entry)
		cursor += entry.Size
		if val.Kind != ValString && !val.Truthy() {
			break
		}
		if e.patternCount++; e.limits.MaxPatternCount > 0 && e.patternCount > e.limits.MaxPatternCount {
			return nil, newError(ErrPatternLimit, d.Loc, "pattern creation limit exceeded")
		}
	}
	p := &pattern.Pattern{
		Kind: pattern.KindDynamicArray, Offset: start, Size: cursor - start,
		VariableName: d.Name, TypeName: typeRefDisplayName(d.Type),
		DynamicArray: &pattern.DynamicArrayData{Entries: entries},
	}
	e.applyAttributes(p, d.Attributes)
	e.dataOffset = cursor
	return p, nil
}

func typeRefDisplayName(t *ast.TypeRef) string {
	if t.IsBuiltin {
		return builtinTypeName(t.Builtin)
	}
	return joinScopePath(t.ScopePath, t.Name)
}

// createPointer implements spec §4.6 "Pointer semantics": read
// sizeof(sizeType) bytes at the current offset, byte-swap per endian,
// interpret as an address, save data-offset, create the pointee there,
// then restore data-offset to saved + sizeType size.
func (e *Evaluator) createPointer(d *ast.PointerVariableDecl) (*pattern.Pattern, *Error) {
	start, err := e.placeAt(d.Placement)
	if err != nil {
		return nil, err
	}
	sizeType, err := e.createType(d.SizedType, d.Name+".addr", start)
	if err != nil {
		return nil, err
	}
	addrVal, err := e.valueOfPattern(sizeType, d.Loc)
	if err != nil {
		return nil, err
	}
	addr, _ := addrVal.AsUint64()

	saved := e.dataOffset
	e.dataOffset = addr
	pointee, perr := e.createType(d.Type, d.Name, addr)
	if perr != nil {
		e.dataOffset = saved
		return nil, perr
	}
	e.dataOffset = saved + sizeType.Size

	p := &pattern.Pattern{
		Kind: pattern.KindPointer, Offset: start, Size: sizeType.Size,
		VariableName: d.Name, TypeName: typeRefDisplayName(d.Type) + "*",
		Pointer: &pattern.PointerData{Pointee: pointee, PointedAtAddress: addr, PointerBase: e.Provider.BaseAddress()},
	}
	e.applyAttributes(p, d.Attributes)
	return p, nil
}

// sizeOfType computes a type's byte width without creating a lasting
// pattern or disturbing e.dataOffset (spec §4.6 "Type-operator semantics":
// "sizeof E materializes E's pattern on a scratch scope").
func (e *Evaluator) sizeOfType(t *ast.TypeRef, loc token.Location) (uint64, *Error) {
	saved := e.dataOffset
	e.pushScope()
	p, err := e.createType(t, "", e.dataOffset)
	e.popScope()
	e.dataOffset = saved
	if err != nil {
		return 0, err
	}
	return p.Size, nil
}

// castBuiltin reinterprets v as bt, the C-style `(type)expr` numeric cast.
func (e *Evaluator) castBuiltin(bt token.BuiltinType, v Value, loc token.Location) (Value, *Error) {
	switch bt {
	case token.TypeFloat, token.TypeDouble:
		f, ok := v.AsFloat64()
		if !ok {
			return Value{}, newError(ErrInvalidOperand, loc, "cannot cast to floating point")
		}
		return FloatV(f), nil
	case token.TypeBool:
		return BoolV(v.Truthy()), nil
	case token.TypeChar:
		i, ok := v.AsInt128()
		if !ok {
			return Value{}, newError(ErrInvalidOperand, loc, "cannot cast to char")
		}
		return CharV(rune(i.Uint64())), nil
	case token.TypeChar16:
		i, ok := v.AsInt128()
		if !ok {
			return Value{}, newError(ErrInvalidOperand, loc, "cannot cast to char16")
		}
		return Char16V(rune(i.Uint64())), nil
	default:
		i, ok := v.AsInt128()
		if !ok {
			return Value{}, newError(ErrInvalidOperand, loc, "cannot cast to numeric type")
		}
		width := bt.Size() * 8
		mask := numeric.FromUint64(1).Shl(uint(width)).Sub(numeric.FromUint64(1))
		truncated := i.And(mask)
		if bt.Signed() {
			return Int(truncated.AsSigned()), nil
		}
		return Int(truncated.AsUnsigned()), nil
	}
}

// applyAttributes applies the closed set of attribute effects (spec
// §4.6 "Attribute effects") to a freshly created pattern.
func (e *Evaluator) applyAttributes(p *pattern.Pattern, attrs []*ast.Attribute) {
	for _, a := range attrs {
		switch a.Name {
		case "color":
			if c, ok := firstStringArg(a); ok {
				if rgba, ok := parseHexColor(c); ok {
					p.Color = rgba
					p.ManualColor = true
				}
			}
		case "name":
			if n, ok := firstStringArg(a); ok {
				p.DisplayName = n
			}
		case "comment":
			if c, ok := firstStringArg(a); ok {
				p.Comment = c
			}
		case "hidden":
			p.Hidden = true
		case "inline":
			// inline is a display hint consumed by Views; nothing to do
			// at the pattern-tree level beyond marking it.
		case "format":
			if fn, ok := firstIdentArg(a); ok {
				p.FormatterFn = fn
			}
		case "transform":
			if fn, ok := firstIdentArg(a); ok {
				p.TransformFn = fn
			}
		case "static":
			// consumed by the parser/array-creation path already.
		}
	}
}

func firstStringArg(a *ast.Attribute) (string, bool) {
	if len(a.Args) == 0 {
		return "", false
	}
	if lit, ok := a.Args[0].(*ast.Literal); ok && lit.Kind == ast.LitString {
		return lit.Str, true
	}
	return "", false
}

func firstIdentArg(a *ast.Attribute) (string, bool) {
	if len(a.Args) == 0 {
		return "", false
	}
	if id, ok := a.Args[0].(*ast.Identifier); ok {
		return id.Name, true
	}
	if lit, ok := a.Args[0].(*ast.Literal); ok && lit.Kind == ast.LitString {
		return lit.Str, true
	}
	return "", false
}

func parseHexColor(s string) (uint32, bool) {
	if len(s) != 6 {
		return 0, false
	}
	var v uint32
	for _, c := range s {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint32(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= uint32(c-'A') + 10
		default:
			return 0, false
		}
	}
	return (v << 8) | 0xFF, true
}
