// Package irmodule is the top-level IR module container: the string pool,
// named type table, function declarations and bodies, external symbol set,
// TLS table and debug-info tree that a translation unit's worth of
// optimizer IR functions live inside.
package irmodule

import (
	"github.com/kefir-go/kefirgo/pkg/cc/ccerr"
	"github.com/kefir-go/kefirgo/pkg/cc/core"
	"github.com/kefir-go/kefirgo/pkg/cc/optir"
	"github.com/kefir-go/kefirgo/pkg/cc/types"
)

// DeclID identifies a function declaration within a Module.
type DeclID int

// IdentKind classifies how an identifier is linked.
type IdentKind int

const (
	IdentGlobal IdentKind = iota
	IdentLocal
	IdentThreadLocal
)

// FuncDecl is a function's signature and linkage, independent of whether a
// body has been attached yet.
type FuncDecl struct {
	ID       DeclID
	Name     string
	Params   []*types.Type
	Return   *types.Type
	Vararg   bool
	Ident    IdentKind
	External bool
}

// TLSEntry describes one thread-local object the module defines or
// references.
type TLSEntry struct {
	Name     string
	Type     *types.Type
	External bool
	Emulated bool
}

// DebugEntry is one node of the module's debug-info tree (feeds the DWARF
// emitter directly; see pkg/cc/dwarf).
type DebugEntry struct {
	Tag       string
	Name      string
	CodeBegin string
	CodeEnd   string
	File      string
	Line      int
	Column    int
	Attrs     map[string]string
	Children  []*DebugEntry
}

// Module owns every declaration, body, and piece of shared state a
// translation unit's IR functions reference.
type Module struct {
	Strings *core.StringPool
	arena   *core.Arena

	types    map[string]*types.Type
	decls    map[DeclID]*FuncDecl
	bodies   map[DeclID]*optir.Function
	externs  map[string]struct{}
	tls      []TLSEntry
	debug    []*DebugEntry
	nextDecl DeclID
}

// NewModule creates an empty module backed by arena for scratch
// allocation.
func NewModule(arena *core.Arena) *Module {
	if arena == nil {
		arena = core.NewArena(0)
	}
	return &Module{
		Strings: core.NewStringPool(),
		arena:   arena,
		types:   make(map[string]*types.Type),
		decls:   make(map[DeclID]*FuncDecl),
		bodies:  make(map[DeclID]*optir.Function),
		externs: make(map[string]struct{}),
	}
}

// DefineType registers a named type (struct/union/typedef target).
func (m *Module) DefineType(name string, t *types.Type) { m.types[name] = t }

// LookupType resolves a named type, or reports not-found.
func (m *Module) LookupType(name string) (*types.Type, error) {
	t, ok := m.types[name]
	if !ok {
		return nil, ccerr.New(ccerr.NotFound, "no type named %q", name)
	}
	return t, nil
}

// DeclareFunction registers a function signature and returns its id.
func (m *Module) DeclareFunction(decl FuncDecl) DeclID {
	m.nextDecl++
	decl.ID = m.nextDecl
	m.decls[decl.ID] = &decl
	if decl.External {
		m.externs[decl.Name] = struct{}{}
	}
	return decl.ID
}

// Declaration resolves a function's signature by id.
func (m *Module) Declaration(id DeclID) (*FuncDecl, error) {
	d, ok := m.decls[id]
	if !ok {
		return nil, ccerr.New(ccerr.NotFound, "no declaration %d", id)
	}
	return d, nil
}

// AttachBody associates an optimizer IR function body with a declaration.
func (m *Module) AttachBody(id DeclID, fn *optir.Function) error {
	if _, ok := m.decls[id]; !ok {
		return ccerr.New(ccerr.NotFound, "no declaration %d", id)
	}
	m.bodies[id] = fn
	return nil
}

// Body returns the attached body, if any.
func (m *Module) Body(id DeclID) (*optir.Function, bool) {
	fn, ok := m.bodies[id]
	return fn, ok
}

// Functions returns every (declaration, body) pair with a body attached, in
// declaration-id order.
func (m *Module) Functions() []struct {
	Decl *FuncDecl
	Body *optir.Function
} {
	out := make([]struct {
		Decl *FuncDecl
		Body *optir.Function
	}, 0, len(m.bodies))
	for id := DeclID(1); id <= m.nextDecl; id++ {
		if body, ok := m.bodies[id]; ok {
			out = append(out, struct {
				Decl *FuncDecl
				Body *optir.Function
			}{m.decls[id], body})
		}
	}
	return out
}

// AddTLS registers a thread-local entry.
func (m *Module) AddTLS(e TLSEntry) { m.tls = append(m.tls, e) }

// TLS returns every registered thread-local entry.
func (m *Module) TLS() []TLSEntry { return m.tls }

// Externals reports every symbol name declared external.
func (m *Module) Externals() []string {
	out := make([]string, 0, len(m.externs))
	for name := range m.externs {
		out = append(out, name)
	}
	return out
}

// AddDebugEntry attaches a top-level debug-info entry (a subprogram DIE,
// typically).
func (m *Module) AddDebugEntry(e *DebugEntry) { m.debug = append(m.debug, e) }

// DebugEntries returns the module's top-level debug-info tree.
func (m *Module) DebugEntries() []*DebugEntry { return m.debug }

// Close releases the module's scratch arena. Sub-containers have nothing
// further to release themselves; Close exists so lifecycle intent mirrors
// the scope-guarded release the rest of the core follows, and so tests can
// assert it runs without leaking the arena's slabs past teardown.
func (m *Module) Close() {
	m.arena.Reset()
}
