package script

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-glvm/engine/vm"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("glvm.script")

// Program is a document built into an arena. It owns its fragments and keeps every referenced
// data array pinned until Close.
type Program struct {
	// Settings are the document settings.
	Settings Settings
	// Mode is the parsed optimization mode.
	Mode vm.Mode
	// Head is the entry fragment of the chain.
	Head vm.Fragment

	arena     vm.Arena
	fragments map[string]vm.Fragment
	order     []string
	doc       *Document
	pinner    runtime.Pinner
	closed    bool
}

// Fragment returns the fragment built for a named fragment entry.
//
// Parameters:
//   - name: the fragment name
//
// Returns:
//   - vm.Fragment: the fragment, vm.NilFragment for an unknown name
func (p *Program) Fragment(name string) vm.Fragment {
	return p.fragments[name]
}

// Names returns the fragment names in document order.
func (p *Program) Names() []string {
	return append([]string(nil), p.order...)
}

// Close deletes the program's fragments and unpins its data arrays. Calling it again is a no-op.
func (p *Program) Close() {
	if p.closed {
		return
	}
	p.closed = true
	for _, name := range p.order {
		if f := p.fragments[name]; p.arena.Valid(f) {
			p.arena.Delete(f)
		}
	}
	p.pinner.Unpin()
}

// Build validates the document and records it into a. Every instruction is assembled before
// the first fragment is created, so a failed Build leaves the arena untouched.
//
// Parameters:
//   - a: the arena to record into
//
// Returns:
//   - *Program: the built program; call Close to release it
//   - error: ErrInvalid or an instruction error with its location
func (d *Document) Build(a vm.Arena) (*Program, error) {
	mode, err := d.Settings.ParseMode()
	if err != nil {
		return nil, fmt.Errorf("%w: settings: %v", ErrInvalid, err)
	}
	if len(d.Fragments) == 0 {
		return nil, fmt.Errorf("%w: no fragments", ErrInvalid)
	}

	index := make(map[string]int, len(d.Fragments))
	for n, fs := range d.Fragments {
		if fs.Name == "" {
			return nil, fmt.Errorf("%w: fragment %d has no name", ErrInvalid, n)
		}
		if _, dup := index[fs.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate fragment %q", ErrInvalid, fs.Name)
		}
		index[fs.Name] = n
	}
	for _, fs := range d.Fragments {
		if _, ok := index[fs.Next]; fs.Next != "" && !ok {
			return nil, fmt.Errorf("%w: fragment %q links to unknown fragment %q", ErrInvalid, fs.Name, fs.Next)
		}
	}
	entry := d.Fragments[0].Name
	if d.Settings.Entry != "" {
		if _, ok := index[d.Settings.Entry]; !ok {
			return nil, fmt.Errorf("%w: unknown entry fragment %q", ErrInvalid, d.Settings.Entry)
		}
		entry = d.Settings.Entry
	}

	p := &Program{
		Settings:  d.Settings,
		Mode:      mode,
		arena:     a,
		fragments: make(map[string]vm.Fragment, len(d.Fragments)),
		doc:       d,
	}

	pinned := make(map[string]dataRef)
	resolve := func(name string) (dataRef, error) {
		if ref, ok := pinned[name]; ok {
			return ref, nil
		}
		ref, err := p.pin(name)
		if err != nil {
			return dataRef{}, err
		}
		pinned[name] = ref
		return ref, nil
	}

	blocks := make([][][]vm.Instruction, len(d.Fragments))
	for n, fs := range d.Fragments {
		blocks[n] = make([][]vm.Instruction, len(fs.Blocks))
		for b, blk := range fs.Blocks {
			ins := make([]vm.Instruction, len(blk.Instructions))
			for k, line := range blk.Instructions {
				in, err := parseInstruction(line, resolve)
				if err != nil {
					p.pinner.Unpin()
					return nil, fmt.Errorf("fragment %q block %d instruction %d: %w", fs.Name, b, k, err)
				}
				ins[k] = in
			}
			blocks[n][b] = ins
		}
	}

	for n, fs := range d.Fragments {
		f := a.Create()
		for _, ins := range blocks[n] {
			blk := a.NewBlock(f)
			for _, in := range ins {
				a.AppendInstruction(f, blk, in)
			}
		}
		p.fragments[fs.Name] = f
		p.order = append(p.order, fs.Name)
	}
	for _, fs := range d.Fragments {
		if fs.Next != "" {
			a.Link(p.fragments[fs.Name], p.fragments[fs.Next])
		}
	}
	p.Head = p.fragments[entry]

	log.Debugf("built %d fragments, entry %q, %d data arrays pinned", len(p.order), entry, len(pinned))
	return p, nil
}

// pin validates a data array and pins its first element.
func (p *Program) pin(name string) (dataRef, error) {
	data, ok := p.doc.Data[name]
	if !ok || data == nil {
		return dataRef{}, fmt.Errorf("%w: unknown data array %q", ErrInvalid, name)
	}

	set := 0
	var ref dataRef
	if len(data.Floats) > 0 {
		set++
		ref = dataRef{ptr: unsafe.Pointer(&data.Floats[0]), elem: elemFloat, n: len(data.Floats)}
	}
	if len(data.Ints) > 0 {
		set++
		ref = dataRef{ptr: unsafe.Pointer(&data.Ints[0]), elem: elemInt, n: len(data.Ints)}
	}
	if len(data.Uints) > 0 {
		set++
		ref = dataRef{ptr: unsafe.Pointer(&data.Uints[0]), elem: elemUint, n: len(data.Uints)}
	}
	if set != 1 {
		return dataRef{}, fmt.Errorf("%w: data array %q must set exactly one of floats, ints or uints", ErrInvalid, name)
	}

	p.pinner.Pin(ref.ptr)
	return ref, nil
}
