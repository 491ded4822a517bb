package capture

import (
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-glvm/engine/vm"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/tliron/commonlog"
)

// FormatVersion is the capture format written by this package.
const FormatVersion = 1

var (
	// ErrHostPointer is returned when an instruction carries a host memory address, which has no
	// meaning outside the process that recorded it. Buffer offsets are allowed.
	ErrHostPointer = errors.New("capture: instruction references host memory")
	// ErrVersion is returned when decoding a capture written in another format version.
	ErrVersion = errors.New("capture: unsupported format version")
	// ErrMalformed is returned when a decoded capture names an unknown opcode or has a wrong
	// argument count.
	ErrMalformed = errors.New("capture: malformed instruction")
)

var log = commonlog.GetLogger("glvm.capture")

// cborEncMode uses canonical mode for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("capture: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Capture is the serialized form of a fragment chain. Fragments are stored in chain order and
// linked again in that order when built.
type Capture struct {
	Version   uint16     `cbor:"1,keyasint"`
	ID        uuid.UUID  `cbor:"2,keyasint"`
	Fragments []Fragment `cbor:"3,keyasint"`
}

// Fragment is one captured fragment.
type Fragment struct {
	Blocks []Block `cbor:"1,keyasint"`
}

// Block is one captured block.
type Block struct {
	Ops []Op `cbor:"1,keyasint"`
}

// Op is one captured instruction: the opcode name and the argument words it uses.
type Op struct {
	_    struct{} `cbor:",toarray"`
	Name string
	Args []uint64
}

// Snapshot captures the chain starting at head under a new capture ID.
//
// Parameters:
//   - a: the arena owning the chain
//   - head: the first fragment of the chain
//
// Returns:
//   - *Capture: the capture
//   - error: a chain error from the arena, or ErrHostPointer
func Snapshot(a vm.Arena, head vm.Fragment) (*Capture, error) {
	chain, err := a.Chain(head)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}

	c := &Capture{
		Version:   FormatVersion,
		ID:        uuid.New(),
		Fragments: make([]Fragment, len(chain)),
	}
	for n, f := range chain {
		blocks := make([]Block, a.BlockCount(f))
		for b := range blocks {
			ins := a.Instructions(f, b)
			ops := make([]Op, len(ins))
			for k, in := range ins {
				op, err := opOf(in)
				if err != nil {
					return nil, fmt.Errorf("%w: fragment %d block %d instruction %d", err, n, b, k)
				}
				ops[k] = op
			}
			blocks[b] = Block{Ops: ops}
		}
		c.Fragments[n] = Fragment{Blocks: blocks}
	}
	return c, nil
}

func opOf(in vm.Instruction) (Op, error) {
	info := in.Code.Info()
	args := make([]uint64, len(info.Args))
	for k, kind := range info.Args {
		if kind == vm.ArgPointer && in.Args[k] != 0 {
			return Op{}, fmt.Errorf("%w (%v)", ErrHostPointer, in)
		}
		args[k] = uint64(in.Args[k])
	}
	return Op{Name: info.Name, Args: args}, nil
}

// Instruction decodes one captured instruction.
//
// Returns:
//   - vm.Instruction: the decoded instruction
//   - error: ErrMalformed or ErrHostPointer
func (op Op) Instruction() (vm.Instruction, error) {
	code, ok := vm.ParseCode(op.Name)
	if !ok {
		return vm.Instruction{}, fmt.Errorf("%w: unknown opcode %q", ErrMalformed, op.Name)
	}
	info := code.Info()
	if len(op.Args) != len(info.Args) {
		return vm.Instruction{}, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrMalformed, op.Name, len(info.Args), len(op.Args))
	}
	words := make([]vm.Word, len(op.Args))
	for k, w := range op.Args {
		if info.Args[k] == vm.ArgPointer && w != 0 {
			return vm.Instruction{}, fmt.Errorf("%w (%s argument %d)", ErrHostPointer, op.Name, k)
		}
		words[k] = vm.Word(w)
	}
	return vm.NewInstruction(code, words...), nil
}

// Len returns the total number of captured instructions.
func (c *Capture) Len() int {
	n := 0
	for _, f := range c.Fragments {
		for _, b := range f.Blocks {
			n += len(b.Ops)
		}
	}
	return n
}

// Build recreates the captured chain in a. Every instruction is validated before the first
// fragment is created, so a failed Build leaves the arena untouched.
//
// Parameters:
//   - a: the arena to create fragments in
//
// Returns:
//   - vm.Fragment: the head of the chain, vm.NilFragment for an empty capture
//   - error: ErrMalformed or ErrHostPointer
func (c *Capture) Build(a vm.Arena) (vm.Fragment, error) {
	decoded := make([][][]vm.Instruction, len(c.Fragments))
	for n, f := range c.Fragments {
		decoded[n] = make([][]vm.Instruction, len(f.Blocks))
		for b, blk := range f.Blocks {
			ins := make([]vm.Instruction, len(blk.Ops))
			for k, op := range blk.Ops {
				in, err := op.Instruction()
				if err != nil {
					return vm.NilFragment, fmt.Errorf("%w: fragment %d block %d instruction %d", err, n, b, k)
				}
				ins[k] = in
			}
			decoded[n][b] = ins
		}
	}

	head, prev := vm.NilFragment, vm.NilFragment
	for _, blocks := range decoded {
		f := a.Create()
		for _, ins := range blocks {
			b := a.NewBlock(f)
			for _, in := range ins {
				a.AppendInstruction(f, b, in)
			}
		}
		if head.IsNil() {
			head = f
		} else {
			a.Link(prev, f)
		}
		prev = f
	}
	return head, nil
}

// Marshal serializes the capture to canonical CBOR.
//
// Returns:
//   - []byte: the encoded capture
//   - error: an encoding error
func (c *Capture) Marshal() ([]byte, error) {
	data, err := cborEncMode.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("capture: marshal: %w", err)
	}
	return data, nil
}

// Unmarshal deserializes a capture and checks its format version.
// Instructions are validated by Build.
//
// Parameters:
//   - data: the encoded capture
//
// Returns:
//   - *Capture: the decoded capture
//   - error: a decoding error or ErrVersion
func Unmarshal(data []byte) (*Capture, error) {
	var c Capture
	if err := cbor.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("capture: unmarshal: %w", err)
	}
	if c.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, c.Version)
	}
	return &c, nil
}

// Encode captures the chain starting at head and serializes it.
//
// Parameters:
//   - a: the arena owning the chain
//   - head: the first fragment of the chain
//
// Returns:
//   - []byte: the encoded capture
//   - error: a chain error, ErrHostPointer or an encoding error
func Encode(a vm.Arena, head vm.Fragment) ([]byte, error) {
	c, err := Snapshot(a, head)
	if err != nil {
		return nil, err
	}
	return c.Marshal()
}

// Decode deserializes a capture and recreates its chain in a.
//
// Parameters:
//   - a: the arena to create fragments in
//   - data: the encoded capture
//
// Returns:
//   - vm.Fragment: the head of the chain
//   - error: a decoding error, ErrVersion, ErrMalformed or ErrHostPointer
func Decode(a vm.Arena, data []byte) (vm.Fragment, error) {
	c, err := Unmarshal(data)
	if err != nil {
		return vm.NilFragment, err
	}
	return c.Build(a)
}

// WriteFile encodes the chain starting at head into the file at path.
//
// Parameters:
//   - path: destination file path
//   - a: the arena owning the chain
//   - head: the first fragment of the chain
//
// Returns:
//   - error: an encoding or file system error
func WriteFile(path string, a vm.Arena, head vm.Fragment) error {
	c, err := Snapshot(a, head)
	if err != nil {
		return err
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("capture: write %s: %w", path, err)
	}
	log.Infof("wrote capture %s to %s (%d fragments, %d instructions, %d bytes)", c.ID, path, len(c.Fragments), c.Len(), len(data))
	return nil
}

// ReadFile decodes the capture at path and recreates its chain in a.
//
// Parameters:
//   - path: capture file path
//   - a: the arena to create fragments in
//
// Returns:
//   - vm.Fragment: the head of the chain
//   - error: a file system or decoding error
func ReadFile(path string, a vm.Arena) (vm.Fragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vm.NilFragment, fmt.Errorf("capture: read %s: %w", path, err)
	}
	c, err := Unmarshal(data)
	if err != nil {
		return vm.NilFragment, err
	}
	head, err := c.Build(a)
	if err != nil {
		return vm.NilFragment, err
	}
	log.Infof("read capture %s from %s (%d fragments, %d instructions)", c.ID, path, len(c.Fragments), c.Len())
	return head, nil
}
