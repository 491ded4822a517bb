package capture

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-glvm/engine/vm"
)

// buildScene records a two-fragment chain using most argument kinds.
func buildScene(a vm.Arena) vm.Fragment {
	first := a.Create()
	vm.NewBlockWriter(a, first, a.NewBlock(first)).
		BindFramebuffer(vm.EnumFramebuffer, 0).
		Viewport(0, 0, 640, 480).
		ClearColor(0.1, 0.2, 0.3, 1).
		ClearDepth(1).
		Clear(vm.EnumColorBufferBit | vm.EnumDepthBufferBit)

	second := a.Create()
	vm.NewBlockWriter(a, second, a.NewBlock(second)).
		BindProgram(3).
		BindVertexArray(7).
		BindBuffer(vm.EnumArrayBuffer, 9).
		VertexAttribPointer(0, 4, 0x1401, true, 16, 32).
		StencilFuncSeparate(vm.EnumFrontAndBack, 0x0207, -1, 0xFF)
	vm.NewBlockWriter(a, second, a.NewBlock(second)).
		BindBufferRange(vm.EnumUniformBuffer, 1, 4, 256, 64).
		DrawElementsInstanced(vm.EnumTriangles, 36, vm.EnumUnsignedInt, 0, 10).
		GetError(nil)

	a.Link(first, second)
	return first
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	src := vm.NewArena()
	head := buildScene(src)

	data, err := Encode(src, head)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dst := vm.NewArena()
	got, err := Decode(dst, data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want, _ := src.Flatten(head)
	stream, err := dst.Flatten(got)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(stream) != len(want) {
		t.Fatalf("decoded %d instructions, want %d", len(stream), len(want))
	}
	for n := range want {
		if stream[n] != want[n] {
			t.Errorf("instruction %d = %v, want %v", n, stream[n], want[n])
		}
	}

	chain, _ := dst.Chain(got)
	if len(chain) != 2 || dst.BlockCount(chain[1]) != 2 {
		t.Errorf("decoded chain shape: %d fragments, %d blocks in the second", len(chain), dst.BlockCount(chain[1]))
	}
}

func TestMarshal_Deterministic(t *testing.T) {
	a := vm.NewArena()
	c, err := Snapshot(a, buildScene(a))
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	one, err := c.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	two, _ := c.Marshal()
	if !bytes.Equal(one, two) {
		t.Error("two encodings of one capture differ")
	}

	back, err := Unmarshal(one)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.ID != c.ID || back.Version != FormatVersion {
		t.Errorf("header = %v/%d, want %v/%d", back.ID, back.Version, c.ID, FormatVersion)
	}
	if back.Len() != c.Len() || c.Len() != 13 {
		t.Errorf("Len() = %d (decoded %d), want 13", c.Len(), back.Len())
	}
}

func TestSnapshot_FreshIDs(t *testing.T) {
	a := vm.NewArena()
	head := buildScene(a)
	one, _ := Snapshot(a, head)
	two, _ := Snapshot(a, head)
	if one.ID == two.ID {
		t.Error("two snapshots share a capture ID")
	}
}

func TestSnapshot_RejectsHostPointers(t *testing.T) {
	a := vm.NewArena()
	f := a.Create()
	data := []float32{1, 2, 3, 4}
	vm.NewBlockWriter(a, f, a.NewBlock(f)).Uniform(vm.Uniform4fv, 0, 1, unsafe.Pointer(&data[0]))

	if _, err := Encode(a, f); !errors.Is(err, ErrHostPointer) {
		t.Errorf("Encode error = %v, want ErrHostPointer", err)
	}
}

func TestSnapshot_ChainErrors(t *testing.T) {
	a := vm.NewArena()
	f := a.Create()
	a.Link(f, f)
	if _, err := Snapshot(a, f); !errors.Is(err, vm.ErrCycle) {
		t.Errorf("Snapshot error = %v, want ErrCycle", err)
	}
}

func TestUnmarshal_RejectsVersion(t *testing.T) {
	c := &Capture{Version: FormatVersion + 1}
	data, err := c.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if _, err := Unmarshal(data); !errors.Is(err, ErrVersion) {
		t.Errorf("Unmarshal error = %v, want ErrVersion", err)
	}
	if _, err := Unmarshal([]byte{0xff, 0x00}); err == nil {
		t.Error("Unmarshal accepted garbage")
	}
}

func TestBuild_ValidatesBeforeCreating(t *testing.T) {
	tests := []struct {
		name string
		op   Op
		want error
	}{
		{"unknown opcode", Op{Name: "Frobnicate", Args: []uint64{1}}, ErrMalformed},
		{"wrong arity", Op{Name: "BindProgram", Args: []uint64{1, 2}}, ErrMalformed},
		{"host pointer", Op{Name: "GetError", Args: []uint64{0xdeadbeef}}, ErrHostPointer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Capture{Version: FormatVersion, Fragments: []Fragment{
				{Blocks: []Block{{Ops: []Op{{Name: "BindProgram", Args: []uint64{1}}}}}},
				{Blocks: []Block{{Ops: []Op{tt.op}}}},
			}}
			a := vm.NewArena()
			head, err := c.Build(a)
			if !errors.Is(err, tt.want) {
				t.Errorf("Build error = %v, want %v", err, tt.want)
			}
			if !head.IsNil() || a.Len() != 0 {
				t.Errorf("Build left %d fragments after failing", a.Len())
			}
		})
	}
}

func TestBuild_Empty(t *testing.T) {
	head, err := (&Capture{Version: FormatVersion}).Build(vm.NewArena())
	if err != nil || !head.IsNil() {
		t.Errorf("Build(empty) = %v, %v", head, err)
	}
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.glvm")
	src := vm.NewArena()
	head := buildScene(src)
	if err := WriteFile(path, src, head); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	dst := vm.NewArena()
	got, err := ReadFile(path, dst)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want, _ := src.Flatten(head)
	stream, _ := dst.Flatten(got)
	if len(stream) != len(want) {
		t.Errorf("read %d instructions, want %d", len(stream), len(want))
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing"), dst); err == nil {
		t.Error("ReadFile of a missing file succeeded")
	}
}
