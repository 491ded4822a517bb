package vm

import (
	"testing"
)

func TestCodes_TableIsComplete(t *testing.T) {
	codes := Codes()
	if len(codes) != 45 {
		t.Fatalf("got %d opcodes, want 45", len(codes))
	}
	for _, c := range codes {
		info := c.Info()
		if info.Name == "" {
			t.Errorf("opcode %d has no name", uint32(c))
		}
		if len(info.Args) > MaxArgs {
			t.Errorf("%v takes %d arguments, more than %d", c, len(info.Args), MaxArgs)
		}
		if parsed, ok := ParseCode(info.Name); !ok || parsed != c {
			t.Errorf("ParseCode(%q) = %v, %v", info.Name, parsed, ok)
		}
		_, hasCategory := codeCategory[c]
		if hasCategory != (info.Kind == KindState) {
			t.Errorf("%v: kind %v but category present = %v", c, info.Kind, hasCategory)
		}
	}
}

func TestCode_InvalidValues(t *testing.T) {
	for _, c := range []Code{0, lastCode + 1, 1000} {
		if c.Valid() {
			t.Errorf("%d should be invalid", uint32(c))
		}
		mustPanic(t, c.String(), func() { c.Info() })
	}
	if _, ok := ParseCode("glDrawArrays"); ok {
		t.Error("ParseCode accepted an unknown name")
	}
}

func TestCode_NumberingMatchesCommandStream(t *testing.T) {
	cases := map[Code]uint32{
		BindVertexArray:     1,
		PatchParameter:      20,
		Clear:               25,
		GetError:            29,
		UniformMatrix4fv:    45,
		BindImageTexture:    26,
		DrawArraysInstanced: 24,
	}
	for c, want := range cases {
		if uint32(c) != want {
			t.Errorf("%v = %d, want %d", c, uint32(c), want)
		}
	}
}

func TestBlockWriter_EmitsOpcodeArity(t *testing.T) {
	a := NewArena()
	w := newWriter(a)
	var errCode uint32
	data := []float32{1, 2, 3, 4}

	w.BindVertexArray(1).BindProgram(2).ActiveTexture(EnumTexture0).BindSampler(0, 3).
		BindTexture(EnumTexture2D, 4).BindBufferBase(EnumUniformBuffer, 0, 5).
		BindBufferRange(EnumUniformBuffer, 1, 6, 256, 64).BindFramebuffer(EnumFramebuffer, 0).
		Viewport(0, 0, 640, 480).Enable(EnumBlend).Disable(EnumDepthTest).DepthFunc(0x0201).
		CullFace(EnumBack).BlendFuncSeparate(1, 0, 1, 0).BlendEquationSeparate(0x8006, 0x8006).
		BlendColor(0, 0, 0, 1).PolygonMode(EnumFrontAndBack, 0x1B02).
		StencilFuncSeparate(EnumFront, 0x0207, 1, 0xFF).StencilOpSeparate(EnumBack, 0x1E00, 0x1E00, 0x1E01).
		PatchParameter(0x8E72, 3).DrawElements(EnumTriangles, 6, EnumUnsignedInt, 0).
		DrawArrays(EnumTriangles, 0, 3).DrawElementsInstanced(EnumTriangles, 6, EnumUnsignedInt, 0, 10).
		DrawArraysInstanced(EnumTriangles, 0, 3, 10).Clear(EnumColorBufferBit).
		BindImageTexture(0, 7, 0, 0x88B9, 0x8814).ClearColor(0.1, 0.2, 0.3, 1).ClearDepth(1).
		GetError(&errCode).BindBuffer(EnumArrayBuffer, 8).
		VertexAttribPointer(0, 3, EnumFloat, true, 12, 0).VertexAttribDivisor(1, 1).
		EnableVertexAttribArray(0).DisableVertexAttribArray(1)
	for _, c := range []Code{Uniform1fv, Uniform2fv, Uniform3fv, Uniform4fv} {
		w.Uniform(c, 0, 1, unsafePointer(data))
	}
	for _, c := range []Code{UniformMatrix2fv, UniformMatrix3fv, UniformMatrix4fv} {
		w.UniformMatrix(c, 1, 1, false, &data[0])
	}

	got := a.Instructions(w.Fragment(), w.Block())
	if len(got) != 41 {
		t.Fatalf("recorded %d instructions, want 41", len(got))
	}
	for n, in := range got[:34] {
		if want := Code(n + 1); in.Code != want {
			t.Errorf("instruction %d = %v, want %v", n, in.Code, want)
		}
	}
	vap := got[30]
	if vap.Code != VertexAttribPointer || vap.Args[2]&VertexAttribNormalized == 0 || vap.Args[2].Uint() != EnumFloat {
		t.Errorf("VertexAttribPointer packing wrong: %v", vap)
	}
}

func TestNewInstruction_RejectsWrongArity(t *testing.T) {
	mustPanic(t, "too few", func() { NewInstruction(BindSampler, 1) })
	mustPanic(t, "too many", func() { NewInstruction(Clear, 1, 2) })
	mustPanic(t, "invalid", func() { NewInstruction(Code(99)) })

	in := NewInstruction(BlendColor, FloatWord(1), FloatWord(0.5), FloatWord(0), FloatWord(1))
	if got := in.String(); got != "BlendColor 1 0.5 0 1" {
		t.Errorf("String() = %q", got)
	}
	if len(in.Used()) != 4 {
		t.Errorf("Used() has %d words, want 4", len(in.Used()))
	}
}

func TestWord_Conversions(t *testing.T) {
	if got := FloatWord(-2.5).Float(); got != -2.5 {
		t.Errorf("float round trip = %v", got)
	}
	if got := DoubleWord(0.125).Double(); got != 0.125 {
		t.Errorf("double round trip = %v", got)
	}
	if got := IntWord(-7).Int(); got != -7 {
		t.Errorf("int round trip = %v", got)
	}
	if !BoolWord(true).Bool() || BoolWord(false).Bool() {
		t.Error("bool words wrong")
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"none":               ModeNone,
		"redundancy":         ModeRedundancyChecks,
		"sorting":            ModeStateSorting,
		"both":               ModeAll,
		"redundancy|sorting": ModeAll,
		"Sorting+Redundancy": ModeAll,
	}
	for s, want := range cases {
		got, err := ParseMode(s)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", s, got, err, want)
		}
	}
	if _, err := ParseMode("fast"); err == nil {
		t.Error("ParseMode accepted an unknown flag")
	}
	if ModeAll.String() != "both" || !ModeAll.Has(ModeStateSorting) || ModeRedundancyChecks.Has(ModeAll) {
		t.Error("Mode helpers wrong")
	}
}
