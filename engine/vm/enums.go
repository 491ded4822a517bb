package vm

// Native enumerant values the optimizer needs to interpret state selectors.
// They match the OpenGL registry and are kept here so the VM does not import a binding package.
const (
	EnumFront                uint32 = 0x0404
	EnumBack                 uint32 = 0x0405
	EnumFrontAndBack         uint32 = 0x0408
	EnumArrayBuffer          uint32 = 0x8892
	EnumElementArrayBuffer   uint32 = 0x8893
	EnumFramebuffer          uint32 = 0x8D40
	EnumReadFramebuffer      uint32 = 0x8CA8
	EnumDrawFramebuffer      uint32 = 0x8CA9
	EnumNoError              uint32 = 0
	EnumTexture0             uint32 = 0x84C0
	EnumUniformBuffer        uint32 = 0x8A11
	EnumShaderStorageBuffer  uint32 = 0x90D2
	EnumTransformFeedbackBuf uint32 = 0x8C8E
	EnumAtomicCounterBuffer  uint32 = 0x92C0
	EnumColorBufferBit       uint32 = 0x00004000
	EnumDepthBufferBit       uint32 = 0x00000100
	EnumStencilBufferBit     uint32 = 0x00000400
	EnumTriangles            uint32 = 0x0004
	EnumUnsignedInt          uint32 = 0x1405
	EnumFloat                uint32 = 0x1406
	EnumTexture2D            uint32 = 0x0DE1
	EnumBlend                uint32 = 0x0BE2
	EnumDepthTest            uint32 = 0x0B71
	EnumCullFaceCap          uint32 = 0x0B44
	EnumInvalidOperation     uint32 = 0x0502
)
