package rendergraph

// Stage is a bitmask of pipeline stages used as the source or destination
// scope of a barrier.
type Stage uint32

// Pipeline stages.
const (
	StageTopOfPipe Stage = 1 << iota
	StageDrawIndirect
	StageVertexInput
	StageVertexShader
	StageFragmentShader
	StageEarlyFragmentTests
	StageLateFragmentTests
	StageColorAttachmentOutput
	StageComputeShader
	StageTransfer
	StageBottomOfPipe

	StageNone Stage = 0

	StageAllGraphics = StageDrawIndirect | StageVertexInput | StageVertexShader |
		StageFragmentShader | StageEarlyFragmentTests | StageLateFragmentTests |
		StageColorAttachmentOutput
	StageDepthTests = StageEarlyFragmentTests | StageLateFragmentTests
)

var stageNames = []string{
	"TopOfPipe", "DrawIndirect", "VertexInput", "VertexShader", "FragmentShader",
	"EarlyFragmentTests", "LateFragmentTests", "ColorAttachmentOutput",
	"ComputeShader", "Transfer", "BottomOfPipe",
}

// String returns the set bits joined with "|".
func (s Stage) String() string { return flagString(uint32(s), stageNames) }

// Access is a bitmask of memory access kinds.
type Access uint32

// Memory accesses.
const (
	AccessIndirectCommandRead Access = 1 << iota
	AccessIndexRead
	AccessVertexAttributeRead
	AccessUniformRead
	AccessShaderRead
	AccessShaderWrite
	AccessColorAttachmentRead
	AccessColorAttachmentWrite
	AccessDepthStencilAttachmentRead
	AccessDepthStencilAttachmentWrite
	AccessTransferRead
	AccessTransferWrite
	AccessMemoryRead
	AccessMemoryWrite

	AccessNone Access = 0
)

var accessNames = []string{
	"IndirectCommandRead", "IndexRead", "VertexAttributeRead", "UniformRead",
	"ShaderRead", "ShaderWrite", "ColorAttachmentRead", "ColorAttachmentWrite",
	"DepthStencilAttachmentRead", "DepthStencilAttachmentWrite",
	"TransferRead", "TransferWrite", "MemoryRead", "MemoryWrite",
}

// String returns the set bits joined with "|".
func (a Access) String() string { return flagString(uint32(a), accessNames) }

// Layout is the arrangement a texture's memory must be in for an access.
type Layout uint8

// Texture layouts.
const (
	LayoutUndefined Layout = iota
	LayoutGeneral
	LayoutColorAttachment
	LayoutDepthStencilAttachment
	LayoutDepthStencilReadOnly
	LayoutShaderReadOnly
	LayoutTransferSrc
	LayoutTransferDst
	LayoutPresent
)

var layoutNames = [...]string{
	LayoutUndefined:              "Undefined",
	LayoutGeneral:                "General",
	LayoutColorAttachment:        "ColorAttachment",
	LayoutDepthStencilAttachment: "DepthStencilAttachment",
	LayoutDepthStencilReadOnly:   "DepthStencilReadOnly",
	LayoutShaderReadOnly:         "ShaderReadOnly",
	LayoutTransferSrc:            "TransferSrc",
	LayoutTransferDst:            "TransferDst",
	LayoutPresent:                "Present",
}

// String returns the layout name.
func (l Layout) String() string {
	if int(l) < len(layoutNames) {
		return layoutNames[l]
	}
	return "Layout(?)"
}

// IsDepth reports whether l is one of the depth/stencil layouts.
// Barriers into a depth layout address the depth aspect of the image.
func (l Layout) IsDepth() bool {
	return l == LayoutDepthStencilAttachment || l == LayoutDepthStencilReadOnly
}
