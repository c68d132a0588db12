package rendergraph

// PassKind selects the queue work a pass records.
type PassKind uint8

// Pass kinds.
const (
	PassGraphics PassKind = iota
	PassCompute
	PassTransfer
)

// String returns the kind name.
func (k PassKind) String() string {
	switch k {
	case PassGraphics:
		return "Graphics"
	case PassCompute:
		return "Compute"
	case PassTransfer:
		return "Transfer"
	}
	return "PassKind(?)"
}

// Pass is one node of the graph. Its accesses and attachments are filled
// in by the PassBuilder during setup; the backend objects are set by
// Compile. Callers treat the returned pass as read-only.
type Pass struct {
	Name  string
	Index int
	Kind  PassKind

	Reads  []ResourceAccess
	Writes []ResourceAccess

	ColorAttachments []TextureHandle
	DepthAttachment  TextureHandle

	ViewportWidth  uint32
	ViewportHeight uint32

	// Backend objects, set by Compile for graphics passes with attachments.
	RenderPass  any
	Framebuffer any

	// RefCount is the number of earlier writes this pass reads.
	// Diagnostic only; it does not influence ordering.
	RefCount int

	execute ExecuteFunc

	// loaded lists attachments whose previous contents are kept.
	loaded map[TextureHandle]bool
}

// HasAttachments reports whether the pass renders to any attachment.
func (p *Pass) HasAttachments() bool {
	return len(p.ColorAttachments) > 0 || p.DepthAttachment.IsValid()
}

func (p *Pass) hasColorAttachment(h TextureHandle) bool {
	for _, c := range p.ColorAttachments {
		if c == h {
			return true
		}
	}
	return false
}

// Lifetime spans the first and last pass that access a resource.
// Both are -1 for a resource no pass touches.
type Lifetime struct {
	First int
	Last  int
}

// Used reports whether any pass accesses the resource.
func (l Lifetime) Used() bool { return l.First >= 0 }

func unusedLifetime() Lifetime { return Lifetime{First: -1, Last: -1} }

func (l *Lifetime) extend(pass int) {
	if l.First < 0 || pass < l.First {
		l.First = pass
	}
	if pass > l.Last {
		l.Last = pass
	}
}
