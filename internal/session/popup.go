package session

// Popup is the token entry overlay. Showing or hiding always clears the
// input; both are idempotent.
type Popup struct {
	visible bool
	input   string
}

// Show clears the input and makes the popup visible.
func (p *Popup) Show() {
	p.input = ""
	p.visible = true
}

// Hide clears the input and hides the popup.
func (p *Popup) Hide() {
	p.input = ""
	p.visible = false
}

func (p *Popup) Visible() bool { return p.visible }

func (p *Popup) Input() string { return p.input }

// SetInput replaces the input buffer.
func (p *Popup) SetInput(value string) { p.input = value }
