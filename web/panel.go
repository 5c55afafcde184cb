//go:build js && wasm

package phosphorweb

import (
	"fmt"
	"syscall/js"

	"github.com/phroun/phosphor"
)

// Document mounts the diagnostic panel in the page's document. A panel
// mounted by another Document (or another module on the same page) is
// found by id and reused.
type Document struct {
	doc js.Value
}

// NewDocument wraps the global document
func NewDocument() *Document {
	return &Document{doc: js.Global().Get("document")}
}

func (d *Document) LookupPanel(id string) (phosphor.PanelNode, bool) {
	el := d.doc.Call("getElementById", id)
	if !el.Truthy() {
		return nil, false
	}
	return &panelNode{doc: d.doc, el: el}, true
}

func (d *Document) CreatePanel(id string, onClose func()) (phosphor.PanelNode, error) {
	body := d.doc.Get("body")
	if !body.Truthy() {
		return nil, fmt.Errorf("phosphorweb: document has no body")
	}
	el := d.doc.Call("createElement", "div")
	el.Set("id", id)
	el.Set("innerHTML", panelMarkup())
	if err := try(func() { body.Call("appendChild", el) }); err != nil {
		return nil, fmt.Errorf("phosphorweb: failed to mount panel: %w", err)
	}

	p := &panelNode{doc: d.doc, el: el}
	if btn := el.Call("querySelector", "#"+closeID); btn.Truthy() {
		p.onClick = js.FuncOf(func(js.Value, []js.Value) any {
			if onClose != nil {
				onClose()
			}
			return nil
		})
		btn.Call("addEventListener", "click", p.onClick)
		p.btn = btn
	}
	return p, nil
}

// BindShortcut listens for Ctrl+Shift+D on the whole document
func (d *Document) BindShortcut(fn func()) phosphor.Disposable {
	cb := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		if keyEvent(args[0]).IsPanelShortcut() {
			args[0].Call("preventDefault")
			fn()
		}
		return nil
	})
	d.doc.Call("addEventListener", "keydown", cb)
	return phosphor.Once(func() {
		d.doc.Call("removeEventListener", "keydown", cb)
		cb.Release()
	})
}

// panelNode is the #crt-debug-panel element
type panelNode struct {
	doc     js.Value
	el      js.Value
	btn     js.Value
	onClick js.Func
	removed bool
}

func (p *panelNode) Update(fields []phosphor.PanelField) {
	if content := p.el.Call("querySelector", "#"+contentID); content.Truthy() {
		content.Set("innerHTML", fieldsMarkup(fields))
	}
}

func (p *panelNode) SetVisible(visible bool) {
	display := "none"
	if visible {
		display = "block"
	}
	p.el.Get("style").Set("display", display)
}

func (p *panelNode) Visible() bool {
	return !p.removed && p.el.Get("style").Get("display").String() != "none"
}

// Remove detaches the element. Another owner may already have removed it;
// that is reported as ErrPanelGone.
func (p *panelNode) Remove() error {
	if p.removed {
		return phosphor.ErrPanelGone
	}
	p.removed = true
	if p.btn.Truthy() {
		p.btn.Call("removeEventListener", "click", p.onClick)
		p.onClick.Release()
	}
	parent := p.el.Get("parentNode")
	if !parent.Truthy() {
		return phosphor.ErrPanelGone
	}
	if err := try(func() { parent.Call("removeChild", p.el) }); err != nil {
		return fmt.Errorf("%w: %v", phosphor.ErrPanelGone, err)
	}
	return nil
}
