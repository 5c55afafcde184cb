// Package phosphorweb attaches the phosphor CRT compositor to an xterm.js
// terminal when compiled for the browser (GOOS=js GOARCH=wasm).
//
// The overlay is a real <canvas> inserted right after xterm's own canvas,
// pointer transparent and mixed with mix-blend-mode: overlay. Frames run
// from requestAnimationFrame; the diagnostic panel is a fixed-position
// #crt-debug-panel element in the page.
//
// The markup helpers in this file build on every platform so they can be
// tested without a browser.
package phosphorweb

import (
	"fmt"
	"html"
	"strings"

	"github.com/phroun/phosphor"
)

// Element ids inside the panel
const (
	closeID   = "crt-debug-toggle"
	contentID = "crt-debug-content"
)

// overlayStyle is applied to the overlay canvas
var overlayStyle = [][2]string{
	{"position", "absolute"},
	{"top", "0"},
	{"left", "0"},
	{"pointerEvents", "none"},
	{"zIndex", "10"},
	{"mixBlendMode", "overlay"},
}

// panelMarkup is the inner HTML of a freshly created panel
func panelMarkup() string {
	green := phosphor.PhosphorGreen.Hex()
	var b strings.Builder
	fmt.Fprintf(&b, `<div style="position: fixed; top: 10px; right: 10px; `+
		`background: %s; border: 1px solid %s; color: %s; padding: 10px; `+
		`font-family: 'Courier New', monospace; font-size: 12px; z-index: 10000; `+
		`min-width: 250px; border-radius: 4px; box-shadow: 0 0 10px %s;">`,
		phosphor.PanelShadow.CSS(), green, green, phosphor.PhosphorGreen.WithAlpha(0.3).CSS())
	fmt.Fprintf(&b, `<div style="display: flex; justify-content: space-between; `+
		`align-items: center; margin-bottom: 8px;"><strong>%s</strong>`,
		html.EscapeString(phosphor.PanelTitle))
	fmt.Fprintf(&b, `<button id="%s" style="background: none; border: 1px solid %s; `+
		`color: %s; font-size: 10px; padding: 2px 6px; cursor: pointer; `+
		`border-radius: 2px;">Close</button></div>`, closeID, green, green)
	fmt.Fprintf(&b, `<div id="%s"></div>`, contentID)
	fmt.Fprintf(&b, `<div style="margin-top: 8px; font-size: 10px; opacity: 0.7;">%s</div>`,
		html.EscapeString(phosphor.PanelHint))
	b.WriteString(`</div>`)
	return b.String()
}

// fieldsMarkup renders the panel rows
func fieldsMarkup(fields []phosphor.PanelField) string {
	var b strings.Builder
	for _, f := range fields {
		value := html.EscapeString(f.Value)
		if f.Tone.A > 0 {
			value = fmt.Sprintf(`<span style="color: %s">%s</span>`, f.Tone.Hex(), value)
		} else {
			value = "<span>" + value + "</span>"
		}
		fmt.Fprintf(&b, "<div>%s: %s</div>", html.EscapeString(f.Label), value)
	}
	return b.String()
}

// keyName normalizes a DOM KeyboardEvent.key value
func keyName(key string) string {
	switch key {
	case "", "Dead":
		return "Unidentified"
	case "Return":
		return "Enter"
	}
	return key
}
