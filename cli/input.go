package cli

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/phroun/phosphor"
)

// keyNames maps tcell's named keys to DOM key names
var keyNames = map[tcell.Key]string{
	tcell.KeyEnter:      "Enter",
	tcell.KeyTab:        "Tab",
	tcell.KeyBacktab:    "Tab",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyEscape:     "Escape",
	tcell.KeyUp:         "ArrowUp",
	tcell.KeyDown:       "ArrowDown",
	tcell.KeyLeft:       "ArrowLeft",
	tcell.KeyRight:      "ArrowRight",
	tcell.KeyHome:       "Home",
	tcell.KeyEnd:        "End",
	tcell.KeyPgUp:       "PageUp",
	tcell.KeyPgDn:       "PageDown",
	tcell.KeyInsert:     "Insert",
	tcell.KeyDelete:     "Delete",
	tcell.KeyF1:         "F1",
	tcell.KeyF2:         "F2",
	tcell.KeyF3:         "F3",
	tcell.KeyF4:         "F4",
	tcell.KeyF5:         "F5",
	tcell.KeyF6:         "F6",
	tcell.KeyF7:         "F7",
	tcell.KeyF8:         "F8",
	tcell.KeyF9:         "F9",
	tcell.KeyF10:        "F10",
	tcell.KeyF11:        "F11",
	tcell.KeyF12:        "F12",
}

// keyEvent converts a tcell key into DOM-style key names. Terminals send
// Ctrl+letter as a control code, which is mapped back to the letter.
func keyEvent(ev *tcell.EventKey) phosphor.KeyEvent {
	mod := ev.Modifiers()
	k := phosphor.KeyEvent{
		Ctrl:  mod&tcell.ModCtrl != 0,
		Shift: mod&tcell.ModShift != 0,
		Alt:   mod&tcell.ModAlt != 0,
		Meta:  mod&tcell.ModMeta != 0,
	}

	key := ev.Key()
	name, named := keyNames[key]
	switch {
	case key == tcell.KeyRune:
		r := ev.Rune()
		// shifted letters arrive without ModShift
		if unicode.IsUpper(r) {
			k.Shift = true
		}
		k.Key = string(r)
	case named:
		k.Key = name
		if key == tcell.KeyBacktab {
			k.Shift = true
		}
	case key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ:
		k.Ctrl = true
		r := rune('a' + key - tcell.KeyCtrlA)
		if k.Shift {
			r = unicode.ToUpper(r)
		}
		k.Key = string(r)
	default:
		k.Key = "Unidentified"
	}
	return k
}

func (t *Terminal) handleKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyCtrlC {
		t.quit = true
		return
	}

	k := keyEvent(ev)
	t.keys.Emit(k)
	if t.doc.shortcut(k) {
		t.dirty = true
		return
	}
	t.edit(ev)
}

// edit applies a key to the prompt line
func (t *Terminal) edit(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		line := string(t.input)
		t.input = t.input[:0]
		t.Println(t.options.Prompt + line)
		t.submits.Emit(line)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if n := len(t.input); n > 0 {
			t.input = t.input[:n-1]
		}
	case tcell.KeyRune:
		if ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta) != 0 {
			return
		}
		t.input = append(t.input, ev.Rune())
	default:
		return
	}
	t.dirty = true
}
