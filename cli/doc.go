// Package cli runs a phosphor CRT compositor inside a real terminal.
//
// The Terminal draws a line-oriented console with tcell: output lines, a
// prompt line, an optional border and an optional status bar. It implements
// phosphor.Host, so a compositor can attach to it like to any GUI terminal.
//
// # Overlay
//
// A terminal has no pixels, so the overlay is a phosphor.Raster covering
// the content area with Supersample x 2*Supersample pixels per cell. After
// every frame the pixels under each cell are averaged and mixed onto the
// cell's foreground and background colors with the "overlay" blend mode,
// which is how the browser composites the overlay canvas.
//
// # Basic Usage
//
//	term, err := cli.New(cli.Options{
//	    BorderStyle:   cli.BorderRounded,
//	    Title:         "phosphor",
//	    ShowStatusBar: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer term.Close()
//
//	crt := phosphor.New(phosphor.Options{
//	    Panels: phosphor.NewPanelRegistry(term.Document(), nil),
//	})
//	crt.Attach(term)
//	defer crt.Detach()
//
//	term.Run(context.Background())
//
// # Threading
//
// Run owns the screen: key, mouse and resize events, scheduled callbacks
// and redraws all happen on its goroutine. Use Post to reach the terminal
// from anywhere else.
//
// # Keys
//
//   - Ctrl+C: leave Run
//   - Ctrl+Shift+D or F2: toggle the diagnostic panel
//   - Enter: submit the prompt line (may fire a redraw sweep)
package cli
