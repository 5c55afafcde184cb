// Example program running the CRT effect inside your terminal.
//
// A tiny console with a border and status bar; type a line and press Enter
// (sometimes that fires a redraw sweep). Leave it alone for five seconds to
// see the idle flicker.
//
// Controls:
//   - Ctrl+Shift+D or F2: toggle the diagnostic panel
//   - Ctrl+C: quit
//
// Usage:
//
//	go run main.go                       # default tuning
//	go run main.go -config crt.json      # tuning from a JSON file
//	go run main.go -sound                # with sound cues
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/phroun/phosphor"
	"github.com/phroun/phosphor/audio"
	"github.com/phroun/phosphor/cli"
	"golang.org/x/term"
)

func main() {
	configPath := flag.String("config", "", "JSON file with effect tuning")
	sound := flag.Bool("sound", false, "play sound cues")
	flag.Parse()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "stdout is not a terminal")
		os.Exit(1)
	}

	effect := phosphor.DefaultEffectConfig()
	if *configPath != "" {
		cfg, err := phosphor.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		effect = cfg
	}

	// warnings would scribble over the screen
	logger := log.New(os.Stderr, "phosphor: ", log.LstdFlags)
	if f, err := os.CreateTemp("", "phosphor-*.log"); err == nil {
		logger.SetOutput(f)
		defer f.Close()
	}

	var crt *phosphor.Compositor
	t, err := cli.New(cli.Options{
		BorderStyle:   cli.BorderRounded,
		Title:         "phosphor",
		ShowStatusBar: true,
		Status: func() string {
			if crt == nil {
				return ""
			}
			mode := "active"
			if crt.IsIdle() {
				mode = "idle"
			}
			return fmt.Sprintf("CRT: %v | %s", crt.Enabled(), mode)
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create terminal: %v\n", err)
		os.Exit(1)
	}
	defer t.Close()

	var observer phosphor.Observer
	if *sound {
		cues := audio.New(audio.DefaultConfig())
		if err := cues.Start(); err != nil {
			logger.Printf("sound disabled: %v", err)
		} else {
			defer cues.Close()
			observer = cues
		}
	}

	crt = phosphor.New(phosphor.Options{
		Effect:   effect,
		Logger:   logger,
		Panels:   phosphor.NewPanelRegistry(t.Document(), logger),
		Observer: observer,
	})
	crt.Attach(t)
	defer crt.Detach()

	t.Println("phosphor CRT console. Commands: help, on, off, toggle, status")
	t.OnSubmit(func(line string) {
		run(t, crt, strings.TrimSpace(line))
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := t.Run(ctx); err != nil && err != context.Canceled {
		logger.Printf("run: %v", err)
	}
}

// run answers a console command
func run(t *cli.Terminal, crt *phosphor.Compositor, cmd string) {
	switch cmd {
	case "":
	case "help":
		t.Println("help, on, off, toggle, status")
	case "on":
		crt.SetEnabled(true)
	case "off":
		crt.SetEnabled(false)
	case "toggle":
		crt.Toggle()
	case "status":
		for _, f := range crt.PanelSnapshot().Fields() {
			t.Println(f.Label + ": " + f.Value)
		}
	default:
		t.Println("unknown command: " + cmd)
	}
}
