package main

import (
	"fmt"
	"os"
	"sync"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/fatih/color"

	"github.com/go-memol/memol"
)

const (
	escape     = "\x1b["
	hideCursor = escape + "?25l"
	showCursor = escape + "?25h"
)

// runTransport drives an interactive keyboard-controlled playback session
// for a compiled Player: space toggles play/stop, left/right seek by one
// second, q, Esc or Ctrl-C quits.
func runTransport(p *memol.Player) {
	var stopOnce sync.Once
	done := make(chan struct{})

	stop := func() {
		stopOnce.Do(func() {
			p.Stop()
			fmt.Print(showCursor)
			close(done)
		})
	}

	fmt.Print(hideCursor)
	defer fmt.Print(showCursor)

	go func() {
		keyboard.Listen(func(key keys.Key) (bool, error) {
			switch key.Code {
			case keys.CtrlC, keys.Escape:
				stop()
				return true, nil
			case keys.Space:
				if p.IsPlaying() {
					p.Stop()
				} else {
					p.Play()
				}
			case keys.Left:
				seekBy(p, -1)
			case keys.Right:
				seekBy(p, 1)
			case keys.RuneKey:
				if len(key.Runes) > 0 && key.Runes[0] == 'q' {
					stop()
					return true, nil
				}
			}
			return false, nil
		})
	}()

	yellow := color.New(color.FgYellow).SprintfFunc()
	var lastLoc memol.Rat
	for {
		select {
		case <-done:
			return
		default:
		}
		loc := p.Location()
		if !loc.Eq(lastLoc) {
			fmt.Fprintf(os.Stdout, "\r%s %s", yellow("t="), loc.String())
			lastLoc = loc
		}
		if !p.IsPlaying() {
			continue
		}
	}
}

func seekBy(p *memol.Player, seconds int64) {
	loc := p.Location()
	target := loc.Add(memol.RatInt(seconds))
	if target.Lt(memol.RatZero()) {
		target = memol.RatZero()
	}
	p.Locate(uint64(target.Mul(memol.RatInt(int64(memol.DefaultFrameRate))).Floor()))
}
