package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/fatih/color"

	"github.com/go-memol/memol"
	"github.com/go-memol/memol/internal/logging"
)

var logger = logging.New("memol: ", logging.LevelInfo)

// noTick is the flagBgn/flagEnd sentinel meaning "not given on the command
// line" — the window is then derived from the source's own out.begin/
// out.end tracks, falling back to total score length per the defaults.
const noTick = -1

var (
	flagTick   = flag.Int64("tick", 480, "ticks per beat")
	flagBgn    = flag.Int64("begin", noTick, "start tick of the export/playback window (default: out.begin, or 0)")
	flagEnd    = flag.Int64("end", noTick, "end tick of the export/playback window (default: out.end, or total score length)")
	flagScore  = flag.String("score", "main", "name of the score definition to play/export")
	flagOutput = flag.String("o", "out.mid", "output SMF path (export subcommand)")
	flagPort   = flag.String("port", "", "MIDI output port name (play subcommand, default: first available)")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("memol: ")
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		log.Fatal("usage: memol <compile|export|play|watch> <file.mmlm>")
	}
	cmd, path := args[0], args[1]

	switch cmd {
	case "compile":
		if _, err := compileFile(path); err != nil {
			log.Fatal(err)
		}
		fmt.Println("ok")

	case "export":
		ir, err := compileFile(path)
		if err != nil {
			log.Fatal(err)
		}
		f, err := os.Create(*flagOutput)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		if err := memol.WriteSMF(f, ir, uint16(*flagTick)); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s\n", *flagOutput)

	case "play":
		ir, err := compileFile(path)
		if err != nil {
			log.Fatal(err)
		}
		host, err := memol.NewRtmidiHost(*flagPort)
		if err != nil {
			log.Fatal(err)
		}
		defer host.Close()
		p, err := memol.NewPlayer(host)
		if err != nil {
			log.Fatal(err)
		}
		p.SetData(ir)
		runTransport(p)

	case "watch":
		if err := watch(path, func(p string) {
			if _, err := compileFile(p); err != nil {
				logger.Errorf("%s: %v", p, err)
				return
			}
			color.New(color.FgGreen).Printf("compiled %s\n", p)
		}); err != nil {
			log.Fatal(err)
		}

	default:
		log.Fatalf("unknown subcommand %q", cmd)
	}
}

// compileFile parses, generates, and assembles path's named score into a
// sorted MIDI event list ready for export or playback.
func compileFile(path string) ([]memol.MidiEvent, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	def, err := memol.ParseDefinition(path, string(src))
	if err != nil {
		return nil, err
	}

	sg := memol.NewScoreGenerator(def)
	score, err := sg.Generate(path, *flagScore)
	if err != nil {
		return nil, err
	}
	if score == nil {
		return nil, fmt.Errorf("memol: score %q not found", *flagScore)
	}

	vg := memol.NewValueGenerator(def)
	velIR, err := vg.Generate("velocity")
	if err != nil {
		return nil, err
	}
	ofsIR, err := vg.Generate("offset")
	if err != nil {
		return nil, err
	}
	durIR, err := vg.Generate("duration")
	if err != nil {
		return nil, err
	}
	if velIR == nil {
		velIR = memol.ConstValueIR(0.625)
	}
	if ofsIR == nil {
		ofsIR = memol.ConstValueIR(0.0)
	}
	if durIR == nil {
		durIR = memol.SymbolValueIR("note.len")
	}

	bgnIR, err := vg.Generate("out.begin")
	if err != nil {
		return nil, err
	}
	endIR, err := vg.Generate("out.end")
	if err != nil {
		return nil, err
	}
	bgnTick := *flagBgn
	if bgnTick == noTick {
		bgnTick = 0
		if bgnIR != nil {
			bgnTick = beatsToTicks(memol.NewEvaluator().Eval(bgnIR, memol.RatZero()), *flagTick)
		}
	}
	endTick := *flagEnd
	if endTick == noTick {
		switch {
		case endIR != nil:
			endTick = beatsToTicks(memol.NewEvaluator().Eval(endIR, memol.RatZero()), *flagTick)
		default:
			endTick = beatsToTicks(scoreLength(score).Float64(), *flagTick)
		}
	}

	asm := memol.NewAssembler(memol.NewRandom(), bgnTick, endTick, *flagTick)
	asm.AddScore(0, score, velIR, ofsIR, durIR)
	if tempoIR, err := vg.Generate("tempo"); err != nil {
		return nil, err
	} else if tempoIR != nil {
		asm.AddTempo(tempoIR)
	}
	return asm.Generate(), nil
}

// beatsToTicks converts a beat count (as produced by evaluating a constant
// value track at t=0) to an integer tick count at the given resolution.
func beatsToTicks(beats float64, tick int64) int64 {
	return int64(math.Round(beats * float64(tick)))
}

// scoreLength returns the latest note-end time the score reaches, used as
// the default "end" boundary when the source defines no out.end track.
func scoreLength(score *memol.ScoreIR) memol.Rat {
	length := memol.RatZero()
	for _, n := range score.Notes {
		if n.T1.Gt(length) {
			length = n.T1
		}
	}
	return length
}
