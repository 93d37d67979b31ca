package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vsariola/acidbox"
	"github.com/vsariola/acidbox/cmd"
	"github.com/vsariola/acidbox/oto"
	"github.com/vsariola/acidbox/tracker"
	"github.com/vsariola/acidbox/version"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var configFile = flag.String("c", "", "configuration `file` (.json or .yml)")
var logFile = flag.String("log", "", "write logs to `file`; the terminal is used by the user interface")
var recordingFile = flag.String("r", "recording.wav", "`file` where recordings are saved")
var versionFlag = flag.Bool("v", false, "print version")

func main() {
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	cfg := acidbox.DefaultConfig()
	if *configFile != "" {
		f, err := os.Open(*configFile)
		if err == nil {
			cfg, err = acidbox.ReadConfig(f)
			f.Close()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not read config: %v\n", err)
			os.Exit(1)
		}
	}
	logger := zap.NewNop()
	if *logFile != "" {
		var err error
		if logger, err = cmd.NewFileLogger(cfg.Log, *logFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	defer logger.Sync()
	patternFile := ""
	opts := []tracker.Option{tracker.WithLogger(logger)}
	if a := flag.Args(); len(a) > 0 {
		patternFile = a[0]
		if f, err := os.Open(patternFile); err == nil {
			p, err := acidbox.ReadPattern(f)
			f.Close()
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not read pattern: %v\n", err)
				os.Exit(1)
			}
			opts = append(opts, tracker.WithPattern(p))
		}
	}
	audioContext, err := oto.NewContext(cfg.Audio.SampleRate, cfg.Audio.BlockSize)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	broker := tracker.NewBroker()
	engine, err := tracker.NewEngine(broker, cfg, opts...)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	player := tracker.NewPlayer(broker, engine.NewChain(), logger)
	audioCloser := audioContext.Play(player.AudioSource())

	model := NewModel(engine, broker, patternFile, *recordingFile)
	_, runErr := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err := multierr.Combine(runErr, engine.Close(), audioCloser.Close(), audioContext.Close()); err != nil {
		logger.Error("exiting", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
