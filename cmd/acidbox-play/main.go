package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vsariola/acidbox"
	"github.com/vsariola/acidbox/cmd"
	"github.com/vsariola/acidbox/export"
	"github.com/vsariola/acidbox/oto"
	"github.com/vsariola/acidbox/tracker"
	"github.com/vsariola/acidbox/version"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func main() {
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the working directory.")
	play := flag.Bool("p", false, "Play the input patterns (default behaviour when no other output is defined).")
	live := flag.Bool("live", false, "Play through the live engine instead of rendering offline first. Combined with -w, the .wav is captured from the live output.")
	wavOut := flag.Bool("w", false, "Output the rendered pattern as .wav file.")
	exportFormats := flag.String("x", "", "Comma separated list of formats to export the pattern to: "+strings.Join(export.Formats(), ", ")+".")
	configFile := flag.String("c", "", "Configuration file (.json or .yml) with the synth parameters, audio and log settings.")
	loops := flag.Int("n", 4, "Number of times to loop the pattern.")
	tail := flag.Float64("tail", 1, "Seconds of audio rendered after the last step, for the release and delay to ring out.")
	random := flag.Bool("random", false, "Ignore the input files and use a random pattern, named random.")
	seed := flag.Uint64("seed", 0, "Seed for the random pattern and the random playback mode. 0 picks a random seed.")
	mode := flag.String("mode", "", "Override the playback mode: forward, reverse, fwrev, invert or random.")
	tempo := flag.Int("tempo", 0, "Override the tempo, in BPM (60..200).")
	logLevel := flag.String("log", "", "Log level: debug, info, warn or error. Overrides the configuration file.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if (flag.NArg() == 0 && !*random) || *help {
		flag.Usage()
		os.Exit(0)
	}
	if !*wavOut && *exportFormats == "" {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play the pattern
	}
	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *mode != "" {
		if cfg.Params.Mode, err = acidbox.ParsePlaybackMode(*mode); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	if *tempo != 0 {
		if _, err := cfg.Params.SetTempo(*tempo); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	logger, err := cmd.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *seed == 0 {
		*seed = rand.Uint64()
	}
	rnd := rand.New(rand.NewPCG(*seed, *seed))
	var exporter *export.Exporter
	if *exportFormats != "" {
		if exporter, err = export.New(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	var audioContext *oto.OtoContext
	if *play || *live {
		audioContext, err = oto.NewContext(cfg.Audio.SampleRate, cfg.Audio.BlockSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not acquire oto AudioContext: %v\n", err)
			os.Exit(1)
		}
	}
	process := func(name string, pattern acidbox.Pattern) error {
		output := func(extension string, contents []byte) error {
			if *stdout {
				_, err := os.Stdout.Write(contents)
				return err
			}
			dir := *directory
			if dir == "" {
				var err error
				dir, err = os.Getwd()
				if err != nil {
					return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
				}
			}
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return fmt.Errorf("could not create output directory %v: %v", dir, err)
			}
			f := filepath.Join(dir, name+extension)
			if err := os.WriteFile(f, contents, 0644); err != nil {
				return fmt.Errorf("could not write file %v: %v", f, err)
			}
			logger.Info("wrote file", zap.String("file", f), zap.Int("bytes", len(contents)))
			return nil
		}
		if exporter != nil {
			for _, format := range strings.Split(*exportFormats, ",") {
				format = strings.TrimSpace(format)
				contents, err := exporter.Export(format, pattern, cfg.Params)
				if err != nil {
					return fmt.Errorf("could not export pattern: %v", err)
				}
				if err := output("."+format, contents); err != nil {
					return fmt.Errorf("error outputting .%v file: %v", format, err)
				}
			}
		}
		ticks := *loops * acidbox.PatternLength
		if *live {
			wav, err := playLive(audioContext, cfg, pattern, ticks, *wavOut, rnd, logger)
			if err != nil {
				return err
			}
			if wav != nil {
				return output(".wav", wav)
			}
			return nil
		}
		if !*play && !*wavOut {
			return nil
		}
		buffer, err := tracker.Render(cfg.Params, pattern, cfg.Audio.SampleRate, ticks, *tail, rnd)
		if err != nil {
			return fmt.Errorf("tracker.Render failed: %v", err)
		}
		if *wavOut {
			wav, err := buffer.Wav(cfg.Audio.SampleRate)
			if err != nil {
				return fmt.Errorf("could not generate .wav file: %v", err)
			}
			if err := output(".wav", wav); err != nil {
				return fmt.Errorf("error outputting .wav file: %v", err)
			}
		}
		if *play {
			playWaiter := audioContext.Play(buffer.Source())
			playWaiter.Wait()
		}
		return nil
	}
	retval := 0
	if *random {
		if err := process("random", acidbox.RandomPattern(rnd)); err != nil {
			fmt.Fprintf(os.Stderr, "could not process random pattern: %v\n", err)
			retval = 1
		}
	}
	for _, param := range flag.Args() {
		files := []string{param}
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			jsonfiles, err := filepath.Glob(filepath.Join(param, "*.json"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for json files: %v\n", param, err)
				retval = 1
				continue
			}
			ymlfiles, err := filepath.Glob(filepath.Join(param, "*.yml"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for yml files: %v\n", param, err)
				retval = 1
				continue
			}
			files = append(ymlfiles, jsonfiles...)
		}
		for _, file := range files {
			pattern, err := readPattern(file)
			if err == nil {
				_, name := filepath.Split(file)
				err = process(strings.TrimSuffix(name, filepath.Ext(name)), pattern)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
				retval = 1
			}
		}
	}
	if audioContext != nil {
		if err := audioContext.Close(); err != nil {
			logger.Error("closing audio", zap.Error(err))
		}
	}
	logger.Sync()
	os.Exit(retval)
}

func loadConfig(filename string) (acidbox.Config, error) {
	if filename == "" {
		return acidbox.DefaultConfig(), nil
	}
	f, err := os.Open(filename)
	if err != nil {
		return acidbox.Config{}, fmt.Errorf("could not open config: %v", err)
	}
	defer f.Close()
	return acidbox.ReadConfig(f)
}

func readPattern(filename string) (acidbox.Pattern, error) {
	f, err := os.Open(filename)
	if err != nil {
		return acidbox.Pattern{}, fmt.Errorf("could not read file %v: %v", filename, err)
	}
	defer f.Close()
	return acidbox.ReadPattern(f)
}

// playLive runs the pattern through the real-time engine for the given
// number of ticks, optionally capturing the output.
func playLive(audioContext acidbox.AudioContext, cfg acidbox.Config, pattern acidbox.Pattern, ticks int, record bool, rnd *rand.Rand, logger *zap.Logger) (wav []byte, err error) {
	broker := tracker.NewBroker()
	engine, err := tracker.NewEngine(broker, cfg,
		tracker.WithPattern(pattern),
		tracker.WithRand(rnd),
		tracker.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	player := tracker.NewPlayer(broker, engine.NewChain(), logger)
	audioCloser := audioContext.Play(player.AudioSource())
	defer func() {
		err = multierr.Combine(err, engine.Close(), audioCloser.Close())
	}()
	if record {
		engine.StartRecording()
	}
	engine.Start()
	for steps := 0; steps < ticks; {
		msg := <-broker.ToModel
		if msg.HasStep {
			steps++
		}
	}
	engine.Stop()
	time.Sleep(time.Duration(cfg.Params.Decay*float64(time.Second)) + 100*time.Millisecond)
	if record {
		return engine.StopRecording()
	}
	return nil, nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "acidbox command line utility for playing and rendering .json/.yml pattern files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
