package main

import (
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/gwillem/armsim/pkg/sim"
)

type Options struct {
	Demo DemoCommand `command:"demo" description:"Run a scripted motion demo with a live joint chart"`
	Jog  JogCommand  `command:"jog" description:"Drive individual joints interactively"`
	Scan ScanCommand `command:"scan" description:"Scan serial ports for servo buses"`
	Info InfoCommand `command:"info" description:"Show the arm model and joint profiles"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "armsim - adaptive-rate servo controller for the ReactorX-200 arm"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}

// loadModel returns the model at path, or the built-in arm when no path is
// given.
func loadModel(path string) (*sim.Model, error) {
	if path == "" {
		return sim.ReactorX200(), nil
	}
	return sim.LoadModel(path)
}
