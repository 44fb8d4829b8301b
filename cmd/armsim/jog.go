package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/gwillem/armsim/pkg/arm"
	"github.com/gwillem/armsim/pkg/servo"
	"github.com/gwillem/armsim/pkg/sim"
)

var (
	jogTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	jogDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	jogErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type JogCommand struct {
	Speed float64 `long:"speed" default:"10" description:"Joint speed in rpm"`
	Model string  `long:"model" description:"Arm model JSON (defaults to the built-in ReactorX-200)"`
}

func (c *JogCommand) Execute(args []string) error {
	model, err := loadModel(c.Model)
	if err != nil {
		return err
	}
	engine, err := sim.NewEngine(model)
	if err != nil {
		return err
	}
	ctrl, err := servo.NewController(servo.Config{Backend: engine})
	if err != nil {
		return err
	}
	a, err := arm.NewReactorX200(ctrl)
	if err != nil {
		return err
	}

	vels := make([]float64, len(a.Joints()))
	for i := range vels {
		vels[i] = c.Speed
	}
	if err := a.SetVelocities(vels); err != nil {
		return err
	}

	ctrl.Start()
	defer a.Close()
	if err := a.EnableAll(); err != nil {
		return err
	}

	fmt.Println(jogTitleStyle.Render("armsim jog"))
	fmt.Println(jogDimStyle.Render(fmt.Sprintf("%g rpm, tick period %s", c.Speed, ctrl.TickPeriod())))
	fmt.Println()

	for {
		j, ok := pickJoint(a)
		if !ok {
			return nil
		}
		if err := jogJoint(a, j); err != nil {
			return err
		}
	}
}

func pickJoint(a *arm.Arm) (arm.Joint, bool) {
	options := make([]huh.Option[string], 0, len(a.Joints())+1)
	for _, j := range a.Joints() {
		s, err := a.Servo(j)
		if err != nil {
			continue
		}
		lim := s.PosLimits()
		label := fmt.Sprintf("%-15s [%g to %g]", j, lim.Min, lim.Max)
		options = append(options, huh.NewOption(label, string(j)))
	}
	options = append(options, huh.NewOption("quit", ""))

	var pick string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Pick a joint").
				Options(options...).
				Value(&pick),
		),
	)
	if err := form.Run(); err != nil {
		return "", false
	}
	if pick == "" {
		return "", false
	}
	return arm.Joint(pick), true
}

func jogJoint(a *arm.Arm, j arm.Joint) error {
	s, err := a.Servo(j)
	if err != nil {
		return err
	}
	lim := s.PosLimits()

	for {
		cur, err := s.Position()
		if err != nil {
			return err
		}

		var input string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title(fmt.Sprintf("%s at %.1f", j, cur)).
					Description(fmt.Sprintf("Target in [%g, %g], empty to go back", lim.Min, lim.Max)).
					Value(&input),
			),
		)
		if err := form.Run(); err != nil {
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			return nil
		}

		target, err := strconv.ParseFloat(input, 64)
		if err != nil {
			fmt.Println(jogErrStyle.Render("not a number: " + input))
			continue
		}
		if err := s.SetPosition(target); err != nil {
			fmt.Println(jogErrStyle.Render(err.Error()))
			continue
		}

		final := waitSettle(s, target, 5*time.Second)
		fmt.Println(jogDimStyle.Render(fmt.Sprintf("%s -> %.1f", j, final)))
	}
}

// waitSettle polls until the joint is within half a unit of the target or
// the timeout passes, returning the last reading.
func waitSettle(s *arm.Servo, target float64, timeout time.Duration) float64 {
	deadline := time.Now().Add(timeout)
	last, _ := s.Position()
	for time.Now().Before(deadline) {
		p, err := s.Position()
		if err != nil {
			return last
		}
		last = p
		if math.Abs(p-target) < 0.5 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	return last
}
