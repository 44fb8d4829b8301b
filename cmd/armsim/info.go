package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/armsim/pkg/arm"
	"github.com/gwillem/armsim/pkg/servo"
)

type InfoCommand struct {
	Model string `long:"model" description:"Arm model JSON (defaults to the built-in ReactorX-200)"`
}

func (c *InfoCommand) Execute(args []string) error {
	model, err := loadModel(c.Model)
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render("armsim info"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━"))
	fmt.Println()
	fmt.Printf("Model: %s, integration step %gs\n", model.Name, model.Timestep)
	fmt.Printf("Tick period %s to %s over %.2f to %.2f rad/s\n",
		servo.DefaultPeriodMin, servo.DefaultPeriodMax, servo.DefaultVelMin, servo.DefaultVelMax)
	fmt.Println()

	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)

	styleFunc := func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return tableHeaderStyle
		}
		if col == 0 {
			return nameStyle
		}
		return cellStyle
	}

	rows := make([][]string, 0, len(model.Actuators))
	for _, a := range model.Actuators {
		rows = append(rows, []string{
			a.Name,
			fmt.Sprintf("%g %g %g", a.Axis[0], a.Axis[1], a.Axis[2]),
			fmt.Sprintf("%.3f to %.3f", a.CtrlRange[0], a.CtrlRange[1]),
			fmt.Sprintf("%g to %g", a.ForceRange[0], a.ForceRange[1]),
			fmt.Sprintf("%g", a.Gain),
			fmt.Sprintf("%g", a.Damping),
			fmt.Sprintf("%g", a.Home),
		})
	}

	actuators := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Actuator", "Axis", "Ctrl range", "Force range", "Gain", "Damping", "Home").
		Rows(rows...).
		StyleFunc(styleFunc)
	fmt.Println(actuators.Render())
	fmt.Println()

	specs := arm.ReactorX200Specs()
	jointRows := make([][]string, 0, len(specs))
	for _, j := range arm.AllJoints() {
		spec, ok := specs[j]
		if !ok {
			continue
		}
		jointRows = append(jointRows, []string{
			string(j),
			fmt.Sprintf("%d", spec.ID),
			fmt.Sprintf("%g to %g", spec.PosLimits.Min, spec.PosLimits.Max),
			fmt.Sprintf("%g to %g", spec.VelLimits.Min, spec.VelLimits.Max),
			fmt.Sprintf("%g", spec.Velocity),
		})
	}

	joints := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Joint", "Servo", "Positions", "Speed range (rpm)", "Default (rpm)").
		Rows(jointRows...).
		StyleFunc(styleFunc)
	fmt.Println(joints.Render())

	return nil
}
