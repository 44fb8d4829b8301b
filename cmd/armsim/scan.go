package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gwillem/armsim/pkg/bus"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type ScanCommand struct {
	FirstID int `long:"first-id" default:"1" description:"Lowest servo ID to probe"`
	LastID  int `long:"last-id" default:"6" description:"Highest servo ID to probe"`
}

func (c *ScanCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("armsim scan"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━"))
	fmt.Println()

	ports, err := bus.Ports()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		return nil
	}

	fmt.Printf("Probing %d port(s) for servos with IDs %d-%d...\n\n", len(ports), c.FirstID, c.LastID)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	found, err := bus.Find(ctx, c.FirstID, c.LastID)
	if err != nil {
		return err
	}

	if len(found) == 0 {
		fmt.Println("No servo buses found.")
		fmt.Println("Make sure the arm is connected and powered on.")
		return nil
	}

	for _, f := range found {
		fmt.Println(successStyle.Render(fmt.Sprintf("%s: %d servo(s)", f.Port, len(f.Servos))))
		for _, s := range f.Servos {
			fmt.Printf("  id %d  %s\n", s.ID, s.Model)
		}
	}
	fmt.Println()
	fmt.Println("Mirror the demo onto an arm with: " + headerStyle.Render("armsim demo --port <port>"))

	return nil
}
