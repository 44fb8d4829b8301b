package bus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"
)

// Found is one serial port with responding servos.
type Found struct {
	Port   string
	Servos []feetech.FoundServo
}

// Ports lists candidate serial ports, skipping macOS Bluetooth devices.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list ports: %w", err)
	}

	usable := make([]string, 0, len(ports))
	for _, port := range ports {
		if strings.Contains(port, "Bluetooth") {
			continue
		}
		usable = append(usable, port)
	}
	return usable, nil
}

// Find probes every candidate port for servos with IDs in [firstID,
// lastID]. Ports that fail to open or answer are skipped.
func Find(ctx context.Context, firstID, lastID int) ([]Found, error) {
	ports, err := Ports()
	if err != nil {
		return nil, err
	}

	var found []Found
	for _, port := range ports {
		hw, err := feetech.NewBus(feetech.BusConfig{
			Port:     port,
			BaudRate: 1_000_000,
			Protocol: feetech.ProtocolSTS,
			Timeout:  100 * time.Millisecond,
		})
		if err != nil {
			continue
		}

		scanCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		servos, err := hw.Scan(scanCtx, firstID, lastID)
		cancel()
		hw.Close()

		if err != nil || len(servos) == 0 {
			continue
		}
		found = append(found, Found{Port: port, Servos: servos})
	}
	return found, nil
}
