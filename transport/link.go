package transport

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// Link is the byte stream a transport runs over. Reads are expected to return
// quickly with whatever is available (0, nil when nothing is) rather than
// block; OpenSerial configures the port accordingly, and tests substitute an
// in-memory implementation.
type Link interface {
	io.ReadWriteCloser

	// ResetInput discards any bytes buffered on the receive side.
	ResetInput() error
}

// Standard baud rates of the two firmware builds.
const (
	BaudNative    = 1_000_000
	BaudPABotBase = 115_200
)

// readPollTimeout keeps Link.Read from blocking longer than one tick.
const readPollTimeout = time.Millisecond

// OpenSerial opens the named serial device as a transport Link. DTR and RTS
// are deasserted so boards that map them to reset lines are not rebooted by
// the host opening the port.
func OpenSerial(device string, baud int) (Link, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	if err := port.SetDTR(false); err != nil {
		port.Close()
		return nil, fmt.Errorf("clear DTR on %s: %w", device, err)
	}
	if err := port.SetRTS(false); err != nil {
		port.Close()
		return nil, fmt.Errorf("clear RTS on %s: %w", device, err)
	}
	if err := port.SetReadTimeout(readPollTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", device, err)
	}
	return &serialLink{port: port}, nil
}

type serialLink struct {
	port serial.Port
}

func (l *serialLink) Read(p []byte) (int, error)  { return l.port.Read(p) }
func (l *serialLink) Write(p []byte) (int, error) { return l.port.Write(p) }
func (l *serialLink) Close() error                { return l.port.Close() }
func (l *serialLink) ResetInput() error           { return l.port.ResetInputBuffer() }
