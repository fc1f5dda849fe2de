package knowledge

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fitglue/musclemap/pkg/domain/muscle"
)

// ConsoleElicitor prompts on a terminal. Primary input is asked for again
// until it parses and is non-empty; unparseable secondary input is recorded
// as no secondary groups.
type ConsoleElicitor struct {
	mu      sync.Mutex
	scanner *bufio.Scanner
	out     io.Writer
}

func NewConsoleElicitor(in io.Reader, out io.Writer) *ConsoleElicitor {
	return &ConsoleElicitor{scanner: bufio.NewScanner(in), out: out}
}

func (c *ConsoleElicitor) Elicit(ctx context.Context, exerciseID string, catalog []muscle.Group) (Mapping, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "\nNew exercise detected: %s\n", exerciseID)
	fmt.Fprintln(c.out, "Please select primary muscle groups for this exercise.")
	fmt.Fprintln(c.out, "Enter the numbers corresponding to the muscle groups, separated by commas.")
	fmt.Fprintln(c.out, "Available muscle groups:")
	for i, g := range catalog {
		fmt.Fprintf(c.out, "%d. %s\n", i+1, g)
	}

	var m Mapping
	for {
		if err := ctx.Err(); err != nil {
			return Mapping{}, err
		}
		line, err := c.prompt("Primary muscles (e.g., 1,2,3): ")
		if err != nil {
			return Mapping{}, err
		}
		primary, err := ParseSelection(line, catalog)
		if err != nil || len(primary) == 0 {
			fmt.Fprintln(c.out, "Invalid input. Please enter valid numbers separated by commas.")
			continue
		}
		m.Primary = primary
		break
	}

	fmt.Fprintln(c.out, "\nPlease select secondary muscle groups for this exercise (if any).")
	fmt.Fprintln(c.out, "Leave blank if there are no secondary muscles.")
	line, err := c.prompt("Secondary muscles (e.g., 4,5): ")
	if err != nil {
		return Mapping{}, err
	}
	secondary, err := ParseSelection(line, catalog)
	if err != nil {
		fmt.Fprintln(c.out, "Invalid input. No secondary muscles will be recorded.")
		secondary = nil
	}
	m.Secondary = secondary
	return m, nil
}

func (c *ConsoleElicitor) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read answer: %w", err)
		}
		return "", fmt.Errorf("failed to read answer: %w", io.ErrUnexpectedEOF)
	}
	return c.scanner.Text(), nil
}
