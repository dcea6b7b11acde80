// Package visualization renders intersection snapshots for external tools
package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anggasct/trafficsim"
)

// Source is anything that can report the lights and queues of an intersection.
// *trafficsim.Simulation satisfies it.
type Source interface {
	LightStates() map[trafficsim.Direction]trafficsim.LightState
	QueueCounts() map[trafficsim.Direction]int
}

// DOTGenerator generates Graphviz DOT format snapshots of an intersection
type DOTGenerator struct {
	source  Source
	options DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowRotation   bool
	ShowLightCycle bool
	RankDirection  string // "TB", "LR", "BT", "RL"
	NodeShape      string
	DisplayCap     int // queue counts above this are shown as "cap+", 0 shows exact counts
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowRotation:   true,
		ShowLightCycle: false,
		RankDirection:  "LR",
		NodeShape:      "circle",
		DisplayCap:     20,
	}
}

// DOTOptionsFor returns the default options with the display cap of config
func DOTOptionsFor(config trafficsim.Config) DOTOptions {
	opts := DefaultDOTOptions()
	opts.DisplayCap = config.DisplayCap
	return opts
}

// configured is a source that also reports its configuration
type configured interface {
	Config() trafficsim.Config
}

// NewDOTGenerator creates a new DOT generator for the given source.
// Without options, a source that reports its configuration supplies the display cap.
func NewDOTGenerator(source Source, options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	} else if c, ok := source.(configured); ok {
		opts = DOTOptionsFor(c.Config())
	}

	return &DOTGenerator{
		source:  source,
		options: opts,
	}
}

// QueueLabel formats a queue count, capping it at displayCap
func QueueLabel(count, displayCap int) string {
	if displayCap > 0 && count > displayCap {
		return fmt.Sprintf("%d+", displayCap)
	}
	return fmt.Sprintf("%d", count)
}

// LightColor returns the fill colour used for a light state
func LightColor(state trafficsim.LightState) string {
	switch state {
	case trafficsim.Green:
		return "green"
	case trafficsim.Yellow:
		return "yellow"
	default:
		return "darkred"
	}
}

// Generate creates a DOT representation of the current snapshot
func (g *DOTGenerator) Generate() (string, error) {
	if g.source == nil {
		return "", fmt.Errorf("no snapshot source")
	}

	var dot strings.Builder

	dot.WriteString("digraph Intersection {\n")
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString(fmt.Sprintf("  node [shape=%s style=filled fontcolor=white];\n", g.options.NodeShape))
	dot.WriteString("  edge [fontsize=10];\n\n")

	lights := g.source.LightStates()
	queues := g.source.QueueCounts()

	dot.WriteString("  // Directions\n")
	for _, d := range trafficsim.Rotation {
		state := lights[d]
		dot.WriteString(fmt.Sprintf("  \"%s\" [fillcolor=%s label=\"%s\\n%s\\nqueue %s\"];\n",
			d, LightColor(state), d, state, QueueLabel(queues[d], g.options.DisplayCap)))
	}

	if g.options.ShowRotation {
		dot.WriteString("\n  // Rotation\n")
		for i, d := range trafficsim.Rotation {
			next := trafficsim.Rotation[(i+1)%len(trafficsim.Rotation)]
			dot.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\";\n", d, next))
		}
	}

	if g.options.ShowLightCycle {
		dot.WriteString("\n  // Light cycle\n")
		dot.WriteString("  subgraph cluster_cycle {\n")
		dot.WriteString("    label=\"light cycle\";\n")
		for _, s := range []trafficsim.LightState{trafficsim.Red, trafficsim.Green, trafficsim.Yellow} {
			dot.WriteString(fmt.Sprintf("    \"%s\" [shape=box fillcolor=%s fontcolor=black];\n", s, LightColor(s)))
		}
		dot.WriteString("    \"RED\" -> \"GREEN\";\n")
		dot.WriteString("    \"GREEN\" -> \"YELLOW\";\n")
		dot.WriteString("    \"YELLOW\" -> \"RED\";\n")
		dot.WriteString("  }\n")
	}

	dot.WriteString("}\n")

	return dot.String(), nil
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// GenerateSVG renders the snapshot to SVG by calling Graphviz
func (g *DOTGenerator) GenerateSVG() (string, error) {
	dotContent, err := g.Generate()
	if err != nil {
		return "", err
	}

	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute dot command: %w (make sure Graphviz is installed)", err)
	}

	return out.String(), nil
}
