package drawer

import (
	"io"
	"os"
	"sort"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/dvpublish/pkg/publish/measure"
)

// DOTDrawer is a drawer that creates a Graphviz DOT file with the states of a run.
type DOTDrawer struct {
	graph       graph.Graph[string, string]
	dotFileName string
}

// NewDOTDrawer creates a new DOT drawer writing to dotFileName.
func NewDOTDrawer(dotFileName string) *DOTDrawer {
	return &DOTDrawer{
		dotFileName: dotFileName,
		graph:       graph.New(graph.StringHash, graph.Directed()),
	}
}

// AddState adds a state to the graph.
func (d *DOTDrawer) AddState(name string) error {
	err := d.graph.AddVertex(name, graph.VertexAttribute("shape", "box"))
	if err != nil {
		return errors.Wrapf(err, "unable to add state %s", name)
	}

	return nil
}

// AddLink adds a transition between two states. Adding an existing transition only updates its label.
func (d *DOTDrawer) AddLink(fromState, toState, label string) error {
	options := []func(*graph.EdgeProperties){}
	if label != "" {
		options = append(options, graph.EdgeAttribute("label", label))
	}

	err := d.graph.AddEdge(fromState, toState, options...)
	if errors.Is(err, graph.ErrEdgeAlreadyExists) {
		err = d.graph.UpdateEdge(fromState, toState, options...)
	}

	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", fromState, toState)
	}

	return nil
}

// SetTotalTime sets the total time of the run on a state.
func (d *DOTDrawer) SetTotalTime(name string, total time.Duration) error {
	_, properties, err := d.graph.VertexWithProperties(name)
	if err != nil {
		return errors.Wrapf(err, "unable to get %s vertex properties", name)
	}

	properties.Attributes["xlabel"] = "total: " + total.String()

	return nil
}

const maxRGB = 240

// AddMeasure colours the visited states from blue to red by duration, outlines failed states in red
// and dashes the states the run never reached.
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	var minValue, maxValue time.Duration

	first := true

	for name, mt := range msr.AllMetrics() {
		if !mt.Visited() || !d.hasState(name) {
			continue
		}

		elapsed := mt.Duration()
		if first || elapsed < minValue {
			minValue = elapsed
		}

		if first || elapsed > maxValue {
			maxValue = elapsed
		}

		first = false
	}

	for name, mt := range msr.AllMetrics() {
		if !d.hasState(name) {
			continue
		}

		_, properties, err := d.graph.VertexWithProperties(name)
		if err != nil {
			return errors.Wrap(err, "unable to get vertex properties")
		}

		if !mt.Visited() {
			properties.Attributes["style"] = "dashed"
			properties.Attributes["color"] = "grey"

			continue
		}

		fillColor, err := gradient(mt.Duration(), minValue, maxValue)
		if err != nil {
			return err
		}

		properties.Attributes["style"] = "filled"
		properties.Attributes["fillcolor"] = fillColor
		properties.Attributes["fontcolor"] = "white"

		if _, ok := properties.Attributes["xlabel"]; !ok {
			properties.Attributes["xlabel"] = mt.Duration().String()
		}

		if mt.Err() != nil {
			properties.Attributes["color"] = "red"
			properties.Attributes["penwidth"] = "3"
		}
	}

	return nil
}

func (d *DOTDrawer) hasState(name string) bool {
	_, err := d.graph.Vertex(name)

	return err == nil
}

func gradient(curr, minValue, maxValue time.Duration) (string, error) {
	fraction := 1.0
	if maxValue > minValue {
		fraction = float64(curr-minValue) / float64(maxValue-minValue)
	}

	red := maxRGB * fraction
	blue := maxRGB - red

	rgb, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return rgb.ToHEX().String(), nil
}

// Render writes the graph in DOT format. States and transitions are sorted by name.
func (d *DOTDrawer) Render(wrt io.Writer) error {
	desc, err := generateDOT(d.graph)
	if err != nil {
		return errors.Wrap(err, "unable to generate DOT description")
	}

	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return errors.Wrap(err, "unable to parse template")
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

// Draw creates the DOT file.
func (d *DOTDrawer) Draw() error {
	file, err := os.Create(d.dotFileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.dotFileName)
	}

	err = d.Render(file)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = errors.Wrapf(closeErr, "unable to close file %s", d.dotFileName)
	}

	return err
}

//nolint:lll //this is a template
const dotTemplate = `strict digraph {
	rankdir="LR";
{{- range .Vertices}}
	"{{.Name}}" [ {{if .XLabel}}label=<{{.Name}} <BR /> <FONT POINT-SIZE="10">{{.XLabel}}</FONT>>, {{end}}{{range $k, $v := .Attributes}}{{$k}}="{{$v}}", {{end}}];
{{- end}}
{{- range .Edges}}
	"{{.Source}}" -> "{{.Target}}" [ {{range $k, $v := .Attributes}}{{$k}}="{{$v}}", {{end}}];
{{- end}}
}
`

type description struct {
	Vertices []vertex
	Edges    []edge
}

type vertex struct {
	Attributes map[string]string
	Name       string
	XLabel     string
}

type edge struct {
	Attributes map[string]string
	Source     string
	Target     string
}

func generateDOT(gra graph.Graph[string, string]) (description, error) {
	desc := description{}

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	names := make([]string, 0, len(adjacencyMap))
	for name := range adjacencyMap {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		_, properties, err := gra.VertexWithProperties(name)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		attributes := make(map[string]string, len(properties.Attributes))
		for k, v := range properties.Attributes {
			if k != "xlabel" {
				attributes[k] = v
			}
		}

		desc.Vertices = append(desc.Vertices, vertex{
			Name:       name,
			XLabel:     properties.Attributes["xlabel"],
			Attributes: attributes,
		})

		targets := make([]string, 0, len(adjacencyMap[name]))
		for target := range adjacencyMap[name] {
			targets = append(targets, target)
		}

		sort.Strings(targets)

		for _, target := range targets {
			desc.Edges = append(desc.Edges, edge{
				Source:     name,
				Target:     target,
				Attributes: adjacencyMap[name][target].Properties.Attributes,
			})
		}
	}

	return desc, nil
}

var _ Drawer = (*DOTDrawer)(nil)
