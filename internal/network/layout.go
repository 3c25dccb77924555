// Package network computes the radial connection graph shown on the network page:
// node placement around the user, the pan/zoom viewport and the entrance schedule.
package network

import (
	"math"
	"time"

	"github.com/jonathan/career-network/internal/types"
)

const (
	// DefaultContainerSize is the side length of the square drawing area.
	DefaultContainerSize = 1000.0
	// DefaultMaxNodes caps how many connections are drawn.
	DefaultMaxNodes = 50
	// DefaultStagger is the delay between successive node entrances.
	DefaultStagger = 50 * time.Millisecond
)

const (
	scatterSpread = 40.0
	angleSpread   = math.Pi / 3
	centerRadius  = 50.0
	// spiralPeriod is the rank count for one full turn; later ranks wrap
	// around on the outer rings.
	spiralPeriod = 25.0
	nodeRadius    = 35.0

	innerRingMax   = 5
	middleRingMax  = 15
	innerRingBase  = 150.0
	middleRingBase = 200.0
	outerRingBase  = 300.0
	innerRingStep  = 10.0
	middleRingStep = 10.0
	outerRingStep  = 8.0
)

// Options configures Compute.
type Options struct {
	ContainerSize float64
	MaxNodes      int
	Stagger       time.Duration
}

// DefaultOptions returns the layout used by the network page.
func DefaultOptions() Options {
	return Options{
		ContainerSize: DefaultContainerSize,
		MaxNodes:      DefaultMaxNodes,
		Stagger:       DefaultStagger,
	}
}

func (o Options) normalized() Options {
	if o.ContainerSize <= 0 {
		o.ContainerSize = DefaultContainerSize
	}
	if o.MaxNodes <= 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	if o.Stagger < 0 {
		o.Stagger = 0
	}
	return o
}

// Point is a position in container coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a placed connection.
type Node struct {
	Name     string  `json:"name"`
	Company  string  `json:"company,omitempty"`
	Headline string  `json:"headline,omitempty"`
	Rank     int     `json:"rank"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Angle    float64 `json:"angle"`
	Distance float64 `json:"distance"`
	Radius   float64 `json:"radius"`
	// DelayMS is when the node starts its entrance, relative to the first node.
	DelayMS int64 `json:"delay_ms"`
}

// Edge connects the center to a node, by node index.
type Edge struct {
	From Point `json:"from"`
	To   Point `json:"to"`
	Node int   `json:"node"`
}

// Layout is the full drawing.
type Layout struct {
	Size         float64 `json:"size"`
	Center       Point   `json:"center"`
	CenterRadius float64 `json:"center_radius"`
	Nodes        []Node  `json:"nodes"`
	Edges        []Edge  `json:"edges"`
	// Truncated reports how many input people were dropped by MaxNodes.
	Truncated int `json:"truncated,omitempty"`
}

// SeededRandom is the deterministic pseudo-random source used for scatter:
// the fractional part of sin(seed)*10000, in [0, 1).
func SeededRandom(seed float64) float64 {
	x := math.Sin(seed) * 10000
	return x - math.Floor(x)
}

// RingDistance is the base distance from the center for a rank; better ranks sit closer.
func RingDistance(rank int) float64 {
	switch {
	case rank <= innerRingMax:
		return innerRingBase + float64(rank-1)*innerRingStep
	case rank <= middleRingMax:
		return middleRingBase + float64(rank-innerRingMax-1)*middleRingStep
	default:
		return outerRingBase + float64(rank-middleRingMax-1)*outerRingStep
	}
}

// Compute places people around the center. The result depends only on the
// input, so the browser can re-request it and get identical positions.
func Compute(people []types.PersonData, opts Options) *Layout {
	opts = opts.normalized()

	truncated := 0
	if len(people) > opts.MaxNodes {
		truncated = len(people) - opts.MaxNodes
		people = people[:opts.MaxNodes]
	}

	center := Point{X: opts.ContainerSize / 2, Y: opts.ContainerSize / 2}
	layout := &Layout{
		Size:         opts.ContainerSize,
		Center:       center,
		CenterRadius: centerRadius,
		Nodes:        make([]Node, 0, len(people)),
		Edges:        make([]Edge, 0, len(people)),
		Truncated:    truncated,
	}

	for i, person := range people {
		rank := person.EffectiveRank(i)

		distance := RingDistance(rank) + (SeededRandom(float64(rank))-0.5)*scatterSpread
		baseAngle := (float64(rank) / spiralPeriod) * 2 * math.Pi
		angle := baseAngle + (SeededRandom(float64(rank*2))-0.5)*angleSpread

		node := Node{
			Name:     person.Name,
			Company:  person.CurrentCompany,
			Headline: person.Headline,
			Rank:     rank,
			X:        center.X + distance*math.Cos(angle),
			Y:        center.Y + distance*math.Sin(angle),
			Angle:    angle,
			Distance: distance,
			Radius:   nodeRadius,
			DelayMS:  int64(i) * opts.Stagger.Milliseconds(),
		}
		layout.Nodes = append(layout.Nodes, node)
		layout.Edges = append(layout.Edges, Edge{
			From: center,
			To:   Point{X: node.X, Y: node.Y},
			Node: i,
		})
	}

	return layout
}

// Bounds returns the top-left and bottom-right corners enclosing every node
// (including node radius) and the center disc.
func (l *Layout) Bounds() (Point, Point) {
	minP := Point{X: l.Center.X - l.CenterRadius, Y: l.Center.Y - l.CenterRadius}
	maxP := Point{X: l.Center.X + l.CenterRadius, Y: l.Center.Y + l.CenterRadius}
	for _, n := range l.Nodes {
		minP.X = math.Min(minP.X, n.X-n.Radius)
		minP.Y = math.Min(minP.Y, n.Y-n.Radius)
		maxP.X = math.Max(maxP.X, n.X+n.Radius)
		maxP.Y = math.Max(maxP.Y, n.Y+n.Radius)
	}
	return minP, maxP
}

// FindByRank returns the node with the given rank.
func (l *Layout) FindByRank(rank int) (Node, bool) {
	for _, n := range l.Nodes {
		if n.Rank == rank {
			return n, true
		}
	}
	return Node{}, false
}
