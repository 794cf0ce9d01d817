package mcts

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"text/template"

	"github.com/awalterschulze/gographviz"
	"github.com/deepmcts/deepmcts/game"
)

type dotNode[S game.State, A comparable] struct {
	*Node[S, A]
	ID     int
	IsRoot bool
}

func (n dotNode[S, A]) Player() string { return fmt.Sprintf("%v", n.state.ToMove()) }

func (n dotNode[S, A]) Move() string {
	if n.IsRoot {
		return "root"
	}
	return html.EscapeString(fmt.Sprintf("%v", n.action))
}

func (n dotNode[S, A]) Q() string { return fmt.Sprintf("%.3f", n.MeanValue()) }

func (n dotNode[S, A]) State() string {
	repr := html.EscapeString(fmt.Sprintf("%v", n.state))
	return strings.Replace(strings.TrimRight(repr, "\n"), "\n", "<BR />", -1)
}

// ToDot returns the live tree, from the root down, in graphviz's dot format.
func (t *MCTS[S, A]) ToDot() string {
	g := gographviz.NewGraph()
	if err := g.SetName("G"); err != nil {
		panic(err)
	}
	g.SetDir(true)

	var buf bytes.Buffer
	var id int
	queue := []dotNode[S, A]{{Node: t.root, ID: id, IsRoot: true}}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		buf.Reset()
		if err := tmpl.Execute(&buf, n); err != nil {
			panic(err)
		}
		attrs := map[string]string{
			"fontname": "Monaco",
			"shape":    "none",
			"label":    buf.String(),
		}
		g.AddNode("G", fmt.Sprintf("%d", n.ID), attrs)

		for _, kid := range n.children {
			if !kid.IsValid() {
				continue
			}
			id++
			queue = append(queue, dotNode[S, A]{Node: kid, ID: id})
			g.AddEdge(fmt.Sprintf("%d", n.ID), fmt.Sprintf("%d", id), true, nil)
		}
	}
	return g.String()
}

const tmplRaw = `<
<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="0">
<TR><TD>Node ID</TD><TD>{{.ID}}</TD></TR>
<TR><TD>Move</TD><TD>{{.Move}}</TD></TR>
<TR><TD>To Move</TD><TD>{{.Player}}</TD></TR>
<TR><TD>Visits</TD><TD>{{.Visits}}</TD></TR>
<TR><TD>Q</TD><TD>{{.Q}}</TD></TR>
<TR><TD>Prior</TD><TD>{{.Prior}}</TD></TR>
<TR><TD>State</TD><TD>{{.State}}</TD></TR>
</TABLE>
>
`

var tmpl *template.Template

func init() {
	tmpl = template.Must(template.New("name").Parse(tmplRaw))
}
