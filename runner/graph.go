package runner

import (
	"fmt"
	"strconv"

	"github.com/awalterschulze/gographviz"
	"github.com/tryfix/sourceformat/api"
)

// SplitGraph renders a split response as a dot graph, one node per shard.
func SplitGraph(sourceName string, res *api.SplitResponse) (string, error) {
	parent := `split`
	g := gographviz.NewGraph()
	if err := g.SetName(parent); err != nil {
		return ``, err
	}
	if err := g.SetDir(true); err != nil {
		return ``, err
	}

	if err := g.AddNode(parent, `source`, map[string]string{
		`shape`:     `box`,
		`style`:     `filled`,
		`fillcolor`: `deepskyblue1`,
		`label`:     strconv.Quote(sourceName),
	}); err != nil {
		return ``, err
	}

	for i, shard := range res.Shards {
		node := fmt.Sprintf(`shard_%d`, i)
		label := fmt.Sprintf(`shard %d`, i)
		if shard.Source != nil && shard.Source.Metadata != nil && shard.Source.Metadata.EstimatedSizeBytes != nil {
			label = fmt.Sprintf(`shard %d\n%d bytes`, i, *shard.Source.Metadata.EstimatedSizeBytes)
		}

		if err := g.AddNode(parent, node, map[string]string{
			`shape`: `box`,
			`label`: fmt.Sprintf(`"%s"`, label),
		}); err != nil {
			return ``, err
		}

		if err := g.AddEdge(`source`, node, true, map[string]string{
			`label`: fmt.Sprintf(`"%s"`, shard.DerivationMode),
		}); err != nil {
			return ``, err
		}
	}

	return g.String(), nil
}
