// Package pipeline runs the chunk clustering stages end to end: sample a cluster, span
// it with a tree, classify the connecting cells, place blocks and encode the region.
package pipeline

import (
	"fmt"

	"github.com/DmitriyVTitov/size"
	"github.com/dustin/go-humanize"

	"github.com/janelia-flyem/chunkgrid/chunkgrid"
	"github.com/janelia-flyem/chunkgrid/placement"
	"github.com/janelia-flyem/chunkgrid/sampler"
	"github.com/janelia-flyem/chunkgrid/schematic"
	"github.com/janelia-flyem/chunkgrid/spantree"
	"github.com/janelia-flyem/chunkgrid/topology"
)

// Result holds the output of every stage of a run.
type Result struct {
	Cluster   *sampler.Cluster
	Tree      *spantree.Tree
	Topology  *topology.Result
	Placement *placement.Result
	Region    *schematic.EncodedRegion
	Schematic *schematic.Schematic
}

// Run validates the configuration and executes every stage in memory.  Nothing is
// written; see WriteOutputs.
func Run(cfg Config) (*Result, error) {
	return RunWithHasher(cfg, nil)
}

// RunWithHasher is like Run but draws cell hashes from the given hasher.  A nil hasher
// uses the live oracle for the configured hash space.
func RunWithHasher(cfg Config, hasher sampler.Hasher) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scfg := cfg.SamplerConfig()
	if hasher == nil {
		oracle, err := sampler.NewOracle(scfg.HashSpace)
		if err != nil {
			return nil, err
		}
		hasher = oracle
	}

	timedLog := chunkgrid.NewTimeLog()
	s, err := sampler.New(scfg, hasher)
	if err != nil {
		return nil, err
	}
	cluster, err := s.Run()
	if err != nil {
		return nil, err
	}
	timedLog.Infof("Sampled %s cells over %d columns from %s", humanize.Comma(int64(len(cluster.Cells))),
		cluster.Columns, cluster.Offset)

	timedLog = chunkgrid.NewTimeLog()
	tree, err := spantree.Build(cluster.Points(), spantree.Options{Workers: cfg.Tree.Workers})
	if err != nil {
		return nil, err
	}
	timedLog.Infof("Built spanning tree with %d edges, total weight %s", len(tree.Edges),
		humanize.Comma(tree.TotalWeight()))

	topo := topology.Classify(tree)
	chunkgrid.Infof("Classified %d anchors and %d connectors, %d anomalies\n",
		topo.Cells.Count(topology.Anchor), topo.Cells.Count(topology.Connector), len(topo.Anomalies))

	timedLog = chunkgrid.NewTimeLog()
	placed, err := placement.Place(topo.Cells, tree.Nodes, cfg.PlacementOptions())
	if err != nil {
		return nil, err
	}
	region, err := placed.Region.Encode(cfg.Schematic.Packing)
	if err != nil {
		return nil, err
	}
	timedLog.Infof("Placed %s blocks in region %q of size %s with %d palette entries",
		humanize.Comma(int64(placed.Region.NumBlocks())), region.Name, region.Size, region.Palette.Len())
	if chunkgrid.LogMode() <= chunkgrid.DebugMode {
		chunkgrid.Debugf("Encoded region %q holds %d words, %s in memory\n", region.Name,
			len(region.States.Words), humanize.Bytes(uint64(size.Of(region))))
	}

	doc := schematic.New(cfg.Schematic.Name)
	doc.Author = cfg.Schematic.Author
	doc.Description = cfg.Schematic.Description
	if err := doc.AddRegion(region); err != nil {
		return nil, fmt.Errorf("unable to assemble schematic: %w", err)
	}
	return &Result{
		Cluster:   cluster,
		Tree:      tree,
		Topology:  topo,
		Placement: placed,
		Region:    region,
		Schematic: doc,
	}, nil
}
