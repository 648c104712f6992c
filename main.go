package main

import (
	"flag"
	"math"

	"github.com/lintang-b-s/bk-mincut-partitioner/pkg/logger"
	"github.com/lintang-b-s/bk-mincut-partitioner/pkg/osmparser"
	"github.com/lintang-b-s/bk-mincut-partitioner/pkg/partitioner"
)

var (
	mapFile = flag.String("f", "./data/solo_jogja.osm.pbf", "openstreetmap pbf file path")
	name    = flag.String("name", "solo_jogja", "output file name suffix")
)

func main() {
	flag.Parse()

	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	graph, err := osmparser.NewOSMParser().Parse(*mapFile, log)
	if err != nil {
		log.Sugar().Fatalf("parsing %s: %v", *mapFile, err)
	}

	// best parameter for customizable route planning by delling et al.
	u := []int{
		int(math.Pow(2, 8)),
		int(math.Pow(2, 11)),
		int(math.Pow(2, 14)),
		int(math.Pow(2, 17)),
		int(math.Pow(2, 20)),
	}
	mlp, err := partitioner.NewMultilevelPartitioner(u, len(u), graph, log)
	if err != nil {
		log.Sugar().Fatalf("building partitioner: %v", err)
	}
	if err := mlp.RunMultilevelPartitioning(*name); err != nil {
		log.Sugar().Fatalf("partitioning: %v", err)
	}
}
