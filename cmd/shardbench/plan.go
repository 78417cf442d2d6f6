package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/pg-sharding/shardbench/pkg/config"
	"github.com/pg-sharding/shardbench/pkg/models/bencherror"
	"github.com/pg-sharding/shardbench/pkg/models/topology"
	"github.com/pg-sharding/shardbench/pkg/placement"
)

var (
	planTopology string
	planFormat   string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "print the placement and init payload of one topology",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.BenchConfig()

		c, err := topology.ParseTriple(planTopology)
		if err != nil {
			return err
		}
		p, err := placement.Plan(c, cfg.ShardSize)
		if err != nil {
			return err
		}
		req := p.InitRequest(cfg.Schema)

		var out []byte
		switch planFormat {
		case "json":
			out, err = json.MarshalIndent(req, "", "  ")
			out = append(out, '\n')
		case "yaml":
			out, err = yaml.Marshal(req)
		case "table":
			return writePlanTable(cmd.OutOrStdout(), p)
		default:
			return bencherror.Newf(bencherror.BENCH_CONFIG, "unknown plan format %q", planFormat)
		}
		if err != nil {
			return err
		}

		_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
		return err
	},
}

func writePlanTable(out io.Writer, p *placement.Placement) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SHARD\tSTUD_ID_LOW\tSTUD_ID_HIGH")
	for _, sh := range p.Shards {
		fmt.Fprintf(w, "%s\t%d\t%d\n", sh.ShardID, sh.StudIDLow, sh.UpperBound())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "SERVER\tSHARDS")
	for _, srv := range p.ServerList() {
		fmt.Fprintf(w, "%s\t%s\n", srv.ID, strings.Join(srv.Shards, ","))
	}
	return w.Flush()
}

func init() {
	planCmd.Flags().StringVarP(&planTopology, "topology", "t", "", "topology as shards,servers,replicas")
	planCmd.Flags().StringVarP(&planFormat, "format", "f", "json", "output format: json, yaml or table")
	_ = planCmd.MarkFlagRequired("topology")
}
