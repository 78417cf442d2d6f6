package placement

import (
	"github.com/pg-sharding/shardbench/pkg/models/topology"
)

// DefaultShardSize is the number of records every shard may hold.
const DefaultShardSize = 4096

// Placement is the shard layout and the replica assignment of one topology.
type Placement struct {
	Shards  []topology.Shard
	Servers map[string][]string

	serverCount int
}

// InitRequest is the body of the store's init call.
type InitRequest struct {
	N       int                 `json:"N" yaml:"N"`
	Schema  topology.Schema     `json:"schema" yaml:"schema"`
	Shards  []topology.Shard    `json:"shards" yaml:"shards"`
	Servers map[string][]string `json:"servers" yaml:"servers"`
}

// Plan lays out cfg.Shards contiguous shards of shardSize records and spreads
// cfg.Replicas replicas of each over the servers round-robin. The server
// cursor is shared by all shards, so with Replicas > Servers a server can get
// the same shard more than once.
func Plan(cfg topology.Configuration, shardSize int) (*Placement, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if shardSize <= 0 {
		shardSize = DefaultShardSize
	}

	shards := make([]topology.Shard, 0, cfg.Shards)
	for i := 0; i < cfg.Shards; i++ {
		shards = append(shards, topology.NewShard(i, shardSize))
	}

	servers := make(map[string][]string, cfg.Servers)
	for i := 0; i < cfg.Servers; i++ {
		servers[topology.ServerID(i)] = []string{}
	}

	cursor := 0
	for _, sh := range shards {
		for r := 0; r < cfg.Replicas; r++ {
			id := topology.ServerID(cursor % cfg.Servers)
			servers[id] = append(servers[id], sh.ShardID)
			cursor++
		}
	}

	return &Placement{
		Shards:      shards,
		Servers:     servers,
		serverCount: cfg.Servers,
	}, nil
}

// ServerIDs returns server ids in index order.
func (p *Placement) ServerIDs() []string {
	ids := make([]string, 0, p.serverCount)
	for i := 0; i < p.serverCount; i++ {
		ids = append(ids, topology.ServerID(i))
	}
	return ids
}

// ServerList returns the assignment as an ordered list of servers.
func (p *Placement) ServerList() []*topology.Server {
	list := make([]*topology.Server, 0, p.serverCount)
	for _, id := range p.ServerIDs() {
		list = append(list, topology.NewServer(id, p.Servers[id]))
	}
	return list
}

// ReplicaCount is the number of replica slots holding shardID.
func (p *Placement) ReplicaCount(shardID string) int {
	n := 0
	for _, hosted := range p.Servers {
		for _, id := range hosted {
			if id == shardID {
				n++
			}
		}
	}
	return n
}

// DistinctServers is the number of different servers holding shardID.
func (p *Placement) DistinctServers(shardID string) int {
	n := 0
	for _, hosted := range p.Servers {
		for _, id := range hosted {
			if id == shardID {
				n++
				break
			}
		}
	}
	return n
}

// TotalSlots is the number of replica slots over all servers.
func (p *Placement) TotalSlots() int {
	n := 0
	for _, hosted := range p.Servers {
		n += len(hosted)
	}
	return n
}

func (p *Placement) InitRequest(schema topology.Schema) *InitRequest {
	return &InitRequest{
		N:       p.serverCount,
		Schema:  schema,
		Shards:  p.Shards,
		Servers: p.Servers,
	}
}
