package topology

import "fmt"

// Shard is one fixed-capacity partition of the student id key space.
// It owns ids in [StudIDLow, StudIDLow+ShardSize).
type Shard struct {
	StudIDLow int    `json:"Stud_id_low" yaml:"Stud_id_low"`
	ShardID   string `json:"Shard_id" yaml:"Shard_id"`
	ShardSize int    `json:"Shard_size" yaml:"Shard_size"`
}

func NewShard(index int, size int) Shard {
	return Shard{
		StudIDLow: index * size,
		ShardID:   ShardID(index),
		ShardSize: size,
	}
}

// UpperBound is the first id that no longer belongs to the shard.
func (s Shard) UpperBound() int {
	return s.StudIDLow + s.ShardSize
}

func (s Shard) Contains(id int) bool {
	return id >= s.StudIDLow && id < s.UpperBound()
}

type Server struct {
	ID     string
	Shards []string
}

func NewServer(ID string, shards []string) *Server {
	return &Server{
		ID:     ID,
		Shards: shards,
	}
}

func ShardID(index int) string {
	return fmt.Sprintf("sh%d", index)
}

func ServerID(index int) string {
	return fmt.Sprintf("Server%d", index)
}

// Schema describes the table layout sent to the store on init.
type Schema struct {
	Columns []string `json:"columns" toml:"columns" yaml:"columns"`
	Dtypes  []string `json:"dtypes" toml:"dtypes" yaml:"dtypes"`
}

func DefaultSchema() Schema {
	return Schema{
		Columns: []string{"Stud_id", "Stud_name", "Stud_marks"},
		Dtypes:  []string{"Number", "String", "String"},
	}
}
