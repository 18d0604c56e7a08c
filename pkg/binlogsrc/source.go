// Package binlogsrc adapts github.com/go-mysql-org/go-mysql/replication's
// BinlogSyncer to the single on_event callback contract that
// pkg/binlog.Assembler expects from a binlog client.
package binlogsrc

import (
	"context"
	"fmt"

	"github.com/go-mysql-org/go-mysql/mysql"
	"github.com/go-mysql-org/go-mysql/replication"

	"github.com/twmb/cdcstream/pkg/binlog"
)

// Config holds the connection and replication identity needed to start
// streaming. ServerID must be unique among the source's replicas.
type Config struct {
	ServerID uint32
	Host     string
	Port     uint16
	User     string
	Password string
}

// Source streams binlog events from a MySQL source and hands each one to
// an Assembler in order, on the single goroutine that calls RunFromPosition
// or RunFromGTID.
type Source struct {
	syncer *replication.BinlogSyncer
}

// New constructs a Source; it does not connect until RunFromPosition (or
// RunFromGTID) is called.
func New(cfg Config) *Source {
	return &Source{
		syncer: replication.NewBinlogSyncer(replication.BinlogSyncerConfig{
			ServerID: cfg.ServerID,
			Flavor:   "mysql",
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
		}),
	}
}

// Close releases the underlying connection.
func (s *Source) Close() { s.syncer.Close() }

// RunFromGTID starts replication at gset and feeds every event to
// assembler until ctx is canceled or the stream errors. The assembler's
// current-file tracking is seeded from startFile before the first event
// arrives; thereafter only Rotate events update it.
func (s *Source) RunFromGTID(ctx context.Context, gset mysql.GTIDSet, startFile string, assembler *binlog.Assembler) error {
	streamer, err := s.syncer.StartSyncGTID(gset)
	if err != nil {
		return fmt.Errorf("binlogsrc: starting sync from GTID set: %w", err)
	}
	assembler.SetCurrentFile(startFile)
	return s.pump(ctx, streamer, assembler)
}

// RunFromPosition starts replication at the given file/offset.
func (s *Source) RunFromPosition(ctx context.Context, pos mysql.Position, assembler *binlog.Assembler) error {
	streamer, err := s.syncer.StartSync(pos)
	if err != nil {
		return fmt.Errorf("binlogsrc: starting sync from position: %w", err)
	}
	assembler.SetCurrentFile(pos.Name)
	return s.pump(ctx, streamer, assembler)
}

func (s *Source) pump(ctx context.Context, streamer *replication.BinlogStreamer, assembler *binlog.Assembler) error {
	for {
		ev, err := streamer.GetEvent(ctx)
		if err != nil {
			// A canceled context implicitly discards any open
			// transaction, equivalent to a rollback; there is nothing
			// further for this loop to do.
			return fmt.Errorf("binlogsrc: reading binlog event: %w", err)
		}
		if err := assembler.OnEvent(ctx, ev); err != nil {
			return fmt.Errorf("binlogsrc: assembling event: %w", err)
		}
	}
}
