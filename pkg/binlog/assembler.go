package binlog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-mysql-org/go-mysql/replication"
	"github.com/sirupsen/logrus"
)

// qualifiedTable is a table-id's resolved db.table name, valid only for
// the lifetime of the transaction that recorded it.
type qualifiedTable struct {
	DB    string
	Table string
}

// openTransaction tracks the state of one in-progress transaction: its
// GTID, the table-id map scoped to it, its pending (not yet emitted)
// records, and the position/timestamp of the most recently observed
// event, whether or not that event produced a record.
type openTransaction struct {
	gtid      GTID
	tableMap  map[uint64]qualifiedTable
	pending   []ChangeRecord
	position  uint32
	timestamp time.Time
}

// Assembler is the transaction state machine of the package: it consumes
// one binlog event at a time via OnEvent, assembles whole transactions,
// and emits each one as a single batch to a Producer once its commit is
// observed.
//
// An Assembler is not safe for concurrent OnEvent calls: the upstream
// replication client delivers events on one callback path, and the
// Assembler is written to require no locking of its own state for that
// reason. Metrics and the table-info cache it reads through may still be
// shared across goroutines.
type Assembler struct {
	producer  Producer
	tableInfo TableInfoProvider
	log       *logrus.Entry
	metrics   Metrics
	onFailure FailureHandler

	currFileName string
	txn          *openTransaction
}

// NewAssembler constructs an Assembler. Unless overridden by opts, it logs
// through logrus's standard logger, reports to a no-op metrics sink, and
// uses a failure handler that does nothing.
func NewAssembler(producer Producer, tableInfo TableInfoProvider, opts ...Option) *Assembler {
	a := &Assembler{
		producer:  producer,
		tableInfo: tableInfo,
		log:       logrus.NewEntry(logrus.StandardLogger()),
		metrics:   noopMetrics{},
		onFailure: func(Batch, error) {},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Option configures an Assembler at construction time.
type Option func(*Assembler)

// WithLogger overrides the assembler's logger.
func WithLogger(log *logrus.Entry) Option { return func(a *Assembler) { a.log = log } }

// WithMetrics overrides the assembler's metrics sink.
func WithMetrics(m Metrics) Option { return func(a *Assembler) { a.metrics = m } }

// WithFailureHandler registers the callback invoked when the producer
// reports a batch send failure. The design intent is that this callback
// closes the producer and rewinds to the last durable checkpoint; the
// Assembler itself takes no recovery action beyond calling it.
func WithFailureHandler(h FailureHandler) Option { return func(a *Assembler) { a.onFailure = h } }

// SetCurrentFile seeds the binlog file name the assembler believes it is
// reading from. Callers set this once, from the replication client's
// starting position, before the first event arrives; thereafter only
// Rotate events update it.
func (a *Assembler) SetCurrentFile(name string) { a.currFileName = name }

// InTransaction reports whether a transaction is currently open.
func (a *Assembler) InTransaction() bool { return a.txn != nil }

// OnEvent is the single callback the binlog client delivers raw events
// through. It never suspends: Producer.Send is asynchronous and OnEvent
// returns once the send has been initiated, not once it has been
// acknowledged.
//
// A non-nil return is either a fatal classifier/event mismatch
// (UnknownOpcodeError), which should be treated as a crash-worthy bug, not
// a recoverable condition, or an error from the TableInfoProvider while
// fetching a row event's column metadata.
func (a *Assembler) OnEvent(ctx context.Context, ev *replication.BinlogEvent) error {
	if a.txn != nil {
		a.txn.position = ev.Header.LogPos
		a.txn.timestamp = time.Unix(int64(ev.Header.Timestamp), 0).UTC()
	}

	category := Classify(ev)
	a.metrics.EventClassified(category)

	switch category {
	case CategoryRotate:
		rotate := ev.Event.(*replication.RotateEvent)
		a.currFileName = string(rotate.NextLogName)
	case CategoryIgnorable:
		// FormatDescription, Stop, and any other QueryEvent that isn't a
		// transaction-control statement (e.g. a DDL statement run outside
		// a transaction) fall here.
	case CategoryTxnStart:
		a.onTxnStart(ev)
	case CategoryTxnEnd:
		a.onTxnEnd(ctx)
	case CategoryRollback:
		a.onRollback()
	case CategoryTableMap:
		a.onTableMap(ev.Event.(*replication.TableMapEvent))
	case CategoryRowMutation:
		return a.onRowMutation(ctx, ev)
	default:
		a.log.WithField("event_type", ev.Header.EventType).Warn("binlog: unknown event type, skipping")
	}
	return nil
}

func (a *Assembler) onTxnStart(ev *replication.BinlogEvent) {
	gtidEvent, isGTID := ev.Event.(*replication.GTIDEvent)

	if a.txn == nil {
		a.txn = &openTransaction{
			gtid:      zeroGTID,
			tableMap:  make(map[uint64]qualifiedTable),
			timestamp: time.Unix(int64(ev.Header.Timestamp), 0).UTC(),
			position:  ev.Header.LogPos,
		}
		if isGTID {
			a.txn.gtid = gtidFromEvent(gtidEvent)
		}
		return
	}

	// Already open: a GTIDEvent always precedes its transaction's BEGIN,
	// so a BEGIN arriving here is a redundant confirmation. A GTIDEvent
	// arriving here (which should not happen under normal replication)
	// only fills in the GTID if the transaction is still waiting on one.
	if isGTID && a.txn.gtid == zeroGTID {
		a.txn.gtid = gtidFromEvent(gtidEvent)
	}
}

func gtidFromEvent(ev *replication.GTIDEvent) GTID {
	return GTID{SourceID: formatSourceID(ev.SID), Sequence: ev.GNO}
}

func (a *Assembler) onTxnEnd(ctx context.Context) {
	if a.txn == nil {
		a.log.Warn("binlog: commit event with no open transaction, ignoring")
		return
	}
	txn := a.txn
	a.txn = nil
	a.metrics.TransactionCommitted()

	if len(txn.pending) == 0 {
		return
	}
	a.metrics.CheckpointLag(time.Since(txn.timestamp))

	checkpoint := Checkpoint{
		SourceID: txn.gtid.SourceID,
		Sequence: txn.gtid.Sequence,
		File:     a.currFileName,
		Position: txn.position,
	}
	batch := Batch{
		Partition:  0,
		Checkpoint: checkpoint.String(),
		Records:    txn.pending,
	}
	a.metrics.BatchSent(len(batch.Records))
	a.producer.Send(ctx, batch, func(err error) {
		if err != nil {
			a.metrics.BatchFailed()
			a.log.WithError(err).WithField("checkpoint", batch.Checkpoint).
				Error("binlog: producer send failed")
			a.onFailure(batch, err)
		}
	})
}

func (a *Assembler) onRollback() {
	if a.txn == nil {
		a.log.Warn("binlog: rollback event with no open transaction, ignoring")
		return
	}
	a.metrics.TransactionRolledBack()
	a.txn = nil
}

func (a *Assembler) onTableMap(ev *replication.TableMapEvent) {
	if a.txn == nil {
		a.log.Debug("binlog: table map event outside a transaction, ignoring")
		return
	}
	a.txn.tableMap[ev.TableID] = qualifiedTable{DB: string(ev.Schema), Table: string(ev.Table)}
}

func (a *Assembler) onRowMutation(ctx context.Context, ev *replication.BinlogEvent) error {
	if a.txn == nil {
		a.log.Warn("binlog: row event with no open transaction, skipping")
		return nil
	}

	rowsEvent := ev.Event.(*replication.RowsEvent)
	opcode, err := rowOpcodeForEventType(ev.Header.EventType)
	if err != nil {
		return err
	}

	table, ok := a.txn.tableMap[rowsEvent.TableID]
	if !ok {
		a.metrics.UnknownTableSkipped()
		a.log.WithError(ErrUnknownTableID).WithField("table_id", rowsEvent.TableID).Error("binlog: skipping row event")
		return nil
	}

	records, err := shapeRows(ctx, a.tableInfo, opcode, a.txn.gtid, a.txn.timestamp, table.DB, table.Table, rowsEvent.Rows)
	if err != nil {
		return fmt.Errorf("binlog: shaping rows for %s.%s: %w", table.DB, table.Table, err)
	}
	a.metrics.RowsShaped(len(records))
	a.txn.pending = append(a.txn.pending, records...)
	return nil
}
