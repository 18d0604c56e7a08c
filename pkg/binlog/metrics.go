package binlog

import "time"

// Metrics receives counts from the assembler as it processes events. A
// process-wide implementation (see internal/metrics) backs these with
// Prometheus collectors; tests and callers that don't care can leave the
// default no-op in place.
type Metrics interface {
	EventClassified(category Category)
	RowsShaped(n int)
	UnknownTableSkipped()
	TransactionCommitted()
	TransactionRolledBack()
	BatchSent(records int)
	BatchFailed()
	// CheckpointLag reports how far behind the most recently committed
	// transaction's own timestamp the assembler was when it emitted that
	// transaction's batch.
	CheckpointLag(lag time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) EventClassified(Category)   {}
func (noopMetrics) RowsShaped(int)              {}
func (noopMetrics) UnknownTableSkipped()        {}
func (noopMetrics) TransactionCommitted()       {}
func (noopMetrics) TransactionRolledBack()      {}
func (noopMetrics) BatchSent(int)               {}
func (noopMetrics) BatchFailed()                {}
func (noopMetrics) CheckpointLag(time.Duration) {}
