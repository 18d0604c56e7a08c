// Package kafkaout adapts binlog.Producer to a real Kafka producer backed
// by github.com/twmb/franz-go/pkg/kgo.
package kafkaout

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/twmb/cdcstream/pkg/binlog"
)

// Producer implements binlog.Producer over a *kgo.Client. Each
// ChangeRecord in a batch becomes one kgo.Record; the batch's
// all-or-nothing contract is implemented by joining every record's
// individual produce promise and reporting the first error, if any, once
// all of them have resolved.
type Producer struct {
	cl    *kgo.Client
	topic string
}

// New wraps cl, producing every batch to topic.
func New(cl *kgo.Client, topic string) *Producer {
	return &Producer{cl: cl, topic: topic}
}

// Send implements binlog.Producer. It returns immediately; callback runs
// once every record in the batch has been acknowledged (or failed) by the
// client's internal produce path, which may be on a different goroutine.
func (p *Producer) Send(ctx context.Context, batch binlog.Batch, callback func(error)) {
	if len(batch.Records) == 0 {
		callback(nil)
		return
	}

	records := make([]*kgo.Record, len(batch.Records))
	for i, rec := range batch.Records {
		r, err := toKgoRecord(p.topic, batch.Partition, batch.Checkpoint, rec)
		if err != nil {
			callback(fmt.Errorf("kafkaout: encoding record %d: %w", i, err))
			return
		}
		records[i] = r
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	wg.Add(len(records))
	for _, r := range records {
		p.cl.Produce(ctx, r, func(_ *kgo.Record, err error) {
			defer wg.Done()
			if err == nil {
				return
			}
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		})
	}

	go func() {
		wg.Wait()
		callback(firstErr)
	}()
}

func toKgoRecord(topic string, partition int32, checkpoint string, rec binlog.ChangeRecord) (*kgo.Record, error) {
	key, err := json.Marshal(rec.Key)
	if err != nil {
		return nil, fmt.Errorf("marshaling key: %w", err)
	}
	value, err := json.Marshal(rec.Value)
	if err != nil {
		return nil, fmt.Errorf("marshaling value: %w", err)
	}

	return &kgo.Record{
		Topic:     topic,
		Partition: partition,
		Key:       key,
		Value:     value,
		Headers: []kgo.RecordHeader{
			{Key: "opcode", Value: []byte(rec.Opcode)},
			{Key: "gtid", Value: []byte(rec.GTID)},
			{Key: "db", Value: []byte(rec.DB)},
			{Key: "table", Value: []byte(rec.Table)},
			{Key: "checkpoint", Value: []byte(checkpoint)},
		},
	}, nil
}
