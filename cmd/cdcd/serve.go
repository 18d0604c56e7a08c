package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/twmb/cdcstream/internal/metrics"
	"github.com/twmb/cdcstream/pkg/binlog"
	"github.com/twmb/cdcstream/pkg/binlogsrc"
	"github.com/twmb/cdcstream/pkg/kafkaout"
	"github.com/twmb/cdcstream/pkg/schema"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream binlog transactions from a MySQL source to Kafka",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mysqlCfg := loadMySQLConfig()
	kafkaCfg := loadKafkaConfig()

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/information_schema?parseTime=true",
		mysqlCfg.User, mysqlCfg.Password, mysqlCfg.Host, mysqlCfg.Port)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("cdcd: opening mysql connection: %w", err)
	}
	defer db.Close()

	tableInfo := schema.NewCache(schema.NewMySQLProvider(db))

	cl, err := kgo.NewClient(
		kgo.SeedBrokers(kafkaCfg.Brokers...),
		kgo.DefaultProduceTopic(kafkaCfg.Topic),
		kgo.RecordPartitioner(kgo.ManualPartitioner()),
	)
	if err != nil {
		return fmt.Errorf("cdcd: constructing kafka client: %w", err)
	}
	defer cl.Close()
	producer := kafkaout.New(cl, kafkaCfg.Topic)

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	assemblerMetrics := metrics.NewAssembler(reg, v.GetString("metrics.namespace"))

	entry := log.WithField("component", "assembler")
	failuresSeen := make(chan error, 1)
	assembler := binlog.NewAssembler(producer, tableInfo,
		binlog.WithLogger(entry),
		binlog.WithMetrics(assemblerMetrics),
		binlog.WithFailureHandler(func(batch binlog.Batch, err error) {
			select {
			case failuresSeen <- err:
			default:
			}
		}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: v.GetString("metrics.listen-addr"), Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("cdcd: metrics server stopped")
		}
	}()
	defer srv.Shutdown(context.Background())

	source := binlogsrc.New(binlogsrc.Config{
		ServerID: mysqlCfg.ServerID,
		Host:     mysqlCfg.Host,
		Port:     mysqlCfg.Port,
		User:     mysqlCfg.User,
		Password: mysqlCfg.Password,
	})
	defer source.Close()

	startFile := v.GetString("mysql.start-file")
	startPos := v.GetUint("mysql.start-position")

	log.WithFields(map[string]interface{}{
		"file": startFile,
		"pos":  startPos,
	}).Info("cdcd: starting binlog stream")

	errCh := make(chan error, 1)
	go func() {
		errCh <- source.RunFromPosition(ctx, mysqlPosition(startFile, uint32(startPos)), assembler)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return fmt.Errorf("cdcd: binlog stream ended: %w", err)
	case err := <-failuresSeen:
		return fmt.Errorf("cdcd: producer reported a batch failure, stopping: %w", err)
	}
}
