package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var v *viper.Viper

// initConfig wires up the viper configuration singleton. Precedence (high
// to low): CDCD_-prefixed environment variables, cdcd.yaml found by walking
// up from the working directory, then the documented defaults. No
// command-line flags are bound to these settings.
func initConfig() error {
	v = viper.New()
	v.SetConfigType("yaml")

	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			path := filepath.Join(dir, "cdcd.yaml")
			if _, err := os.Stat(path); err == nil {
				v.SetConfigFile(path)
				break
			}
		}
	}

	v.SetEnvPrefix("CDCD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("mysql.host", "127.0.0.1")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("mysql.user", "")
	v.SetDefault("mysql.password", "")
	v.SetDefault("mysql.server-id", uint32(1))
	v.SetDefault("mysql.start-file", "")
	v.SetDefault("mysql.start-position", uint32(4))
	v.SetDefault("kafka.brokers", []string{"127.0.0.1:9092"})
	v.SetDefault("kafka.topic", "cdc-changes")
	v.SetDefault("metrics.namespace", "cdcstream")
	v.SetDefault("metrics.listen-addr", ":9308")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("cdcd: reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}
	return nil
}

type mysqlConfig struct {
	Host     string
	Port     uint16
	User     string
	Password string
	ServerID uint32
}

func loadMySQLConfig() mysqlConfig {
	return mysqlConfig{
		Host:     v.GetString("mysql.host"),
		Port:     uint16(v.GetUint("mysql.port")),
		User:     v.GetString("mysql.user"),
		Password: v.GetString("mysql.password"),
		ServerID: uint32(v.GetUint("mysql.server-id")),
	}
}

type kafkaConfig struct {
	Brokers []string
	Topic   string
}

func loadKafkaConfig() kafkaConfig {
	return kafkaConfig{
		Brokers: v.GetStringSlice("kafka.brokers"),
		Topic:   v.GetString("kafka.topic"),
	}
}
