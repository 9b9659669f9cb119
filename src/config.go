package wsprcodex

/*------------------------------------------------------------------
 *
 * Purpose:	Read the optional wsprcodex.yaml configuration file.
 *
 * Description:	Everything has a default and command line options
 *		override the file, so no file at all is fine.
 *
 *		log_level: info
 *		timestamp_format: "%Y-%m-%d %H:%M:%S"
 *		mqtt:
 *		  broker: tcp://localhost:1883
 *		  topic_prefix: wsprcodex
 *		server:
 *		  listen: ":8073"
 *		  dns_sd: true
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         byte   `yaml:"qos"`
}

type ServerConfig struct {
	Listen    string `yaml:"listen"`
	DNSSD     bool   `yaml:"dns_sd"`
	DNSSDName string `yaml:"dns_sd_name"`
}

type Config struct {
	LogLevel        string       `yaml:"log_level"`
	TimestampFormat string       `yaml:"timestamp_format"`
	MQTT            MQTTConfig   `yaml:"mqtt"`
	Server          ServerConfig `yaml:"server"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "warn",
		MQTT: MQTTConfig{ //nolint:exhaustruct
			TopicPrefix: "wsprcodex",
		},
		Server: ServerConfig{ //nolint:exhaustruct
			Listen: ":8073",
		},
	}
}

// Searched in order when no file is named.
func configSearchLocations() []string {
	var locations = []string{"wsprcodex.yaml"}

	var home, err = os.UserConfigDir()
	if err == nil {
		locations = append(locations, filepath.Join(home, "wsprcodex", "wsprcodex.yaml"))
	}

	return append(locations, "/etc/wsprcodex/wsprcodex.yaml")
}

/*------------------------------------------------------------------
 *
 * Name:	LoadConfig
 *
 * Inputs:	path	- File to read.  Empty means try the search
 *			  locations and use defaults if none exist.
 *
 * Returns:	Defaults overlaid with whatever the file sets, and the
 *		name of the file read ("" if none).
 *
 * Errors:	A named file that can't be read, or any file that
 *		isn't valid YAML.
 *
 *------------------------------------------------------------------*/

func LoadConfig(path string) (Config, string, error) {
	var cfg = DefaultConfig()

	if path != "" {
		var err = readConfigFile(path, &cfg)

		return cfg, path, err
	}

	for _, location := range configSearchLocations() {
		var err = readConfigFile(location, &cfg)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		return cfg, location, err
	}

	return cfg, "", nil
}

func readConfigFile(path string, cfg *Config) error {
	var data, readErr = os.ReadFile(path)
	if readErr != nil {
		return readErr
	}

	var unmarshalErr = yaml.Unmarshal(data, cfg)
	if unmarshalErr != nil {
		return fmt.Errorf("config file %s: %w", path, unmarshalErr)
	}

	return nil
}
