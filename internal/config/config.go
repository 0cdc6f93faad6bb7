package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("station.id", "ACARSHUB")
	viper.SetDefault("station.latitude", 0.0)
	viper.SetDefault("station.longitude", 0.0)

	viper.SetDefault("listen.acars.enabled", true)
	viper.SetDefault("listen.acars.port", 5550)
	viper.SetDefault("listen.vdlm2.enabled", true)
	viper.SetDefault("listen.vdlm2.port", 5555)
	viper.SetDefault("listen.hfdl.enabled", false)
	viper.SetDefault("listen.hfdl.port", 5556)
	viper.SetDefault("listen.imsl.enabled", false)
	viper.SetDefault("listen.imsl.port", 5557)
	viper.SetDefault("listen.irdm.enabled", false)
	viper.SetDefault("listen.irdm.port", 5558)

	viper.SetDefault("alerts.terms", []string{})
	viper.SetDefault("alerts.ignore", []string{})

	viper.SetDefault("groups.max", 50)
	viper.SetDefault("groups.cullInterval", "30s")

	viper.SetDefault("adsb.enabled", false)
	viper.SetDefault("adsb.url", "http://tar1090/data/aircraft.json")
	viper.SetDefault("adsb.interval", "5s")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "acarshub")
	viper.SetDefault("db.sqlitePath", "./acarshub.db")
	viper.SetDefault("db.dumpInterval", "5m")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "acarshub-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetConfigName("acarshub.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// AlertTerms returns the configured alert and ignore term lists.
func AlertTerms() core.Terms {
	return core.Terms{
		Terms:  viper.GetStringSlice("alerts.terms"),
		Ignore: viper.GetStringSlice("alerts.ignore"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat64 returns a float config value.
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}
