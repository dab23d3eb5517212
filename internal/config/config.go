package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// maxV3FeeTier is the fee denominator of v3-style pools (100% in
// hundredths of a bip); no valid tier exceeds it.
const maxV3FeeTier = 1_000_000

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL          string
	PrivateKey      string
	Port            string
	RedisAddr       string
	PGDSN           string
	DefaultVenue    uint64
	VenueOverrides  map[string]string
	FeedAddress     string
	FeedHeartbeat   time.Duration
	MaxDeviationBps uint64
	AggregatorURL   string
	SwapDeadline    time.Duration
	V3FeeTier       uint64
	LogLevel        string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SWAPROUTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("default-venue", uint64(1))
	v.SetDefault("feed-heartbeat", time.Hour)
	v.SetDefault("max-deviation-bps", uint64(0))
	v.SetDefault("swap-deadline", 5*time.Minute)
	v.SetDefault("v3-fee-tier", uint64(3000))
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	overrides, err := parseOverrides(getStringSlice(v, "venue-router"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		RPCURL:          v.GetString("rpc-url"),
		PrivateKey:      v.GetString("private-key"),
		Port:            v.GetString("port"),
		RedisAddr:       v.GetString("redis-addr"),
		PGDSN:           v.GetString("pg-dsn"),
		DefaultVenue:    v.GetUint64("default-venue"),
		VenueOverrides:  overrides,
		FeedAddress:     v.GetString("feed-address"),
		FeedHeartbeat:   v.GetDuration("feed-heartbeat"),
		MaxDeviationBps: v.GetUint64("max-deviation-bps"),
		AggregatorURL:   v.GetString("aggregator-url"),
		SwapDeadline:    v.GetDuration("swap-deadline"),
		V3FeeTier:       v.GetUint64("v3-fee-tier"),
		LogLevel:        v.GetString("log-level"),
	}

	if cfg.V3FeeTier > maxV3FeeTier {
		return Config{}, fmt.Errorf("v3-fee-tier %d out of range (max %d)", cfg.V3FeeTier, maxV3FeeTier)
	}

	return cfg, nil
}

// parseOverrides turns "Name=0xaddr" pairs into a venue router override map.
func parseOverrides(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, addr, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid venue-router %q, want Name=0xaddress", pair)
		}
		out[strings.TrimSpace(name)] = strings.TrimSpace(addr)
	}
	return out, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
