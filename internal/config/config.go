package config

import (
	"fmt"
	"log"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/shopspring/decimal"
)

type Config struct {
	API struct {
		Port int `env:"PORT" envDefault:"8081"`
	}
	App struct {
		LogLevel       string        `env:"LOG_LEVEL" envDefault:"INFO"`
		MetricsPort    int           `env:"METRICS_PORT" envDefault:"9010"`
		SentryDSN      string        `env:"SENTRY_DSN"`
		DraftDB        string        `env:"DRAFT_DB"`
		DraftID        string        `env:"DRAFT_ID" envDefault:"default"`
		QueryCacheSize int           `env:"QUERY_CACHE_SIZE" envDefault:"1024"`
		QueryCacheTTL  time.Duration `env:"QUERY_CACHE_TTL" envDefault:"30s"`
	}
	Chain struct {
		ChainID       string          `env:"CHAIN_ID" envDefault:"secret-4"`
		AddressPrefix string          `env:"ADDRESS_PREFIX" envDefault:"secret"`
		LCD           string          `env:"LCD_URL" envDefault:"https://lcd.mainnet.secretsaturn.net"`
		GasDenom      string          `env:"GAS_DENOM" envDefault:"uscrt"`
		GasLimit      uint64          `env:"GAS_LIMIT" envDefault:"150000"`
		GasPrice      decimal.Decimal `env:"GAS_PRICE" envDefault:"0.1"`
		Explorers     Explorers       `env:"EXPLORERS"`
	}
	Signer struct {
		URL   string `env:"SIGNER_URL"`
		Token string `env:"SIGNER_TOKEN"`
	}
}

// Explorers maps chain ids to explorer transaction URL prefixes, set as "chain=url,chain=url".
type Explorers map[string]string

func parseExplorers(v string) (interface{}, error) {
	explorers := Explorers{}
	for _, pair := range strings.Split(v, ",") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		chainID, prefix, ok := strings.Cut(pair, "=")
		chainID, prefix = strings.TrimSpace(chainID), strings.TrimSpace(prefix)
		if !ok || chainID == "" || prefix == "" {
			return nil, fmt.Errorf("invalid explorer %q, expected chain=url", pair)
		}
		explorers[chainID] = prefix
	}
	return explorers, nil
}

func parse() (Config, error) {
	var c Config
	err := env.ParseWithFuncs(&c, map[reflect.Type]env.ParserFunc{
		reflect.TypeOf(Explorers{}): parseExplorers,
	})
	return c, err
}

func Load() Config {
	c, err := parse()
	if err != nil {
		log.Panicf("[‼️  Config parsing failed] %+v\n", err)
	}
	return c
}
