package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type ApiConfig struct {
	Address         string        `yaml:"address" env:"API_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"5s"`
	CorsOrigins     []string      `yaml:"cors_origins" env:"CORS_ALLOW_ORIGINS" env-default:"*"`
	ScanConcurrency int           `yaml:"scan_concurrency" env:"SCAN_CONCURRENCY" env-default:"1"`
	CodesRate       int           `yaml:"codes_rate" env:"CODES_RATE" env-default:"50"`
}

type ScanConfig struct {
	ThreadURLs  []string      `yaml:"thread_urls" env:"THREAD_URLS" env-default:"https://www.reddit.com/r/OpenAI/comments/1o8kmg9/sora_2_megathread_part_3/,https://www.reddit.com/r/OpenAI/search.json?q=sora+invite+code&restrict_sr=1&sort=new&t=week,https://www.reddit.com/r/sora/search.json?q=invite+code&restrict_sr=1&sort=new&t=week"`
	SocialURLs  []string      `yaml:"social_urls" env:"SOCIAL_SEARCH_URLS"`
	Interval    time.Duration `yaml:"interval" env:"FETCH_INTERVAL" env-default:"5s"`
	Jitter      time.Duration `yaml:"jitter" env:"FETCH_JITTER" env-default:"5s"`
	SourceDelay time.Duration `yaml:"source_delay" env:"SOURCE_DELAY" env-default:"500ms"`
	MaxCodes    int           `yaml:"max_codes" env:"MAX_CODES" env-default:"200"`
}

type ProxyConfig struct {
	Token      string        `yaml:"token" env:"SCRAPER_API_TOKEN"`
	ScraperURL string        `yaml:"scraper_url" env:"SCRAPER_API_URL" env-default:"http://api.scraperapi.com"`
	Relays     []string      `yaml:"relays" env:"FETCH_RELAYS" env-default:"https://api.allorigins.win/raw?url={url},https://thingproxy.freeboard.io/fetch/{raw},https://corsproxy.io/?{url}"`
	Timeout    time.Duration `yaml:"timeout" env:"FETCH_TIMEOUT" env-default:"20s"`
}

type BrokerConfig struct {
	Address string `yaml:"address" env:"BROKER_ADDRESS"`
	Subject string `yaml:"subject" env:"BROKER_SUBJECT" env-default:"codes.discovered"`
}

type Config struct {
	LogLevel string       `yaml:"log_level" env:"LOG_LEVEL" env-default:"DEBUG"`
	Api      ApiConfig    `yaml:"api_server"`
	Scan     ScanConfig   `yaml:"scan"`
	Proxy    ProxyConfig  `yaml:"proxy"`
	Broker   BrokerConfig `yaml:"broker"`
}

func MustLoad(configPath string, cfg *Config) {
	if err := cleanenv.ReadConfig(configPath, cfg); err != nil {
		log.Fatalf("cannot read config %q: %s", configPath, err)
	}
}
