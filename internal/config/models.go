package config

import (
	"strings"
	"time"

	"github.com/mikey/mailgun-routes/internal/core"
	"github.com/mikey/mailgun-routes/internal/domainlist"
)

// ServerConfig represents the configuration for the webhook receiver
type ServerConfig struct {
	ReceiverType  string
	ListenAddress string
	MaxBodySize   int64
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

// QueueConfig represents the configuration for the job queue backend
type QueueConfig struct {
	Type           string
	Name           string
	MemoryCapacity int
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	SQLitePath     string
	MySQLDSN       string
	SQSRegion      string
	SQSQueueURL    string
}

// GetPolicy builds a policy from the current viper settings. It must not run
// concurrently with a config reload; request paths use Policy instead.
func (c *Config) GetPolicy() core.PolicyConfig {
	return core.PolicyConfig{
		SharedSecret:       c.GetString("mailgun.api_key"),
		SpamMode:           core.ParseSpamMode(c.GetString("mailgun.spam_detection")),
		SpamScoreThreshold: c.GetFloat64("mailgun.spam_score"),
		DKIMExclusions:     c.getDomainList("mailgun.dkim_domain_exclusions"),
		SPFExclusions:      c.getDomainList("mailgun.spf_domain_exclusions"),
		BlockedDomains:     c.getDomainList("mailgun.blocked_domains"),
		SPFNeutralPasses:   c.GetBool("mailgun.spf_neutral_passes"),
		LogRejections:      c.GetBool("mailgun.log_rejections"),
	}
}

// Policy implements core.PolicyProvider. It returns the snapshot taken at
// the last load or reload and is safe for concurrent use.
func (c *Config) Policy() core.PolicyConfig {
	return *c.policy.Load()
}

// ReloadPolicy rebuilds the policy snapshot from the viper settings
func (c *Config) ReloadPolicy() {
	policy := c.GetPolicy()
	c.policy.Store(&policy)
}

// GetServer returns the receiver configuration
func (c *Config) GetServer() ServerConfig {
	readTimeout, err := c.GetDuration("server.read_timeout")
	if err != nil {
		readTimeout = 30 * time.Second
	}
	writeTimeout, err := c.GetDuration("server.write_timeout")
	if err != nil {
		writeTimeout = 30 * time.Second
	}
	return ServerConfig{
		ReceiverType:  c.GetString("server.receiver_type"),
		ListenAddress: c.GetString("server.listen_address"),
		MaxBodySize:   c.GetInt64("server.max_body_size"),
		ReadTimeout:   readTimeout,
		WriteTimeout:  writeTimeout,
	}
}

// GetQueue returns the job queue configuration
func (c *Config) GetQueue() QueueConfig {
	return QueueConfig{
		Type:           c.GetString("queue.type"),
		Name:           c.GetString("queue.name"),
		MemoryCapacity: c.GetInt("queue.memory_capacity"),
		RedisAddr:      c.GetString("queue.redis_addr"),
		RedisPassword:  c.GetString("queue.redis_password"),
		RedisDB:        c.GetInt("queue.redis_db"),
		SQLitePath:     c.GetString("queue.sqlite_path"),
		MySQLDSN:       c.GetString("queue.mysql_dsn"),
		SQSRegion:      c.GetString("queue.sqs_region"),
		SQSQueueURL:    c.GetString("queue.sqs_queue_url"),
	}
}

// getDomainList reads a domain list stored either as a pipe-separated
// string ("a.com|b.org") or as a YAML sequence
func (c *Config) getDomainList(key string) domainlist.Set {
	if s, ok := c.v.Get(key).(string); ok {
		return domainlist.Parse(s)
	}
	var domains []string
	for _, entry := range c.GetStringSlice(key) {
		domains = append(domains, strings.Split(entry, domainlist.Separator)...)
	}
	return domainlist.New(domains...)
}
