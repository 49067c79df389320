package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	MetricsPort  string
	PostgresDSN  string
	RedisURL     string
	KafkaBrokers []string

	GovernanceTopic    string
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	BootstrapAdmin     string

	Governance Governance
}

// Governance holds the genesis parameters of the treasury governor. They
// seed an empty ledger; a persisted ledger keeps its own parameters.
type Governance struct {
	MinProposalStake uint64
	BlockInterval    time.Duration
	Genesis          time.Time
	CategoryLimits   map[string]uint64
	Proposals        map[string]ProposalParams
}

type ProposalParams struct {
	QuorumBps    uint32
	ApprovalBps  uint32
	Timelock     time.Duration
	VotingWindow uint64
}

// governanceFile mirrors the YAML schema of GOVERNANCE_CONFIG_FILE.
type governanceFile struct {
	MinProposalStake uint64            `yaml:"min_proposal_stake"`
	BlockInterval    string            `yaml:"block_interval"`
	Genesis          string            `yaml:"genesis"`
	CategoryLimits   map[string]uint64 `yaml:"category_limits"`
	Proposals        map[string]struct {
		QuorumBps    uint32 `yaml:"quorum_bps"`
		ApprovalBps  uint32 `yaml:"approval_bps"`
		Timelock     string `yaml:"timelock"`
		VotingWindow uint64 `yaml:"voting_window"`
	} `yaml:"proposals"`
}

// Load resolves configuration in priority order: defaults, governance file, env.
func Load() (Config, error) {
	cfg := Config{
		ServiceName:        envString("SERVICE_NAME", "commonwealth"),
		HTTPPort:           envString("HTTP_PORT", "8080"),
		MetricsPort:        envString("WORKER_METRICS_PORT", "9091"),
		PostgresDSN:        os.Getenv("POSTGRES_DSN"),
		RedisURL:           strings.TrimSpace(os.Getenv("REDIS_URL")),
		KafkaBrokers:       envList("KAFKA_BROKERS"),
		GovernanceTopic:    envString("GOVERNANCE_TOPIC", "governance.ledger.events"),
		OutboxPollInterval: envDuration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		OutboxBatchSize:    envInt("OUTBOX_BATCH_SIZE", 100),
		BootstrapAdmin:     strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN")),
		Governance: Governance{
			BlockInterval: 12 * time.Second,
			Genesis:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	if path := strings.TrimSpace(os.Getenv("GOVERNANCE_CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read governance config file: %w", err)
		}
		governance, err := ParseGovernance(raw, cfg.Governance)
		if err != nil {
			return Config{}, err
		}
		cfg.Governance = governance
	}

	cfg.Governance.BlockInterval = envDuration("BLOCK_INTERVAL", cfg.Governance.BlockInterval)
	if cfg.OutboxBatchSize <= 0 {
		cfg.OutboxBatchSize = 100
	}
	return cfg, nil
}

// ParseGovernance overlays a YAML governance file on base. Unset fields keep
// the base value.
func ParseGovernance(raw []byte, base Governance) (Governance, error) {
	var f governanceFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Governance{}, fmt.Errorf("parse governance config file: %w", err)
	}

	out := base
	if f.MinProposalStake > 0 {
		out.MinProposalStake = f.MinProposalStake
	}
	if f.BlockInterval != "" {
		interval, err := time.ParseDuration(f.BlockInterval)
		if err != nil || interval <= 0 {
			return Governance{}, fmt.Errorf("parse block_interval %q: invalid duration", f.BlockInterval)
		}
		out.BlockInterval = interval
	}
	if f.Genesis != "" {
		genesis, err := time.Parse(time.RFC3339, f.Genesis)
		if err != nil {
			return Governance{}, fmt.Errorf("parse genesis: %w", err)
		}
		out.Genesis = genesis.UTC()
	}
	if len(f.CategoryLimits) > 0 {
		out.CategoryLimits = make(map[string]uint64, len(f.CategoryLimits))
		for category, limit := range f.CategoryLimits {
			out.CategoryLimits[strings.TrimSpace(category)] = limit
		}
	}
	if len(f.Proposals) > 0 {
		out.Proposals = make(map[string]ProposalParams, len(f.Proposals))
		for proposalType, params := range f.Proposals {
			var timelock time.Duration
			if params.Timelock != "" {
				parsed, err := time.ParseDuration(params.Timelock)
				if err != nil {
					return Governance{}, fmt.Errorf("parse %s timelock: %w", proposalType, err)
				}
				timelock = parsed
			}
			out.Proposals[strings.TrimSpace(proposalType)] = ProposalParams{
				QuorumBps:    params.QuorumBps,
				ApprovalBps:  params.ApprovalBps,
				Timelock:     timelock,
				VotingWindow: params.VotingWindow,
			}
		}
	}
	return out, nil
}

func envString(name string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func envList(name string) []string {
	var items []string
	for _, value := range strings.Split(os.Getenv(name), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
