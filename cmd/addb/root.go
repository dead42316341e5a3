package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pior/addb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	client *addb.ClusterClient

	rootCmd = &cobra.Command{
		Use:   "addb",
		Short: "Run relational overlay commands on a cluster",
		Long: `addb sends FPWRITE, FPSCAN, METAKEYS and PING to the nodes given with --nodes.

Without --select a command goes to the node owning its first argument.
With --select it runs on every selected node and prints one line per node.

Every flag can be set in the environment with the ADDB_ prefix, for
example ADDB_NODES or ADDB_LOG_LEVEL. .env and .env.local are loaded first.`,
		SilenceUsage:       true,
		PersistentPreRunE:  setupClient,
		PersistentPostRunE: closeClient,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("nodes", "127.0.0.1:6379", "comma separated nodes, each [id@]host:port[/master|/replica]")
	flags.String("select", "", "run on a node selection: all, masters, replicas or a comma separated list of node IDs")
	flags.Duration("timeout", 5*time.Second, "timeout of the whole command")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.Int32("max-size", addb.DefaultMaxSize, "maximum connections per node")
	flags.String("pool", "channel", "connection pool implementation (channel, puddle)")
	flags.Bool("breaker", false, "enable a circuit breaker per node")

	rootCmd.AddCommand(fpwriteCmd, fpscanCmd, metakeysCmd, pingCmd)
}

func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("addb")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func setupClient(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	logger, err := newLogger(viper.GetString("log-level"))
	if err != nil {
		return err
	}

	config, err := clientConfig(logger)
	if err != nil {
		return err
	}

	nodes, err := parseNodes(viper.GetString("nodes"))
	if err != nil {
		return err
	}

	client, err = addb.NewClusterClient(nodes, config)
	return err
}

func closeClient(*cobra.Command, []string) error {
	if client != nil {
		client.Close()
	}
	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}

func clientConfig(logger *slog.Logger) (addb.Config, error) {
	config := addb.Config{
		MaxSize: viper.GetInt32("max-size"),
		Logger:  logger,
	}

	switch pool := viper.GetString("pool"); pool {
	case "", "channel":
		config.NewPool = addb.NewChannelPool
	case "puddle":
		config.NewPool = addb.NewPuddlePool
	default:
		return addb.Config{}, fmt.Errorf("unknown pool %q", pool)
	}

	if viper.GetBool("breaker") {
		config.NewCircuitBreaker = addb.NewCircuitBreakerConfig(1, 10*time.Second, 5*time.Second)
	}

	return config, nil
}

// parseNodes parses a comma separated list of [id@]host:port[/role].
func parseNodes(s string) ([]addb.Node, error) {
	var nodes []addb.Node
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		node := addb.Node{Role: addb.RoleMaster}
		if addr, role, ok := strings.Cut(entry, "/"); ok {
			switch addb.NodeRole(role) {
			case addb.RoleMaster, addb.RoleReplica:
				node.Role = addb.NodeRole(role)
			default:
				return nil, fmt.Errorf("node %q: unknown role %q", entry, role)
			}
			entry = addr
		}
		if id, addr, ok := strings.Cut(entry, "@"); ok {
			node.ID, node.Addr = id, addr
		} else {
			node.ID, node.Addr = entry, entry
		}
		if node.ID == "" || node.Addr == "" {
			return nil, fmt.Errorf("node %q: empty id or address", entry)
		}

		nodes = append(nodes, node)
	}

	if len(nodes) == 0 {
		return nil, errors.New("no nodes given")
	}
	return nodes, nil
}

// parseSelection returns the predicate of a --select value.
func parseSelection(s string) (addb.NodePredicate, error) {
	switch s {
	case "all":
		return addb.AllNodes, nil
	case "masters":
		return addb.Masters, nil
	case "replicas":
		return addb.Replicas, nil
	}

	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("invalid selection %q", s)
	}
	return addb.ByID(ids...), nil
}
