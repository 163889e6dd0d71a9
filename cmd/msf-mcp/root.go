package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	msfmcp "github.com/wagiedev/msf-mcp-go"
	"github.com/wagiedev/msf-mcp-go/internal/config"
)

const (
	configKey     = "config"
	envFileKey    = "env_file"
	rpcURLKey     = "rpc.url"
	rpcPassKey    = "rpc.password"
	rpcSSLKey     = "rpc.ssl"
	payloadDirKey = "payload.dir"
	transportKey  = "transport"
	hostKey       = "host"
	portKey       = "port"
	logLevelKey   = "log.level"
	logFormatKey  = "log.format"
)

// binding ties a viper key to its environment variable.
type binding struct {
	key string
	env string
}

var envBindings = []binding{
	{rpcURLKey, "MSF_RPC_URL"},
	{rpcPassKey, "MSF_RPC_PASSWORD"},
	{rpcSSLKey, "MSF_RPC_SSL"},
	{payloadDirKey, "PAYLOAD_SAVE_DIR"},
	{transportKey, "MSF_MCP_TRANSPORT"},
	{hostKey, "MSF_MCP_HOST"},
	{portKey, "MSF_MCP_PORT"},
	{logLevelKey, "MSF_MCP_LOG_LEVEL"},
	{logFormatKey, "MSF_MCP_LOG_FORMAT"},
}

func newRootCommand() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "msf-mcp",
		Short: "Serve a Metasploit RPC daemon as MCP tools",
		Long: `msf-mcp connects to msfrpcd and exposes exploit, payload and session
operations as Model Context Protocol tools over stdio, streamable HTTP or SSE.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(v)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, v)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.String("env-file", ".env", "dotenv file read when present")
	flags.String("rpc-url", config.DefaultRPCURL, "msfrpcd base URL")
	flags.String("rpc-password", "", "msfrpcd password (required)")
	flags.Bool("rpc-ssl", false, "skip TLS certificate verification for msfrpcd")
	flags.String("payload-dir", config.DefaultPayloadDir, "directory generated payloads are written to")
	flags.String("transport", string(config.TransportStdio), "MCP transport: stdio, http or sse")
	flags.String("host", "127.0.0.1", "listen host for the http and sse transports")
	flags.Int("port", 8080, "listen port for the http and sse transports")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")

	mustBindFlag(v, configKey, "MSF_MCP_CONFIG", flags.Lookup("config"))
	mustBindFlag(v, envFileKey, "", flags.Lookup("env-file"))
	mustBindFlag(v, rpcURLKey, "MSF_RPC_URL", flags.Lookup("rpc-url"))
	mustBindFlag(v, rpcPassKey, "MSF_RPC_PASSWORD", flags.Lookup("rpc-password"))
	mustBindFlag(v, rpcSSLKey, "MSF_RPC_SSL", flags.Lookup("rpc-ssl"))
	mustBindFlag(v, payloadDirKey, "PAYLOAD_SAVE_DIR", flags.Lookup("payload-dir"))
	mustBindFlag(v, transportKey, "MSF_MCP_TRANSPORT", flags.Lookup("transport"))
	mustBindFlag(v, hostKey, "MSF_MCP_HOST", flags.Lookup("host"))
	mustBindFlag(v, portKey, "MSF_MCP_PORT", flags.Lookup("port"))
	mustBindFlag(v, logLevelKey, "MSF_MCP_LOG_LEVEL", flags.Lookup("log-level"))
	mustBindFlag(v, logFormatKey, "MSF_MCP_LOG_FORMAT", flags.Lookup("log-format"))

	rootCmd.AddCommand(newToolsCommand(v))
	rootCmd.AddCommand(newCheckCommand(v))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func mustBindFlag(v *viper.Viper, key, env string, flag *pflag.Flag) {
	if flag == nil {
		panic(fmt.Sprintf("flag for key %s not found", key))
	}

	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}

	if env != "" {
		if err := v.BindEnv(key, env); err != nil {
			panic(err)
		}
	}
}

// loadConfig reads the optional config file and dotenv file. Values from
// the dotenv file rank below real environment variables and the config file.
func loadConfig(v *viper.Viper) error {
	if path := strings.TrimSpace(v.GetString(configKey)); path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %q: %w", path, err)
		}
	}

	path := strings.TrimSpace(v.GetString(envFileKey))
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	dotenv := viper.New()
	dotenv.SetConfigFile(path)
	dotenv.SetConfigType("env")

	if err := dotenv.ReadInConfig(); err != nil {
		return fmt.Errorf("read env file %q: %w", path, err)
	}

	for _, b := range envBindings {
		if dotenv.IsSet(b.env) {
			v.SetDefault(b.key, dotenv.Get(b.env))
		}
	}

	return nil
}

func newLogger(cmd *cobra.Command, v *viper.Viper) (*slog.Logger, error) {
	return msfmcp.NewLogger(cmd.ErrOrStderr(), v.GetString(logLevelKey), v.GetString(logFormatKey))
}

// newServer builds a server from the resolved configuration.
func newServer(v *viper.Viper, log *slog.Logger) (*msfmcp.Server, error) {
	return msfmcp.NewServer(
		msfmcp.WithLogger(log),
		msfmcp.WithRPCURL(v.GetString(rpcURLKey)),
		msfmcp.WithPassword(v.GetString(rpcPassKey)),
		msfmcp.WithInsecureSkipVerify(v.GetBool(rpcSSLKey)),
		msfmcp.WithPayloadDir(v.GetString(payloadDirKey)),
	)
}

func runServe(cmd *cobra.Command, v *viper.Viper) error {
	mode := config.NormalizeTransportMode(strings.ToLower(strings.TrimSpace(v.GetString(transportKey))))
	if !mode.Valid() {
		return fmt.Errorf("invalid transport %q: want stdio, http or sse", mode)
	}

	log, err := newLogger(cmd, v)
	if err != nil {
		return err
	}

	server, err := newServer(v, log)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(v.GetString(hostKey), strconv.Itoa(v.GetInt(portKey)))

	return server.Run(cmd.Context(), mode, addr)
}

func newToolsCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the MCP tool catalogue as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(cmd, v)
			if err != nil {
				return err
			}

			server, err := newServer(v, log)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(server.Tools())
		},
	}
}

func newCheckCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Log in to msfrpcd and report whether the credential works",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(cmd, v)
			if err != nil {
				return err
			}

			server, err := newServer(v, log)
			if err != nil {
				return err
			}

			if err := server.Ping(cmd.Context()); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "authenticated to %s\n", v.GetString(rpcURLKey))

			return err
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", msfmcp.ServerName, msfmcp.Version)

			return err
		},
	}
}
