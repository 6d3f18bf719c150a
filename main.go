package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"drivesync/internal/config"
	"drivesync/internal/fs/drive"
	"drivesync/pkg/logger"
)

var version = "dev"

const envPrefix = "DRIVESYNC"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newApp()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app 各子命令共享的运行时状态
type app struct {
	v        *viper.Viper
	cfg      *config.Config
	logClose io.Closer
}

func newApp() *app {
	return &app{v: viper.New()}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:     "drivesync",
		Short:   "Mirror a shared cloud folder to a local directory",
		Version: version,

		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default "+config.DefaultPath()+")")
	pf.String("credentials", config.DefaultCredentialsFile, "OAuth client secrets file")
	pf.String("token", config.DefaultTokenFile, "cached OAuth token file")
	pf.String("log-level", config.DefaultLogLevel, "debug, info, warn or error")
	pf.String("log-file", "", "also append logs to this file")

	a.bind("drive.credentials_file", pf.Lookup("credentials"))
	a.bind("drive.token_file", pf.Lookup("token"))
	a.bind("system.log_level", pf.Lookup("log-level"))
	a.bind("system.log_file", pf.Lookup("log-file"))

	root.AddCommand(
		newSyncCmd(a),
		newDownloadCmd(a),
		newShareCmd(a),
		newCronCmd(a),
	)
	return root
}

func (a *app) bind(key string, flag *pflag.Flag) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

// setup 读取配置文件，叠加环境变量与命令行参数，然后初始化日志
func (a *app) setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	for _, key := range config.Keys {
		if !a.v.IsSet(key) {
			continue
		}
		if err := cfg.Set(key, a.v.GetString(key)); err != nil {
			return err
		}
	}
	a.cfg = cfg

	a.logClose, err = logger.Setup(cfg.System.LogLevel, cfg.System.LogFile)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	slog.Debug("drivesync starting", "version", version, "command", cmd.Name())
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) error {
	if a.logClose != nil {
		return a.logClose.Close()
	}
	return nil
}

// remote 完成 OAuth 认证并返回云端客户端；认证失败时命令直接终止
func (a *app) remote(ctx context.Context) (*drive.Client, error) {
	httpClient, err := drive.NewHTTPClient(ctx, drive.AuthOptions{
		CredentialsFile: a.cfg.Drive.CredentialsFile,
		TokenFile:       a.cfg.Drive.TokenFile,
	})
	if err != nil {
		slog.Error("authentication failed", "err", err)
		return nil, err
	}
	return drive.NewClient(ctx, httpClient)
}
