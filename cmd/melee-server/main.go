package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	appcfg "github.com/hyeon-dev/regichess/internal/config"
	"github.com/hyeon-dev/regichess/internal/melee"
	"github.com/hyeon-dev/regichess/internal/msgcat"
	"github.com/hyeon-dev/regichess/internal/obslog"
	"github.com/hyeon-dev/regichess/internal/replay"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	mgr, err := melee.NewManager(cfg.RedisURL, melee.Options{
		CooldownWindow: cfg.CooldownWindow,
		CommitRetries:  cfg.CommitRetries,
		GameTTL:        cfg.GameTTL,
	})
	if err != nil {
		obslog.L().Fatal("melee_manager_init", zap.Error(err))
	}
	mgr.AttachPublisher(melee.NewRedisPublisher(mgr.Redis()))
	mgr.AttachReplay(replay.FromConfig(cfg))

	var repo *melee.Repository
	if cfg.DatabaseURL != "" {
		repo, err = melee.NewRepository(cfg.DatabaseURL)
		if err != nil {
			obslog.L().Fatal("melee_repository_init", zap.Error(err))
		}
		mgr.AttachRepository(repo)
	}

	catalog, err := msgcat.New(cfg.MessageDir)
	if err != nil {
		obslog.L().Fatal("msgcat_init", zap.Error(err))
	}
	mgr.AttachMessages(melee.NewMessages(catalog))

	obslog.L().Info("melee_server_ready",
		zap.Bool("archive", repo != nil),
		zap.Duration("cooldown", cfg.CooldownWindow),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	_ = mgr.Close()
	if repo != nil {
		_ = repo.Close()
	}
}
