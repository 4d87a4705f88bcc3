package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"meshrepeater/internal/app"
	"meshrepeater/internal/config"
	"meshrepeater/internal/domain/models"
	"meshrepeater/internal/domain/ports"
	"meshrepeater/internal/infrastructure/driver"
	"meshrepeater/internal/infrastructure/logger"
	"meshrepeater/internal/infrastructure/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "repeatercfg",
		Short: "Настройка ретранслятора MeshCore через последовательный порт",
		Long: `Читает файл настроек ретранслятора и отправляет в консоль устройства
последовательность команд: erase, ключ, имя, владелец, регионы, тайминги, гостевой пароль.
После каждой команды выдерживается пауза --interval.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, sync, err := buildApp(cmd, out)
			if err != nil {
				return err
			}
			defer sync()
			return a.Run(cmd.Context())
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(&cobra.Command{
		Use:   "plan",
		Short: "Вывести команды без подключения к устройству (секреты скрыты)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, sync, err := buildApp(cmd, out)
			if err != nil {
				return err
			}
			defer sync()
			return a.Plan()
		},
	})

	return root
}

// buildApp собирает зависимости: конфигурация, логгер, хранилище настроек, транспорт.
func buildApp(cmd *cobra.Command, out io.Writer) (*app.App, func(), error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.NewZapLogger(cfg.LogLevel, zap.String("run_id", uuid.NewString()))
	if err != nil {
		return nil, nil, err
	}
	log.Debug("Конфигурация: %+v", *cfg)

	connect := func(p models.ConnectionProfile) ports.Connection {
		return driver.NewMeshcliConnection(p, log)
	}
	a := app.NewApp(cfg, storage.NewFileSettingsRepository(), connect, log, out)

	return a, func() { _ = log.Sync() }, nil
}
