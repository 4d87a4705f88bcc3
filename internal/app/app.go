package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"meshrepeater/internal/config"
	"meshrepeater/internal/domain/models"
	"meshrepeater/internal/domain/ports"
	"meshrepeater/internal/service/sequencer"
)

// PowerCycleNotice печатается после успешной настройки: новые параметры применяются после перезапуска.
const PowerCycleNotice = "Настройка завершена. Выключите и снова включите питание ретранслятора."

// ConnectionFactory создает транспорт для профиля подключения.
type ConnectionFactory func(p models.ConnectionProfile) ports.Connection

// App связывает загрузку настроек, построение последовательности и отправку.
type App struct {
	cfg       *config.Config
	repo      ports.SettingsRepository
	sequencer *sequencer.SequencerService
	connect   ConnectionFactory
	log       ports.Logger
	out       io.Writer
}

// NewApp создает новый экземпляр приложения.
func NewApp(cfg *config.Config, repo ports.SettingsRepository, connect ConnectionFactory, log ports.Logger, out io.Writer) *App {
	return &App{
		cfg:       cfg,
		repo:      repo,
		sequencer: sequencer.NewSequencerService(cfg.Interval, log),
		connect:   connect,
		log:       log,
		out:       out,
	}
}

// Sequence загружает настройки и строит последовательность команд.
func (a *App) Sequence() ([]string, error) {
	settings, err := a.repo.Load(a.cfg.SettingsPath)
	if err != nil {
		return nil, err
	}
	seq := sequencer.BuildSequence(settings)
	a.log.Info("Загружены настройки %s: %d команд", a.cfg.SettingsPath, len(seq))
	return seq, nil
}

// Plan печатает последовательность со скрытыми секретами, не подключаясь к устройству.
func (a *App) Plan() error {
	seq, err := a.Sequence()
	if err != nil {
		return err
	}
	for i, cmd := range sequencer.Plan(seq) {
		fmt.Fprintf(a.out, "%2d  %s\n", i+1, cmd)
	}
	return nil
}

// Run выполняет полный цикл. Транспорт закрывается на любом пути выхода,
// ошибка закрытия не маскирует ошибку отправки.
func (a *App) Run(ctx context.Context) (err error) {
	if a.cfg.DryRun {
		return a.Plan()
	}

	seq, err := a.Sequence()
	if err != nil {
		return err
	}

	profile := a.cfg.Profile()
	conn := a.connect(profile)
	if err := conn.Connect(); err != nil {
		return err
	}
	a.log.Info("Подключено к %s (%d бод)", profile.Target(), profile.BaudRate)

	defer func() {
		if cerr := conn.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	res, err := a.sequencer.Replay(ctx, seq, conn)
	if err != nil {
		a.log.Warn("Устройство осталось частично настроено (%d из %d). Запустите заново: последовательность начинается с erase", res.Sent, res.Total)
		return err
	}

	fmt.Fprintln(a.out, PowerCycleNotice)
	return nil
}
