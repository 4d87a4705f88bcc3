package sequencer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"meshrepeater/internal/domain/ports"
	"meshrepeater/pkg/meshcli"
)

// DefaultInterval - пауза после каждой команды. Подтверждений у консоли нет,
// поэтому устройству просто дается время на обработку.
const DefaultInterval = time.Second

// State - состояние одной попытки отправки последовательности.
type State int

const (
	StatePending State = iota // последовательность собрана, не отправлена
	StateSent                 // все команды переданы
	StateFailed               // первая ошибка, попытка завершена
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSent:
		return "sent"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result описывает итог Replay.
type Result struct {
	State State
	Sent  int // успешно переданные команды
	Total int // непустые команды в последовательности
}

// SequencerService отправляет последовательность команд через транспорт.
type SequencerService struct {
	interval time.Duration
	logger   ports.Logger
	wait     func(ctx context.Context, d time.Duration) error
}

// NewSequencerService создает новый экземпляр SequencerService.
// Отрицательный interval заменяется на 0.
func NewSequencerService(interval time.Duration, logger ports.Logger) *SequencerService {
	if interval < 0 {
		interval = 0
	}
	return &SequencerService{
		interval: interval,
		logger:   logger,
		wait:     sleepContext,
	}
}

// Replay проходит последовательность один раз по порядку. После каждой команды
// выдерживается пауза. Первая ошибка транспорта прерывает отправку: без повторов
// и без отката уже примененных настроек (повторный запуск начинается с erase).
func (s *SequencerService) Replay(ctx context.Context, seq []string, sender ports.LineSender) (Result, error) {
	res := Result{State: StatePending, Total: countNonEmpty(seq)}

	for i, cmd := range seq {
		if strings.TrimSpace(cmd) == "" {
			continue
		}

		s.logger.Debug("[%d/%d] %s", res.Sent+1, res.Total, meshcli.Redact(cmd))
		if err := sender.SendLine(ctx, cmd); err != nil {
			res.State = StateFailed
			s.logger.Error("Отправка прервана на команде #%d: %v", i+1, err)
			return res, &SendError{Index: i, Command: cmd, Err: err}
		}
		res.Sent++

		if err := s.wait(ctx, s.interval); err != nil {
			res.State = StateFailed
			return res, fmt.Errorf("sequencer: ожидание после команды #%d прервано: %w", i+1, err)
		}
	}

	res.State = StateSent
	s.logger.Info("Отправлено команд: %d", res.Sent)
	return res, nil
}

// Plan возвращает последовательность со скрытыми секретами (для --dry-run).
func Plan(seq []string) []string {
	out := make([]string, 0, len(seq))
	for _, cmd := range seq {
		out = append(out, meshcli.Redact(cmd))
	}
	return out
}

func countNonEmpty(seq []string) int {
	n := 0
	for _, cmd := range seq {
		if strings.TrimSpace(cmd) != "" {
			n++
		}
	}
	return n
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
