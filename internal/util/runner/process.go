package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Значения по умолчанию для Background.
const (
	DefaultGracePeriod  = 10 * time.Second
	DefaultDrainTimeout = 5 * time.Second
	DefaultTailLines    = 200

	killWaitTimeout = 5 * time.Second
)

// Background описывает долгоживущий процесс, например тестируемое веб-приложение.
// Процесс запускается в собственной группе, чтобы Stop завершал и его потомков.
type Background struct {
	RunString string
	Params    []string
	WorkDir   string
	Env       []string
	Encoding  string

	// StreamOutput логирует вывод приложения на уровне Info вместо Debug.
	StreamOutput bool
	TailLines    int
	GracePeriod  time.Duration
	DrainTimeout time.Duration
}

// Process - запущенный Background. Владелец обязан вызвать Stop.
type Process struct {
	cmd    *exec.Cmd
	logger *slog.Logger
	cfg    Background

	readers sync.WaitGroup
	pipes   []*os.File
	tail    *tailBuffer

	done    chan struct{}
	waitErr error

	stopOnce   sync.Once
	terminated bool
	stopErr    error
}

// Start запускает процесс. ctx используется только для логирования и проверки
// отмены до запуска: жизнью процесса управляет Stop.
func (b Background) Start(ctx context.Context, l *slog.Logger) (*Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.RunString == "" {
		return nil, errors.New("executable path is empty")
	}
	if err := ValidateEncoding(b.Encoding); err != nil {
		return nil, err
	}

	// #nosec G204 - исполняемый файл берётся из конфигурации, shell не используется
	cmd := exec.Command(b.RunString, b.Params...)
	cmd.Dir = b.WorkDir
	if len(b.Env) > 0 {
		cmd.Env = appendEnviron(b.Env...)
	}
	setProcGroup(cmd)

	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		closeAll(outR, outW)
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	cmd.Stdout = outW
	cmd.Stderr = errW

	l.Info("Запуск приложения",
		slog.String("Исполняемый файл", b.RunString),
		slog.String("WorkDir", b.WorkDir),
		slog.String("Параметры", fmt.Sprint(MaskParams(b.Params))),
	)

	if err := cmd.Start(); err != nil {
		closeAll(outR, outW, errR, errW)
		return nil, fmt.Errorf("start %s: %w", b.RunString, err)
	}
	// Пишущие концы остаются только у дочернего процесса, иначе читатели не получат EOF.
	closeAll(outW, errW)

	tailLines := b.TailLines
	if tailLines <= 0 {
		tailLines = DefaultTailLines
	}
	p := &Process{
		cmd:    cmd,
		logger: l.With(slog.Int("pid", cmd.Process.Pid)),
		cfg:    b,
		pipes:  []*os.File{outR, errR},
		tail:   newTailBuffer(tailLines),
		done:   make(chan struct{}),
	}

	p.readers.Add(2)
	go p.drain(outR, "stdout")
	go p.drain(errR, "stderr")

	go func() {
		p.waitErr = cmd.Wait()
		close(p.done)
	}()

	p.logger.Info("Приложение запущено")
	return p, nil
}

// Pid возвращает PID процесса (он же PGID группы на unix).
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Exited сообщает, завершился ли процесс.
func (p *Process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// ExitErr возвращает результат Wait. До завершения процесса возвращает nil.
func (p *Process) ExitErr() error {
	if !p.Exited() {
		return nil
	}
	return p.waitErr
}

// Tail возвращает последние строки вывода обоих потоков.
func (p *Process) Tail() []string {
	return p.tail.lines()
}

// Stop завершает группу процессов: SIGTERM, ожидание GracePeriod, затем SIGKILL.
// После этого дожидается читателей вывода не дольше DrainTimeout.
// Повторные вызовы возвращают результат первого.
// terminated == true, если процесс был жив и его пришлось останавливать.
func (p *Process) Stop(ctx context.Context) (terminated bool, err error) {
	p.stopOnce.Do(func() {
		p.terminated, p.stopErr = p.stop(ctx)
	})
	return p.terminated, p.stopErr
}

func (p *Process) stop(ctx context.Context) (bool, error) {
	terminated := false
	var stopErr error

	if !p.Exited() {
		terminated = true
		grace := p.cfg.GracePeriod
		if grace <= 0 {
			grace = DefaultGracePeriod
		}

		p.logger.Info("Остановка приложения", slog.Duration("grace", grace))
		if err := terminateGroup(p.Pid()); err != nil {
			p.logger.Warn("SIGTERM не доставлен", slog.String("error", err.Error()))
		}

		timer := time.NewTimer(grace)
		select {
		case <-p.done:
		case <-timer.C:
		case <-ctx.Done():
		}
		timer.Stop()

		if !p.Exited() {
			p.logger.Warn("Приложение не завершилось за отведённое время, SIGKILL")
			if err := killGroup(p.Pid()); err != nil {
				stopErr = fmt.Errorf("kill process group %d: %w", p.Pid(), err)
			}
			select {
			case <-p.done:
			case <-time.After(killWaitTimeout):
				stopErr = errors.Join(stopErr, fmt.Errorf("process %d did not exit after SIGKILL", p.Pid()))
			}
		}
	} else {
		// Группа могла пережить лидера: добиваем оставшихся потомков.
		_ = killGroup(p.Pid()) //nolint:errcheck // группы может уже не быть
	}

	p.joinReaders()
	p.logger.Info("Приложение остановлено", slog.Bool("terminated", terminated))
	return terminated, stopErr
}

// joinReaders ждёт читателей вывода. Если потомок унёс пишущий конец пайпа
// и держит его открытым, читающие концы закрываются принудительно.
func (p *Process) joinReaders() {
	drain := p.cfg.DrainTimeout
	if drain <= 0 {
		drain = DefaultDrainTimeout
	}

	joined := make(chan struct{})
	go func() {
		p.readers.Wait()
		close(joined)
	}()

	select {
	case <-joined:
	case <-time.After(drain):
		p.logger.Warn("Вывод приложения не дочитан, пайпы закрываются", slog.Duration("drain_timeout", drain))
		closeAll(p.pipes...)
		<-joined
	}
}

func (p *Process) drain(r io.ReadCloser, stream string) {
	defer p.readers.Done()
	defer r.Close()

	level := slog.LevelDebug
	if p.cfg.StreamOutput {
		level = slog.LevelInfo
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line, err := Decode(scanner.Bytes(), p.cfg.Encoding)
		if err != nil {
			line = scanner.Text()
		}
		p.tail.add(line)
		p.logger.Log(context.Background(), level, line, slog.String("stream", stream))
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		p.logger.Debug("Чтение вывода прервано", slog.String("stream", stream), slog.String("error", err.Error()))
	}
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close() //nolint:errcheck // повторное закрытие безопасно
	}
}

// tailBuffer хранит последние n строк.
type tailBuffer struct {
	mu   sync.Mutex
	buf  []string
	next int
	full bool
}

func newTailBuffer(n int) *tailBuffer {
	return &tailBuffer{buf: make([]string, n)}
}

func (t *tailBuffer) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf[t.next] = line
	t.next = (t.next + 1) % len(t.buf)
	if t.next == 0 {
		t.full = true
	}
}

func (t *tailBuffer) lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.full {
		return append([]string(nil), t.buf[:t.next]...)
	}
	out := make([]string, 0, len(t.buf))
	out = append(out, t.buf[t.next:]...)
	return append(out, t.buf[:t.next]...)
}
