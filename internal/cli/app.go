// Package cli - терминальная консоль водителя и департамента.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"civiq/internal/console"
	"civiq/internal/integrations"
	"civiq/internal/integrations/backend"
	"civiq/internal/integrations/fallback"
	"civiq/internal/lifecycle"
	"civiq/internal/session"
	"civiq/pkg/config"
	applogger "civiq/pkg/logger"
)

// Options - глобальные флаги консоли.
type Options struct {
	APIBase     string
	SessionFile string
	Timeout     time.Duration
	Offline     bool
	NoColor     bool
	Verbose     bool
}

// app собирает зависимости одной команды: хранилище сессии и источники данных.
type app struct {
	opts     *Options
	store    *session.FileStore
	backend  *backend.Provider
	registry *integrations.Registry
	logger   *zap.Logger
	out      io.Writer
}

func newApp(cmd *cobra.Command, opts *Options) (*app, error) {
	if opts.NoColor {
		color.NoColor = true
	}
	level := "error"
	if opts.Verbose {
		level = "debug"
	}
	logger := applogger.NewStderrLogger(level)

	api := backend.New(opts.APIBase, opts.Timeout, logger)
	demo, err := fallback.New()
	if err != nil {
		return nil, fmt.Errorf("демо-набор повреждён: %w", err)
	}

	registry := integrations.NewRegistry()
	if err := registry.Register(api); err != nil {
		return nil, err
	}
	if err := registry.Register(demo); err != nil {
		return nil, err
	}
	if opts.Offline {
		if err := registry.SetActive(fallback.Name); err != nil {
			return nil, err
		}
	}

	return &app{
		opts:     opts,
		store:    session.NewFileStore(opts.SessionFile),
		backend:  api,
		registry: registry,
		logger:   logger,
		out:      cmd.OutOrStdout(),
	}, nil
}

// session читает сохранённую сессию и передаёт токен клиенту API.
// Сессия офлайн-входа токена не имеет и работает только с демо-набором.
func (a *app) session() (session.Session, error) {
	s, token, err := a.store.Load()
	if err != nil {
		return session.Session{}, err
	}
	if token == "" {
		if err := a.registry.SetActive(fallback.Name); err != nil {
			return session.Session{}, err
		}
	}
	a.backend.SetToken(token)
	return s, nil
}

// queue загружает очередь для текущей сессии. Предупреждение о демо-режиме
// печатается сразу, чтобы пользователь видел его до списка.
func (a *app) queue(ctx context.Context) (*console.Queue, error) {
	s, err := a.session()
	if err != nil {
		return nil, err
	}
	primary, err := a.registry.GetActive()
	if err != nil {
		return nil, err
	}
	demo, err := a.registry.Get(fallback.Name)
	if err != nil {
		return nil, err
	}

	q := console.NewQueue(primary, demo, lifecycle.NewEngine(), s, a.logger)
	warning, err := q.Load(ctx)
	if err != nil {
		return nil, err
	}
	a.warn(warning)
	return q, nil
}

func (a *app) warn(msg string) {
	if msg == "" {
		return
	}
	fmt.Fprintln(a.out, color.New(color.FgYellow).Sprint("⚠ "+msg))
}

// NewRootCmd собирает дерево команд консоли.
func NewRootCmd(cfg config.ConsoleConfig) *cobra.Command {
	opts := &Options{}

	root := &cobra.Command{
		Use:   "civiq",
		Short: "Консоль заявок горожан для водителей и департаментов",
		Long: `civiq - консоль очереди заявок.

Водитель принимает заявки, начинает и завершает работу, подтверждает
результат департамента. Департамент берёт заявки своей службы в работу,
завершает их и перенаправляет в другие службы.

Без доступа к серверу консоль показывает демо-набор, изменения в нём не сохраняются.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.APIBase, "api", cfg.APIBase, "адрес API заявок")
	root.PersistentFlags().StringVar(&opts.SessionFile, "session-file", cfg.SessionFile, "файл сессии консоли")
	root.PersistentFlags().DurationVar(&opts.Timeout, "timeout", cfg.Timeout, "таймаут запросов к API")
	root.PersistentFlags().BoolVar(&opts.Offline, "offline", false, "работать с демо-набором без сервера")
	root.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "без цветного вывода")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "подробный лог")

	root.AddCommand(loginCmd(opts))
	root.AddCommand(registerCmd(opts))
	root.AddCommand(logoutCmd(opts))
	root.AddCommand(whoamiCmd(opts))
	root.AddCommand(listCmd(opts))
	root.AddCommand(showCmd(opts))
	root.AddCommand(actCmd(opts))
	root.AddCommand(statsCmd(opts))
	root.AddCommand(mapCmd(opts))

	return root
}
