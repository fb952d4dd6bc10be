package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"civiq/internal/dto"
	"civiq/internal/session"
	"civiq/pkg/constants"
	apperrors "civiq/pkg/errors"
)

func loginCmd(opts *Options) *cobra.Command {
	var (
		username   string
		password   string
		name       string
		role       string
		department string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Войти в консоль",
		Long: `Войти по учётной записи сервера (--username, --password).

С флагом --offline сервер не нужен: достаточно имени, роли и департамента.
Такая сессия работает только с демо-набором.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}

			if opts.Offline {
				s, err := session.New(name, constants.Role(role), department)
				if err != nil {
					return err
				}
				if err := a.store.Save(s, ""); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Офлайн-вход: %s\n", describeSession(s))
				return nil
			}

			if username == "" || password == "" {
				return fmt.Errorf("нужны --username и --password (или --offline)")
			}
			resp, err := a.backend.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			s, err := session.New(resp.Actor, constants.Role(resp.Role), resp.Department)
			if err != nil {
				return err
			}
			if err := a.store.Save(s, resp.Token); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Вход выполнен: %s\n", describeSession(s))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "имя пользователя")
	cmd.Flags().StringVarP(&password, "password", "p", "", "пароль")
	cmd.Flags().StringVar(&name, "name", "", "имя для офлайн-входа")
	cmd.Flags().StringVar(&role, "role", string(constants.RoleDriver), "роль для офлайн-входа: driver или department")
	cmd.Flags().StringVar(&department, "department", "", "департамент для офлайн-входа")
	return cmd
}

func registerCmd(opts *Options) *cobra.Command {
	var in dto.RegisterDTO

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Зарегистрировать учётную запись на сервере",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			user, err := a.backend.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Зарегистрирован %s (%s)\n", user.Username, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.FullName, "name", "", "полное имя")
	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "имя пользователя")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "пароль")
	cmd.Flags().StringVar(&in.Role, "role", "", "роль: driver (по умолчанию) или department")
	cmd.Flags().StringVar(&in.Department, "department", "", "департамент")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Выйти и удалить сохранённую сессию",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			_, token, err := a.store.Load()
			if err != nil && !errors.Is(err, session.ErrNoSession) {
				return err
			}
			if token != "" && !opts.Offline {
				a.backend.SetToken(token)
				if err := a.backend.Logout(cmd.Context()); err != nil {
					if !errors.Is(err, apperrors.ErrAdapterUnavailable) && !errors.Is(err, apperrors.ErrUnauthorized) {
						return err
					}
					a.warn(fmt.Sprintf("Сервер не подтвердил выход: %v", err))
				}
			}
			if err := a.store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Сессия завершена.")
			return nil
		},
	}
}

func whoamiCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Показать текущую сессию",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			s, token, err := a.store.Load()
			if err != nil {
				return err
			}
			mode := "сервер"
			if token == "" {
				mode = "офлайн"
			}
			fmt.Fprintf(a.out, "%s [%s]\n", describeSession(s), mode)
			return nil
		},
	}
}

func describeSession(s session.Session) string {
	return fmt.Sprintf("%s, %s, %s", s.Actor, roleLabel(s.Role), s.Scope())
}
