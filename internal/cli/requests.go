package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"civiq/internal/entities"
	"civiq/internal/lifecycle"
	"civiq/internal/view"
	"civiq/pkg/utils"
)

func listCmd(opts *Options) *cobra.Command {
	var filters view.Config

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Показать очередь заявок",
		Long: `Показать заявки своего департамента (водитель видит все службы).

--status принимает статус (submitted, assigned, in-progress,
waiting-driver-update, completed) или all (всё незавершённое, по умолчанию),
active (назначенные и в работе), awaiting-driver, any (включая завершённые).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			q, err := a.queue(cmd.Context())
			if err != nil {
				return err
			}

			cfg := view.ForSession(q.Session())
			if cmd.Flags().Changed("scope") {
				cfg.Scope = filters.Scope
			}
			if filters.Status != "" {
				cfg.Status = filters.Status
			}
			if filters.Service != "" {
				cfg.Service = filters.Service
			}
			if filters.Priority != "" {
				cfg.Priority = filters.Priority
			}
			cfg.Search = filters.Search

			rows := q.View(cfg)
			if len(rows) == 0 {
				fmt.Fprintln(a.out, "Заявок по фильтру нет.")
			} else {
				printTable(a.out, rows, q.IsUnsaved)
			}

			sum := view.Summarize(rows)
			fmt.Fprintf(a.out, "\nВсего: %d  новые: %d  в работе: %d  ждут водителя: %d  завершены: %d\n",
				sum.Total, sum.Pending, sum.InProgress, sum.AwaitingDriver, sum.Completed)
			return nil
		},
	}

	cmd.Flags().StringVar(&filters.Status, "status", "", "фильтр статуса")
	cmd.Flags().StringVar(&filters.Service, "service", "", "фильтр службы")
	cmd.Flags().StringVar(&filters.Priority, "priority", "", "фильтр приоритета")
	cmd.Flags().StringVarP(&filters.Search, "search", "s", "", "поиск по номеру, адресу, телефону или службе")
	cmd.Flags().StringVar(&filters.Scope, "scope", "", "департамент вместо своего")
	return cmd
}

func printTable(w io.Writer, rows []entities.Request, unsaved func(int64) bool) {
	header := color.New(color.Bold)
	fmt.Fprintln(w, header.Sprint(fmt.Sprintf("%-9s %-14s %-8s %-20s %-28s %s", "Номер", "Статус", "Срочн.", "Служба", "Адрес", "Исполнитель")))
	for _, r := range rows {
		marker := ""
		if unsaved(r.ID) {
			marker = color.New(color.FgYellow).Sprint(" *не сохранено")
		}
		fmt.Fprintf(w, "%-9s %s %s %s %s %s%s\n",
			utils.RequestLabel(r.ID),
			statusBadge(r.Status, 14),
			priorityBadge(r.Priority, 8),
			pad(truncate(r.Service, 20), 20),
			pad(truncate(r.Location, 28), 28),
			r.AssignedTo.String,
			marker,
		)
	}
}

func showCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Подробности заявки, история и доступные действия",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			q, err := a.queue(cmd.Context())
			if err != nil {
				return err
			}
			r, err := q.Find(id)
			if err != nil {
				return err
			}

			printDetails(a.out, r)
			if q.IsUnsaved(r.ID) {
				a.warn("Изменения этой заявки не сохранены на сервере.")
			}

			actions := lifecycle.AvailableActions(r, q.Session().Role)
			if len(actions) == 0 {
				fmt.Fprintln(a.out, "\nДоступных действий нет.")
				return nil
			}
			fmt.Fprintln(a.out, "\nДоступные действия:")
			for _, act := range actions {
				fmt.Fprintf(a.out, "  civiq act %d %-9s %s\n", r.ID, act, actionLabels[act])
			}
			return nil
		},
	}
}

func printDetails(out io.Writer, r entities.Request) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Заявка:\t%s\n", color.New(color.Bold).Sprint(utils.RequestLabel(r.ID)))
	fmt.Fprintf(w, "Статус:\t%s\n", statusLabel(r.Status))
	fmt.Fprintf(w, "Приоритет:\t%s\n", r.Priority)
	fmt.Fprintf(w, "Служба:\t%s\n", r.Service)
	fmt.Fprintf(w, "Департамент:\t%s\n", r.Department)
	fmt.Fprintf(w, "Адрес:\t%s\n", r.Location)
	fmt.Fprintf(w, "Телефон:\t%s\n", r.Phone)
	fmt.Fprintf(w, "Описание:\t%s\n", r.Description)
	fmt.Fprintf(w, "Подана:\t%s\n", r.DateSubmitted.Local().Format("02.01.2006 15:04"))
	if r.AssignedTo.Valid {
		fmt.Fprintf(w, "Исполнитель:\t%s\n", r.AssignedTo.String)
	}
	fmt.Fprintf(w, "Департамент завершил:\t%s\n", yesNo(r.DepartmentCompleted))
	fmt.Fprintf(w, "Водитель завершил:\t%s\n", yesNo(r.DriverCompleted))
	if link, ok := utils.MapLink(r.Coordinates); ok {
		fmt.Fprintf(w, "Карта:\t%s\n", link)
	}
	if r.Photo.Valid {
		fmt.Fprintf(w, "Фото:\t%s\n", r.Photo.String)
	}
	w.Flush()

	if len(r.History) == 0 {
		return
	}
	fmt.Fprintln(out, "\nИстория:")
	for _, h := range r.History {
		fmt.Fprintln(out, "  "+formatHistoryEntry(h))
	}
}

func yesNo(v bool) string {
	if v {
		return "да"
	}
	return "нет"
}

func actCmd(opts *Options) *cobra.Command {
	var (
		notes  string
		target string
	)

	cmd := &cobra.Command{
		Use:   "act <id> <action>",
		Short: "Выполнить действие над заявкой",
		Long: `Действия: assign, start, complete, forward, confirm.

forward требует --target с департаментом назначения.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			action := lifecycle.Action(strings.ToLower(args[1]))
			if !lifecycle.IsKnownAction(action) {
				return fmt.Errorf("неизвестное действие %q (assign, start, complete, forward, confirm)", args[1])
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			q, err := a.queue(cmd.Context())
			if err != nil {
				return err
			}

			out, err := q.Transition(cmd.Context(), id, lifecycle.Command{Action: action, Notes: notes, Target: target})
			if err != nil {
				return err
			}

			mark := color.New(color.FgGreen).Sprint("✓")
			if !out.Saved {
				mark = color.New(color.FgYellow).Sprint("!")
			}
			fmt.Fprintf(a.out, "%s %s: %s → %s\n", mark, utils.RequestLabel(out.Request.ID), action, statusLabel(out.Request.Status))
			if out.Request.Department != "" && action == lifecycle.ActionForward {
				fmt.Fprintf(a.out, "  Департамент: %s\n", out.Request.Department)
			}
			a.warn(out.Warning)
			return nil
		},
	}

	cmd.Flags().StringVarP(&notes, "notes", "n", "", "комментарий в историю")
	cmd.Flags().StringVarP(&target, "target", "t", "", "департамент назначения для forward")
	return cmd
}

func mapCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "map <id>",
		Short: "Ссылка на место заявки на карте",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			q, err := a.queue(cmd.Context())
			if err != nil {
				return err
			}
			r, err := q.Find(id)
			if err != nil {
				return err
			}
			link, ok := utils.MapLink(r.Coordinates)
			if !ok {
				return fmt.Errorf("у заявки %s нет координат", utils.RequestLabel(r.ID))
			}
			fmt.Fprintln(a.out, link)
			return nil
		},
	}
}
