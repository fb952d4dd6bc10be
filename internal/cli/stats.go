package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func statsCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Сводка по очереди",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			q, err := a.queue(cmd.Context())
			if err != nil {
				return err
			}
			stats, warning := q.Stats(cmd.Context())
			a.warn(warning)

			bold := color.New(color.Bold)
			fmt.Fprintf(a.out, "Новые:             %s\n", bold.Sprint(stats.Pending))
			fmt.Fprintf(a.out, "В работе:          %s\n", bold.Sprint(stats.Active))
			fmt.Fprintf(a.out, "Завершены сегодня: %s\n", bold.Sprint(stats.CompletedToday))
			fmt.Fprintf(a.out, "Всего:             %s\n", bold.Sprint(stats.Total))
			return nil
		},
	}
}
