// Package cli команды drivelink для работы со ссылками Google Drive из терминала
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kTowkA/driveproxy/internal/controller"
	"github.com/kTowkA/driveproxy/internal/drive"
	"github.com/kTowkA/driveproxy/internal/model"
	"github.com/kTowkA/driveproxy/internal/notify"
	"github.com/kTowkA/driveproxy/internal/probe"
	"github.com/spf13/cobra"
)

const (
	defaultBase = "http://localhost:8080/"

	copyDirect   = "direct"
	copyDownload = "download"
	copyProxy    = "proxy"
	copyHTML     = "html"
)

var errCopyTarget = errors.New("неизвестная ссылка для копирования")

// Copier запись текста в буфер обмена
type Copier interface {
	Copy(text string) error
}

// Deps зависимости команд
type Deps struct {
	Copier    Copier
	Prober    probe.Prober
	Presenter notify.Presenter
}

type linksOptions struct {
	base  string
	copy  string
	probe bool
}

// NewRootCommand корневая команда drivelink
func NewRootCommand(d Deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "drivelink",
		Short:         "Ссылки для встраивания изображений из Google Drive",
		Long:          `Извлекает идентификатор файла из ссылки Google Drive и строит по нему прямую ссылку, ссылку на скачивание, прокси-ссылку и html код.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExtractCommand(d), newLinksCommand(d))
	return root
}

func newExtractCommand(d Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "extract [link]",
		Short: "Вывести идентификатор файла",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := drive.Extract(args[0])
			if err != nil {
				d.Presenter.Show(controller.Notification(err))
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newLinksCommand(d Deps) *cobra.Command {
	opts := linksOptions{}
	cmd := &cobra.Command{
		Use:   "links [link]",
		Short: "Построить все ссылки",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLinks(cmd, d, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.base, "base", "b", defaultBase, "адрес страницы приложения для прокси-ссылки")
	cmd.Flags().StringVarP(&opts.copy, "copy", "c", "", "скопировать ссылку: direct, download, proxy или html")
	cmd.Flags().BoolVarP(&opts.probe, "probe", "p", false, "проверить доступность изображения")
	return cmd
}

func runLinks(cmd *cobra.Command, d Deps, opts linksOptions, raw string) error {
	target := strings.ToLower(strings.TrimSpace(opts.copy))
	switch target {
	case "", copyDirect, copyDownload, copyProxy, copyHTML:
	default:
		return fmt.Errorf("%w: \"%s\"", errCopyTarget, opts.copy)
	}

	links, err := drive.Resolve(raw, opts.base)
	if err != nil {
		d.Presenter.Show(controller.Notification(err))
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "file_id:  %s\n", links.FileID)
	fmt.Fprintf(out, "direct:   %s\n", links.Direct)
	fmt.Fprintf(out, "download: %s\n", links.Download)
	fmt.Fprintf(out, "proxy:    %s\n", links.Proxy)
	fmt.Fprintf(out, "html:     %s\n", links.HTML)

	if target != "" {
		if err = d.Copier.Copy(pick(links, target)); err != nil {
			d.Presenter.Show(model.Notification{Message: "Не удалось скопировать ссылку", Severity: model.SeverityError})
			return err
		}
		d.Presenter.Show(model.Notification{Message: "Ссылка скопирована в буфер обмена!", Severity: model.SeveritySuccess})
	}

	if opts.probe {
		status := model.ProbeAvailable
		if err = d.Prober.Check(cmd.Context(), links.Direct); err != nil {
			status = model.ProbeUnavailable
			d.Presenter.Show(controller.Notification(probe.ErrUnreachable))
		}
		fmt.Fprintf(out, "probe:    %s\n", status)
	}
	return nil
}

func pick(links model.Links, target string) string {
	switch target {
	case copyDownload:
		return links.Download
	case copyProxy:
		return links.Proxy
	case copyHTML:
		return links.HTML
	default:
		return links.Direct
	}
}
