package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"progress/internal/models"
	"progress/internal/render"
	"progress/internal/service"
	"progress/internal/upstream"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultShowWidth = 80

var (
	showServer string
	showWidth  int

	showCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the progress timeline in the terminal",
		RunE:  runShow,
	}
)

func init() {
	showCmd.Flags().StringVar(&showServer, "server", "",
		"Read the timeline from a running progress server instead of the worker")
	showCmd.Flags().IntVarP(&showWidth, "width", "w", 0,
		"Output width (0 = terminal width)")
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.FetchTimeout)
	defer cancel()

	var page models.Page
	if showServer != "" {
		p, err := fetchServerPage(ctx, showServer, &http.Client{Timeout: cfg.FetchTimeout})
		if err != nil {
			return err
		}
		page = p
	} else {
		logger := newLogger(cmd.ErrOrStderr())
		client := upstream.NewClient(cfg.UpstreamURL, &http.Client{Timeout: cfg.FetchTimeout}, logger)
		page = service.NewService(client, nil, logger).LoadPage(ctx)
	}

	return render.Terminal(cmd.OutOrStdout(), page, time.Now(), outputWidth())
}

// fetchServerPage reads /api/progress from a running server. Timestamps come
// back as text and are re-hydrated by models.Item's decoder.
func fetchServerPage(ctx context.Context, server string, client *http.Client) (models.Page, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	url := strings.TrimRight(server, "/") + "/api/progress"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Page{}, fmt.Errorf("build request: %w", err)
	}
	res, err := client.Do(req)
	if err != nil {
		return models.Page{}, fmt.Errorf("get %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return models.Page{}, fmt.Errorf("get %s: unexpected status %d", url, res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return models.Page{}, fmt.Errorf("read %s: %w", url, err)
	}

	var page models.Page
	if err := sonic.Unmarshal(body, &page); err != nil {
		return models.Page{}, fmt.Errorf("decode %s: %w", url, err)
	}
	return page, nil
}

func outputWidth() int {
	if showWidth > 0 {
		return showWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultShowWidth
}
