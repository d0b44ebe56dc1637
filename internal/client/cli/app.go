// Package cli implements the interactive lookboard client.
package cli

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/dmitrijs2005/lookboard/internal/client/client"
	"github.com/dmitrijs2005/lookboard/internal/client/config"
	"github.com/dmitrijs2005/lookboard/internal/common"
	"github.com/dmitrijs2005/lookboard/internal/filex"
	"github.com/dmitrijs2005/lookboard/internal/netx"
	"github.com/dmitrijs2005/lookboard/internal/server/blobs"
)

type App struct {
	config   *config.Config
	api      *client.Client
	http     *http.Client
	in       io.Reader
	maxImage int64
}

func NewApp(c *config.Config) (*App, error) {
	if strings.TrimSpace(c.ServerURL) == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	return &App{
		config:   c,
		api:      client.New(c.ServerURL, c.RequestTimeout),
		http:     &http.Client{Timeout: c.RequestTimeout},
		in:       os.Stdin,
		maxImage: blobs.DefaultMaxBytes,
	}, nil
}

// Run checks the server and then serves the REPL on stdin.
func (a *App) Run(ctx context.Context) {
	if err := a.api.Ping(ctx); err != nil {
		printlnFn("Server is not reachable:", err)
	}
	printlnFn("Type 'help' for commands.")
	runREPL(ctx, a, bufio.NewScanner(a.in))
}

func (a *App) Top(ctx context.Context, n int) error {
	entries, err := a.api.Ranking(ctx)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	if len(entries) == 0 {
		printlnFn("The ranking is empty.")
		return nil
	}
	for _, e := range entries {
		line := fmt.Sprintf("%3d. %-20s %10g  %s", e.Rank, e.Name, e.Score, e.Date)
		if e.ImageURL != "" {
			line += "  " + e.ImageURL
		}
		printlnFn(line)
	}
	return nil
}

func (a *App) Submit(ctx context.Context, name string, score float64, image string) error {
	var data string
	if image != "" {
		b, err := a.loadImage(ctx, image)
		if err != nil {
			printlnFn("Error:", err)
			return err
		}
		data = base64.StdEncoding.EncodeToString(b)
	}

	pw, err := GetPassword(os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	defer common.WipeByteArray(pw)

	msg, err := a.api.Submit(ctx, name, score, string(pw), data)
	if msg != "" {
		printlnFn(msg)
	} else if err != nil {
		printlnFn("Error:", err)
	}
	return err
}

func (a *App) Revoke(ctx context.Context, name string) error {
	pw, err := GetPassword(os.Stdout)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	defer common.WipeByteArray(pw)

	msg, err := a.api.Delete(ctx, name, string(pw))
	if msg != "" {
		printlnFn(msg)
	} else if err != nil {
		printlnFn("Error:", err)
	}
	return err
}

func (a *App) Check(ctx context.Context, score float64) error {
	in, err := a.api.Qualifies(ctx, score)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	if in {
		printlnFn(fmt.Sprintf("%g would enter the ranking.", score))
	} else {
		printlnFn(fmt.Sprintf("%g is below the ranking.", score))
	}
	return nil
}

func (a *App) loadImage(ctx context.Context, src string) ([]byte, error) {
	if netx.IsURL(src) {
		return netx.Download(ctx, a.http, src, a.maxImage)
	}
	return filex.ReadLimited(src, a.maxImage)
}
