package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/teemow/toodledo/internal/auth"
	"github.com/teemow/toodledo/internal/codec"
	"github.com/teemow/toodledo/internal/toodledo"
)

// tokenStore returns the file token store of account.
func (cc *commandContext) tokenStore(account string) (*auth.FileTokenStore, error) {
	path, err := cc.cfg.TokenPath(account)
	if err != nil {
		return nil, err
	}
	return auth.NewFileTokenStore(path), nil
}

// provider builds the session provider of account. Interactive providers
// prompt on the terminal when no usable token is stored.
func (cc *commandContext) provider(account string, interactive bool) (*auth.Provider, error) {
	if err := cc.cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	store, err := cc.tokenStore(account)
	if err != nil {
		return nil, err
	}

	t := cc.cfg.Toodledo
	oauthConfig := auth.OAuthConfig(t.ClientID, t.ClientSecret, t.BaseURL, t.Scopes)
	opts := []auth.ProviderOption{
		auth.WithBaseURL(t.BaseURL),
		auth.WithLogger(cc.logger.With("account", account)),
		auth.WithMetrics(cc.metrics),
	}
	if interactive && auth.IsInteractive(os.Stdin) {
		opts = append(opts, auth.WithReauthorizer(auth.NewCommandLineAuthorizer(oauthConfig, cc.stdin, os.Stderr)))
	}
	return auth.NewProvider(oauthConfig, store, opts...), nil
}

func (cc *commandContext) defaultClient(_ context.Context, account string, interactive bool) (*toodledo.Client, error) {
	provider, err := cc.provider(account, interactive)
	if err != nil {
		return nil, err
	}
	return toodledo.NewClient(provider,
		toodledo.WithLogger(cc.logger),
		toodledo.WithMetrics(cc.metrics),
	), nil
}

// client returns the client of the account selected with --account.
func (cc *commandContext) client(cmd *cobra.Command) (*toodledo.Client, error) {
	return cc.newClient(cmd.Context(), cc.account, true)
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseIDArgs parses positional record ids.
func parseIDArgs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatOptDate(o toodledo.Opt[codec.Date]) string {
	if d, ok := o.Get(); ok && !d.IsZero() {
		return d.String()
	}
	return ""
}

func formatOptTime(o toodledo.Opt[time.Time]) string {
	if t, ok := o.Get(); ok && !t.IsZero() {
		return t.Local().Format("2006-01-02 15:04")
	}
	return ""
}

func formatOptID(o toodledo.Opt[int64]) string {
	if id, ok := o.Get(); ok && id != 0 {
		return strconv.FormatInt(id, 10)
	}
	return ""
}

func yesNo(o toodledo.Opt[bool]) string {
	if v, ok := o.Get(); ok && v {
		return "yes"
	}
	return ""
}
