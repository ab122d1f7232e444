// Package panel is the settings surface: a command-line front end that
// reads and writes settings through the coordinator, never the store.
package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
)

// Settings is the coordinator surface the panel uses.
type Settings interface {
	GetUserID(ctx context.Context) (string, error)
	GetEnabled(ctx context.Context) (bool, error)
	SetEnabled(ctx context.Context, enabled bool) error
	GetKeywordsRaw(ctx context.Context) (string, error)
	GetKeywordsList(ctx context.Context) ([]string, error)
	SetKeywordsRaw(ctx context.Context, raw string) error
}

// PanelCmd implements the panel commands independent of cobra.
type PanelCmd struct {
	svc Settings
	out io.Writer
}

func NewPanelCmd(svc Settings, out io.Writer) PanelCmd {
	return PanelCmd{svc: svc, out: out}
}

type Status struct {
	Enabled     bool     `json:"enabled"`
	KeywordsRaw string   `json:"keywords_raw"`
	Keywords    []string `json:"keywords"`
	UserID      string   `json:"user_id"`
}

func checkOutput(output string) error {
	if output != "" && output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}
	return nil
}

func (c PanelCmd) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

func (c PanelCmd) Status(ctx context.Context, output string) error {
	if err := checkOutput(output); err != nil {
		return err
	}

	var st Status
	var err error
	if st.Enabled, err = c.svc.GetEnabled(ctx); err != nil {
		return err
	}
	if st.KeywordsRaw, err = c.svc.GetKeywordsRaw(ctx); err != nil {
		return err
	}
	if st.Keywords, err = c.svc.GetKeywordsList(ctx); err != nil {
		return err
	}
	if st.UserID, err = c.svc.GetUserID(ctx); err != nil {
		return err
	}

	if output == "json" {
		return c.printJSON(st)
	}

	tableData := pterm.TableData{
		{"Property", "Value"},
		{"Highlighting", onOff(st.Enabled)},
		{"Keywords (raw)", st.KeywordsRaw},
		{"Keywords", strings.Join(st.Keywords, ", ")},
		{"User ID", st.UserID},
	}
	return pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

func (c PanelCmd) SetEnabled(ctx context.Context, enabled bool) error {
	if err := c.svc.SetEnabled(ctx, enabled); err != nil {
		return err
	}
	pterm.Success.Printf("Highlighting turned %s\n", onOff(enabled))
	return nil
}

// Toggle flips the enabled flag, the way the extension's popup switch does.
func (c PanelCmd) Toggle(ctx context.Context) error {
	enabled, err := c.svc.GetEnabled(ctx)
	if err != nil {
		return err
	}
	return c.SetEnabled(ctx, !enabled)
}

func (c PanelCmd) KeywordsGet(ctx context.Context, output string) error {
	if err := checkOutput(output); err != nil {
		return err
	}
	raw, err := c.svc.GetKeywordsRaw(ctx)
	if err != nil {
		return err
	}
	list, err := c.svc.GetKeywordsList(ctx)
	if err != nil {
		return err
	}

	if output == "json" {
		return c.printJSON(map[string]any{"raw": raw, "keywords": list})
	}
	if len(list) == 0 {
		pterm.Info.Println("No keywords set")
		return nil
	}
	fmt.Fprintln(c.out, raw)
	return nil
}

func (c PanelCmd) KeywordsSet(ctx context.Context, raw string) error {
	if err := c.svc.SetKeywordsRaw(ctx, raw); err != nil {
		return err
	}
	list, err := c.svc.GetKeywordsList(ctx)
	if err != nil {
		return err
	}
	pterm.Success.Printf("Keywords saved (%d)\n", len(list))
	return nil
}

func (c PanelCmd) UserID(ctx context.Context, output string) error {
	if err := checkOutput(output); err != nil {
		return err
	}
	id, err := c.svc.GetUserID(ctx)
	if err != nil {
		return err
	}
	if output == "json" {
		return c.printJSON(map[string]string{"user_id": id})
	}
	fmt.Fprintln(c.out, id)
	return nil
}
