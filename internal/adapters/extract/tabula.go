package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/okian/ratecards/internal/domain/model"
)

// TabulaEngine runs tabula-java over a PDF and reads its JSON output.
type TabulaEngine struct {
	command []string
	run     func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewTabulaEngine creates an engine for a command line such as
// "java -jar tabula.jar".
func NewTabulaEngine(command string) *TabulaEngine {
	return &TabulaEngine{command: strings.Fields(command), run: runCommand}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Extract returns every lattice table on every page.
func (e *TabulaEngine) Extract(ctx context.Context, path string) ([]model.RawTable, error) {
	if len(e.command) == 0 {
		return nil, ErrNoCommand
	}
	args := append(append([]string{}, e.command[1:]...), "-f", "JSON", "-p", "all", "-l", path)
	out, err := e.run(ctx, e.command[0], args...)
	if err != nil {
		return nil, err
	}
	return ParseTabulaJSON(out)
}

type tabulaTable struct {
	Data [][]struct {
		Text string `json:"text"`
	} `json:"data"`
}

// ParseTabulaJSON decodes tabula's JSON format: a list of tables, each a
// list of rows of text cells. The first row of each table is its header.
func ParseTabulaJSON(data []byte) ([]model.RawTable, error) {
	var tables []tabulaTable
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("decode tabula output: %w", err)
	}
	out := make([]model.RawTable, 0, len(tables))
	for _, t := range tables {
		grid := make([][]string, 0, len(t.Data))
		for _, row := range t.Data {
			cells := make([]string, len(row))
			for i, c := range row {
				cells[i] = c.Text
			}
			grid = append(grid, cells)
		}
		if len(grid) == 0 {
			continue
		}
		out = append(out, gridToTable(grid))
	}
	return out, nil
}
