// internal/report/builder.go
package report

import (
	"errors"
	"io"
	"strings"

	cfg "github.com/tamzrod/ingress-loadgen/internal/config"
)

// Multi fans a summary out to every writer. All writers run; errors are joined.
type Multi []Writer

func (m Multi) Write(s Summary) error {
	var errs []string
	for _, w := range m {
		if err := w.Write(s); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}

// Build creates the writer set for the output config.
// stdout nil disables the text summary.
func Build(out cfg.OutputConfig, stdout io.Writer) Multi {
	var ws Multi
	if stdout != nil {
		ws = append(ws, &TextWriter{Out: stdout})
	}
	if out.SummaryExport != "" {
		ws = append(ws, &JSONWriter{Path: out.SummaryExport})
	}
	return ws
}
