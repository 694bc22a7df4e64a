package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/angeloszaimis/website-monitor/internal/monitor"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Printer writes monitor records in a human or machine readable form.
type Printer struct {
	w      io.Writer
	format string
	ok     *color.Color
	err    *color.Color
}

// New creates a Printer. Unknown formats fall back to text. colored has no
// effect on JSON output.
func New(w io.Writer, format string, colored bool) *Printer {
	ok := color.New(color.FgGreen, color.Bold)
	errColor := color.New(color.FgRed, color.Bold)

	if colored {
		ok.EnableColor()
		errColor.EnableColor()
	} else {
		ok.DisableColor()
		errColor.DisableColor()
	}

	if format != FormatJSON {
		format = FormatText
	}

	return &Printer{
		w:      w,
		format: format,
		ok:     ok,
		err:    errColor,
	}
}

// Summary counts records by outcome.
type Summary struct {
	OK     int `json:"ok"`
	Failed int `json:"failed"`
}

func Summarize(records []monitor.StatusRecord) Summary {
	var s Summary
	for _, r := range records {
		if r.Outcome.OK() {
			s.OK++
		} else {
			s.Failed++
		}
	}
	return s
}

// Print writes records followed by a summary.
func (p *Printer) Print(records []monitor.StatusRecord) error {
	if p.format == FormatJSON {
		return p.printJSON(records)
	}
	return p.printText(records)
}

func (p *Printer) printText(records []monitor.StatusRecord) error {
	for _, r := range records {
		var err error
		if r.Outcome.OK() {
			_, err = fmt.Fprintf(p.w, "%s %s | status=%d | %d ms | %s | attempts=%d\n",
				p.ok.Sprint("[OK]"), r.URL, r.Outcome.StatusCode(),
				r.Elapsed.Milliseconds(), r.ObservedAt.Format(time.RFC3339), r.Attempts)
		} else {
			_, err = fmt.Fprintf(p.w, "%s %s | %s | %d ms | %s | attempts=%d\n",
				p.err.Sprint("[ERR]"), r.URL, r.Outcome.Reason(),
				r.Elapsed.Milliseconds(), r.ObservedAt.Format(time.RFC3339), r.Attempts)
		}
		if err != nil {
			return err
		}
	}

	s := Summarize(records)
	_, err := fmt.Fprintf(p.w, "\nSummary: %d OK, %d ERR\n", s.OK, s.Failed)
	return err
}

type jsonRecord struct {
	URL        string    `json:"url"`
	OK         bool      `json:"ok"`
	StatusCode int       `json:"status_code,omitempty"`
	Error      string    `json:"error,omitempty"`
	ElapsedMS  int64     `json:"elapsed_ms"`
	ObservedAt time.Time `json:"observed_at"`
	Attempts   int       `json:"attempts"`
}

type jsonReport struct {
	Records []jsonRecord `json:"records"`
	Summary Summary      `json:"summary"`
}

func (p *Printer) printJSON(records []monitor.StatusRecord) error {
	out := jsonReport{
		Records: make([]jsonRecord, 0, len(records)),
		Summary: Summarize(records),
	}

	for _, r := range records {
		out.Records = append(out.Records, jsonRecord{
			URL:        r.URL,
			OK:         r.Outcome.OK(),
			StatusCode: r.Outcome.StatusCode(),
			Error:      r.Outcome.Reason(),
			ElapsedMS:  r.Elapsed.Milliseconds(),
			ObservedAt: r.ObservedAt,
			Attempts:   r.Attempts,
		})
	}

	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
