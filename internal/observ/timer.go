package observ

import (
	"fmt"
	"io"
	"time"
)

// Phase is one timed step of a command (load, check, render).
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Items int // files or diagnostics handled
}

// Timer collects phases in the order they were started.
type Timer struct {
	now    func() time.Time
	phases []Phase
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{now: time.Now, phases: make([]Phase, 0, 4)} }

// Begin starts a phase; the returned func ends it and records how many
// items the phase handled.
func (t *Timer) Begin(name string) func(items int) {
	if t == nil {
		return func(int) {}
	}
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	idx := len(t.phases) - 1
	return func(items int) {
		p := &t.phases[idx]
		p.Dur = t.now().Sub(p.Start)
		p.Items = items
	}
}

// PhaseReport представляет сжатую информацию о фазе таймера для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Items      int     `json:"items"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report формирует срез фаз и общую длительность в миллисекундах.
func (t *Timer) Report() Report {
	if t == nil || len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, p := range t.phases {
		total += p.Dur
		report.Phases[i] = PhaseReport{
			Name:       p.Name,
			DurationMS: toMillis(p.Dur),
			Items:      p.Items,
		}
	}
	report.TotalMS = toMillis(total)
	return report
}

// WriteSummary prints one line per phase and a total.
func (t *Timer) WriteSummary(w io.Writer) error {
	report := t.Report()
	for _, p := range report.Phases {
		if _, err := fmt.Fprintf(w, "%-8s %7.2f ms  (%d)\n", p.Name, p.DurationMS, p.Items); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%-8s %7.2f ms\n", "total", report.TotalMS)
	return err
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
