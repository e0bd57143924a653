package notify

import (
	"context"
	"fmt"
	"os"
)

// ConsoleSink prints alerts to stdout. It is the zero-configuration sink
// and never fails.
type ConsoleSink struct{}

func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{}
}

func (s *ConsoleSink) Name() string {
	return "console"
}

func (s *ConsoleSink) Send(_ context.Context, alert Alert) error {
	divider := "======================================================================"
	fmt.Fprintf(os.Stdout, "\n%s\n%s%s\n", divider, formatAlertText(alert), divider)
	return nil
}

func (s *ConsoleSink) SendSummary(_ context.Context, summary RunSummary) error {
	fmt.Fprintf(os.Stdout, "[%s] monitoreo completado: %d noticias analizadas, %d alertas\n",
		summary.Timestamp, summary.ItemsAnalyzed, summary.AlertsSent)
	return nil
}
