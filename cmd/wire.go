package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	filekv "github.com/mvoss/teampulse-cli/internal/adapters/kv/file"
	"github.com/mvoss/teampulse-cli/internal/adapters/render/report"
	"github.com/mvoss/teampulse-cli/internal/application"
	"github.com/mvoss/teampulse-cli/internal/domain"
	"github.com/mvoss/teampulse-cli/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	registry       *application.RegistryService
	sessions       *application.SessionService
	aggregator     *application.AggregateService
	exporter       *application.ExportService
	reportRenderer func(string, domain.TeamAggregate, report.RenderOptions) string
	now            func() time.Time
}

func wireApp() (*app, error) {
	durable, err := filekv.NewStore(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire durable store: %w", err)
	}

	// The scratch store holds only the current-session pointer. Parking it
	// under the temp directory scopes the pointer to one login session.
	scratch, err := filekv.NewStoreAt(scratchPath())
	if err != nil {
		return nil, fmt.Errorf("wire scratch store: %w", err)
	}

	logger, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	clock := ports.SystemClock{}
	ids := ports.RandomIDGenerator{}

	registry := application.NewRegistryService(durable, clock, ids, logger)
	sessions := application.NewSessionService(durable, scratch, registry, clock, ids, logger)

	return &app{
		registry:       registry,
		sessions:       sessions,
		aggregator:     application.NewAggregateService(registry, sessions, logger),
		exporter:       application.NewExportService(durable, registry, clock, logger),
		reportRenderer: report.Render,
		now:            time.Now,
	}, nil
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("TEAMPULSE_DEBUG") == "" {
		return zap.NewNop(), nil
	}

	return zap.NewDevelopment()
}

func scratchPath() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("teampulse-scratch-%d.json", os.Getuid()))
}
