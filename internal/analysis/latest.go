package analysis

import (
	"sort"
	"time"

	"github.com/tadawul-lab/tasi-analyzer/internal/indicator"
	"github.com/tadawul-lab/tasi-analyzer/internal/types"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
	"go.uber.org/zap"
)

// Snapshot is a point-in-time evaluation of every registered indicator
// against a symbol's most recent bar.
type Snapshot struct {
	Symbol  string         `json:"symbol"`
	Time    time.Time      `json:"time"`
	Close   float64        `json:"close"`
	Signals []types.Signal `json:"signals"`
}

// SignalByIndicator returns the snapshot signal produced by the given
// indicator, or false when that indicator could not be evaluated.
func (s *Snapshot) SignalByIndicator(name types.IndicatorType) (types.Signal, bool) {
	for _, signal := range s.Signals {
		if signal.Indicator == name {
			return signal, true
		}
	}

	return types.Signal{}, false
}

// Latest runs every registered indicator against the symbol's most recent
// bar and collects their signals. Indicators whose history demand exceeds
// the stored data are skipped and logged, in the same way Analyze skips
// oversized windows.
func (a *Analyzer) Latest(symbol string) (*Snapshot, error) {
	lastBar, err := a.dataSource.ReadLastData(symbol)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "no data for symbol %s", symbol)
	}

	ctx := indicator.IndicatorContext{
		DataSource:        a.dataSource,
		IndicatorRegistry: a.registry,
	}

	snapshot := &Snapshot{
		Symbol: symbol,
		Time:   lastBar.Time,
		Close:  lastBar.Close,
	}

	names := a.registry.ListIndicators()
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	for _, name := range names {
		ind, err := a.registry.GetIndicator(name)
		if err != nil {
			continue
		}

		signal, err := ind.GetSignal(lastBar, ctx)
		if err != nil {
			a.logger.Warn("skipping indicator",
				zap.String("symbol", symbol),
				zap.String("indicator", string(name)),
				zap.Error(err),
			)

			continue
		}

		snapshot.Signals = append(snapshot.Signals, signal)
	}

	return snapshot, nil
}
