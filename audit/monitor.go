package audit

import (
	"fmt"
	"sync"

	"github.com/gammazero/deque"
	"github.com/lunfardo314/fairwheel/selector"
	"github.com/lunfardo314/fairwheel/util/lines"
	"github.com/shopspring/decimal"
)

const DefaultMonitorWindow = 1000

type (
	// Monitor keeps the rolling window of the latest prize indices and compares observed
	// frequencies with the weights
	Monitor struct {
		mutex   sync.RWMutex
		weights []uint8
		window  int
		recent  *deque.Deque[int]
		counts  []int
		total   uint64
	}

	PrizeStats struct {
		Index    int
		Weight   uint8
		Count    int
		Expected decimal.Decimal
		Observed decimal.Decimal
	}

	Report struct {
		Samples   int
		ChiSquare float64
		Stats     []PrizeStats
	}
)

func NewMonitor(weights []uint8, window ...int) (*Monitor, error) {
	if err := selector.ValidateWeights(weights); err != nil {
		return nil, err
	}
	w := DefaultMonitorWindow
	if len(window) > 0 && window[0] > 0 {
		w = window[0]
	}
	return &Monitor{
		weights: append([]uint8(nil), weights...),
		window:  w,
		recent:  new(deque.Deque[int]),
		counts:  make([]int, len(weights)),
	}, nil
}

func (m *Monitor) Observe(prizeIndex int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if prizeIndex < 0 || prizeIndex >= len(m.weights) {
		return
	}
	m.recent.PushBack(prizeIndex)
	m.counts[prizeIndex]++
	m.total++
	for m.recent.Len() > m.window {
		m.counts[m.recent.PopFront()]--
	}
}

func (m *Monitor) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.recent.Len()
}

// Total number of observations since the start, including those which left the window
func (m *Monitor) Total() uint64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.total
}

// ChiSquare statistic of the window against the weights. Prizes with zero weight are skipped
func (m *Monitor) ChiSquare() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.chiSquare()
}

func (m *Monitor) chiSquare() float64 {
	n := float64(m.recent.Len())
	if n == 0 {
		return 0
	}
	ret := 0.0
	for i, w := range m.weights {
		if w == 0 {
			continue
		}
		expected := n * float64(w) / selector.TotalWeight
		d := float64(m.counts[i]) - expected
		ret += d * d / expected
	}
	return ret
}

func (m *Monitor) Report() *Report {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	n := m.recent.Len()
	ret := &Report{
		Samples:   n,
		ChiSquare: m.chiSquare(),
		Stats:     make([]PrizeStats, len(m.weights)),
	}
	hundred := decimal.NewFromInt(100)
	for i, w := range m.weights {
		ret.Stats[i] = PrizeStats{
			Index:    i,
			Weight:   w,
			Count:    m.counts[i],
			Expected: decimal.NewFromInt(int64(w)),
			Observed: decimal.Zero,
		}
		if n > 0 {
			ret.Stats[i].Observed = decimal.NewFromInt(int64(m.counts[i])).Mul(hundred).Div(decimal.NewFromInt(int64(n))).Round(2)
		}
	}
	return ret
}

func (r *Report) Lines(names []string, prefix ...string) *lines.Lines {
	ret := lines.New(prefix...).Add("samples: %d, chi-square: %.3f", r.Samples, r.ChiSquare)
	for _, s := range r.Stats {
		name := fmt.Sprintf("#%d", s.Index)
		if s.Index < len(names) {
			name = names[s.Index]
		}
		ret.Add("%-12s expected %6s%%  observed %6s%%  (%d)", name, s.Expected.StringFixed(2), s.Observed.StringFixed(2), s.Count)
	}
	return ret
}
