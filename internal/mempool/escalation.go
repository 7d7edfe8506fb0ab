package mempool

import "sort"

// GasPriceEscalation tracks how full recent blocks have been and computes
// the gas-unit-price floor a transaction must pay to be accepted directly
// into the next block rather than waiting in the mempool. It is the same
// congestion-driven pricing curve the teacher's transaction queue uses
// (internal/core/txq/fee.go's FeeMetrics/ScaleFeeLevel), adapted from
// XRPL's drops-per-fee-level model to this mempool's flat gas-unit-price
// ranking score.
type GasPriceEscalation struct {
	minimumExpected uint32
	targetExpected  uint32
	maximumExpected uint32

	expected uint32

	recent      []uint32
	recentIndex int
	recentSize  int

	medianGasPrice uint64
	minMultiplier  uint64

	increasePercent uint32
	decreasePercent uint32
}

// EscalationConfig configures a GasPriceEscalation tracker.
type EscalationConfig struct {
	MinimumExpectedTxns uint32
	TargetExpectedTxns  uint32
	MaximumExpectedTxns uint32
	MinimumMultiplier   uint64
	RecentBlockWindow   uint32
	IncreasePercent     uint32
	DecreasePercent     uint32
}

// DefaultEscalationConfig mirrors the teacher's DefaultConfig's fee-escalation knobs.
func DefaultEscalationConfig() EscalationConfig {
	return EscalationConfig{
		MinimumExpectedTxns: 32,
		TargetExpectedTxns:  256,
		MaximumExpectedTxns: 0,
		MinimumMultiplier:   1,
		RecentBlockWindow:   20,
		IncreasePercent:     20,
		DecreasePercent:     50,
	}
}

// NewGasPriceEscalation builds a tracker from config, matching the
// teacher's NewFeeMetrics clamp-up-to-target-then-maximum sequencing.
func NewGasPriceEscalation(cfg EscalationConfig) *GasPriceEscalation {
	target := cfg.TargetExpectedTxns
	if target < cfg.MinimumExpectedTxns {
		target = cfg.MinimumExpectedTxns
	}
	maxExpected := cfg.MaximumExpectedTxns
	if maxExpected != 0 && maxExpected < target {
		maxExpected = target
	}
	window := cfg.RecentBlockWindow
	if window == 0 {
		window = 1
	}
	return &GasPriceEscalation{
		minimumExpected: cfg.MinimumExpectedTxns,
		targetExpected:  target,
		maximumExpected: maxExpected,
		expected:        cfg.MinimumExpectedTxns,
		recent:          make([]uint32, window),
		medianGasPrice:  cfg.MinimumMultiplier,
		minMultiplier:   cfg.MinimumMultiplier,
		increasePercent: cfg.IncreasePercent,
		decreasePercent: cfg.DecreasePercent,
	}
}

// RequiredGasPrice returns the gas-unit-price floor for a transaction to be
// accepted into a block that already holds blockTxnCount transactions,
// following the teacher's quadratic ScaleFeeLevel curve.
func (e *GasPriceEscalation) RequiredGasPrice(blockTxnCount uint32) uint64 {
	if blockTxnCount <= e.expected {
		return e.minMultiplier
	}
	current := uint64(blockTxnCount)
	target := uint64(e.expected)
	if target == 0 {
		target = 1
	}
	return mulDivUint64(e.medianGasPrice, current*current, target*target)
}

// OnBlockClosed updates the escalation state from the gas prices paid by
// the transactions a just-closed block executed, the same bookkeeping the
// teacher's FeeMetrics.Update performs on ledger close.
func (e *GasPriceEscalation) OnBlockClosed(gasPrices []uint64, slowConsensus bool) {
	size := uint32(len(gasPrices))

	if slowConsensus {
		cutPct := uint64(100 - e.decreasePercent)
		upperLimit := mulDivUint64(uint64(e.expected), cutPct, 100)
		if upperLimit < uint64(e.minimumExpected) {
			upperLimit = uint64(e.minimumExpected)
		}
		newExpected := mulDivUint64(uint64(size), cutPct, 100)
		if newExpected < uint64(e.minimumExpected) {
			newExpected = uint64(e.minimumExpected)
		}
		if newExpected > upperLimit {
			newExpected = upperLimit
		}
		e.expected = uint32(newExpected)
		e.recentSize = 0
		e.recentIndex = 0
	} else if size > e.expected || size > e.targetExpected {
		increased := mulDivUint64(uint64(size), 100+uint64(e.increasePercent), 100)
		e.addRecent(uint32(increased))
		maxRecent := e.maxRecent()

		var next uint32
		if maxRecent >= e.expected {
			next = maxRecent
		} else {
			next = (e.expected*9 + maxRecent) / 10
		}
		if e.maximumExpected != 0 && next > e.maximumExpected {
			next = e.maximumExpected
		}
		e.expected = next
	}

	if size == 0 {
		e.medianGasPrice = e.minMultiplier
		return
	}
	sorted := make([]uint64, size)
	copy(sorted, gasPrices)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var median uint64
	if size%2 == 1 {
		median = sorted[size/2]
	} else {
		median = (sorted[size/2] + sorted[(size-1)/2] + 1) / 2
	}
	if median < e.minMultiplier {
		median = e.minMultiplier
	}
	e.medianGasPrice = median
}

func (e *GasPriceEscalation) addRecent(count uint32) {
	e.recent[e.recentIndex] = count
	e.recentIndex = (e.recentIndex + 1) % len(e.recent)
	if e.recentSize < len(e.recent) {
		e.recentSize++
	}
}

func (e *GasPriceEscalation) maxRecent() uint32 {
	max := uint32(0)
	for i := 0; i < e.recentSize; i++ {
		if e.recent[i] > max {
			max = e.recent[i]
		}
	}
	return max
}

// mulDivUint64 computes (a*b)/c saturating at MaxUint64 on overflow, the
// same 128-bit-safe division the teacher's mulDiv provides for its
// drops-per-fee-level arithmetic.
func mulDivUint64(a, b, c uint64) uint64 {
	if c == 0 {
		return ^uint64(0)
	}
	hi, lo := bitsMul64(a, b)
	if hi >= c {
		return ^uint64(0)
	}
	return bitsDiv128(hi, lo, c)
}

func bitsMul64(a, b uint64) (hi, lo uint64) {
	const mask32 = (1 << 32) - 1
	a0, a1 := a&mask32, a>>32
	b0, b1 := b&mask32, b>>32

	p0 := a0 * b0
	p1 := a0 * b1
	p2 := a1 * b0
	p3 := a1 * b1

	mid := p1 + (p0 >> 32) + (p2 & mask32)
	hi = p3 + (p1 >> 32) + (p2 >> 32) + (mid >> 32)
	lo = (p0 & mask32) | (mid << 32)
	return
}

func bitsDiv128(hi, lo, divisor uint64) uint64 {
	if hi == 0 {
		return lo / divisor
	}
	quotient := uint64(0)
	remainder := hi
	for i := 63; i >= 0; i-- {
		remainder = (remainder << 1) | ((lo >> i) & 1)
		if remainder >= divisor {
			remainder -= divisor
			quotient |= 1 << i
		}
	}
	return quotient
}
