package mempool

import "testing"

func TestGasPriceEscalationBaseLevelWhenUnderExpected(t *testing.T) {
	e := NewGasPriceEscalation(DefaultEscalationConfig())
	if got := e.RequiredGasPrice(10); got != e.minMultiplier {
		t.Fatalf("expected base multiplier %d under expected load, got %d", e.minMultiplier, got)
	}
}

func TestGasPriceEscalationRisesAboveExpected(t *testing.T) {
	e := NewGasPriceEscalation(DefaultEscalationConfig())
	e.OnBlockClosed(manyGasPrices(300, 10), false)

	low := e.RequiredGasPrice(e.expected)
	high := e.RequiredGasPrice(e.expected * 4)
	if high <= low {
		t.Fatalf("expected required gas price to rise with block fullness: low=%d high=%d", low, high)
	}
}

func TestGasPriceEscalationSlowConsensusShrinksExpected(t *testing.T) {
	e := NewGasPriceEscalation(DefaultEscalationConfig())
	e.OnBlockClosed(manyGasPrices(300, 10), false)
	before := e.expected

	e.OnBlockClosed(manyGasPrices(300, 10), true)
	if e.expected >= before {
		t.Fatalf("expected slow consensus to shrink expected txn count: before=%d after=%d", before, e.expected)
	}
}

func TestGasPriceEscalationEnabledByDefault(t *testing.T) {
	m := New(DefaultConfig())
	if m.escalation == nil {
		t.Fatal("DefaultConfig sets an Escalation config, so New should build an escalator")
	}
	cfg := DefaultConfig()
	cfg.EnableGasEscalation = false
	m2 := New(cfg)
	if m2.escalation != nil {
		t.Fatal("escalator should be nil when EnableGasEscalation is false")
	}
	if m2.RequiredGasPrice(1000) != 0 {
		t.Fatal("RequiredGasPrice should be 0 when escalation is disabled")
	}
}

func manyGasPrices(n int, price uint64) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = price
	}
	return out
}
