package deploy

import (
	"errors"
	"math/big"
	"testing"
)

func TestRequestValidate(t *testing.T) {
	valid := Request{BaseAmount: big.NewInt(100), CenterTick: 0}
	if err := valid.Validate(-32768, 32767); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	empty := Request{CenterTick: 0}
	if err := empty.Validate(-32768, 32767); !errors.Is(err, ErrEmptyRequest) {
		t.Fatalf("empty request err = %v, want ErrEmptyRequest", err)
	}

	zeroAmounts := Request{BaseAmount: big.NewInt(0), QuoteAmount: big.NewInt(0)}
	if err := zeroAmounts.Validate(-32768, 32767); !errors.Is(err, ErrEmptyRequest) {
		t.Fatalf("zero amounts err = %v, want ErrEmptyRequest", err)
	}

	outOfRange := Request{BaseAmount: big.NewInt(100), CenterTick: 40000}
	if err := outOfRange.Validate(-32768, 32767); err == nil {
		t.Fatal("tick outside range should fail validation")
	}
}

func TestEvaluateGap(t *testing.T) {
	req := Request{BaseAmount: big.NewInt(400), QuoteAmount: big.NewInt(300)}

	gap := EvaluateGap(req, Balances{
		OperatingBase:  big.NewInt(150),
		OperatingQuote: big.NewInt(500),
	})
	if gap.Base.Cmp(big.NewInt(250)) != 0 {
		t.Fatalf("base gap = %s, want 250", gap.Base)
	}
	if gap.Quote.Sign() != 0 {
		t.Fatalf("covered quote leg should have zero gap, got %s", gap.Quote)
	}
}

func TestEvaluateGapUnresolvedReadsAsZero(t *testing.T) {
	req := Request{BaseAmount: big.NewInt(400)}

	gap := EvaluateGap(req, Balances{})
	if gap.Base.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("unresolved operating balance should over-state the gap, got %s", gap.Base)
	}
}

func TestEvaluateGapIdempotent(t *testing.T) {
	req := Request{BaseAmount: big.NewInt(400), QuoteAmount: big.NewInt(300)}
	bal := Balances{
		OperatingBase:  big.NewInt(100),
		OperatingQuote: big.NewInt(100),
	}

	first := EvaluateGap(req, bal)
	second := EvaluateGap(req, bal)
	if first.Base.Cmp(second.Base) != 0 || first.Quote.Cmp(second.Quote) != 0 {
		t.Fatalf("same inputs must give the same gaps: %v vs %v", first, second)
	}
}

func TestNextActionBaseBeforeQuote(t *testing.T) {
	req := Request{BaseAmount: big.NewInt(400), QuoteAmount: big.NewInt(300)}
	bal := Balances{
		ReserveBase:  big.NewInt(1000),
		ReserveQuote: big.NewInt(1000),
	}

	action, err := NextAction(req, bal)
	if err != nil {
		t.Fatalf("NextAction: %v", err)
	}
	if action.Kind != ActionFund || action.Asset != AssetBase {
		t.Fatalf("base leg should fund first: %+v", action)
	}
	if action.Amount.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("amount = %s, want 400", action.Amount)
	}
}

func TestNextActionDeployWhenCovered(t *testing.T) {
	req := Request{BaseAmount: big.NewInt(400), QuoteAmount: big.NewInt(300)}
	bal := Balances{
		OperatingBase:  big.NewInt(400),
		OperatingQuote: big.NewInt(350),
	}

	action, err := NextAction(req, bal)
	if err != nil {
		t.Fatalf("NextAction: %v", err)
	}
	if action.Kind != ActionDeploy {
		t.Fatalf("covered request should deploy: %+v", action)
	}
}

func TestNextActionInsufficientReserve(t *testing.T) {
	req := Request{BaseAmount: big.NewInt(400)}
	bal := Balances{ReserveBase: big.NewInt(100)}

	_, err := NextAction(req, bal)
	var short *InsufficientReserveError
	if !errors.As(err, &short) {
		t.Fatalf("expected InsufficientReserveError, got %v", err)
	}
	if short.Shortfall.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("shortfall = %s, want 300", short.Shortfall)
	}
	if short.Asset != AssetBase {
		t.Fatalf("asset = %s, want base", short.Asset)
	}
}
