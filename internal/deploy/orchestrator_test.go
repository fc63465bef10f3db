package deploy

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// scriptedChain simulates the vault/strategy balances moving as funding
// transactions confirm.
type scriptedChain struct {
	mu        sync.Mutex
	reserve   map[Asset]*big.Int
	operating map[Asset]*big.Int

	txSeq      int
	pending    map[string]func()
	submitErr  error
	confirmErr error
	funded     []Action
	deployed   bool
}

func newScriptedChain(reserveBase, reserveQuote, operatingBase, operatingQuote int64) *scriptedChain {
	return &scriptedChain{
		reserve: map[Asset]*big.Int{
			AssetBase:  big.NewInt(reserveBase),
			AssetQuote: big.NewInt(reserveQuote),
		},
		operating: map[Asset]*big.Int{
			AssetBase:  big.NewInt(operatingBase),
			AssetQuote: big.NewInt(operatingQuote),
		},
		pending: make(map[string]func()),
	}
}

func (c *scriptedChain) FundingBalances(ctx context.Context) (Balances, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Balances{
		ReserveBase:    new(big.Int).Set(c.reserve[AssetBase]),
		ReserveQuote:   new(big.Int).Set(c.reserve[AssetQuote]),
		OperatingBase:  new(big.Int).Set(c.operating[AssetBase]),
		OperatingQuote: new(big.Int).Set(c.operating[AssetQuote]),
	}, nil
}

func (c *scriptedChain) FundStrategy(ctx context.Context, asset Asset, amount *big.Int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitErr != nil {
		return "", c.submitErr
	}
	c.txSeq++
	hash := fmt.Sprintf("0xfund%03d", c.txSeq)
	moved := new(big.Int).Set(amount)
	c.pending[hash] = func() {
		c.reserve[asset].Sub(c.reserve[asset], moved)
		c.operating[asset].Add(c.operating[asset], moved)
	}
	c.funded = append(c.funded, Action{Kind: ActionFund, Asset: asset, Amount: moved})
	return hash, nil
}

func (c *scriptedChain) DeployLiquidity(ctx context.Context, req Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitErr != nil {
		return "", c.submitErr
	}
	c.txSeq++
	hash := fmt.Sprintf("0xdeploy%03d", c.txSeq)
	c.pending[hash] = func() { c.deployed = true }
	return hash, nil
}

func (c *scriptedChain) Await(ctx context.Context, txHash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.confirmErr != nil {
		return c.confirmErr
	}
	if apply, ok := c.pending[txHash]; ok {
		apply()
		delete(c.pending, txHash)
	}
	return nil
}

var (
	_ BalanceSource = (*scriptedChain)(nil)
	_ Submitter     = (*scriptedChain)(nil)
)

func newTestOrchestrator(chain *scriptedChain) *Orchestrator {
	return NewOrchestrator(chain, chain, -32768, 32767, zerolog.Nop())
}

func collectSteps(transitions []Transition) []Step {
	steps := make([]Step, len(transitions))
	for i, t := range transitions {
		steps[i] = t.Step
	}
	return steps
}

func TestRunFundsThenDeploys(t *testing.T) {
	chain := newScriptedChain(1000, 1000, 0, 500)
	orch := newTestOrchestrator(chain)

	req := Request{
		PairID:      "0x01",
		BaseAmount:  big.NewInt(400),
		QuoteAmount: big.NewInt(300),
		CenterTick:  0,
	}

	var transitions []Transition
	err := orch.Run(context.Background(), req, func(tr Transition) {
		transitions = append(transitions, tr)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(chain.funded) != 1 {
		t.Fatalf("expected exactly one funding leg, got %d", len(chain.funded))
	}
	if chain.funded[0].Asset != AssetBase || chain.funded[0].Amount.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("funding leg = %+v, want base 400", chain.funded[0])
	}
	if !chain.deployed {
		t.Fatal("deployment was never confirmed")
	}

	want := []Step{StepInput, StepFunding, StepInput, StepDeploying, StepSuccess}
	got := collectSteps(transitions)
	if len(got) != len(want) {
		t.Fatalf("transitions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("transition %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRunInsufficientReserveSubmitsNothing(t *testing.T) {
	chain := newScriptedChain(100, 0, 0, 0)
	orch := newTestOrchestrator(chain)

	req := Request{BaseAmount: big.NewInt(400), CenterTick: 0}

	err := orch.Run(context.Background(), req, nil)
	var short *InsufficientReserveError
	if !errors.As(err, &short) {
		t.Fatalf("expected InsufficientReserveError, got %v", err)
	}
	if short.Shortfall.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("shortfall = %s, want 300", short.Shortfall)
	}
	if len(chain.funded) != 0 || chain.deployed {
		t.Fatal("no transaction should be submitted on a reserve shortfall")
	}
}

func TestRunRejectedSubmitHasNoSideEffect(t *testing.T) {
	chain := newScriptedChain(1000, 1000, 0, 0)
	chain.submitErr = errors.New("signer declined")
	orch := newTestOrchestrator(chain)

	req := Request{BaseAmount: big.NewInt(400), CenterTick: 0}

	err := orch.Run(context.Background(), req, nil)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if chain.operating[AssetBase].Sign() != 0 {
		t.Fatal("rejected submission must not move balances")
	}
}

func TestRunConfirmationFailure(t *testing.T) {
	chain := newScriptedChain(1000, 1000, 0, 0)
	chain.confirmErr = errors.New("reverted")
	orch := newTestOrchestrator(chain)

	req := Request{BaseAmount: big.NewInt(400), CenterTick: 0}

	var last Transition
	err := orch.Run(context.Background(), req, func(tr Transition) { last = tr })

	var failed *TxFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected TxFailedError, got %v", err)
	}
	if last.Step != StepError {
		t.Fatalf("final transition = %s, want error", last.Step)
	}
	if failed.TxHash == "" {
		t.Fatal("failed transaction should carry its hash")
	}
}

func TestRunBusy(t *testing.T) {
	chain := newScriptedChain(1000, 1000, 0, 0)

	started := make(chan struct{})
	release := make(chan struct{})

	slow := &slowSubmitter{inner: chain, started: started, release: release}
	blocked := NewOrchestrator(chain, slow, -32768, 32767, zerolog.Nop())

	req := Request{BaseAmount: big.NewInt(400), CenterTick: 0}

	done := make(chan error, 1)
	go func() {
		done <- blocked.Run(context.Background(), req, nil)
	}()

	<-started
	if err := blocked.Run(context.Background(), req, nil); !errors.Is(err, ErrBusy) {
		t.Fatalf("concurrent Run err = %v, want ErrBusy", err)
	}
	close(release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first Run did not finish")
	}
}

type slowSubmitter struct {
	inner    Submitter
	started  chan struct{}
	release  chan struct{}
	signaled sync.Once
}

func (s *slowSubmitter) FundStrategy(ctx context.Context, asset Asset, amount *big.Int) (string, error) {
	s.signaled.Do(func() { close(s.started) })
	<-s.release
	return s.inner.FundStrategy(ctx, asset, amount)
}

func (s *slowSubmitter) DeployLiquidity(ctx context.Context, req Request) (string, error) {
	return s.inner.DeployLiquidity(ctx, req)
}

func (s *slowSubmitter) Await(ctx context.Context, txHash string) error {
	return s.inner.Await(ctx, txHash)
}
