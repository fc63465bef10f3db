package activity

// Kind classifies a normalized activity record.
type Kind int

const (
	KindDeposit Kind = iota
	KindWithdraw
	KindCapitalDeployed
)

func (k Kind) String() string {
	switch k {
	case KindDeposit:
		return "Deposit"
	case KindWithdraw:
		return "Withdraw"
	case KindCapitalDeployed:
		return "Capital Deployed"
	default:
		return "Unknown"
	}
}

// Record is one normalized ledger event. Immutable once constructed.
type Record struct {
	TxHash      string
	Kind        Kind
	TokenSymbol string
	Amount      string
	From        string
	To          string
	BlockNumber uint64
}

// less orders records newest block first. Same-block ties break by kind
// then transaction hash so the sequence is deterministic regardless of the
// order the log queries returned in.
func less(a, b Record) bool {
	if a.BlockNumber != b.BlockNumber {
		return a.BlockNumber > b.BlockNumber
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.TxHash < b.TxHash
}
