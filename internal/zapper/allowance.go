package zapper

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// maxApproval is 2^256-1, the conventional unlimited ERC20 allowance.
var maxApproval = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// allowanceManager grants spending authorization to the router before
// transfer-based operations. When the current allowance is short it approves
// the unlimited amount, amortizing approval cost across operations at the
// price of trusting the spender with unlimited future pulls.
type allowanceManager struct {
	owner  common.Address
	tokens TokenSource
}

func (m *allowanceManager) ensure(ctx context.Context, token, spender common.Address, required *big.Int) error {
	t := m.tokens.Token(token)

	current, err := t.Allowance(ctx, m.owner, spender)
	if err != nil {
		return fmt.Errorf("read allowance: %w", err)
	}
	if current.Cmp(required) >= 0 {
		return nil
	}

	if err := t.Approve(ctx, spender, maxApproval); err != nil {
		return fmt.Errorf("approve: %w", err)
	}
	return nil
}
