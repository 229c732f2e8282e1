package tax

import (
	"sort"

	"github.com/eprbell/rp2go/internal/amount"
)

// Account identifies one exchange/holder pair.
type Account struct {
	Exchange string `json:"exchange"`
	Holder   string `json:"holder"`
}

// Balance is the final crypto position of one account.
type Balance struct {
	Account
	Crypto amount.Amount `json:"crypto"`
}

// BalanceSet holds the final per-account positions for one asset.
type BalanceSet struct {
	Asset    string
	balances map[Account]amount.Amount
}

// NewBalanceSet returns an empty balance set for the asset.
func NewBalanceSet(asset string) *BalanceSet {
	return &BalanceSet{Asset: asset, balances: make(map[Account]amount.Amount)}
}

// Add adjusts an account's balance by delta.
func (s *BalanceSet) Add(acct Account, delta amount.Amount) {
	s.balances[acct] = s.balances[acct].Add(delta)
}

// Get returns an account's balance (zero for unknown accounts).
func (s *BalanceSet) Get(acct Account) amount.Amount {
	return s.balances[acct]
}

// Total returns the sum over all accounts.
func (s *BalanceSet) Total() amount.Amount {
	total := amount.Zero()
	for _, v := range s.balances {
		total = total.Add(v)
	}
	return total
}

// Sorted returns all balances ordered by exchange then holder.
func (s *BalanceSet) Sorted() []Balance {
	out := make([]Balance, 0, len(s.balances))
	for acct, v := range s.balances {
		out = append(out, Balance{Account: acct, Crypto: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Exchange != out[j].Exchange {
			return out[i].Exchange < out[j].Exchange
		}
		return out[i].Holder < out[j].Holder
	})
	return out
}

// Negative returns the accounts whose balance went below zero, ordered
// like Sorted. A negative balance means the ledger disposed of crypto the
// account never received.
func (s *BalanceSet) Negative() []Balance {
	var out []Balance
	for _, b := range s.Sorted() {
		if b.Crypto.IsNegative() {
			out = append(out, b)
		}
	}
	return out
}
