/*

This file contains the types for prepared (unsigned) protocol transactions.

*/

package types

// TransactionMethod is the protocol operation a prepared transaction performs.
type TransactionMethod string

const (
	TransactionMethodDeposit  TransactionMethod = "deposit"
	TransactionMethodWithdraw TransactionMethod = "withdraw"
)

// ProtocolTransaction is a transaction payload prepared by a protocol adapter.
type ProtocolTransaction struct {
	Protocol string            `json:"protocol"`
	Method   TransactionMethod `json:"method"`
	Args     []string          `json:"args"`
	Value    string            `json:"value,omitempty"`
}

// Balance is what an adapter reports for a wallet in its protocol.
type Balance struct {
	BalanceUSD  float64 `json:"balanceUSD"`
	TokenSymbol string  `json:"tokenSymbol"`
	APY         float64 `json:"apy"`
}

// TransferPlan pairs the withdrawal and deposit needed to carry out one recommendation.
type TransferPlan struct {
	ID             string                    `json:"id"`
	WalletAddress  string                    `json:"wallet_address"`
	Withdraw       ProtocolTransaction       `json:"withdraw"`
	Deposit        ProtocolTransaction       `json:"deposit"`
	Recommendation TransactionRecommendation `json:"recommendation"`
}
