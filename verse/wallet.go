package verse

import "time"

// WalletRecord describes one ledger wallet as last reported by the node.
type WalletRecord struct {
	Address   string    `json:"address"`
	Balance   float64   `json:"balance"`
	PublicKey string    `json:"public_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"last_updated"`
}

// TransactionType labels the ledger operation a transaction performed.
type TransactionType string

const (
	// TransactionTypeTransfer moves value or an asset between wallets.
	TransactionTypeTransfer TransactionType = "TRANSFER"
	// TransactionTypeMint creates new value or a new asset.
	TransactionTypeMint TransactionType = "MINT"
	// TransactionTypeBurn destroys value or an asset.
	TransactionTypeBurn TransactionType = "BURN"
	// TransactionTypeStake locks value for staking.
	TransactionTypeStake TransactionType = "STAKE"
	// TransactionTypeGameReward pays out an in-game reward.
	TransactionTypeGameReward TransactionType = "GAME_REWARD"
	// TransactionTypeVestingRelease releases vested value on request.
	TransactionTypeVestingRelease TransactionType = "VESTING_RELEASE"
	// TransactionTypeAutomaticVestingRelease releases vested value on schedule.
	TransactionTypeAutomaticVestingRelease TransactionType = "AUTOMATIC_VESTING_RELEASE"
	// TransactionTypeMultiSig requires multiple signatures to settle.
	TransactionTypeMultiSig TransactionType = "MULTI_SIG"
	// TransactionTypeGameAsset records a game asset operation.
	TransactionTypeGameAsset TransactionType = "GAME_ASSET"
)

// TransactionStatus tracks where a transaction is in its lifecycle.
type TransactionStatus string

const (
	// TransactionStatusPending means the transaction has not settled yet.
	TransactionStatusPending TransactionStatus = "pending"
	// TransactionStatusCompleted means the transaction settled.
	TransactionStatusCompleted TransactionStatus = "completed"
	// TransactionStatusFailed means the ledger rejected the transaction.
	TransactionStatusFailed TransactionStatus = "failed"
	// TransactionStatusReverted means a settled transaction was rolled back.
	TransactionStatusReverted TransactionStatus = "reverted"
)

// Transaction is one entry in a wallet's ledger history.
type Transaction struct {
	ID          string            `json:"id"`
	Sender      string            `json:"sender_address"`
	Recipient   string            `json:"recipient_address"`
	Amount      float64           `json:"amount"`
	Type        TransactionType   `json:"transaction_type"`
	Status      TransactionStatus `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	BlockNumber int64             `json:"block_number"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
}

// GameInfo is the ledger's registration record for a game.
type GameInfo struct {
	GameID       string    `json:"game_id"`
	Name         string    `json:"name"`
	Verified     bool      `json:"verified"`
	RegisteredAt time.Time `json:"registered_at"`
}
