package model

// EventRecord is a decoded (or raw) log enriched with the contract it was
// resolved to, as written by scans.
type EventRecord struct {
	ChainID      uint64          `json:"chain_id"`
	BlockNumber  uint64          `json:"block_number"`
	BlockHash    string          `json:"block_hash"`
	TxHash       string          `json:"tx_hash"`
	LogIndex     uint64          `json:"log_index"`
	Address      string          `json:"address"`
	ContractName string          `json:"contract_name,omitempty"`
	AbiName      string          `json:"abi_name,omitempty"`
	Timestamp    uint64          `json:"timestamp"`
	Event        DecodedEventLog `json:"event"`
}
