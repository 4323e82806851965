package model

// Argument is one decoded parameter.
type Argument struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Indexed bool   `json:"indexed,omitempty"`
	Value   Value  `json:"value"`
}

// DecodedFunctionData is the decoded call input. When decoding fails only
// Error is set.
type DecodedFunctionData struct {
	FunctionName string     `json:"function_name,omitempty"`
	Args         []Argument `json:"args,omitempty"`
	Signature    string     `json:"signature,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// Failed reports whether this is the error variant.
func (d DecodedFunctionData) Failed() bool {
	return d.Error != ""
}

// DecodedEventLog is a receipt log either decoded against an ABI event
// (Decoded, EventName, Args) or kept raw (Topics, Data). Error is set when the
// log could not be processed at all.
type DecodedEventLog struct {
	Index           int        `json:"index"`
	BlockNumber     *uint64    `json:"block_number,omitempty"`
	TransactionHash string     `json:"transaction_hash,omitempty"`
	LogIndex        *uint      `json:"log_index,omitempty"`
	Address         string     `json:"address"`
	EventName       string     `json:"event_name,omitempty"`
	Args            []Argument `json:"args,omitempty"`
	Topics          []string   `json:"topics,omitempty"`
	Data            string     `json:"data,omitempty"`
	Decoded         bool       `json:"decoded"`
	Error           string     `json:"error,omitempty"`
}

// DecodedTransaction is the result of decoding a transaction and its receipt.
// DecodedInput is nil when the transaction carries no call data.
type DecodedTransaction struct {
	DecodedInput  *DecodedFunctionData `json:"decoded_input,omitempty"`
	DecodedEvents []DecodedEventLog    `json:"decoded_events"`
}
