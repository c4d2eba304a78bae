package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// GasLimitContractCall is the EstimateGas fallback when the node cannot
// simulate a non-reverting state-changing call.
const GasLimitContractCall = uint64(200_000)

// DefaultReceiptPollInterval is how often a pending transaction's receipt is polled.
const DefaultReceiptPollInterval = 2 * time.Second

// Duration is a time.Duration that reads and writes as "2s" in JSON.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"2s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
