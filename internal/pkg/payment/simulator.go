package payment

import (
	"math/rand"
	"sync"
	"time"
)

// Method constants
const (
	MethodUPI        = "upi"
	MethodCard       = "card"
	MethodNetBanking = "netbanking"
	MethodWallet     = "wallet"
)

// Outcome is the gateway's answer for one deposit
type Outcome struct {
	Success       bool
	FailureReason string
}

// Simulator decides deposit outcomes in place of a real gateway
type Simulator interface {
	Settle(method string) Outcome
}

var failureReasons = map[string]string{
	MethodUPI:        "UPI transaction declined by bank",
	MethodCard:       "Card declined by issuer",
	MethodNetBanking: "Bank server did not respond",
	MethodWallet:     "Wallet provider rejected the payment",
}

// FailureReason returns the message recorded for a failed deposit
func FailureReason(method string) string {
	if reason, ok := failureReasons[method]; ok {
		return reason
	}
	return "Payment failed"
}

// RandomSimulator succeeds with the configured probability
type RandomSimulator struct {
	rate float64
	mu   sync.Mutex
	rng  *rand.Rand
}

// NewRandomSimulator creates simulator. rate is clamped to [0, 1].
func NewRandomSimulator(rate float64) *RandomSimulator {
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	return &RandomSimulator{rate: rate, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Settle rolls an outcome
func (s *RandomSimulator) Settle(method string) Outcome {
	s.mu.Lock()
	roll := s.rng.Float64()
	s.mu.Unlock()

	if roll < s.rate {
		return Outcome{Success: true}
	}
	return Outcome{FailureReason: FailureReason(method)}
}

// FixedSimulator always returns the same outcome
type FixedSimulator struct {
	Success bool
}

// Settle returns the fixed outcome
func (s FixedSimulator) Settle(method string) Outcome {
	if s.Success {
		return Outcome{Success: true}
	}
	return Outcome{FailureReason: FailureReason(method)}
}
