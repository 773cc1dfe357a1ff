package rvi

import "fmt"

// Mode selects whether TRM entries are costs to minimize or rewards to maximize.
type Mode string

const (
	// ModeCost minimizes expected cost. It is the default.
	ModeCost Mode = "cost"
	// ModeReward maximizes expected reward by solving the cost problem on −TRM.
	ModeReward Mode = "reward"
)

// ParseMode maps a wire value onto a Mode. The empty string means ModeCost.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeCost:
		return ModeCost, nil
	case ModeReward:
		return ModeReward, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q: must be %q or %q",
			ErrInvalidParameter, s, ModeCost, ModeReward)
	}
}

// AsCost returns the tensor the solver minimizes: trm itself for ModeCost
// and a negated copy for ModeReward. The caller's tensor is never modified.
func (m Mode) AsCost(trm *Tensor) *Tensor {
	if m == ModeReward {
		return trm.Negated()
	}
	return trm
}
