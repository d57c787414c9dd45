package controls

import (
	"context"
	"fmt"
	"go.uber.org/zap"
)

// Controller takes or releases control of the vehicle
type Controller interface {
	ConfirmConnection(ctx context.Context) error
	EnableApiControl(ctx context.Context, enabled bool) error
	ArmDisarm(ctx context.Context, arm bool) (bool, error)
}

// Arm enables api control then arms the motors. The simulated vehicle becomes remotely controllable.
func Arm(ctx context.Context, c Controller) error {
	log := zap.S()
	if err := c.ConfirmConnection(ctx); err != nil {
		return err
	}

	log.Info("enable api control")
	if err := c.EnableApiControl(ctx, true); err != nil {
		return fmt.Errorf("unable to enable api control: %w", err)
	}

	log.Info("arm vehicle")
	armed, err := c.ArmDisarm(ctx, true)
	if err != nil {
		return fmt.Errorf("unable to arm vehicle: %w", err)
	}
	if !armed {
		log.Warn("vehicle refused to arm")
	}
	return nil
}

// Release disarms the vehicle and gives control back
func Release(ctx context.Context, c Controller) error {
	log := zap.S()

	log.Info("disarm vehicle")
	if _, err := c.ArmDisarm(ctx, false); err != nil {
		return fmt.Errorf("unable to disarm vehicle: %w", err)
	}
	log.Info("disable api control")
	if err := c.EnableApiControl(ctx, false); err != nil {
		return fmt.Errorf("unable to disable api control: %w", err)
	}
	return nil
}
